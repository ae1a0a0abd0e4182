package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelterwatch/internal/model"

	"github.com/stretchr/testify/require"
)

func age(v float64) *float64 { return &v }

func TestWebhookNotifyPayload(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	dog := model.Dog{
		ID:       "https://shelter.example/dogs/rex",
		Name:     "Rex",
		Breed:    "Labrador",
		Sex:      "Male",
		Size:     "Large",
		URL:      "https://shelter.example/dogs/rex",
		ImageURL: "https://shelter.example/img/rex.jpg",
		AgeYears: age(2.5),
	}
	require.NoError(t, NewWebhook(srv.URL).Notify(context.Background(), dog))

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "application/json", gotContentType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Equal(t, map[string]any{
		"name":      "Rex",
		"breed":     "Labrador",
		"age_years": 2.5,
		"sex":       "Male",
		"size":      "Large",
		"url":       "https://shelter.example/dogs/rex",
		"image_url": "https://shelter.example/img/rex.jpg",
	}, payload)
}

// Every key must be present even when the value is unknown; age_years
// falls back to 0 since the payload schema wants a number.
func TestWebhookNotifyUnknownFields(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	dog := model.Dog{ID: "Mystery", Name: "Mystery"}
	require.NoError(t, NewWebhook(srv.URL).Notify(context.Background(), dog))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	for _, key := range []string{"name", "breed", "age_years", "sex", "size", "url", "image_url"} {
		require.Contains(t, payload, key)
	}
	require.Equal(t, 0.0, payload["age_years"])
	require.Equal(t, "", payload["breed"])
}

func TestWebhookNotifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Notify(context.Background(), model.Dog{ID: "a", Name: "Rex"})
	require.Error(t, err)
}

func TestWebhookNotifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := NewWebhook(srv.URL).Notify(context.Background(), model.Dog{ID: "a", Name: "Rex"})
	require.Error(t, err)
}

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelterwatch/internal/model"

	"github.com/stretchr/testify/require"
)

func age(v float64) *float64 { return &v }

func testSeenSet() model.SeenSet {
	return model.SeenSet{
		"https://shelter.example/dogs/rex": {
			ID:       "https://shelter.example/dogs/rex",
			Name:     "Rex",
			Breed:    "Labrador",
			Sex:      "Male",
			Size:     "Large",
			URL:      "https://shelter.example/dogs/rex",
			ImageURL: "https://shelter.example/img/rex.jpg",
			AgeYears: age(2),
		},
		"https://shelter.example/dogs/mystery": {
			ID:   "https://shelter.example/dogs/mystery",
			Name: "Mystery",
			URL:  "https://shelter.example/dogs/mystery",
		},
	}
}

func TestCSVLoadMissingFile(t *testing.T) {
	s := NewCSV(filepath.Join(t.TempDir(), "dogs.csv"))

	seen, err := s.Load()
	require.NoError(t, err, "a missing file is a first run, not an error")
	require.Empty(t, seen)
}

func TestCSVRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "dogs.csv")
	s := NewCSV(path)

	want := testSeenSet()
	require.NoError(t, s.Persist(want, nil))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Unknown age survives as an empty cell, not as zero.
	require.Nil(t, got["https://shelter.example/dogs/mystery"].AgeYears)
}

func TestCSVPersistIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogs.csv")
	s := NewCSV(path)
	want := testSeenSet()

	require.NoError(t, s.Persist(want, nil))
	require.NoError(t, s.Persist(want, nil))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCSVFileIsHumanInspectable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogs.csv")
	require.NoError(t, NewCSV(path).Persist(testSeenSet(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "id,name,breed,age_years,sex,size,url,image_url", lines[0])
	require.Len(t, lines, 3)
	// Rows are sorted by id so the file diffs cleanly between runs.
	require.Contains(t, lines[1], "mystery")
	require.Contains(t, lines[2], "rex")
}

func TestCSVLoadCorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogs.csv")
	require.NoError(t, os.WriteFile(path, []byte("something,else\n1,2\n"), 0o644))

	_, err := NewCSV(path).Load()
	require.Error(t, err, "a corrupt store must fail loudly, not wipe itself")
}

func TestCSVLoadCorruptAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogs.csv")
	content := "id,name,breed,age_years,sex,size,url,image_url\n" +
		"a,Rex,Labrador,two,Male,Large,https://x,https://y\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewCSV(path).Load()
	require.Error(t, err)
}

func TestCSVLoadCorruptRowWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogs.csv")
	content := "id,name,breed,age_years,sex,size,url,image_url\n" +
		"a,Rex\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewCSV(path).Load()
	require.Error(t, err)
}

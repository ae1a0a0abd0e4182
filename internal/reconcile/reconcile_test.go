package reconcile

import (
	"testing"

	"shelterwatch/internal/model"

	"github.com/stretchr/testify/require"
)

func age(v float64) *float64 { return &v }

func TestDiffFirstRun(t *testing.T) {
	current := []model.Dog{
		{ID: "a", Name: "Rex", AgeYears: age(2)},
		{ID: "b", Name: "Bella", AgeYears: age(8)},
	}

	fresh, updated := Diff(current, model.SeenSet{})

	require.Len(t, fresh, 2)
	require.Equal(t, "a", fresh[0].ID)
	require.Equal(t, "b", fresh[1].ID)
	require.Len(t, updated, 2)
	require.True(t, updated.Contains("a"))
	require.True(t, updated.Contains("b"))
}

func TestDiffIdempotent(t *testing.T) {
	current := []model.Dog{
		{ID: "a", Name: "Rex"},
		{ID: "b", Name: "Bella"},
	}

	fresh, updated := Diff(current, model.SeenSet{})
	require.Len(t, fresh, 2)

	// An unchanged listing set on the next cycle yields nothing new.
	fresh, updated = Diff(current, updated)
	require.Empty(t, fresh)
	require.Len(t, updated, 2)
}

func TestDiffDedupsWithinBatch(t *testing.T) {
	current := []model.Dog{
		{ID: "a", Name: "Rex", Breed: "Labrador"},
		{ID: "a", Name: "Rex", Breed: "Lab Mix"},
	}

	fresh, updated := Diff(current, model.SeenSet{})

	require.Len(t, fresh, 1)
	require.Len(t, updated, 1)
	// First occurrence wins.
	require.Equal(t, "Labrador", fresh[0].Breed)
	require.Equal(t, "Labrador", updated["a"].Breed)
}

// Ids are permanent: a dog that leaves the site and is relisted later
// under the same id is deliberately not treated as new again.
func TestDiffNeverReportsRelistedID(t *testing.T) {
	seen := model.SeenSet{"a": {ID: "a", Name: "Rex"}}

	// Rex vanishes from the page.
	fresh, updated := Diff([]model.Dog{{ID: "b", Name: "Bella"}}, seen)
	require.Len(t, fresh, 1)
	require.True(t, updated.Contains("a"), "removed listings stay in the seen-set")

	// Rex comes back.
	fresh, _ = Diff([]model.Dog{{ID: "a", Name: "Rex"}, {ID: "b", Name: "Bella"}}, updated)
	require.Empty(t, fresh)
}

func TestDiffUpdatesStoredRecord(t *testing.T) {
	seen := model.SeenSet{"a": {ID: "a", Name: "Rex", Breed: "Unknown"}}

	fresh, updated := Diff([]model.Dog{{ID: "a", Name: "Rex", Breed: "Labrador"}}, seen)

	require.Empty(t, fresh)
	require.Equal(t, "Labrador", updated["a"].Breed)
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	seen := model.SeenSet{"a": {ID: "a", Name: "Rex", Breed: "Unknown"}}
	current := []model.Dog{
		{ID: "a", Name: "Rex", Breed: "Labrador"},
		{ID: "b", Name: "Bella"},
	}

	Diff(current, seen)

	require.Len(t, seen, 1)
	require.Equal(t, "Unknown", seen["a"].Breed)
	require.Len(t, current, 2)
}

func TestDiffSkipsEmptyID(t *testing.T) {
	fresh, updated := Diff([]model.Dog{{ID: "", Name: "Ghost"}}, model.SeenSet{})

	require.Empty(t, fresh)
	require.Empty(t, updated)
}

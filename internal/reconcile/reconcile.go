// Package reconcile computes which freshly scraped listings are new.
package reconcile

import "shelterwatch/internal/model"

// Diff compares the current scrape against the set of previously seen
// ids. It returns the dogs whose id was unknown when the scrape began,
// de-duplicated within the batch (first occurrence wins, input order
// preserved), and the union of both sets with current records replacing
// stored ones. Neither input is mutated and no I/O happens here.
//
// An id that disappeared from the site and later returns is not
// considered new: ids are permanent once seen. This trades "never
// re-notify a relisted dog" for "never notify the same dog twice".
func Diff(current []model.Dog, seen model.SeenSet) ([]model.Dog, model.SeenSet) {
	updated := make(model.SeenSet, len(seen)+len(current))
	for id, d := range seen {
		updated[id] = d
	}

	var fresh []model.Dog
	inBatch := make(map[string]bool, len(current))
	for _, d := range current {
		if d.ID == "" || inBatch[d.ID] {
			continue
		}
		inBatch[d.ID] = true
		if !seen.Contains(d.ID) {
			fresh = append(fresh, d)
		}
		updated[d.ID] = d
	}
	return fresh, updated
}

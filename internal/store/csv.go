// Package store provides CSV storage for the seen-set.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"shelterwatch/internal/model"
)

var csvHeader = []string{"id", "name", "breed", "age_years", "sex", "size", "url", "image_url"}

// CSVStore keeps the seen-set in a flat, human-inspectable CSV file,
// one row per dog id. It is the default backend.
type CSVStore struct {
	path string
}

// Ensure CSVStore implements Store.
var _ Store = (*CSVStore)(nil)

// NewCSV creates a store backed by the file at path. The file is only
// created on the first Persist.
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// BackendType returns the backend name.
func (s *CSVStore) BackendType() string {
	return "CSV"
}

// Close is a no-op; the file is never held open between calls.
func (s *CSVStore) Close() error {
	return nil
}

// Load reads the seen-set from the CSV file. A missing file means first
// run and yields an empty set; a present but malformed file is an error
// so that a corrupt store is never silently treated as empty (which
// would re-notify every dog on the page).
func (s *CSVStore) Load() (model.SeenSet, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("No existing store file at %s, starting fresh", s.path)
		return model.SeenSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read store header: %w", err)
	}
	if !slices.Equal(header, csvHeader) {
		return nil, fmt.Errorf("store file %s has unexpected header %v", s.path, header)
	}

	seen := model.SeenSet{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read store row: %w", err)
		}
		dog, err := rowToDog(row)
		if err != nil {
			return nil, fmt.Errorf("store file %s: %w", s.path, err)
		}
		seen[dog.ID] = dog
	}
	return seen, nil
}

// Persist rewrites the full seen-set to a temp file and renames it into
// place, so a crash mid-write leaves the previous file intact. Rows are
// sorted by id to keep the file diffable between runs.
func (s *CSVStore) Persist(seen model.SeenSet, added []model.Dog) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create store temp file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("write store header: %w", err)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := w.Write(dogToRow(seen[id])); err != nil {
			f.Close()
			return fmt.Errorf("write store row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	log.Printf("Saved %d dogs to %s (%d new)", len(seen), s.path, len(added))
	return nil
}

func dogToRow(d model.Dog) []string {
	age := ""
	if d.AgeYears != nil {
		age = strconv.FormatFloat(*d.AgeYears, 'f', -1, 64)
	}
	return []string{d.ID, d.Name, d.Breed, age, d.Sex, d.Size, d.URL, d.ImageURL}
}

func rowToDog(row []string) (model.Dog, error) {
	if len(row) != len(csvHeader) {
		return model.Dog{}, fmt.Errorf("row has %d fields, want %d", len(row), len(csvHeader))
	}
	dog := model.Dog{
		ID:       row[0],
		Name:     row[1],
		Breed:    row[2],
		Sex:      row[4],
		Size:     row[5],
		URL:      row[6],
		ImageURL: row[7],
	}
	if dog.ID == "" {
		return model.Dog{}, fmt.Errorf("row for %q has empty id", dog.Name)
	}
	if row[3] != "" {
		age, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return model.Dog{}, fmt.Errorf("bad age_years %q for id %s", row[3], dog.ID)
		}
		dog.AgeYears = &age
	}
	return dog, nil
}

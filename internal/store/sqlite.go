// SQLite storage for the seen-set.
package store

import (
	"database/sql"
	"fmt"

	"shelterwatch/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore wraps the SQLite connection.
type SQLiteStore struct {
	conn *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// BackendType returns the backend name.
func (s *SQLiteStore) BackendType() string {
	return "SQLite"
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dogs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		breed TEXT NOT NULL DEFAULT '',
		age_years REAL,
		sex TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Load reads all known dogs. An empty table is a valid first run.
func (s *SQLiteStore) Load() (model.SeenSet, error) {
	rows, err := s.conn.Query("SELECT id, name, breed, age_years, sex, size, url, image_url FROM dogs")
	if err != nil {
		return nil, fmt.Errorf("load dogs: %w", err)
	}
	defer rows.Close()
	return scanDogs(rows)
}

// Persist upserts every record in seen inside one transaction.
func (s *SQLiteStore) Persist(seen model.SeenSet, added []model.Dog) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO dogs (id, name, breed, age_years, sex, size, url, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			breed = excluded.breed,
			age_years = excluded.age_years,
			sex = excluded.sex,
			size = excluded.size,
			url = excluded.url,
			image_url = excluded.image_url`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare persist: %w", err)
	}
	defer stmt.Close()

	for _, d := range seen {
		if _, err := stmt.Exec(d.ID, d.Name, d.Breed, nullableAge(d), d.Sex, d.Size, d.URL, d.ImageURL); err != nil {
			tx.Rollback()
			return fmt.Errorf("persist dog %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func nullableAge(d model.Dog) any {
	if d.AgeYears == nil {
		return nil
	}
	return *d.AgeYears
}

func scanDogs(rows *sql.Rows) (model.SeenSet, error) {
	seen := model.SeenSet{}
	for rows.Next() {
		var d model.Dog
		var age sql.NullFloat64
		if err := rows.Scan(&d.ID, &d.Name, &d.Breed, &age, &d.Sex, &d.Size, &d.URL, &d.ImageURL); err != nil {
			return nil, err
		}
		if age.Valid {
			v := age.Float64
			d.AgeYears = &v
		}
		seen[d.ID] = d
	}
	return seen, rows.Err()
}

// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Listing source kinds.
const (
	SourceHTML = "html"
	SourceRSS  = "rss"
)

// Store backend kinds.
const (
	StoreCSV      = "csv"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultMaxAgeYears   = 5
	DefaultIntervalHours = 6
	DefaultCSVPath       = "data/dogs.csv"
	DefaultSQLitePath    = "data/dogs.db"
	DefaultListenAddr    = ":8080"
)

// Config holds everything the service reads from the environment.
type Config struct {
	ShelterURL       string
	WebhookURL       string
	MaxAgeYears      float64
	IntervalHours    float64
	NotifyUnknownAge bool
	Source           string
	StoreBackend     string
	StorePath        string
	DatabaseURL      string
	ListenAddr       string // empty disables the status server
}

// Interval returns the time between scrape cycles.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalHours * float64(time.Hour))
}

// FromEnv reads and validates the configuration.
func FromEnv() (Config, error) {
	cfg := Config{
		ShelterURL:    os.Getenv("SHELTER_URL"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		MaxAgeYears:   DefaultMaxAgeYears,
		IntervalHours: DefaultIntervalHours,
		Source:        SourceHTML,
		StoreBackend:  StoreCSV,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ListenAddr:    DefaultListenAddr,
	}

	var missing []string
	if cfg.ShelterURL == "" {
		missing = append(missing, "SHELTER_URL")
	}
	if cfg.WebhookURL == "" {
		missing = append(missing, "WEBHOOK_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if v := os.Getenv("MAX_AGE_YEARS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, fmt.Errorf("invalid MAX_AGE_YEARS %q", v)
		}
		cfg.MaxAgeYears = f
	}
	if v := os.Getenv("CHECK_INTERVAL_HOURS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("invalid CHECK_INTERVAL_HOURS %q", v)
		}
		cfg.IntervalHours = f
	}
	if v := os.Getenv("NOTIFY_UNKNOWN_AGE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NOTIFY_UNKNOWN_AGE %q", v)
		}
		cfg.NotifyUnknownAge = b
	}

	if v := os.Getenv("SHELTER_SOURCE"); v != "" {
		switch v {
		case SourceHTML, SourceRSS:
			cfg.Source = v
		default:
			return Config{}, fmt.Errorf("invalid SHELTER_SOURCE %q (want %q or %q)", v, SourceHTML, SourceRSS)
		}
	}

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		switch v {
		case StoreCSV, StoreSQLite, StorePostgres:
			cfg.StoreBackend = v
		default:
			return Config{}, fmt.Errorf("invalid STORE_BACKEND %q (want %q, %q or %q)", v, StoreCSV, StoreSQLite, StorePostgres)
		}
	}
	if cfg.StoreBackend == StorePostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
	}

	cfg.StorePath = os.Getenv("STORE_PATH")
	if cfg.StorePath == "" {
		switch cfg.StoreBackend {
		case StoreSQLite:
			cfg.StorePath = DefaultSQLitePath
		default:
			cfg.StorePath = DefaultCSVPath
		}
	}

	// An explicitly empty LISTEN_ADDR turns the status server off.
	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	return cfg, nil
}

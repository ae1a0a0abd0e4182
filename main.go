package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"shelterwatch/internal/config"
	"shelterwatch/internal/notify"
	"shelterwatch/internal/scrape"
	"shelterwatch/internal/server"
	"shelterwatch/internal/service"
	"shelterwatch/internal/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer st.Close()

	var source scrape.Source
	switch cfg.Source {
	case config.SourceRSS:
		source = scrape.NewFeedSource(cfg.ShelterURL)
	default:
		source = scrape.NewScraper(cfg.ShelterURL)
	}

	svc := service.New(source, st, notify.NewWebhook(cfg.WebhookURL), cfg.MaxAgeYears, cfg.NotifyUnknownAge)

	log.Printf("Dog shelter notification service starting")
	log.Printf("Shelter URL: %s (%s source)", cfg.ShelterURL, cfg.Source)
	log.Printf("Store backend: %s", st.BackendType())
	log.Printf("Check interval: %.1f hours, max age: %.1f years", cfg.IntervalHours, cfg.MaxAgeYears)

	poller := service.NewPoller(svc, cfg.Interval())
	poller.Start()

	if cfg.ListenAddr != "" {
		srv := server.New(st, svc)
		go func() {
			if err := srv.Start(cfg.ListenAddr); err != nil {
				log.Printf("Status server error: %v", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("Shutting down")
	poller.Stop()
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return store.NewPostgres(cfg.DatabaseURL)
	case config.StoreSQLite:
		return store.NewSQLite(cfg.StorePath)
	default:
		return store.NewCSV(cfg.StorePath), nil
	}
}

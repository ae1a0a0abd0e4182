// Package service orchestrates the scrape-reconcile-notify cycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"shelterwatch/internal/model"
	"shelterwatch/internal/notify"
	"shelterwatch/internal/reconcile"
	"shelterwatch/internal/scrape"
	"shelterwatch/internal/store"
)

// ErrCycleInFlight is returned by TryRunCycle when a cycle is already running.
var ErrCycleInFlight = errors.New("cycle already in flight")

// CycleResult summarizes one completed cycle.
type CycleResult struct {
	Scraped  int
	New      int
	Notified int
	RanAt    time.Time
}

// Service runs the pipeline: fetch listings, diff against the seen-set,
// persist, then notify for qualifying new dogs.
type Service struct {
	source           scrape.Source
	store            store.Store
	notifier         notify.Notifier
	maxAgeYears      float64
	notifyUnknownAge bool

	mu sync.Mutex // held for the duration of a cycle

	statsMu sync.Mutex
	last    *CycleResult
}

// New creates a service. notifyUnknownAge controls whether dogs whose
// age could not be parsed trigger a notification (default policy: no).
func New(source scrape.Source, st store.Store, n notify.Notifier, maxAgeYears float64, notifyUnknownAge bool) *Service {
	return &Service{
		source:           source,
		store:            st,
		notifier:         n,
		maxAgeYears:      maxAgeYears,
		notifyUnknownAge: notifyUnknownAge,
	}
}

// RunCycle executes one fetch → diff → persist → notify pass. Cycles
// are single-flight: a concurrent caller blocks until the running cycle
// finishes, so the seen-set is never read and written concurrently.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCycle(ctx)
}

// TryRunCycle runs a cycle unless one is already in flight.
func (s *Service) TryRunCycle(ctx context.Context) (CycleResult, error) {
	if !s.mu.TryLock() {
		return CycleResult{}, ErrCycleInFlight
	}
	defer s.mu.Unlock()
	return s.runCycle(ctx)
}

func (s *Service) runCycle(ctx context.Context) (CycleResult, error) {
	log.Printf("Starting check for new dogs")

	current, err := s.source.Fetch(ctx)
	if err != nil {
		// Transient fetch failures abort the cycle before any store
		// mutation; the next scheduled cycle retries naturally.
		return CycleResult{}, fmt.Errorf("fetch listings: %w", err)
	}
	if len(current) == 0 {
		// A site redesign can make the parser come up empty; skip the
		// cycle rather than bake an empty baseline into the store.
		log.Printf("No dogs found on the shelter page, skipping cycle")
		return CycleResult{RanAt: time.Now()}, nil
	}

	seen, err := s.store.Load()
	if err != nil {
		return CycleResult{}, fmt.Errorf("load seen dogs: %w", err)
	}

	fresh, updated := reconcile.Diff(current, seen)

	// Persist before notifying. Once an id is durable it is never
	// notified again, so this ordering keeps delivery at-most-once even
	// if the process dies between the two steps.
	if err := s.store.Persist(updated, fresh); err != nil {
		return CycleResult{}, fmt.Errorf("persist seen dogs: %w", err)
	}

	result := CycleResult{Scraped: len(current), New: len(fresh), RanAt: time.Now()}
	for _, dog := range fresh {
		if !Qualifies(dog, s.maxAgeYears, s.notifyUnknownAge) {
			log.Printf("Skipping %s (%s, max is %.1f years)", dog.Name, describeAge(dog), s.maxAgeYears)
			continue
		}
		log.Printf("New dog meets age criteria: %s (%s)", dog.Name, describeAge(dog))
		if err := s.notifier.Notify(ctx, dog); err != nil {
			// The id is already persisted, so this dog is never
			// retried; other dogs in the batch still get their call.
			log.Printf("Failed to send notification for %s: %v", dog.Name, err)
			continue
		}
		result.Notified++
	}

	log.Printf("Check complete: %d dogs listed, %d new, %d notified", result.Scraped, result.New, result.Notified)
	s.setLast(result)
	return result, nil
}

// LastResult returns the most recent completed cycle, if any.
func (s *Service) LastResult() (CycleResult, bool) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if s.last == nil {
		return CycleResult{}, false
	}
	return *s.last, true
}

func (s *Service) setLast(r CycleResult) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.last = &r
}

// Qualifies reports whether a newly discovered dog should trigger a
// notification. A dog exactly on the age boundary qualifies; an
// unknown age qualifies only when notifyUnknown is set.
func Qualifies(dog model.Dog, maxAgeYears float64, notifyUnknown bool) bool {
	if !dog.AgeKnown() {
		return notifyUnknown
	}
	return *dog.AgeYears <= maxAgeYears
}

func describeAge(dog model.Dog) string {
	if !dog.AgeKnown() {
		return "unknown age"
	}
	return fmt.Sprintf("%.1f years old", *dog.AgeYears)
}

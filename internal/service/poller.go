package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// CycleTimeout bounds a single scrape-reconcile-notify pass.
const CycleTimeout = 10 * time.Minute

// Poller runs cycles on a fixed interval.
type Poller struct {
	service  *Service
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a background poller.
func NewPoller(svc *Service, interval time.Duration) *Poller {
	return &Poller{
		service:  svc,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the polling loop. The first cycle runs immediately; a
// failed cycle is logged and the loop keeps going.
func (p *Poller) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			ctx, cancel := context.WithTimeout(context.Background(), CycleTimeout)
			_, err := p.service.RunCycle(ctx)
			cancel()
			if err != nil {
				log.Printf("Cycle error: %v", err)
			}

			select {
			case <-p.stopChan:
				return
			case <-time.After(p.interval):
			}
		}
	}()
}

// Stop stops the poller gracefully.
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// Package notify delivers webhook notifications for new dogs.
package notify

import (
	"context"
	"fmt"
	"time"

	"shelterwatch/internal/model"

	"github.com/go-resty/resty/v2"
)

// Notifier sends one notification per qualifying new dog.
type Notifier interface {
	Notify(ctx context.Context, dog model.Dog) error
}

// Webhook POSTs one JSON payload per dog to a configured endpoint.
type Webhook struct {
	client *resty.Client
	url    string
}

// Ensure Webhook implements Notifier.
var _ Notifier = (*Webhook)(nil)

// NewWebhook creates a notifier for the given endpoint.
func NewWebhook(webhookURL string) *Webhook {
	return &Webhook{
		client: resty.New().SetTimeout(15 * time.Second),
		url:    webhookURL,
	}
}

// Notify sends the notification for one dog. A non-2xx response is an
// error. Delivery is at-most-once: the caller never retries, because
// the dog's id is already persisted as seen by the time this runs.
func (w *Webhook) Notify(ctx context.Context, dog model.Dog) error {
	res, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(dog.Payload()).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("post webhook for %s: %w", dog.Name, err)
	}
	if res.IsError() {
		return fmt.Errorf("post webhook for %s: status %s", dog.Name, res.Status())
	}
	return nil
}

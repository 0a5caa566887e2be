package websub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Publisher notifies a hub that topics (feed URLs) have new content.
type Publisher struct {
	hub        string
	client     *http.Client
	newBackOff func() backoff.BackOff
	maxRetries uint64
}

type Option func(*Publisher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) {
		p.client = c
	}
}

// WithBackOff sets the retry policy. It is called once per Publish.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(p *Publisher) {
		p.newBackOff = fn
	}
}

// WithMaxRetries bounds the number of retries after the first attempt.
func WithMaxRetries(n uint64) Option {
	return func(p *Publisher) {
		p.maxRetries = n
	}
}

func NewPublisher(hub string, opts ...Option) *Publisher {
	p := &Publisher{
		hub:    hub,
		client: &http.Client{Timeout: 30 * time.Second},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = time.Minute
			return b
		},
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends a hub.mode=publish request for topic. Server errors and 429
// are retried; other non-2xx answers fail immediately.
func (p *Publisher) Publish(ctx context.Context, topic string) error {
	attempt := 0
	operation := func() error {
		attempt++
		return p.publishOnce(ctx, topic)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	notify := func(err error, next time.Duration) {
		slog.Warn("hub publish failed, retrying", "hub", p.hub, "topic", topic, "attempt", attempt, "retry_in", next, "error", err)
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return fmt.Errorf("failed to notify hub '%s' about '%s' with %w", p.hub, topic, err)
	}
	slog.Info("hub notified", "hub", p.hub, "topic", topic, "attempts", attempt)
	return nil
}

func (p *Publisher) publishOnce(ctx context.Context, topic string) error {
	form := url.Values{
		"hub.mode": {"publish"},
		"hub.url":  {topic},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.hub, strings.NewReader(form.Encode()))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to build hub request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("hub responded with %s", resp.Status)
	default:
		return backoff.Permanent(fmt.Errorf("hub rejected publish with %s", resp.Status))
	}
}

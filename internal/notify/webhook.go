// Package notify delivers job completion notifications to a configured
// webhook endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jobrelay/jobrelay/internal/domain/model"
)

const maxResponseBytes = 4 * 1024

// Config captures the webhook endpoint behaviour.
type Config struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
}

// WebhookClient posts completion notifications to a single configured URL.
// Delivery is single-attempt: the outcome, success or failure, is recorded on
// the job rather than retried.
type WebhookClient struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookClient builds a webhook client. Callers should pass a validated config.
func NewWebhookClient(cfg Config) (*WebhookClient, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookClient{
		url:    url,
		client: hc,
		logger: logger.With("component", "webhook"),
	}, nil
}

// Deliver posts the notification and returns the outcome string to record on
// the job: "Success: <status code>" for 2xx responses, "Error: <reason>" for
// anything else. It never returns an error; a failed delivery is data.
func (c *WebhookClient) Deliver(ctx context.Context, n *model.WebhookNotification) string {
	body, err := json.Marshal(n)
	if err != nil {
		return outcomeError(fmt.Errorf("encode notification: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return outcomeError(fmt.Errorf("create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "webhook delivery failed",
			"job_id", n.JobID,
			"error", err,
		)
		return outcomeError(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "webhook endpoint rejected notification",
			"job_id", n.JobID,
			"status", resp.StatusCode,
		)
		return outcomeError(fmt.Errorf("webhook responded %s", resp.Status))
	}

	c.logger.InfoContext(ctx, "webhook delivered",
		"job_id", n.JobID,
		"status", resp.StatusCode,
	)
	return fmt.Sprintf("Success: %d", resp.StatusCode)
}

func outcomeError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// drainAndClose reads a bounded amount of the body so the connection can be
// reused, then closes it.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxResponseBytes))
	_ = body.Close()
}

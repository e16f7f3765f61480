package config

import (
	"strings"
	"time"
)

// WebhookConfig controls delivery of completion notifications.
type WebhookConfig struct {
	// URL is the endpoint completion notifications are POSTed to.
	// Defaults to the service's own echo endpoint for local development.
	URL string `env:"WEBHOOK_URL" envDefault:"http://localhost:8080/webhook-test"`

	// Timeout bounds a single delivery attempt.
	Timeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
}

// Sanitize normalises webhook configuration values.
func (c *WebhookConfig) Sanitize() {
	c.URL = strings.TrimSpace(c.URL)
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
}

package config

import "time"

// ExecutorConfig controls background processing of jobs.
type ExecutorConfig struct {
	// ProcessingDelay simulates the time spent processing a job before it
	// completes.
	ProcessingDelay time.Duration `env:"EXECUTOR_PROCESSING_DELAY" envDefault:"3s"`
}

// Sanitize applies guardrails to executor configuration values.
func (c *ExecutorConfig) Sanitize() {
	if c.ProcessingDelay < 0 {
		c.ProcessingDelay = 0
	}
}

// Package metrics defines standardised metric emission for job lifecycle
// events and webhook deliveries.
package metrics

import (
	"strings"
	"time"

	"github.com/jobrelay/jobrelay/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	TaskName   string
	Transition string
	Result     string
	Duration   time.Duration
}

// EmitJobLifecycle emits standardised job lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"task_name":  in.TaskName,
		"transition": in.Transition,
		"result":     in.Result,
	}

	sink.Count("job.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, cloneTags(tags))
	}
}

// EmitWebhookDelivery emits a counter for a webhook delivery attempt. The
// outcome string is the value recorded on the job, so a "Success:" prefix
// marks a successful delivery.
func EmitWebhookDelivery(sink statsd.Sink, taskName, outcome string, duration time.Duration) {
	if sink == nil {
		return
	}

	result := ResultError
	if strings.HasPrefix(outcome, "Success:") {
		result = ResultSuccess
	}

	tags := map[string]string{
		"task_name": taskName,
		"result":    result,
	}

	sink.Count("webhook.delivery", 1, tags)
	if duration > 0 {
		sink.Timing("webhook.duration", duration, cloneTags(tags))
	}
}

func cloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

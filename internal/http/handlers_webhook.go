package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

const maxWebhookTestBytes = 1 << 20

// WebhookTestHandler receives webhook deliveries and echoes them back. It is
// a local target for trying out the notification flow without an external
// endpoint.
type WebhookTestHandler struct {
	Logger *slog.Logger
}

// Receive handles POST /webhook-test.
func (h *WebhookTestHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookTestBytes))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_body", Err: err})
		return
	}

	var payload json.RawMessage
	if len(body) > 0 && json.Valid(body) {
		payload = body
	}

	h.Logger.Info("webhook received",
		"bytes", len(body),
		"content_type", r.Header.Get("Content-Type"),
	)

	WriteJSON(w, http.StatusOK, map[string]any{"received": true, "payload": payload})
}

package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/jobrelay/jobrelay/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteAppError maps an application error to the appropriate HTTP status code
// and writes the JSON error response. The message comes from the underlying
// AppError so wrapping context added by service layers stays out of responses.
func WriteAppError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	errCode := "internal"

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		code = http.StatusBadRequest
		errCode = "validation_failed"
	case apperrors.ErrCodeNotFound:
		code = http.StatusNotFound
		errCode = "not_found"
	case apperrors.ErrCodeConflict:
		code = http.StatusConflict
		errCode = "conflict"
	case apperrors.ErrCodeInvalidTransition:
		code = http.StatusConflict
		errCode = "invalid_transition"
	case apperrors.ErrCodeTimeout:
		code = http.StatusGatewayTimeout
		errCode = "timeout"
	case apperrors.ErrCodeCanceled:
		code = http.StatusServiceUnavailable
		errCode = "canceled"
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	WriteJSON(w, code, map[string]string{"error": errCode, "message": message})
}

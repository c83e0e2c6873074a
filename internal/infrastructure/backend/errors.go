package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/papermill/portal/internal/domain/shared"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// DomainCode maps the HTTP status onto a portal error code
func (e *APIError) DomainCode() string {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "INVALID_INPUT"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "ALREADY_EXISTS"
	default:
		return "BACKEND_UNAVAILABLE"
	}
}

var (
	// ErrBackendUnreachable wraps transport failures (refused, timeout, DNS)
	ErrBackendUnreachable = errors.New("backend unreachable")
	// ErrResponseTooLarge is returned instead of a truncated body
	ErrResponseTooLarge = errors.New("backend response too large")
	// ErrMalformedResponse wraps a 2xx body that does not decode
	ErrMalformedResponse = errors.New("malformed backend response")
)

// genericMessage is shown when the body carries no usable message
func genericMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}

// ParseErrorMessage extracts a human message from an error body. It looks
// at "detail" (a string, or a list of {msg, loc} validation entries), then
// "message", then "error", falling back to a generic text.
func ParseErrorMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			return text
		}
		return genericMessage(status)
	}

	if raw, ok := payload["detail"]; ok {
		if msg := parseDetail(raw); msg != "" {
			return msg
		}
	}
	for _, key := range []string{"message", "error"} {
		if raw, ok := payload[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return genericMessage(status)
}

type validationEntry struct {
	Msg string `json:"msg"`
	Loc []any  `json:"loc"`
}

func parseDetail(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}

	var entries []validationEntry
	if json.Unmarshal(raw, &entries) == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg == "" {
				continue
			}
			if field := locField(e.Loc); field != "" {
				msgs = append(msgs, field+": "+e.Msg)
			} else {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return ""
}

// locField returns the last string element of a validation location,
// e.g. ["body", "order_items", 0, "width_inches"] -> "width_inches".
func locField(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		if s, ok := loc[i].(string); ok && s != "body" && s != "query" && s != "path" {
			return s
		}
	}
	return ""
}

// ToDomainError converts backend and transport errors into domain errors.
// Other errors pass through unchanged.
func ToDomainError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return shared.WrapDomainError(apiErr.DomainCode(), apiErr.Message, err)
	}
	if errors.Is(err, ErrBackendUnreachable) || errors.Is(err, ErrResponseTooLarge) || errors.Is(err, ErrMalformedResponse) {
		return shared.WrapDomainError(shared.ErrBackendUnavailable.Code, shared.ErrBackendUnavailable.Message, err)
	}
	return err
}

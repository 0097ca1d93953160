package httpclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voyago/voyago-go/internal/utils"
)

// fallbackMessage is surfaced when a failure carries no usable message at all.
const fallbackMessage = "An unexpected error occurred."

// APIError is the normalized shape of every failed request. The backend
// reports failures as either a single message string or an array of
// messages; both collapse into Messages so callers can always display
// Messages[0].
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Message returns the first (primary) error message.
func (e *APIError) Message() string {
	if len(e.Messages) == 0 {
		return fallbackMessage
	}
	return e.Messages[0]
}

// errorEnvelope matches the backend's failure body. Message is either a
// JSON string or a JSON array of strings.
type errorEnvelope struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
}

// newAPIError normalizes a non-2xx response body into an APIError.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Message) > 0 {
		var single string
		if err := json.Unmarshal(envelope.Message, &single); err == nil && single != "" {
			apiErr.Messages = []string{single}
			return apiErr
		}
		var many []any
		if err := json.Unmarshal(envelope.Message, &many); err == nil {
			if messages := utils.ToStringSlice(many); len(messages) > 0 {
				apiErr.Messages = messages
				return apiErr
			}
		}
	}

	apiErr.Messages = []string{fallbackMessage}
	return apiErr
}

// transportError wraps a network-level failure (no response at all) into the
// same normalized shape, with a zero status code.
func transportError(err error) *APIError {
	message := fallbackMessage
	if err != nil {
		message = err.Error()
	}
	return &APIError{Messages: []string{message}}
}

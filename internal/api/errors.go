package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired reports that the credentials are gone and the user
// has to log in again. Failed refreshes wrap it together with the cause.
var ErrSessionExpired = errors.New("session expired")

// MsgProcessingFailed is the message used when an error body carries a
// non-string detail.
const MsgProcessingFailed = "Erro ao processar a solicitação."

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage

	sessionExpired bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Is matches ErrSessionExpired for a 401 on an authenticated request that
// could not be recovered.
func (e *APIError) Is(target error) bool {
	return target == ErrSessionExpired && e.sessionExpired
}

// NetworkError is a failure before any response arrived.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is a success response whose body could not be decoded.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// parseAPIError builds an APIError from a non-2xx body. The message is the
// string "detail" (or "message") field; a non-string detail such as a
// validation error list yields MsgProcessingFailed; anything else falls
// back to the HTTP status text.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
	}
	if json.Valid(body) {
		e.Body = json.RawMessage(body)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	for _, field := range []string{"detail", "message"} {
		raw, ok := payload[field]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil {
			e.Message = msg
		} else {
			e.Message = MsgProcessingFailed
		}
		return e
	}
	return e
}

// StatusCode returns the HTTP status of an *APIError anywhere in err's
// chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

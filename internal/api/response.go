package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

// Response is a successful backend reply with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Empty reports whether the response carried no body (204 or zero length).
func (r *Response) Empty() bool {
	return len(r.Body) == 0
}

// IsJSON reports whether the response declared a JSON content type.
func (r *Response) IsJSON() bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Value returns the decoded JSON for JSON responses, the raw text for
// anything else, and nil for an empty body.
func (r *Response) Value() (any, error) {
	if r.Empty() {
		return nil, nil
	}
	if !r.IsJSON() {
		return r.Text(), nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, &DecodeError{Body: r.Body, Err: err}
	}
	return v, nil
}

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r.Empty() {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &DecodeError{Body: r.Body, Err: err}
	}
	return nil
}

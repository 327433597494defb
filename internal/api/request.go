package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// RequestOptions describes a single backend call.
type RequestOptions struct {
	Method string // defaults to GET
	Body   Body
	Header http.Header
	Query  url.Values

	// Anonymous skips the bearer credential and the refresh-and-retry
	// path. Used by login and registration.
	Anonymous bool
}

// Body is a request payload. It is encoded again for every attempt so a
// retried request is identical to the first.
type Body interface {
	encode() (r io.Reader, contentType string, err error)
}

type jsonBody struct{ v any }

// JSON encodes v as an application/json body.
func JSON(v any) Body { return jsonBody{v: v} }

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encode JSON body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

type formBody struct{ fields map[string]string }

// Form encodes fields as multipart/form-data. The content type, boundary
// included, comes from the form writer.
func Form(fields map[string]string) Body { return formBody{fields: fields} }

func (b formBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(b.fields))
	for k := range b.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.WriteField(k, b.fields[k]); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// resolveURL joins endpoint onto the base URL. Absolute endpoints are used
// as they are.
func (c *Client) resolveURL(endpoint string, query url.Values) (string, error) {
	var raw string
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		raw = endpoint
	} else {
		raw = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse URL %q: %w", raw, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

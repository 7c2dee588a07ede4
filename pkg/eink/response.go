package eink

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Response is the raw outcome of one operation.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Method and Path describe the request that produced the response.
	Method string
	Path   string
}

// Decode decodes a JSON body into v.
func (r *Response) Decode(v interface{}) error {
	if len(strings.TrimSpace(string(r.Body))) == 0 {
		return fmt.Errorf("decoding %s %s: %w", r.Method, r.Path, ErrEmptyBody)
	}

	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding %s %s: %w", r.Method, r.Path, err)
	}

	return nil
}

// ContentType returns the response's Content-Type header.
func (r *Response) ContentType() string {
	if r.Headers == nil {
		return ""
	}

	return r.Headers.Get("Content-Type")
}

package eink

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired           = errors.New("config is required")
	ErrSpecificationURLRequired = errors.New("specification URL is required")
	ErrBaseURLRequired          = errors.New("base URL is required")
	ErrSpecificationUnavailable = errors.New("specification unavailable")
	ErrInvalidAPIClient         = errors.New("invalid API client")
	ErrEmptyID                  = errors.New("identifier is required")
	ErrOperationNotDocumented   = errors.New("operation not documented by specification")
	ErrMissingResourceID        = errors.New("response carries no resource ID")
	ErrMissingImageID           = errors.New("server did not report an image ID")
	ErrEmptyImageData           = errors.New("image data is required")
	ErrDetailsRequired          = errors.New("image transformer details are required")
	ErrNilResponse              = errors.New("response is nil")
	ErrEmptyBody                = errors.New("response body is empty")
	ErrUnexpectedBody           = errors.New("response body has unexpected shape")
	ErrNotFound                 = errors.New("resource not found")
	ErrUnexpectedStatus         = errors.New("unexpected response status")
)

// Problem is an RFC 7807 error body, as produced by connexion-based servers.
type Problem struct {
	Type   string `json:"type"   yaml:"type"`
	Title  string `json:"title"  yaml:"title"`
	Status int    `json:"status" yaml:"status"`
	Detail string `json:"detail" yaml:"detail"`
}

// ParseProblem parses a problem body from JSON.
func ParseProblem(data []byte) (*Problem, error) {
	var problem Problem

	err := json.Unmarshal(data, &problem)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem: %w", err)
	}

	return &problem, nil
}

// StatusError is returned when a response status is not one the caller
// handles. It carries the response for diagnostics.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Problem    *Problem
	Response   *Response
}

// NewStatusError builds a StatusError from a response, decoding a problem
// body when one is present.
func NewStatusError(resp *Response) *StatusError {
	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Method:     resp.Method,
		Path:       resp.Path,
		Response:   resp,
	}

	if len(resp.Body) > 0 {
		problem, err := ParseProblem(resp.Body)
		if err == nil && (problem.Title != "" || problem.Detail != "") {
			statusErr.Problem = problem
		}
	}

	return statusErr
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))

	if e.Problem == nil {
		return msg
	}

	if e.Problem.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", msg, e.Problem.Title, e.Problem.Detail)
	}

	return fmt.Sprintf("%s: %s", msg, e.Problem.Title)
}

// Unwrap maps the status onto ErrNotFound or ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	return ErrUnexpectedStatus
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}

	return 0, false
}

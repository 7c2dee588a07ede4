package eink

import (
	"github.com/fivetwenty-io/eink-client/internal/constants"
)

// Handler maps a response onto a result.
type Handler[T any] func(resp *Response) (T, error)

// Handlers selects what happens for each class of status code. Nil fields
// fall back to the defaults: success yields the zero value, not-found and
// everything else yield a *StatusError.
type Handlers[T any] struct {
	OnSuccess  Handler[T]
	OnNotFound Handler[T]
	OnOther    Handler[T]
}

// HandleResponse invokes exactly one handler based on the response status:
// 200 and 201 go to OnSuccess, 404 to OnNotFound, anything else to OnOther.
func HandleResponse[T any](resp *Response, handlers Handlers[T]) (T, error) {
	if resp == nil {
		var zero T

		return zero, ErrNilResponse
	}

	var handler Handler[T]

	switch {
	case IsSuccessStatus(resp.StatusCode):
		handler = handlers.OnSuccess
		if handler == nil {
			handler = Ignore[T]
		}
	case resp.StatusCode == constants.HTTPStatusNotFound:
		handler = handlers.OnNotFound
		if handler == nil {
			handler = Raise[T]
		}
	default:
		handler = handlers.OnOther
		if handler == nil {
			handler = Raise[T]
		}
	}

	return handler(resp)
}

// IsSuccessStatus reports whether the dispatcher treats code as success.
func IsSuccessStatus(code int) bool {
	return code == constants.HTTPStatusOK || code == constants.HTTPStatusCreated
}

// Ignore is the default success handler.
func Ignore[T any](*Response) (T, error) {
	var zero T

	return zero, nil
}

// Raise is the default not-found and other-status handler.
func Raise[T any](resp *Response) (T, error) {
	var zero T

	return zero, NewStatusError(resp)
}

// SoftNotFound returns a handler treating 404 as absence rather than failure.
func SoftNotFound[T any]() Handler[T] {
	return Ignore[T]
}

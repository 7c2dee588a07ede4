package constants

import "errors"

// Specification errors.
var (
	ErrUnsupportedDocument  = errors.New("document is neither OpenAPI 3 nor Swagger 2")
	ErrMissingPathParameter = errors.New("missing path parameter")
	ErrEmptyDocument        = errors.New("specification document is empty")
)

// Transport errors.
var (
	ErrEmptyURL = errors.New("URL is required")
)

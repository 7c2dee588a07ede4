package eink

import (
	"net/http"
	"time"
)

// Config holds configuration for the e-ink API client.
type Config struct {
	// SpecificationURL locates the OpenAPI/Swagger document describing the server.
	SpecificationURL string `json:"specification_url" yaml:"specification_url" mapstructure:"specification_url"`

	// BaseURL overrides the server URL declared by the specification.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// HTTP settings
	HTTPTimeout  time.Duration `json:"http_timeout"   yaml:"http_timeout"   mapstructure:"http_timeout"`
	RetryMax     int           `json:"retry_max"      yaml:"retry_max"      mapstructure:"retry_max"`
	RetryWaitMin time.Duration `json:"retry_wait_min" yaml:"retry_wait_min" mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `json:"retry_wait_max" yaml:"retry_wait_max" mapstructure:"retry_wait_max"`
	UserAgent    string        `json:"user_agent"     yaml:"user_agent"     mapstructure:"user_agent"`

	// Headers are added to every request.
	Headers map[string]string `json:"headers" yaml:"headers" mapstructure:"headers"`

	// Debug enables request/response logging through Logger.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`

	Logger     Logger       `json:"-" yaml:"-" mapstructure:"-"`
	HTTPClient *http.Client `json:"-" yaml:"-" mapstructure:"-"`

	RequestInterceptors  []RequestInterceptor  `json:"-" yaml:"-" mapstructure:"-"`
	ResponseInterceptors []ResponseInterceptor `json:"-" yaml:"-" mapstructure:"-"`
	ErrorInterceptors    []ErrorInterceptor    `json:"-" yaml:"-" mapstructure:"-"`
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

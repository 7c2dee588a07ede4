package eink

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/eink-client/internal/constants"
	einkhttp "github.com/fivetwenty-io/eink-client/internal/http"
	"github.com/fivetwenty-io/eink-client/internal/openapi"
)

const specificationAccept = "application/json, application/yaml;q=0.9, */*;q=0.8"

// APIClient executes operations documented by a remote e-ink server's
// specification. It is immutable once built and safe for concurrent use.
type APIClient struct {
	transport    *einkhttp.Client
	document     *openapi.Document
	specURL      string
	baseURL      string
	interceptors *InterceptorChain
}

// OperationRequest describes one call by its documented method and path template.
type OperationRequest struct {
	Method string
	// Path is the path template, e.g. /display/{displayId}/image.
	Path       string
	PathParams map[string]string
	Query      url.Values
	Headers    map[string]string
	// Body is JSON encoded. Ignored when RawBody is set.
	Body        interface{}
	RawBody     []byte
	ContentType string
}

// OperationInfo summarizes a documented operation.
type OperationInfo struct {
	ID                  string
	Method              string
	Path                string
	RequestContentTypes []string
}

// NewAPIClient downloads the specification at cfg.SpecificationURL and builds
// an API client from it.
func NewAPIClient(ctx context.Context, cfg *Config) (*APIClient, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	if cfg.SpecificationURL == "" {
		return nil, ErrSpecificationURLRequired
	}

	transport := einkhttp.NewClient("", transportOptions(cfg)...)

	resp, err := transport.GetURL(ctx, cfg.SpecificationURL, map[string]string{"Accept": specificationAccept})
	if err != nil {
		return nil, fmt.Errorf("fetching specification: %w", err)
	}

	if resp.StatusCode != constants.HTTPStatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSpecificationUnavailable, cfg.SpecificationURL, resp.StatusCode)
	}

	document, err := openapi.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing specification %s: %w", cfg.SpecificationURL, err)
	}

	return newAPIClient(document, cfg, transport)
}

// NewAPIClientFromDocument builds an API client from specification bytes.
// cfg.SpecificationURL, when set, is only used to resolve relative server URLs.
func NewAPIClientFromDocument(data []byte, cfg *Config) (*APIClient, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	document, err := openapi.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing specification: %w", err)
	}

	return newAPIClient(document, cfg, einkhttp.NewClient("", transportOptions(cfg)...))
}

func newAPIClient(document *openapi.Document, cfg *Config, transport *einkhttp.Client) (*APIClient, error) {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = document.ServerURL(cfg.SpecificationURL)
	}

	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	chain := NewInterceptorChain()

	if len(cfg.Headers) > 0 {
		chain.AddRequestInterceptor(HeaderInterceptor(cfg.Headers))
	}

	for _, interceptor := range cfg.RequestInterceptors {
		chain.AddRequestInterceptor(interceptor)
	}

	for _, interceptor := range cfg.ResponseInterceptors {
		chain.AddResponseInterceptor(interceptor)
	}

	for _, interceptor := range cfg.ErrorInterceptors {
		chain.AddErrorInterceptor(interceptor)
	}

	return &APIClient{
		transport:    transport,
		document:     document,
		specURL:      cfg.SpecificationURL,
		baseURL:      baseURL,
		interceptors: chain,
	}, nil
}

func transportOptions(cfg *Config) []einkhttp.Option {
	var opts []einkhttp.Option

	if cfg.Logger != nil {
		opts = append(opts, einkhttp.WithLogger(cfg.Logger))
	}

	if cfg.Debug {
		opts = append(opts, einkhttp.WithDebug(true))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, einkhttp.WithUserAgent(cfg.UserAgent))
	}

	if cfg.HTTPClient != nil {
		opts = append(opts, einkhttp.WithHTTPClient(cfg.HTTPClient))
	} else {
		timeout := cfg.HTTPTimeout
		if timeout == 0 {
			timeout = constants.DefaultHTTPTimeout
		}

		opts = append(opts, einkhttp.WithHTTPTimeout(timeout))
	}

	if cfg.RetryMax > 0 {
		waitMin := cfg.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := cfg.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, einkhttp.WithRetryConfig(cfg.RetryMax, waitMin, waitMax))
	}

	return opts
}

// BaseURL returns the URL operations are sent to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// SpecificationURL returns the URL the specification was loaded from.
func (c *APIClient) SpecificationURL() string {
	return c.specURL
}

// Operations lists every documented operation.
func (c *APIClient) Operations() []OperationInfo {
	ops := c.document.Operations()
	out := make([]OperationInfo, 0, len(ops))

	for _, op := range ops {
		out = append(out, OperationInfo{
			ID:                  op.ID,
			Method:              op.Method,
			Path:                op.Path,
			RequestContentTypes: op.RequestContentTypes,
		})
	}

	return out
}

// Documents reports whether the specification describes method on pathTemplate.
func (c *APIClient) Documents(method, pathTemplate string) bool {
	if !validAPIClient(c) {
		return false
	}

	_, ok := c.document.Lookup(method, pathTemplate)

	return ok
}

// RequestContentType returns the first request media type documented for the
// operation matching prefix, or fallback.
func (c *APIClient) RequestContentType(method, pathTemplate, prefix, fallback string) string {
	if !validAPIClient(c) {
		return fallback
	}

	op, ok := c.document.Lookup(method, pathTemplate)
	if !ok {
		return fallback
	}

	for _, contentType := range op.RequestContentTypes {
		if strings.HasPrefix(contentType, prefix) {
			return contentType
		}
	}

	return fallback
}

// Execute performs one documented operation and returns the raw response.
// HTTP error statuses are not errors here; route them with HandleResponse.
func (c *APIClient) Execute(ctx context.Context, opReq *OperationRequest) (*Response, error) {
	if !validAPIClient(c) {
		return nil, ErrInvalidAPIClient
	}

	op, ok := c.document.Lookup(opReq.Method, opReq.Path)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrOperationNotDocumented, strings.ToUpper(opReq.Method), opReq.Path)
	}

	path, err := openapi.ExpandPath(opReq.Path, opReq.PathParams)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}

	req := &Request{
		OperationID: op.ID,
		Method:      op.Method,
		Path:        path,
		Headers:     make(http.Header),
		Metadata:    make(map[string]interface{}),
	}

	for key, value := range opReq.Headers {
		req.Headers.Set(key, value)
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.transport.Do(ctx, &einkhttp.Request{
		Method:      op.Method,
		URL:         c.baseURL + path,
		Query:       opReq.Query,
		Header:      req.Headers,
		Body:        opReq.Body,
		RawBody:     opReq.RawBody,
		ContentType: opReq.ContentType,
	})
	if err != nil {
		c.interceptors.ExecuteErrorInterceptors(ctx, req, err)

		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Headers,
		Body:       httpResp.Body,
		Method:     op.Method,
		Path:       path,
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func validAPIClient(client *APIClient) bool {
	return client != nil && client.document != nil && client.transport != nil
}

package einkclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/eink-client/internal/constants"
	"github.com/fivetwenty-io/eink-client/pkg/eink"
)

// Static errors for err113 compliance.
var (
	ErrEndpointRequired = errors.New("base URL or specification URL is required")
)

// discoveryPaths are probed, in order, under the base URL when no
// specification URL is configured.
var discoveryPaths = []string{
	constants.OpenAPISpecificationPath,
	constants.SwaggerSpecificationPath,
}

// New creates a client for the server described by config. The caller's
// config is not modified.
func New(ctx context.Context, config *eink.Config) (*eink.Client, error) {
	if config == nil {
		return nil, eink.ErrConfigRequired
	}

	if config.BaseURL == "" && config.SpecificationURL == "" {
		return nil, ErrEndpointRequired
	}

	cfg := *config

	if cfg.BaseURL != "" {
		cfg.BaseURL = normalizeURL(cfg.BaseURL)
	}

	var (
		apiClient *eink.APIClient
		err       error
	)

	if cfg.SpecificationURL != "" {
		cfg.SpecificationURL = normalizeURL(cfg.SpecificationURL)

		apiClient, err = eink.NewAPIClient(ctx, &cfg)
	} else {
		apiClient, err = discover(ctx, &cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return eink.NewClient(apiClient)
}

// NewWithURL creates a client for the server at baseURL, discovering its specification.
func NewWithURL(ctx context.Context, baseURL string) (*eink.Client, error) {
	return New(ctx, &eink.Config{BaseURL: baseURL})
}

// NewWithSpecification creates a client from the specification at specURL.
// A non-empty baseURL overrides the server URL the specification declares.
func NewWithSpecification(ctx context.Context, specURL, baseURL string) (*eink.Client, error) {
	return New(ctx, &eink.Config{SpecificationURL: specURL, BaseURL: baseURL})
}

// NewFromConfigFile creates a client from a config file; see LoadConfig.
func NewFromConfigFile(ctx context.Context, path string) (*eink.Client, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}

// discover probes the well-known specification paths under cfg.BaseURL.
func discover(ctx context.Context, cfg *eink.Config) (*eink.APIClient, error) {
	for _, path := range discoveryPaths {
		probe := *cfg
		probe.SpecificationURL = cfg.BaseURL + path

		apiClient, err := probeSpecification(ctx, &probe)
		if err == nil {
			return apiClient, nil
		}

		if !errors.Is(err, eink.ErrSpecificationUnavailable) {
			return nil, fmt.Errorf("discovering specification: %w", err)
		}
	}

	return nil, fmt.Errorf("discovering specification under %s: %w", cfg.BaseURL, eink.ErrSpecificationUnavailable)
}

func probeSpecification(ctx context.Context, cfg *eink.Config) (*eink.APIClient, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	return eink.NewAPIClient(ctx, cfg)
}

// normalizeURL trims trailing slashes and defaults the scheme.
func normalizeURL(raw string) string {
	normalized := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.Contains(normalized, "://") {
		normalized = constants.DefaultScheme + normalized
	}

	return normalized
}

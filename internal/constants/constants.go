package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests issued by helpers.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for specification discovery probes.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are opt-in; these only apply once RetryMax > 0.
const (
	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// HTTP status codes the dispatcher routes on.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusCreated represents a successful create.
	HTTPStatusCreated = 201

	// HTTPStatusNotFound represents an absent resource.
	HTTPStatusNotFound = 404

	// HTTPStatusBadRequest is the lowest client error status.
	HTTPStatusBadRequest = 400
)

// Content types.
const (
	// ContentTypeJSON is the content type for JSON bodies.
	ContentTypeJSON = "application/json"

	// ContentTypeAnyImage is the wildcard image type transports default to.
	ContentTypeAnyImage = "image/*"

	// ContentTypeOctetStream is used when nothing better is known.
	ContentTypeOctetStream = "application/octet-stream"
)

// Specification discovery.
const (
	// OpenAPISpecificationPath is probed first when no specification URL is given.
	OpenAPISpecificationPath = "/openapi.json"

	// SwaggerSpecificationPath is probed when the OpenAPI path is absent.
	SwaggerSpecificationPath = "/swagger.json"

	// DefaultScheme is prepended to base URLs that carry none.
	DefaultScheme = "http://"
)

// Remote e-ink API path templates.
const (
	APIPathDisplays                 = "/display"
	APIPathDisplay                  = "/display/{displayId}"
	APIPathDisplayCurrentImage      = "/display/{displayId}/current-image"
	APIPathDisplaySleep             = "/display/{displayId}/sleep"
	APIPathDisplayImages            = "/display/{displayId}/image"
	APIPathDisplayImage             = "/display/{displayId}/image/{imageId}"
	APIPathDisplayImageData         = "/display/{displayId}/image/{imageId}/data"
	APIPathDisplayImageMetadata     = "/display/{displayId}/image/{imageId}/metadata"
	APIPathDisplayImageTransformers = "/display/{displayId}/image-transformer"
	APIPathDisplayImageTransformer  = "/display/{displayId}/image-transformer/{imageTransformerId}"
)

// Path parameter names used by the templates above.
const (
	ParamDisplayID          = "displayId"
	ParamImageID            = "imageId"
	ParamImageTransformerID = "imageTransformerId"
)

// Multipart form fields used when adding images.
const (
	FormFieldData     = "data"
	FormFieldMetadata = "metadata"
	FormFieldID       = "id"

	// DefaultImageFilename is used when an upload carries no file name.
	DefaultImageFilename = "image"
)

// Configuration.
const (
	// ConfigDirName is the directory under $HOME holding the SDK config file.
	ConfigDirName = ".eink"

	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"

	// EnvPrefix prefixes the environment overrides read by LoadConfig.
	EnvPrefix = "EINK"

	// DefaultUserAgent is sent unless the config overrides it.
	DefaultUserAgent = "eink-client-go"
)

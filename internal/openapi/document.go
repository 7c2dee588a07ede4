// Package openapi indexes the operations of an OpenAPI 3 or Swagger 2
// document so the SDK can validate and route calls against it.
package openapi

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/eink-client/internal/constants"
)

var pathParameterPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// methods lists the path item keys that hold operations, in output order.
var methods = []string{"get", "put", "post", "delete", "patch", "head", "options", "trace"}

// Info is the document's info block.
type Info struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// Server is an OpenAPI 3 server entry.
type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Parameter is an operation or path-level parameter.
type Parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
}

// Operation is a single documented method on a path.
type Operation struct {
	ID     string
	Method string
	// Path is the template exactly as documented, e.g. /display/{displayId}.
	Path       string
	Summary    string
	Tags       []string
	Parameters []Parameter
	// RequestContentTypes lists the media types the request body accepts.
	RequestContentTypes []string
	// ResponseStatuses lists the documented response keys ("200", "404", "default").
	ResponseStatuses []string
}

// Document is a parsed and indexed specification.
type Document struct {
	Version  string
	Info     Info
	Servers  []Server
	Host     string
	BasePath string
	Schemes  []string

	operations []*Operation
	byKey      map[string]*Operation
	byID       map[string]*Operation
}

type rawDocument struct {
	OpenAPI  string             `yaml:"openapi"`
	Swagger  string             `yaml:"swagger"`
	Info     Info               `yaml:"info"`
	Servers  []Server           `yaml:"servers"`
	Host     string             `yaml:"host"`
	BasePath string             `yaml:"basePath"`
	Schemes  []string           `yaml:"schemes"`
	Consumes []string           `yaml:"consumes"`
	Paths    map[string]rawPath `yaml:"paths"`
}

type rawPath struct {
	Parameters []Parameter   `yaml:"parameters"`
	Get        *rawOperation `yaml:"get"`
	Put        *rawOperation `yaml:"put"`
	Post       *rawOperation `yaml:"post"`
	Delete     *rawOperation `yaml:"delete"`
	Patch      *rawOperation `yaml:"patch"`
	Head       *rawOperation `yaml:"head"`
	Options    *rawOperation `yaml:"options"`
	Trace      *rawOperation `yaml:"trace"`
}

type rawOperation struct {
	OperationID string               `yaml:"operationId"`
	Summary     string               `yaml:"summary"`
	Tags        []string             `yaml:"tags"`
	Parameters  []Parameter          `yaml:"parameters"`
	Consumes    []string             `yaml:"consumes"`
	RequestBody *rawRequestBody      `yaml:"requestBody"`
	Responses   map[string]yaml.Node `yaml:"responses"`
}

type rawRequestBody struct {
	Content map[string]yaml.Node `yaml:"content"`
}

func (p rawPath) operation(method string) *rawOperation {
	switch method {
	case "get":
		return p.Get
	case "put":
		return p.Put
	case "post":
		return p.Post
	case "delete":
		return p.Delete
	case "patch":
		return p.Patch
	case "head":
		return p.Head
	case "options":
		return p.Options
	case "trace":
		return p.Trace
	}

	return nil
}

// Parse decodes a JSON or YAML specification document.
func Parse(data []byte) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, constants.ErrEmptyDocument
	}

	var raw rawDocument

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("decoding specification: %w", err)
	}

	doc := &Document{
		Info:     raw.Info,
		Servers:  raw.Servers,
		Host:     raw.Host,
		BasePath: raw.BasePath,
		Schemes:  raw.Schemes,
		byKey:    make(map[string]*Operation),
		byID:     make(map[string]*Operation),
	}

	switch {
	case raw.OpenAPI != "":
		doc.Version = raw.OpenAPI
	case raw.Swagger != "":
		doc.Version = raw.Swagger
	default:
		return nil, constants.ErrUnsupportedDocument
	}

	paths := make([]string, 0, len(raw.Paths))
	for path := range raw.Paths {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	for _, path := range paths {
		item := raw.Paths[path]

		for _, method := range methods {
			rawOp := item.operation(method)
			if rawOp == nil {
				continue
			}

			op := buildOperation(strings.ToUpper(method), path, item.Parameters, rawOp, raw.Consumes)

			doc.operations = append(doc.operations, op)
			doc.byKey[operationKey(op.Method, path)] = op

			if op.ID != "" {
				doc.byID[op.ID] = op
			}
		}
	}

	return doc, nil
}

func buildOperation(method, path string, pathParams []Parameter, raw *rawOperation, globalConsumes []string) *Operation {
	op := &Operation{
		ID:      raw.OperationID,
		Method:  method,
		Path:    path,
		Summary: raw.Summary,
		Tags:    raw.Tags,
	}

	// Operation-level parameters override path-level ones with the same name and location.
	seen := make(map[string]bool)

	for _, param := range raw.Parameters {
		seen[param.In+":"+param.Name] = true
		op.Parameters = append(op.Parameters, param)
	}

	for _, param := range pathParams {
		if !seen[param.In+":"+param.Name] {
			op.Parameters = append(op.Parameters, param)
		}
	}

	switch {
	case raw.RequestBody != nil:
		for contentType := range raw.RequestBody.Content {
			op.RequestContentTypes = append(op.RequestContentTypes, contentType)
		}

		sort.Strings(op.RequestContentTypes)
	case len(raw.Consumes) > 0:
		op.RequestContentTypes = raw.Consumes
	default:
		op.RequestContentTypes = globalConsumes
	}

	for status := range raw.Responses {
		op.ResponseStatuses = append(op.ResponseStatuses, status)
	}

	sort.Strings(op.ResponseStatuses)

	return op
}

// Operations returns every documented operation, ordered by path then method.
func (d *Document) Operations() []*Operation {
	out := make([]*Operation, len(d.operations))
	copy(out, d.operations)

	return out
}

// Lookup finds an operation by HTTP method and path template. Parameter names
// inside braces are not significant.
func (d *Document) Lookup(method, pathTemplate string) (*Operation, bool) {
	op, ok := d.byKey[operationKey(strings.ToUpper(method), pathTemplate)]

	return op, ok
}

// OperationByID finds an operation by its operationId.
func (d *Document) OperationByID(id string) (*Operation, bool) {
	op, ok := d.byID[id]

	return op, ok
}

// IsSwagger reports whether the document is a Swagger 2 document.
func (d *Document) IsSwagger() bool {
	return strings.HasPrefix(d.Version, "2")
}

// ServerURL returns the base URL operations should be sent to, derived from
// the document and the URL it was loaded from.
func (d *Document) ServerURL(specURL string) string {
	base, _ := url.Parse(specURL)

	if d.IsSwagger() {
		return strings.TrimSuffix(d.swaggerServerURL(base), "/")
	}

	for _, server := range d.Servers {
		if server.URL == "" || strings.Contains(server.URL, "{") {
			continue
		}

		ref, err := url.Parse(server.URL)
		if err != nil {
			continue
		}

		if !ref.IsAbs() {
			if origin(base) == "" {
				continue
			}

			ref = base.ResolveReference(ref)
		}

		return strings.TrimSuffix(ref.String(), "/")
	}

	return origin(base)
}

func (d *Document) swaggerServerURL(base *url.URL) string {
	if d.Host == "" {
		if origin(base) == "" {
			return ""
		}

		return origin(base) + d.BasePath
	}

	scheme := "http"

	switch {
	case len(d.Schemes) > 0:
		scheme = d.Schemes[0]
	case base != nil && base.Scheme != "":
		scheme = base.Scheme
	}

	return scheme + "://" + d.Host + d.BasePath
}

func origin(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

// ExpandPath substitutes {name} segments of a path template with escaped values.
func ExpandPath(template string, params map[string]string) (string, error) {
	var missing []string

	expanded := pathParameterPattern.ReplaceAllStringFunc(template, func(segment string) string {
		name := segment[1 : len(segment)-1]

		value, ok := params[name]
		if !ok || value == "" {
			missing = append(missing, name)

			return segment
		}

		return url.PathEscape(value)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s in %s", constants.ErrMissingPathParameter, strings.Join(missing, ", "), template)
	}

	return expanded, nil
}

func operationKey(method, pathTemplate string) string {
	return method + " " + pathParameterPattern.ReplaceAllString(pathTemplate, "{}")
}

package eink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/eink-client/pkg/eink"
)

const specificationPath = "/openapi.yml"

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

type fakeImage struct {
	data        []byte
	contentType string
	metadata    map[string]interface{}
}

type fakeDisplay struct {
	images       map[string]*fakeImage
	current      string
	asleep       bool
	transformers []*eink.ImageTransformerDetails
}

// fakeServer is an in-memory remote e-ink server.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	displays map[string]*fakeDisplay
	requests []recordedRequest
	nextID   int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	spec, err := os.ReadFile("testdata/openapi.yml")
	require.NoError(t, err)

	fake := &fakeServer{displays: make(map[string]*fakeDisplay)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+specificationPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec)
	})
	mux.HandleFunc("GET /display", fake.listDisplays)
	mux.HandleFunc("GET /display/{displayId}", fake.withDisplay(fake.getDisplay))
	mux.HandleFunc("GET /display/{displayId}/current-image", fake.withDisplay(fake.getCurrentImage))
	mux.HandleFunc("PUT /display/{displayId}/current-image", fake.withDisplay(fake.setCurrentImage))
	mux.HandleFunc("DELETE /display/{displayId}/current-image", fake.withDisplay(fake.clearCurrentImage))
	mux.HandleFunc("GET /display/{displayId}/sleep", fake.withDisplay(fake.getSleep))
	mux.HandleFunc("PUT /display/{displayId}/sleep", fake.withDisplay(fake.setSleep))
	mux.HandleFunc("GET /display/{displayId}/image", fake.withDisplay(fake.listImages))
	mux.HandleFunc("POST /display/{displayId}/image", fake.withDisplay(fake.addImage))
	mux.HandleFunc("GET /display/{displayId}/image/{imageId}", fake.withImage(fake.getImage))
	mux.HandleFunc("DELETE /display/{displayId}/image/{imageId}", fake.withDisplay(fake.deleteImage))
	mux.HandleFunc("GET /display/{displayId}/image/{imageId}/data", fake.withImage(fake.getImageData))
	mux.HandleFunc("PUT /display/{displayId}/image/{imageId}/data", fake.withImage(fake.setImageData))
	mux.HandleFunc("GET /display/{displayId}/image/{imageId}/metadata", fake.withImage(fake.getImageMetadata))
	mux.HandleFunc("PUT /display/{displayId}/image/{imageId}/metadata", fake.withImage(fake.setImageMetadata))
	mux.HandleFunc("GET /display/{displayId}/image-transformer", fake.withDisplay(fake.listTransformers))
	mux.HandleFunc("GET /display/{displayId}/image-transformer/{imageTransformerId}", fake.withDisplay(fake.getTransformer))
	mux.HandleFunc("PUT /display/{displayId}/image-transformer/{imageTransformerId}", fake.withDisplay(fake.updateTransformer))

	fake.Server = httptest.NewServer(fake.record(mux))
	t.Cleanup(fake.Close)

	return fake
}

// addDisplay seeds a display with the given image ids.
func (f *fakeServer) addDisplay(displayID string, imageIDs ...string) *fakeDisplay {
	f.mu.Lock()
	defer f.mu.Unlock()

	display := &fakeDisplay{images: make(map[string]*fakeImage)}
	for _, imageID := range imageIDs {
		display.images[imageID] = &fakeImage{
			data:        []byte("image-" + imageID),
			contentType: "image/png",
			metadata:    map[string]interface{}{},
		}
	}

	f.displays[displayID] = display

	return display
}

func (f *fakeServer) display(displayID string) *fakeDisplay {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.displays[displayID]
}

func (f *fakeServer) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]recordedRequest, 0, len(f.requests))

	for _, req := range f.requests {
		if req.Path != specificationPath {
			out = append(out, req)
		}
	}

	return out
}

func (f *fakeServer) lastRequest(t *testing.T) recordedRequest {
	t.Helper()

	requests := f.recorded()
	require.NotEmpty(t, requests)

	return requests[len(requests)-1]
}

func (f *fakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		f.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

type displayHandler func(w http.ResponseWriter, r *http.Request, display *fakeDisplay)

type imageHandler func(w http.ResponseWriter, r *http.Request, image *fakeImage)

func (f *fakeServer) withDisplay(handler displayHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		display, ok := f.displays[r.PathValue("displayId")]
		if !ok {
			writeProblem(w, http.StatusNotFound, "Not Found", "display does not exist")

			return
		}

		handler(w, r, display)
	}
}

func (f *fakeServer) withImage(handler imageHandler) http.HandlerFunc {
	return f.withDisplay(func(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
		image, ok := display.images[r.PathValue("imageId")]
		if !ok {
			writeProblem(w, http.StatusNotFound, "Not Found", "image does not exist")

			return
		}

		handler(w, r, image)
	})
}

func (f *fakeServer) listDisplays(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]map[string]string, 0, len(f.displays))
	for _, id := range sortedKeys(f.displays) {
		items = append(items, map[string]string{"id": id})
	}

	writeJSON(w, http.StatusOK, items)
}

func (f *fakeServer) getDisplay(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("displayId")})
}

func (f *fakeServer) getCurrentImage(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	if display.current == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "no current image")

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": display.current})
}

func (f *fakeServer) setCurrentImage(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	var body struct {
		ID string `json:"id"`
	}

	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())

		return
	}

	if _, ok := display.images[body.ID]; !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "image does not exist")

		return
	}

	display.current = body.ID
	writeJSON(w, http.StatusOK, map[string]string{"id": body.ID})
}

func (f *fakeServer) clearCurrentImage(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	display.current = ""
	w.WriteHeader(http.StatusOK)
}

func (f *fakeServer) getSleep(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	writeJSON(w, http.StatusOK, display.asleep)
}

func (f *fakeServer) setSleep(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	var asleep bool

	err := json.NewDecoder(r.Body).Decode(&asleep)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())

		return
	}

	display.asleep = asleep
	writeJSON(w, http.StatusOK, asleep)
}

func (f *fakeServer) listImages(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	writeJSON(w, http.StatusOK, sortedKeys(display.images))
}

func (f *fakeServer) addImage(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	err := r.ParseMultipartForm(1 << 20)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())

		return
	}

	file, header, err := r.FormFile("data")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())

		return
	}

	data, _ := io.ReadAll(file)
	_ = file.Close()

	metadata := map[string]interface{}{}
	if raw := r.FormValue("metadata"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &metadata)
	}

	imageID := r.FormValue("id")
	if imageID == "" {
		f.nextID++
		imageID = fmt.Sprintf("img-%d", f.nextID)
	}

	display.images[imageID] = &fakeImage{
		data:        data,
		contentType: header.Header.Get("Content-Type"),
		metadata:    metadata,
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": imageID})
}

func (f *fakeServer) getImage(w http.ResponseWriter, r *http.Request, image *fakeImage) {
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("imageId")})
}

func (f *fakeServer) deleteImage(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	imageID := r.PathValue("imageId")
	if _, ok := display.images[imageID]; !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "image does not exist")

		return
	}

	delete(display.images, imageID)

	if display.current == imageID {
		display.current = ""
	}

	w.WriteHeader(http.StatusOK)
}

func (f *fakeServer) getImageData(w http.ResponseWriter, r *http.Request, image *fakeImage) {
	w.Header().Set("Content-Type", image.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image.data)
}

func (f *fakeServer) setImageData(w http.ResponseWriter, r *http.Request, image *fakeImage) {
	data, _ := io.ReadAll(r.Body)
	image.data = data
	image.contentType = r.Header.Get("Content-Type")
	w.WriteHeader(http.StatusOK)
}

func (f *fakeServer) getImageMetadata(w http.ResponseWriter, r *http.Request, image *fakeImage) {
	writeJSON(w, http.StatusOK, image.metadata)
}

func (f *fakeServer) setImageMetadata(w http.ResponseWriter, r *http.Request, image *fakeImage) {
	metadata := map[string]interface{}{}

	err := json.NewDecoder(r.Body).Decode(&metadata)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())

		return
	}

	image.metadata = metadata
	writeJSON(w, http.StatusOK, metadata)
}

func (f *fakeServer) listTransformers(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"transformers": display.transformers})
}

func (f *fakeServer) getTransformer(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	for _, transformer := range display.transformers {
		if transformer.ID == r.PathValue("imageTransformerId") {
			writeJSON(w, http.StatusOK, transformer)

			return
		}
	}

	writeProblem(w, http.StatusNotFound, "Not Found", "image transformer does not exist")
}

func (f *fakeServer) updateTransformer(w http.ResponseWriter, r *http.Request, display *fakeDisplay) {
	var details eink.ImageTransformerDetails

	err := json.NewDecoder(r.Body).Decode(&details)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())

		return
	}

	for i, transformer := range display.transformers {
		if transformer.ID == r.PathValue("imageTransformerId") {
			display.transformers[i] = &details
			writeJSON(w, http.StatusOK, details)

			return
		}
	}

	writeProblem(w, http.StatusNotFound, "Not Found", "image transformer does not exist")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(eink.Problem{Title: title, Status: status, Detail: detail})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// newTestAPIClient builds an API client against server's specification.
func newTestAPIClient(t *testing.T, server *fakeServer, opts ...func(*eink.Config)) *eink.APIClient {
	t.Helper()

	cfg := &eink.Config{SpecificationURL: server.URL + specificationPath}
	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := eink.NewAPIClient(context.Background(), cfg)
	require.NoError(t, err)

	return apiClient
}

// newTestClient builds a client root against server.
func newTestClient(t *testing.T, server *fakeServer) *eink.Client {
	t.Helper()

	client, err := eink.NewClient(newTestAPIClient(t, server))
	require.NoError(t, err)

	return client
}

// newStaticServer serves the specification plus a single fixed response for
// every other request.
func newStaticServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	spec, err := os.ReadFile("testdata/openapi.yml")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == specificationPath {
			_, _ = w.Write(spec)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server
}

func newStaticAPIClient(t *testing.T, status int, body string) *eink.APIClient {
	t.Helper()

	server := newStaticServer(t, status, body)

	apiClient, err := eink.NewAPIClient(context.Background(), &eink.Config{
		SpecificationURL: server.URL + specificationPath,
	})
	require.NoError(t, err)

	return apiClient
}

package eink_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/eink-client/pkg/eink"
)

var errStop = errors.New("stop")

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, level+":"+msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{}) { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.log("error", msg) }

func (l *recordingLogger) logged() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.entries...)
}

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	chain := eink.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *eink.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *eink.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})
	chain.AddResponseInterceptor(func(ctx context.Context, req *eink.Request, resp *eink.Response) error {
		executionOrder = append(executionOrder, "response")

		return nil
	})

	req := &eink.Request{Method: http.MethodGet, Path: "/display"}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &eink.Response{StatusCode: http.StatusOK}))
	assert.Equal(t, []string{"first", "second", "response"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := eink.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(context.Context, *eink.Request) error { return errStop })
	chain.AddRequestInterceptor(func(context.Context, *eink.Request) error {
		called = true

		return nil
	})
	chain.AddResponseInterceptor(func(context.Context, *eink.Request, *eink.Response) error { return errStop })

	err := chain.ExecuteRequestInterceptors(context.Background(), &eink.Request{})
	require.ErrorIs(t, err, errStop)
	assert.Contains(t, err.Error(), "request interceptor failed")
	assert.False(t, called)

	err = chain.ExecuteResponseInterceptors(context.Background(), &eink.Request{}, &eink.Response{})
	require.ErrorIs(t, err, errStop)
	assert.Contains(t, err.Error(), "response interceptor failed")
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := eink.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	})

	req := &eink.Request{Method: http.MethodGet, Path: "/display"}

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	ctx := context.Background()
	req := &eink.Request{OperationID: "listDisplays", Method: http.MethodGet, Path: "/display"}

	require.NoError(t, eink.LoggingInterceptor(logger)(ctx, req))
	require.NoError(t, eink.LoggingResponseInterceptor(logger)(ctx, req, &eink.Response{StatusCode: http.StatusOK}))
	require.NoError(t, eink.LoggingResponseInterceptor(logger)(ctx, req, &eink.Response{StatusCode: http.StatusNotFound}))

	assert.Equal(t, []string{
		"debug:API Request",
		"debug:API Response",
		"error:API Response Error",
	}, logger.logged())
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := eink.NewMetricsCollector()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		changes int
	)

	collector.SetOnChange(func(endpoint string, metrics eink.Metrics) {
		mu.Lock()
		defer mu.Unlock()

		changes++
	})

	requestInterceptor := eink.MetricsRequestInterceptor(collector)
	responseInterceptor := eink.MetricsResponseInterceptor(collector)

	var wg sync.WaitGroup

	for i := range 10 {
		status := http.StatusOK
		if i%5 == 0 {
			status = http.StatusInternalServerError
		}

		wg.Add(1)

		go func(status int) {
			defer wg.Done()

			req := &eink.Request{Method: http.MethodGet, Path: "/display"}

			assert.NoError(t, requestInterceptor(ctx, req))
			time.Sleep(time.Millisecond)
			assert.NoError(t, responseInterceptor(ctx, req, &eink.Response{StatusCode: status}))
		}(status)
	}

	wg.Wait()

	metrics := collector.GetMetrics("GET /display")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(10), metrics.TotalRequests)
	assert.Equal(t, int64(2), metrics.TotalErrors)
	assert.Positive(t, metrics.AverageLatency)
	assert.False(t, metrics.LastRequestTime.IsZero())

	mu.Lock()
	assert.Equal(t, 10, changes)
	mu.Unlock()

	assert.Nil(t, collector.GetMetrics("GET /missing"))
}

func TestMetricsCollector_WiredThroughConfig(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	server.addDisplay("123")

	collector := eink.NewMetricsCollector()
	logger := &recordingLogger{}

	apiClient := newTestAPIClient(t, server, func(cfg *eink.Config) {
		cfg.RequestInterceptors = []eink.RequestInterceptor{
			eink.MetricsRequestInterceptor(collector),
			eink.LoggingInterceptor(logger),
		}
		cfg.ResponseInterceptors = []eink.ResponseInterceptor{
			eink.MetricsResponseInterceptor(collector),
			eink.LoggingResponseInterceptor(logger),
		}
	})

	client, err := eink.NewClient(apiClient)
	require.NoError(t, err)

	_, err = client.Displays().Get(context.Background(), "123")
	require.NoError(t, err)

	_, err = client.Displays().Get(context.Background(), "456")
	require.NoError(t, err)

	found := collector.GetMetrics("GET /display/123")
	require.NotNil(t, found)
	assert.Equal(t, int64(1), found.TotalRequests)
	assert.Zero(t, found.TotalErrors)

	missing := collector.GetMetrics("GET /display/456")
	require.NotNil(t, missing)
	assert.Equal(t, int64(1), missing.TotalErrors)

	assert.Contains(t, logger.logged(), "error:API Response Error")
}

func TestMetricsCollector_CountsTransportFailures(t *testing.T) {
	t.Parallel()

	spec, err := os.ReadFile("testdata/openapi.yml")
	require.NoError(t, err)

	closed := httptest.NewServer(http.NotFoundHandler())
	baseURL := closed.URL
	closed.Close()

	collector := eink.NewMetricsCollector()

	var failures []error

	apiClient, err := eink.NewAPIClientFromDocument(spec, &eink.Config{
		BaseURL:             baseURL,
		RequestInterceptors: []eink.RequestInterceptor{eink.MetricsRequestInterceptor(collector)},
		ResponseInterceptors: []eink.ResponseInterceptor{
			eink.MetricsResponseInterceptor(collector),
		},
		ErrorInterceptors: []eink.ErrorInterceptor{
			eink.MetricsErrorInterceptor(collector),
			func(_ context.Context, _ *eink.Request, err error) {
				failures = append(failures, err)
			},
		},
	})
	require.NoError(t, err)

	client, err := eink.NewClient(apiClient)
	require.NoError(t, err)

	_, err = client.Displays().List(context.Background())
	require.Error(t, err)
	require.Len(t, failures, 1)

	metrics := collector.GetMetrics("GET /display")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ogerrors "github.com/turtacn/OpinionGraph/pkg/errors"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	mu      sync.Mutex
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.mu.Lock()
	l.lastMsg = fmt.Sprintf(format, args...)
	l.mu.Unlock()
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"code": code, "message": msg},
	})
}

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, "opiniongraph-go-sdk/"+Version, c.userAgent)
	assert.Equal(t, 3, c.retryMax)
	assert.Empty(t, c.token)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "ftp://example.com", "example.com", "://bad"} {
		t.Run(base, func(t *testing.T) {
			_, err := NewClient(base)
			require.Error(t, err)
			assert.Equal(t, ogerrors.ErrCodeInvalidConfig, ogerrors.GetCode(err))
		})
	}
}

// ---------------------------------------------------------------------------
// Request Tests
// ---------------------------------------------------------------------------

func TestDo_SetsHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}, WithToken("secret"), WithUserAgent("reviews-bot/1.0"))

	require.NoError(t, c.post(context.Background(), "api/v1/graphs", map[string]string{"a": "b"}, nil))
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "reviews-bot/1.0", got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestDo_NoAuthorizationWithoutToken(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.get(context.Background(), "/healthz", nil))
	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("Content-Type"))
}

func TestDo_ParsesErrorBody(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusUnprocessableEntity, "OPN_TAGGING", "token lacks a tag")
	})

	err := c.post(context.Background(), "/api/v1/extractions", struct{}{}, nil)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "OPN_TAGGING", apiErr.Code)
	assert.Equal(t, "token lacks a tag", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.True(t, apiErr.IsBadRequest())
	assert.False(t, apiErr.IsServerError())
	assert.Contains(t, apiErr.Error(), "OPN_TAGGING")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404 page not found"))
	})

	err := c.get(context.Background(), "/nowhere", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "404 page not found", apiErr.Message)
	assert.Empty(t, apiErr.Code)
}

func TestDo_EmptyErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusText(http.StatusConflict), apiErr.Message)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeError(w, http.StatusBadGateway, "OPN_GRAPH_STORE", "graph store unavailable")
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	var out map[string]string
	require.NoError(t, c.get(context.Background(), "/healthz", &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_RetriesExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "down")
	}, WithRetryMax(2))

	err := c.get(context.Background(), "/readyz", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_RetryResendsBody(t *testing.T) {
	var calls int32
	var bodies []string
	var mu sync.Mutex
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.post(context.Background(), "/api/v1/jobs", map[string]string{"job_id": "j1"}, nil))
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
	assert.JSONEq(t, `{"job_id":"j1"}`, bodies[1])
}

func TestDo_RateLimitedRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.get(context.Background(), "/healthz", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_RateLimitedWithoutRetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := c.get(context.Background(), "/healthz", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
}

func TestDo_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.get(ctx, "/healthz", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_NetworkErrorRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger := &testLogger{}
	c, err := NewClient(url, WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond), WithLogger(logger))
	require.NoError(t, err)

	err = c.get(context.Background(), "/healthz", nil)
	require.Error(t, err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&logger.count), int32(2))
}

func TestDo_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	var out map[string]string
	err := c.get(context.Background(), "/healthz", &out)
	require.Error(t, err)
	assert.Equal(t, ogerrors.ErrCodeSerialization, ogerrors.GetCode(err))
}

func TestDo_UnmarshalableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	})

	err := c.post(context.Background(), "/api/v1/extractions", map[string]interface{}{"bad": make(chan int)}, nil)
	require.Error(t, err)
	assert.Equal(t, ogerrors.ErrCodeSerialization, ogerrors.GetCode(err))
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b2 := c.calculateBackoff(2)
	assert.GreaterOrEqual(t, b2, 200*time.Millisecond)
	assert.Less(t, b2, 250*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

//Personal.AI order the ending

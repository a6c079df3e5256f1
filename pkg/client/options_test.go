package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Applied(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	logger := &testLogger{}

	c, err := NewClient("https://og.example.com",
		WithHTTPClient(hc),
		WithLogger(logger),
		WithToken("t0k"),
		WithRetryMax(0),
		WithRetryWait(10*time.Millisecond, 20*time.Millisecond),
		WithUserAgent("custom/2"),
	)
	require.NoError(t, err)

	assert.Same(t, hc, c.httpClient)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, "t0k", c.token)
	assert.Equal(t, 0, c.retryMax)
	assert.Equal(t, 10*time.Millisecond, c.retryWaitMin)
	assert.Equal(t, 20*time.Millisecond, c.retryWaitMax)
	assert.Equal(t, "custom/2", c.userAgent)
}

func TestOptions_InvalidValuesIgnored(t *testing.T) {
	c, err := NewClient("http://localhost:8080",
		WithHTTPClient(nil),
		WithLogger(nil),
		WithRetryMax(-1),
		WithUserAgent(""),
	)
	require.NoError(t, err)

	assert.NotNil(t, c.httpClient)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.IsType(t, noopLogger{}, c.logger)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, "opiniongraph-go-sdk/"+Version, c.userAgent)
}

func TestWithRetryWait(t *testing.T) {
	tests := []struct {
		name    string
		min     time.Duration
		max     time.Duration
		wantMin time.Duration
		wantMax time.Duration
	}{
		{"both set", time.Second, 2 * time.Second, time.Second, 2 * time.Second},
		{"max below min keeps default max", time.Second, time.Millisecond, time.Second, 5 * time.Second},
		{"non-positive min ignored", 0, time.Minute, 500 * time.Millisecond, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient("http://localhost", WithRetryWait(tt.min, tt.max))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, c.retryWaitMin)
			assert.Equal(t, tt.wantMax, c.retryWaitMax)
		})
	}
}

//Personal.AI order the ending

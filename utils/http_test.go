package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"variant-image-extractor/internal/types"
)

func TestNewHTTPClient(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()

	client := NewHTTPClient(config, logger)

	assert.NotNil(t, client)
	assert.Equal(t, config, client.config)
	assert.Equal(t, logger, client.logger)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.limiter)

	client.Close()
}

func TestHTTPClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	body, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestHTTPClient_Fetch_NotFound(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	_, err := client.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	// no automatic retry by default
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPClient_Fetch_Retries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond
	config.MaxRetries = 1
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	body, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPClient_Fetch_ContextCancelled(t *testing.T) {
	config := types.DefaultConfig()
	config.RequestDelay = 100 * time.Millisecond
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx, "http://example.com")

	assert.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

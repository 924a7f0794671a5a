package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return NewClient(Config{
		Timeout:     2 * time.Second,
		Retries:     1,
		BackoffBase: 5 * time.Millisecond,
	})
}

func TestFetchJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price": 42.5}`))
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{})
	require.True(t, res.OK())
	assert.Equal(t, http.StatusOK, res.Status)

	var payload struct {
		Price float64 `json:"price"`
	}
	require.NoError(t, res.Decode(&payload))
	assert.Equal(t, 42.5, payload.Price)
}

func TestFetchJSON_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{Retries: 3})
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Nil(t, res.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must fail immediately")
}

func TestFetchJSON_ServerErrorRetriedThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{})
	require.True(t, res.OK())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchJSON_ZeroOptionsInheritClientRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	// Zero-value Options means "use the client defaults", not "no retries".
	res := testClient().FetchJSON(context.Background(), srv.URL, Options{})
	require.True(t, res.OK())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "client-level retry budget applies")
}

func TestFetchJSON_NoRetriesSentinel(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{Retries: NoRetries})
	assert.False(t, res.OK())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "sentinel disables retrying")
}

func TestFetchJSON_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{Retries: 2})
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "first attempt plus two retries")
}

func TestFetchJSON_TimeoutPerAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{
		Timeout: 20 * time.Millisecond,
		Retries: 1,
	})
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrTimeout)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "timeout is retryable")
}

func TestFetchJSON_PostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res := testClient().FetchJSON(context.Background(), srv.URL, Options{
		Method: http.MethodPost,
		Body:   []byte(`{"q":"sol"}`),
	})
	assert.True(t, res.OK())
}

func TestResult_DecodeMalformedPayload(t *testing.T) {
	res := Result{Data: []byte(`{"broken`), Status: http.StatusOK}

	var out map[string]any
	err := res.Decode(&out)
	assert.Error(t, err, "malformed payload is an expected failure, not a panic")
}

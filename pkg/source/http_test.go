package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	perrors "github.com/pastries/pastries/pkg/errors"
	"github.com/pastries/pastries/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPSource(t *testing.T, url string, opts Options) Source {
	t.Helper()
	src, err := New(url, false, opts)
	require.NoError(t, err)
	return src
}

func TestHTTPSourceFetch(t *testing.T) {
	t.Parallel()

	t.Run("writes body verbatim and creates parents", func(t *testing.T) {
		t.Parallel()

		body := "line one\r\nline two\n\x00binary"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		root := t.TempDir()
		src := newHTTPSource(t, server.URL+"/lib.js", Options{})

		err := src.Fetch(context.Background(), store.New(root), "vendor/js/lib.js")
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(root, "vendor", "js", "lib.js"))
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA.Store(r.Header.Get("User-Agent"))
		}))
		defer server.Close()

		src := newHTTPSource(t, server.URL, Options{UserAgent: "pastries-test"})
		require.NoError(t, src.Fetch(context.Background(), store.New(t.TempDir()), "out"))
		assert.Equal(t, "pastries-test", gotUA.Load())
	})

	t.Run("non-success status is a network error and creates nothing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such file", http.StatusNotFound)
		}))
		defer server.Close()

		root := t.TempDir()
		src := newHTTPSource(t, server.URL, Options{})

		err := src.Fetch(context.Background(), store.New(root), "sub/out.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, perrors.ErrNetwork))
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "no such file")

		_, statErr := os.Stat(filepath.Join(root, "sub"))
		assert.True(t, os.IsNotExist(statErr), "parent directory should not be created")
	})

	t.Run("unreachable host is a network error", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		src := newHTTPSource(t, "http://non-existent-host.invalid/file", Options{
			Client: NewHTTPClient(500 * time.Millisecond),
		})

		err := src.Fetch(context.Background(), store.New(root), "out.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, perrors.ErrNetwork))

		_, statErr := os.Stat(filepath.Join(root, "out.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		src := newHTTPSource(t, server.URL, Options{})
		err := src.Fetch(ctx, store.New(t.TempDir()), "out")
		require.Error(t, err)
	})
}

func TestHTTPSourceRetries(t *testing.T) {
	t.Parallel()

	t.Run("retries server errors until success", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		root := t.TempDir()
		src := newHTTPSource(t, server.URL, Options{RetryDelays: []time.Duration{time.Millisecond, time.Millisecond}})

		require.NoError(t, src.Fetch(context.Background(), store.New(root), "out"))
		assert.Equal(t, int32(3), calls.Load())

		got, err := os.ReadFile(filepath.Join(root, "out"))
		require.NoError(t, err)
		assert.Equal(t, "ok", string(got))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		src := newHTTPSource(t, server.URL, Options{RetryDelays: []time.Duration{time.Millisecond, time.Millisecond}})

		require.Error(t, src.Fetch(context.Background(), store.New(t.TempDir()), "out"))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("gives up after the schedule is exhausted", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		src := newHTTPSource(t, server.URL, Options{RetryDelays: []time.Duration{time.Millisecond}})

		err := src.Fetch(context.Background(), store.New(t.TempDir()), "out")
		require.Error(t, err)
		assert.True(t, errors.Is(err, perrors.ErrNetwork))
		assert.Equal(t, int32(2), calls.Load())
	})
}

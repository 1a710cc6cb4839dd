package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	perrors "github.com/pastries/pastries/pkg/errors"
	"github.com/pastries/pastries/pkg/store"
)

// errorBodyLimit caps how much of a failed response body ends up in the error.
const errorBodyLimit = 4096

// HTTPSource downloads content with a GET request. The target file is only
// created once a successful response has arrived.
type HTTPSource struct {
	URL         string
	Client      *http.Client
	UserAgent   string
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

var _ Source = &HTTPSource{}

func (h *HTTPSource) URI() string {
	return h.URL
}

func (h *HTTPSource) Fetch(ctx context.Context, st store.Store, target string) error {
	return withRetry(ctx, h.RetryDelays, h.Logger, h.URL, func(ctx context.Context) error {
		return h.fetchOnce(ctx, st, target)
	})
}

func (h *HTTPSource) fetchOnce(ctx context.Context, st store.Store, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return perrors.Network("create request", h.URL, err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}

	resp, err := client.Do(req)
	if err != nil {
		return perrors.Network("download", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return perrors.NetworkStatus("download", h.URL, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	r := &classifyReads{r: resp.Body, wrap: func(err error) error {
		return perrors.Network("read body", h.URL, err)
	}}
	return writeTarget(st, target, r, 0)
}

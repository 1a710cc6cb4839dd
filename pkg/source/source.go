package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	perrors "github.com/pastries/pastries/pkg/errors"
	"github.com/pastries/pastries/pkg/store"
)

// DefaultTimeout bounds a single remote request when no client is given.
const DefaultTimeout = 30 * time.Second

type Source interface {
	// Fetch writes the source content verbatim to target inside the store,
	// creating missing parent directories first. Nothing is created at
	// target if the source cannot be opened.
	Fetch(ctx context.Context, st store.Store, target string) error
	// URI returns where the content comes from.
	URI() string
}

// Options configures remote sources. The zero value is usable.
type Options struct {
	// Client performs HTTP requests. Defaults to a client with DefaultTimeout.
	Client *http.Client
	// UserAgent is sent with every HTTP request when non-empty.
	UserAgent string
	// RetryDelays is the backoff schedule for retryable network failures.
	// Its length is the number of retries.
	RetryDelays []time.Duration
	// S3 serves s3:// sources. Defaults to a client built from the
	// ambient AWS configuration on first use.
	S3 S3API
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return NewHTTPClient(DefaultTimeout)
}

// NewHTTPClient returns an http.Client with the given overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// New selects the transport for a dependency: a LocalSource when local is
// set, otherwise a remote source chosen by the URI scheme (http, https, s3).
func New(uri string, local bool, opts Options) (Source, error) {
	if local {
		return &LocalSource{Path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, perrors.Network("parse uri", uri, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return nil, perrors.Network("parse uri", uri, fmt.Errorf("missing host"))
		}
		return &HTTPSource{
			URL:         uri,
			Client:      opts.client(),
			UserAgent:   opts.UserAgent,
			RetryDelays: opts.RetryDelays,
			Logger:      opts.logger(),
		}, nil
	case "s3":
		bucket, key, err := parseS3URI(u)
		if err != nil {
			return nil, perrors.Network("parse uri", uri, err)
		}
		return &S3Source{
			Bucket:      bucket,
			Key:         key,
			Client:      opts.S3,
			RetryDelays: opts.RetryDelays,
			Logger:      opts.logger(),
		}, nil
	case "":
		return nil, perrors.Network("parse uri", uri, fmt.Errorf("missing scheme (use --local for filesystem paths)"))
	default:
		return nil, perrors.Network("parse uri", uri, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
}

// writeTarget streams r into target. Read errors must already be classified
// by the caller (see classifyReads); anything else is an IO failure.
func writeTarget(st store.Store, target string, r io.Reader, perm os.FileMode) error {
	if err := st.EnsureParent(target); err != nil {
		return err
	}

	w, err := st.Create(perm, target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		if perrors.KindOf(err) != nil {
			return err
		}
		return perrors.IO("write", st.Path(target), err)
	}

	if err := w.Close(); err != nil {
		return perrors.IO("close", st.Path(target), err)
	}
	return nil
}

// classifyReads tags every non-EOF read error with wrap.
type classifyReads struct {
	r    io.Reader
	wrap func(error) error
}

func (c *classifyReads) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && err != io.EOF {
		err = c.wrap(err)
	}
	return n, err
}

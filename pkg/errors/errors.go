// Package errors defines the error taxonomy used across pastries. Every
// failure the fetcher, the update engine or the registry store produces is
// an *Error tagged with one of the Kind sentinels below, so callers can
// branch with errors.Is instead of matching strings.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Sentinel kinds for use with errors.Is().
var (
	// ErrNetwork indicates a transport failure or a non-success response.
	ErrNetwork = errors.New("network error")
	// ErrIO indicates a filesystem read, write, copy or delete failure.
	ErrIO = errors.New("io error")
	// ErrSerialization indicates a malformed persisted registry.
	ErrSerialization = errors.New("serialization error")
	// ErrNotFound indicates a named dependency is not tracked.
	ErrNotFound = errors.New("not found")
)

// Error carries the kind of a failure together with the operation and the
// path or URI it happened on.
type Error struct {
	// Kind is one of the sentinels above.
	Kind error
	// Op names the operation that failed (e.g. "copy", "download").
	Op string
	// Path is the filesystem path or URI involved.
	Path string
	// Status is the HTTP status code for network failures, zero otherwise.
	Status int
	// Cause is the underlying error.
	Cause error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
	}
	if e.Path != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(e.Path)
	}
	if e.Status != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.Status)
	}
	if e.Cause != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}
		sb.WriteString(e.Cause.Error())
	}
	if sb.Len() == 0 && e.Kind != nil {
		return e.Kind.Error()
	}
	return sb.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// Network wraps cause as a network failure for uri.
func Network(op, uri string, cause error) *Error {
	return &Error{Kind: ErrNetwork, Op: op, Path: uri, Cause: cause}
}

// NetworkStatus reports a non-success HTTP response for uri.
func NetworkStatus(op, uri string, status int, body string) *Error {
	e := &Error{Kind: ErrNetwork, Op: op, Path: uri, Status: status}
	if body != "" {
		e.Cause = errors.New(body)
	}
	return e
}

// IO wraps cause as a filesystem failure for path. The op and path already
// carried by *fs.PathError and *os.LinkError causes are dropped so they are
// not repeated in the message.
func IO(op, path string, cause error) *Error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Cause: bareCause(cause)}
}

func bareCause(err error) error {
	switch e := err.(type) {
	case *fs.PathError:
		return e.Err
	case *os.LinkError:
		return e.Err
	}
	return err
}

// Serialization wraps cause as a registry decoding or encoding failure.
func Serialization(op, path string, cause error) *Error {
	return &Error{Kind: ErrSerialization, Op: op, Path: path, Cause: cause}
}

// NotFound reports that no dependency called name is tracked.
func NotFound(name string) *Error {
	return &Error{Kind: ErrNotFound, Op: "lookup", Cause: fmt.Errorf("dependency %q does not exist", name)}
}

// KindOf returns the kind of the first *Error in err's chain, or nil.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// IsRetryable reports whether err is a transient network failure worth
// retrying: transport errors and 5xx responses. 4xx responses are not.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.Kind != ErrNetwork {
		return false
	}
	return e.Status == 0 || e.Status >= 500
}

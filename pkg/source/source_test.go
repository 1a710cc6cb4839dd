package source

import (
	"errors"
	"testing"

	perrors "github.com/pastries/pastries/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		uri      string
		local    bool
		wantType string
		wantErr  bool
	}{
		"local path":            {uri: "./shared/LICENSE", local: true, wantType: "local"},
		"local flag wins":       {uri: "https://example.com/a", local: true, wantType: "local"},
		"https":                 {uri: "https://example.com/a.js", wantType: "http"},
		"http uppercase scheme": {uri: "HTTP://example.com/a.js", wantType: "http"},
		"s3":                    {uri: "s3://bucket/key/file.json", wantType: "s3"},
		"s3 without key":        {uri: "s3://bucket", wantErr: true},
		"http without host":     {uri: "https:///path", wantErr: true},
		"no scheme":             {uri: "example.com/file", wantErr: true},
		"unsupported scheme":    {uri: "ftp://example.com/file", wantErr: true},
		"malformed":             {uri: "http://[::1", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			src, err := New(tc.uri, tc.local, Options{})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("New(%q) succeeded, want error", tc.uri)
				}
				if !errors.Is(err, perrors.ErrNetwork) {
					t.Errorf("New(%q) error = %v, want network error", tc.uri, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error: %v", tc.uri, err)
			}

			var got string
			switch src.(type) {
			case *LocalSource:
				got = "local"
			case *HTTPSource:
				got = "http"
			case *S3Source:
				got = "s3"
			}
			if got != tc.wantType {
				t.Errorf("New(%q) type = %s, want %s", tc.uri, got, tc.wantType)
			}
		})
	}
}

func TestS3SourceURI(t *testing.T) {
	src, err := New("s3://bucket/dir/file.txt", false, Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := src.URI(); got != "s3://bucket/dir/file.txt" {
		t.Errorf("URI() = %q", got)
	}
}

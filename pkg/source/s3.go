package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	perrors "github.com/pastries/pastries/pkg/errors"
	"github.com/pastries/pastries/pkg/store"
)

// S3API is the subset of the S3 client used to download objects.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source downloads an object from an s3://bucket/key URI. Credentials and
// region come from the standard AWS environment when no client is set.
type S3Source struct {
	Bucket      string
	Key         string
	Client      S3API
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

var _ Source = &S3Source{}

func (s *S3Source) URI() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

func (s *S3Source) Fetch(ctx context.Context, st store.Store, target string) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}
	return withRetry(ctx, s.RetryDelays, s.Logger, s.URI(), func(ctx context.Context) error {
		return s.fetchOnce(ctx, client, st, target)
	})
}

func (s *S3Source) client(ctx context.Context) (S3API, error) {
	if s.Client != nil {
		return s.Client, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, perrors.Network("load aws config", s.URI(), err)
	}
	s.Client = s3.NewFromConfig(cfg)
	return s.Client, nil
}

func (s *S3Source) fetchOnce(ctx context.Context, client S3API, st store.Store, target string) error {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			return &perrors.Error{Kind: perrors.ErrNetwork, Op: "get object", Path: s.URI(), Status: respErr.HTTPStatusCode(), Cause: err}
		}
		return perrors.Network("get object", s.URI(), err)
	}
	defer out.Body.Close()

	r := &classifyReads{r: out.Body, wrap: func(err error) error {
		return perrors.Network("read object", s.URI(), err)
	}}
	return writeTarget(st, target, r, 0)
}

func parseS3URI(u *url.URL) (bucket, key string, err error) {
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket")
	}
	if key == "" {
		return "", "", fmt.Errorf("missing object key")
	}
	return bucket, key, nil
}

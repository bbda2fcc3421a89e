package sync

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const ndjsonContentType = "application/x-ndjson"

// S3Options configures an S3Destination.
type S3Options struct {
	Bucket string
	Key    string
	Region string

	// Endpoint switches to path-style addressing against a custom host
	// (MinIO and similar).
	Endpoint string

	// Archive additionally keeps one copy per UTC day under
	// archive/YYYY-MM-DD/ next to Key, so older exports survive.
	Archive bool
}

// S3Destination uploads the event export to an S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	opts   S3Options
	now    func() time.Time
}

// NewS3Destination creates an S3 destination from the default AWS
// credential chain.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	if opts.Bucket == "" || opts.Key == "" {
		return nil, fmt.Errorf("s3 destination needs a bucket and key")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, opts: opts, now: time.Now}, nil
}

func (d *S3Destination) Name() string {
	return "s3://" + d.opts.Bucket + "/" + d.opts.Key
}

// archiveKey is the per-day copy of Key for the given time.
func (d *S3Destination) archiveKey(t time.Time) string {
	dir, file := path.Split(d.opts.Key)
	return path.Join(dir, "archive", t.UTC().Format("2006-01-02"), file)
}

// Write replaces the object at Key and, when archiving, the current day's
// copy.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	keys := []string{d.opts.Key}
	if d.opts.Archive {
		keys = append(keys, d.archiveKey(d.now()))
	}
	for _, key := range keys {
		_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(d.opts.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(ndjsonContentType),
		})
		if err != nil {
			return fmt.Errorf("s3 put %s: %w", key, err)
		}
	}
	return nil
}

// Package source lists and opens oracle reward files held in blob storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"gocloud.dev/blob"

	"github.com/withObsrvr/oracle-persist/internal/logging"
)

// Source lists the files of one type in a time window and opens them as
// record streams.
type Source interface {
	List(ctx context.Context, prefix string, after, before time.Time) ([]FileInfo, error)
	Open(ctx context.Context, file FileInfo) (*FrameReader, error)
	Close() error
}

// Config selects and locates the backing store.
type Config struct {
	Mode      string // "s3" | "gcs" | "local" | "mem"
	Bucket    string
	Prefix    string // key prefix inside the bucket
	Region    string
	Endpoint  string // custom S3 endpoint for MinIO, R2 or B2
	LocalPath string
}

// ErrInvalidSourceMode is returned by New for an unknown mode.
var ErrInvalidSourceMode = errors.New("invalid source mode")

// New opens the source cfg.Mode names.
func New(ctx context.Context, cfg Config) (*BucketSource, error) {
	var (
		bucket *blob.Bucket
		err    error
	)
	switch cfg.Mode {
	case "s3":
		bucket, err = openS3Bucket(ctx, cfg.Bucket, cfg.Endpoint, cfg.Region)
	case "gcs":
		bucket, err = openGCSBucket(ctx, cfg.Bucket)
	case "local":
		bucket, err = openLocalBucket(cfg.LocalPath)
	case "mem":
		bucket = openMemBucket()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceMode, cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	return NewBucketSource(bucket, cfg.Prefix), nil
}

// BucketSource is a Source over any gocloud bucket.
type BucketSource struct {
	bucket     *blob.Bucket
	pathPrefix string
	log        *slog.Logger
}

// NewBucketSource wraps bucket. Objects are looked up under pathPrefix,
// which may be empty. The source takes ownership of bucket.
func NewBucketSource(bucket *blob.Bucket, pathPrefix string) *BucketSource {
	return &BucketSource{
		bucket:     bucket,
		pathPrefix: strings.Trim(pathPrefix, "/"),
		log:        logging.Component("source"),
	}
}

// Bucket exposes the underlying bucket.
func (s *BucketSource) Bucket() *blob.Bucket {
	return s.bucket
}

// List returns the files of prefix with after <= timestamp < before, oldest
// first.
func (s *BucketSource) List(ctx context.Context, prefix string, after, before time.Time) ([]FileInfo, error) {
	index := NewFileIndex(prefix)

	listPrefix := prefix + "."
	if s.pathPrefix != "" {
		listPrefix = path.Join(s.pathPrefix, prefix) + "."
	}

	iter := s.bucket.List(&blob.ListOptions{Prefix: listPrefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if obj.IsDir {
			continue
		}
		index.AddFile(obj.Key, obj.Size)
	}

	files := index.Range(after, before)
	s.log.Debug("listed files",
		"prefix", prefix,
		"indexed", index.Count(),
		"in_window", len(files),
	)
	return files, nil
}

// Open returns a record stream for file. The caller closes it.
func (s *BucketSource) Open(ctx context.Context, file FileInfo) (*FrameReader, error) {
	reader, err := s.bucket.NewReader(ctx, file.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", file.Key, err)
	}

	fr, err := NewFrameReader(reader, CompressionOf(file.Key))
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", file.Key, err)
	}
	return fr, nil
}

// Close releases the bucket.
func (s *BucketSource) Close() error {
	if s.bucket != nil {
		return s.bucket.Close()
	}
	return nil
}

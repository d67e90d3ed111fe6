package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source types accepted in configuration.
const (
	SourceHTTP = "http"
	SourceFile = "file"
	SourceS3   = "s3"
)

// maxDownloadBytes bounds a single dataset fetch.
const maxDownloadBytes = 64 << 20

// Source yields the raw CSV bytes of the dataset.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// HTTPSource fetches the CSV by URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns a source using a client with the given timeout.
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: rawURL, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", s.URL, resp.Status)
	}
	return readLimited(resp.Body)
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads the CSV from local disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()
	return readLimited(f)
}

func (s *FileSource) String() string { return "file://" + s.Path }

// ObjectStore is the subset of an S3-compatible client the loader needs.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectSource reads the CSV from a bucket.
type ObjectSource struct {
	Store  ObjectStore
	Bucket string
	Key    string
}

func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.Bucket == "" || s.Key == "" {
		return nil, fmt.Errorf("bucket and key are required")
	}
	data, err := s.Store.GetObject(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("object s3://%s/%s exceeds %d bytes", s.Bucket, s.Key, maxDownloadBytes)
	}
	return data, nil
}

func (s *ObjectSource) String() string { return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key) }

// S3Config configures the MinIO/S3 client.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// S3Client implements ObjectStore with minio-go.
type S3Client struct {
	client *minio.Client
}

// NewS3Client builds a client for an S3-compatible endpoint. The endpoint may
// be a bare host:port or a URL; an https URL turns on TLS.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}

	endpoint, secure := cfg.Endpoint, cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = secure || u.Scheme == "https"
	}

	var creds *credentials.Credentials
	if cfg.AccessKeyID != "" {
		creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &S3Client{client: client}, nil
}

func (c *S3Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return readLimited(obj)
}

// NewSource builds the Source for a configured source type.
func NewSource(sourceType, location string, timeout time.Duration, s3 S3Config, bucket string) (Source, error) {
	switch sourceType {
	case SourceHTTP, "":
		return NewHTTPSource(location, timeout), nil
	case SourceFile:
		return &FileSource{Path: location}, nil
	case SourceS3:
		client, err := NewS3Client(s3)
		if err != nil {
			return nil, err
		}
		return &ObjectSource{Store: client, Bucket: bucket, Key: location}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceType)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading dataset body: %w", err)
	}
	if n > maxDownloadBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", maxDownloadBytes)
	}
	return buf.Bytes(), nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Presigned URL expiries are capped by S3 at seven days.
const (
	DefaultPresignExpiry = 24 * time.Hour
	maxPresignExpiry     = 7 * 24 * time.Hour
)

// ArtifactStore persists diagnostic artifacts (screenshots, DOM and
// accessibility snapshots, failure records) beyond the local run directory.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// MinIOConfig contains MinIO connection settings
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string

	// KeyPrefix is prepended to every artifact key, typically the run ID,
	// so artifacts from concurrent runs never collide.
	KeyPrefix string
}

// MinIOStore uploads artifacts to a MinIO (or any S3-compatible) bucket
type MinIOStore struct {
	client     *minio.Client
	bucketName string
	keyPrefix  string
}

// NewMinIOStore creates a store against the configured endpoint
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	return &MinIOStore{
		client:     client,
		bucketName: cfg.BucketName,
		keyPrefix:  cfg.KeyPrefix,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		return fmt.Errorf("checking bucket existence: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
	}

	return nil
}

// Put uploads one artifact and returns its S3-style URI. The content type
// follows the key's extension so bucket browsers render screenshots and
// snapshots inline.
func (m *MinIOStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if m.keyPrefix != "" {
		key = path.Join(m.keyPrefix, key)
	}

	_, err := m.client.PutObject(ctx, m.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeFor(key),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", m.bucketName, key), nil
}

// ListRunArtifacts lists artifact keys recorded under a run prefix
func (m *MinIOStore) ListRunArtifacts(ctx context.Context, runID string) ([]string, error) {
	var keys []string

	objectCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    runID,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, object.Err
		}
		keys = append(keys, object.Key)
	}

	return keys, nil
}

// PresignedURL returns a presigned download URL for an artifact. Non-positive
// expiries fall back to the default; expiries past the S3 limit are capped.
func (m *MinIOStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	if expiry > maxPresignExpiry {
		expiry = maxPresignExpiry
	}
	url, err := m.client.PresignedGetObject(ctx, m.bucketName, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("generating presigned URL: %w", err)
	}
	return url.String(), nil
}

// ArtifactLink pairs an uploaded artifact key with a shareable URL
type ArtifactLink struct {
	Key string
	URL string
}

// RunArtifactLinks lists everything uploaded under a run prefix and presigns
// a download link per artifact, for handing a failed run to someone without
// bucket credentials.
func (m *MinIOStore) RunArtifactLinks(ctx context.Context, runID string, expiry time.Duration) ([]ArtifactLink, error) {
	keys, err := m.ListRunArtifacts(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing run artifacts: %w", err)
	}

	links := make([]ArtifactLink, 0, len(keys))
	for _, key := range keys {
		url, err := m.PresignedURL(ctx, key, expiry)
		if err != nil {
			return nil, err
		}
		links = append(links, ArtifactLink{Key: key, URL: url})
	}
	return links, nil
}

func contentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".txt", ".yaml", ".yml":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

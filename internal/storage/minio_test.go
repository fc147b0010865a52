package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MinIOStore {
	t.Helper()
	store, err := NewMinIOStore(MinIOConfig{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BucketName:      "quoteforge",
		KeyPrefix:       "run-1",
	})
	require.NoError(t, err)
	return store
}

func presignExpires(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("X-Amz-Expires")
}

func TestPresignedURL(t *testing.T) {
	store := newTestStore(t)

	raw, err := store.PresignedURL(context.Background(), "quote-flow_rate_x.png", time.Hour)
	require.NoError(t, err)

	assert.True(t, strings.Contains(raw, "quoteforge/quote-flow_rate_x.png"), raw)
	assert.Equal(t, "3600", presignExpires(t, raw))
}

func TestPresignedURL_ExpiryBounds(t *testing.T) {
	store := newTestStore(t)

	t.Run("zero falls back to default", func(t *testing.T) {
		raw, err := store.PresignedURL(context.Background(), "a.png", 0)
		require.NoError(t, err)
		assert.Equal(t, "86400", presignExpires(t, raw))
	})

	t.Run("over the S3 cap is clamped", func(t *testing.T) {
		raw, err := store.PresignedURL(context.Background(), "a.png", 30*24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "604800", presignExpires(t, raw))
	})
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"run-1/flow_rate_x.png":          "image/png",
		"run-1/flow_rate_x.dom.html":     "text/html; charset=utf-8",
		"run-1/flow_rate_x.failure.json": "application/json",
		"run-1/flow_rate_x.a11y.txt":     "text/plain; charset=utf-8",
		"run-1/flow_rate_x.bin":          "application/octet-stream",
	}
	for key, want := range cases {
		assert.Equal(t, want, contentTypeFor(key), key)
	}
}

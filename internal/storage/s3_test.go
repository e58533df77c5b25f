package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/config"
)

// Presigning is computed locally, so no object store has to be running.
func TestS3Storage_PresignsAgainstCustomEndpoint(t *testing.T) {
	store, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "exercise-media",
	}, nil)
	require.NoError(t, err)

	raw, err := store.GeneratePresignedUploadURL(context.Background(), "exercises/E1/abc", "video/mp4", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/exercise-media/exercises/E1/abc", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))

	raw, err = store.GeneratePresignedDownloadURL(context.Background(), "exercises/E1/abc", 0)
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw, "X-Amz-Expires=900"))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL(config.S3Config{}))
	assert.Equal(t, "http://minio:9000", endpointURL(config.S3Config{Endpoint: "minio:9000"}))
	assert.Equal(t, "https://minio:9000", endpointURL(config.S3Config{Endpoint: "minio:9000", UseSSL: true}))
	assert.Equal(t, "http://minio:9000", endpointURL(config.S3Config{Endpoint: "http://minio:9000", UseSSL: true}))
}

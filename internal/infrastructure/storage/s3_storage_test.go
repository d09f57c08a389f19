package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStorageConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Bucket:          "mercato-exports",
		Region:          "eu-central-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignExpiry:   15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := testStorageConfig("http://localhost:9000")
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("half configured credentials", func(t *testing.T) {
		cfg := testStorageConfig("http://localhost:9000")
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(cfg)
		assert.ErrorContains(t, err, "must be set together")
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := NewS3ObjectStorage(testStorageConfig("::not a url"))
		assert.ErrorContains(t, err, "invalid storage endpoint")
	})

	t.Run("valid config", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(testStorageConfig("http://localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "mercato-exports", storage.Bucket())
		assert.Equal(t, 15*time.Minute, storage.presignExpiration)
	})

	t.Run("options override config", func(t *testing.T) {
		cfg := testStorageConfig("http://localhost:9000")
		cfg.PresignExpiry = 0
		storage, err := NewS3ObjectStorage(cfg, WithLogger(zap.NewNop()), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, storage.presignExpiration)
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	storage, err := NewS3ObjectStorage(testStorageConfig("http://localhost:9000"))
	require.NoError(t, err)
	ctx := context.Background()

	url, expiresAt, err := storage.GenerateDownloadURL(ctx, "exports/t/u/r.json", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/mercato-exports/exports/t/u/r.json?"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=3600")
	assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))

	url, _, err = storage.GenerateDownloadURL(ctx, "exports/t/u/r.json", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Expires=900")

	_, _, err = storage.GenerateDownloadURL(ctx, "", time.Hour)
	assert.ErrorIs(t, err, errStorageKeyRequired)
}

// fakeS3 records the requests an S3 client sends
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if r.Method == http.MethodPut {
		f.bodies[r.URL.Path] = string(body)
	}
	f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ObjectStorage_UploadAndDelete(t *testing.T) {
	fake := &fakeS3{bodies: map[string]string{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	storage, err := NewS3ObjectStorage(testStorageConfig(server.URL))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, storage.Upload(ctx, "exports/t/u/r.json", []byte(`{"orders":[]}`), "application/json"))
	require.NoError(t, storage.DeleteObject(ctx, "exports/t/u/r.json"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{
		"PUT /mercato-exports/exports/t/u/r.json",
		"DELETE /mercato-exports/exports/t/u/r.json",
	}, fake.requests)
	assert.Contains(t, fake.bodies["/mercato-exports/exports/t/u/r.json"], `{"orders":[]}`)

	assert.ErrorIs(t, storage.Upload(ctx, "", nil, "text/plain"), errStorageKeyRequired)
	assert.ErrorIs(t, storage.DeleteObject(ctx, ""), errStorageKeyRequired)
}

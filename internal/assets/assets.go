package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"batchbook/internal/exceptions"
	applog "batchbook/internal/log"
	"batchbook/internal/metrics"
)

const (
	// MaxImageSize is the largest accepted image, 5 MiB.
	MaxImageSize = 5 << 20

	cacheControl = "max-age=3600"

	invalidTypeMessage = "Please select a valid image file (JPEG, PNG, or GIF)"
	tooLargeMessage    = "Image size must be less than 5MB"
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// File is an image selected for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadOptions are passed through to the object store.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// ObjectStore is a bucketed blob store with public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, opts UploadOptions) error
	PublicURL(bucket, key string) string
}

// Manager validates images and stores them under the owner's namespace.
type Manager struct {
	store   ObjectStore
	metrics *metrics.Collector
	now     func() time.Time
}

func NewManager(store ObjectStore, collector *metrics.Collector) *Manager {
	return &Manager{store: store, metrics: collector, now: time.Now}
}

// Validate checks the image type and size. It never touches storage.
func Validate(f File) error {
	if _, ok := allowedTypes[mediaType(f)]; !ok {
		return exceptions.InvalidInput(invalidTypeMessage)
	}
	if f.Size > MaxImageSize {
		return exceptions.InvalidInput(tooLargeMessage)
	}
	return nil
}

// Upload validates f, writes it to bucket as <ownerID>/<unix millis>.<ext>
// without overwriting, and returns its public URL.
func (m *Manager) Upload(ctx context.Context, ownerID string, f File, bucket string) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}
	if strings.TrimSpace(ownerID) == "" {
		return "", exceptions.Authentication("User not authenticated")
	}
	if f.Body == nil {
		return "", exceptions.InvalidInput(invalidTypeMessage)
	}

	data, err := io.ReadAll(io.LimitReader(f.Body, MaxImageSize+1))
	if err != nil {
		return "", exceptions.Backend("Failed to upload image", err)
	}
	if len(data) > MaxImageSize {
		return "", exceptions.InvalidInput(tooLargeMessage)
	}

	key := ObjectKey(ownerID, f, m.now())
	opts := UploadOptions{
		ContentType:  mediaType(f),
		CacheControl: cacheControl,
		Upsert:       false,
	}

	err = m.store.Upload(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	m.metrics.ObserveUpload(bucket, err)
	if err != nil {
		applog.Error(ctx, "image upload failed", "bucket", bucket, "key", key, "error", err)
		var conflict *exceptions.ConflictError
		if errors.As(err, &conflict) {
			return "", err
		}
		return "", exceptions.Backend("Failed to upload image", err)
	}

	applog.Debug(ctx, "image uploaded", "bucket", bucket, "key", key, "size", len(data))
	return m.store.PublicURL(bucket, key), nil
}

// ObjectKey builds the storage path for an upload made at the given time.
func ObjectKey(ownerID string, f File, at time.Time) string {
	return fmt.Sprintf("%s/%d.%s", ownerID, at.UnixMilli(), extension(f))
}

// extension keeps the file name's extension only when it names the validated
// image type.
func extension(f File) string {
	kind := mediaType(f)
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != "" && mimeTypeFromName(ext) == kind {
		return strings.TrimPrefix(ext, ".")
	}
	return allowedTypes[kind]
}

func mediaType(f File) string {
	value := strings.TrimSpace(f.ContentType)
	if value == "" {
		value = mimeTypeFromName(f.Name)
	}
	parsed, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return parsed
}

func mimeTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"batchbook/internal/exceptions"
)

// LocalStore keeps objects on the filesystem under root/<bucket>/<key> and
// serves them below baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Upload(ctx context.Context, bucket, key string, body io.Reader, _ int64, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := path.Join(bucket, key)
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return fmt.Errorf("object key %q escapes storage root", rel)
	}
	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_EXCL
	if opts.Upsert {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return exceptions.Conflict("object", rel)
		}
		return fmt.Errorf("open object: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(target)
		return fmt.Errorf("write object: %w", err)
	}
	return file.Close()
}

func (s *LocalStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/" + path.Join(bucket, key)
}

// Handler serves stored image objects with the upload cache policy. Only
// files with an image extension are served, typed by that extension.
// Directories are never listed.
func (s *LocalStore) Handler() http.Handler {
	files := http.Dir(s.root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		name := r.URL.Path
		contentType := mimeTypeFromName(name)
		if strings.HasSuffix(name, "/") || allowedTypes[contentType] == "" {
			http.NotFound(w, r)
			return
		}

		file, err := files.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer file.Close()
		info, err := file.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", cacheControl)
		http.ServeContent(w, r, info.Name(), info.ModTime(), file)
	})
}

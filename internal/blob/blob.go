// Package blob stores uploaded proof images and returns retrievable
// URLs.
package blob

import (
	"context"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Uploader writes a blob under the given key and returns the URL a
// client can fetch it from.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
}

// Local stores blobs on the filesystem, for development and tests.
// The server mounts Dir under /uploads/.
type Local struct {
	Dir string
}

func (l Local) Upload(_ context.Context, key string, r io.Reader) (string, error) {
	dst := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return "/uploads/" + key, nil
}

func contentTypeFor(key string) string {
	ct := mime.TypeByExtension(path.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}

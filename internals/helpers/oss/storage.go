package oss

import (
	"context"
	"errors"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrForeignURL means the URL does not point into this storage (e.g. an
// avatar set to an external link), so there is nothing to remove.
var ErrForeignURL = errors.New("url is not managed by this storage")

// StoredFile describes one accepted and persisted upload.
type StoredFile struct {
	Field        string `json:"field"`
	OriginalName string `json:"originalName"`
	FileName     string `json:"fileName"`
	Dir          string `json:"dir"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
}

// Storage persists upload bytes at a path derived from the generated name.
type Storage interface {
	Save(ctx context.Context, dir string, fh *multipart.FileHeader) (StoredFile, error)
	Delete(ctx context.Context, url string) error
	Name() string
}

// GenerateName returns a collision-resistant file name that keeps the
// original extension.
func GenerateName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// ObjectKey is the storage-relative location of a generated name.
func ObjectKey(dir, name string) string {
	return path.Join(safePart(dir), name)
}

// ThumbnailName maps "abc.png" to "abc_thumb.webp".
func ThumbnailName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + "_thumb.webp"
}

func safePart(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/")
	s = strings.ReplaceAll(s, "..", "")
	if s == "" {
		return "misc"
	}
	return s
}

func contentTypeOf(fh *multipart.FileHeader) string {
	ct := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.ToLower(ct)
}

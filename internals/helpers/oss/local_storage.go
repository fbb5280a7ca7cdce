package oss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes files under Root/<dir>/<name> and exposes them under
// PublicPrefix (served statically by the app).
type LocalStorage struct {
	Root         string
	PublicPrefix string
}

func NewLocalStorage(root, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	return &LocalStorage{Root: root, PublicPrefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

func (s *LocalStorage) Name() string { return "local" }

func (s *LocalStorage) Save(ctx context.Context, dir string, fh *multipart.FileHeader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir = safePart(dir)
	name := GenerateName(fh.Filename)
	if err := os.MkdirAll(filepath.Join(s.Root, dir), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	ct := contentTypeOf(fh)
	var thumbSrc bytes.Buffer
	var r io.Reader = src
	if IsThumbnailable(ct) {
		r = io.TeeReader(src, &thumbSrc)
	}

	if err := writeFileSync(filepath.Join(s.Root, dir, name), r); err != nil {
		return StoredFile{}, err
	}

	out := StoredFile{
		OriginalName: fh.Filename,
		FileName:     name,
		Dir:          dir,
		URL:          s.PublicPrefix + "/" + ObjectKey(dir, name),
		ContentType:  ct,
		Size:         fh.Size,
	}

	if thumbSrc.Len() > 0 {
		if thumb, err := MakeThumbnail(&thumbSrc); err != nil {
			log.Printf("[UPLOAD] thumbnail skipped for %s: %v", name, err)
		} else if err := writeFileSync(filepath.Join(s.Root, dir, ThumbnailName(name)), bytes.NewReader(thumb)); err != nil {
			log.Printf("[UPLOAD] thumbnail write failed for %s: %v", name, err)
		} else {
			out.ThumbnailURL = s.PublicPrefix + "/" + ObjectKey(dir, ThumbnailName(name))
		}
	}
	return out, nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, ok := strings.CutPrefix(url, s.PublicPrefix+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return ErrForeignURL
	}
	p := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	thumb := filepath.Join(s.Root, filepath.FromSlash(path.Join(path.Dir(key), ThumbnailName(path.Base(key)))))
	if err := os.Remove(thumb); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[UPLOAD] thumbnail remove failed for %s: %v", key, err)
	}
	return nil
}

func writeFileSync(p string, r io.Reader) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(p), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("write %s: %w", filepath.Base(p), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(p), err)
	}
	return f.Close()
}

package oss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSConfig carries the media-host credentials.
type OSSConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
}

// OSSStorage stores uploads in an Aliyun OSS bucket.
type OSSStorage struct {
	bucket     *alioss.Bucket
	endpoint   string
	bucketName string
	publicBase string
}

func NewOSSStorage(cfg OSSConfig) (*OSSStorage, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing oss endpoint/access key/secret key/bucket")
	}
	client, err := alioss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(cfg.Bucket); err != nil {
		if se, ok := err.(alioss.ServiceError); ok && se.StatusCode == 403 {
			log.Printf("[OSS] skip location check (AccessDenied) for bucket=%s", cfg.Bucket)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", cfg.Bucket, loc)
	}

	return &OSSStorage{
		bucket:     bkt,
		endpoint:   cfg.Endpoint,
		bucketName: cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

func (s *OSSStorage) Name() string { return "oss" }

func (s *OSSStorage) Save(ctx context.Context, dir string, fh *multipart.FileHeader) (StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := GenerateName(fh.Filename)
	key := ObjectKey(dir, name)
	ct := contentTypeOf(fh)

	var thumbSrc bytes.Buffer
	var r io.Reader = src
	if IsThumbnailable(ct) {
		r = io.TeeReader(src, &thumbSrc)
	}

	if err := s.bucket.PutObject(key, r, s.putOptions(ctx, ct)...); err != nil {
		return StoredFile{}, fmt.Errorf("put object %s: %w", key, err)
	}

	out := StoredFile{
		OriginalName: fh.Filename,
		FileName:     name,
		Dir:          safePart(dir),
		URL:          s.PublicURL(key),
		ContentType:  ct,
		Size:         fh.Size,
	}

	if thumbSrc.Len() > 0 {
		thumbKey := ObjectKey(dir, ThumbnailName(name))
		if thumb, err := MakeThumbnail(&thumbSrc); err != nil {
			log.Printf("[OSS] thumbnail skipped for %s: %v", key, err)
		} else if err := s.bucket.PutObject(thumbKey, bytes.NewReader(thumb), s.putOptions(ctx, "image/webp")...); err != nil {
			log.Printf("[OSS] thumbnail upload failed for %s: %v", key, err)
		} else {
			out.ThumbnailURL = s.PublicURL(thumbKey)
		}
	}
	return out, nil
}

func (s *OSSStorage) putOptions(ctx context.Context, ct string) []alioss.Option {
	return []alioss.Option{
		alioss.WithContext(ctx),
		alioss.ContentType(ct),
		alioss.ContentDisposition("inline"),
		alioss.CacheControl("public, max-age=31536000, immutable"),
	}
}

func (s *OSSStorage) Delete(ctx context.Context, url string) error {
	key, err := s.KeyFromURL(url)
	if err != nil {
		return err
	}
	thumbKey := ObjectKey(dirOf(key), ThumbnailName(baseOf(key)))
	if _, err := s.bucket.DeleteObjects([]string{key, thumbKey}, alioss.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *OSSStorage) PublicURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, key)
}

// KeyFromURL inverts PublicURL.
func (s *OSSStorage) KeyFromURL(url string) (string, error) {
	prefix := s.PublicURL("")
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}

func dirOf(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return ""
}

func baseOf(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

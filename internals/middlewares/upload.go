package middlewares

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"sort"
	"strings"

	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
)

const LocUploads = "uploads"

var (
	imageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp", "image/svg+xml"}
	docTypes   = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

// UploadRule is the destination and allow-list of one multipart field.
type UploadRule struct {
	Dir     string
	Allowed []string
}

func (r UploadRule) allows(ct string) bool {
	for _, a := range r.Allowed {
		if a == ct {
			return true
		}
	}
	return false
}

type UploadPolicy struct {
	MaxFileSize int64
	MaxFiles    int
	Fields      map[string]UploadRule
	Fallback    UploadRule
}

func DefaultUploadPolicy(maxFileSize int64, maxFiles int) UploadPolicy {
	return UploadPolicy{
		MaxFileSize: maxFileSize,
		MaxFiles:    maxFiles,
		Fields: map[string]UploadRule{
			"avatar":        {Dir: "avatars", Allowed: imageTypes},
			"resume":        {Dir: "resumes", Allowed: docTypes},
			"projectImages": {Dir: "projects", Allowed: imageTypes},
			"logo":          {Dir: "logos", Allowed: imageTypes},
		},
		Fallback: UploadRule{Dir: "misc", Allowed: append(append([]string{}, imageTypes...), docTypes...)},
	}
}

// Rule classifies a field name.
func (p UploadPolicy) Rule(field string) UploadRule {
	if r, ok := p.Fields[field]; ok {
		return r
	}
	return p.Fallback
}

// AcceptedFile is a part that passed the guard and has not been stored yet.
type AcceptedFile struct {
	Field  string
	Dir    string
	Header *multipart.FileHeader
}

// UploadGuard checks every file part against the policy before any byte is
// stored. Accepted parts are kept in Locals for the handler.
func UploadGuard(p UploadPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid multipart form")
		}

		fields := make([]string, 0, len(form.File))
		total := 0
		for f, parts := range form.File {
			fields = append(fields, f)
			total += len(parts)
		}
		sort.Strings(fields)

		if p.MaxFiles > 0 && total > p.MaxFiles {
			return helper.JsonError(c, fiber.StatusBadRequest,
				fmt.Sprintf("Too many files. Maximum is %d per request", p.MaxFiles))
		}

		accepted := make([]AcceptedFile, 0, total)
		for _, f := range fields {
			rule := p.Rule(f)
			for _, fh := range form.File[f] {
				ct := partType(fh)
				if !rule.allows(ct) {
					return helper.JsonErrorWithDetails(c, fiber.StatusBadRequest,
						fmt.Sprintf("File type %s is not allowed. Allowed types: %s", ct, strings.Join(rule.Allowed, ", ")),
						fiber.Map{"field": f, "fileName": fh.Filename, "type": ct})
				}
				if p.MaxFileSize > 0 && fh.Size > p.MaxFileSize {
					return helper.JsonErrorWithDetails(c, fiber.StatusBadRequest,
						fmt.Sprintf("File %s is too large. Maximum size is %d bytes", fh.Filename, p.MaxFileSize),
						fiber.Map{"field": f, "fileName": fh.Filename, "size": fh.Size})
				}
				accepted = append(accepted, AcceptedFile{Field: f, Dir: rule.Dir, Header: fh})
			}
		}

		c.Locals(LocUploads, accepted)
		return c.Next()
	}
}

func partType(fh *multipart.FileHeader) string {
	ct := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

// Accepted returns the files UploadGuard let through, optionally limited to
// the given fields.
func Accepted(c *fiber.Ctx, fields ...string) []AcceptedFile {
	all, _ := c.Locals(LocUploads).([]AcceptedFile)
	if len(fields) == 0 {
		return all
	}
	out := make([]AcceptedFile, 0, len(all))
	for _, a := range all {
		for _, f := range fields {
			if a.Field == f {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// StoreAccepted writes the files to storage. When one write fails the files
// already written by this call are removed again.
func StoreAccepted(ctx context.Context, storage oss.Storage, files []AcceptedFile) ([]oss.StoredFile, error) {
	out := make([]oss.StoredFile, 0, len(files))
	for _, f := range files {
		sf, err := storage.Save(ctx, f.Dir, f.Header)
		if err != nil {
			for _, done := range out {
				if derr := storage.Delete(context.WithoutCancel(ctx), done.URL); derr != nil {
					log.Printf("[UPLOAD] rollback of %s failed: %v", done.URL, derr)
				}
			}
			return nil, fmt.Errorf("store %s: %w", f.Header.Filename, err)
		}
		sf.Field = f.Field
		out = append(out, sf)
	}
	return out, nil
}

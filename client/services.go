package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// File is one part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        io.Reader
}

func (c *Client) upload(ctx context.Context, path string, files []File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(f.Field)+`"; filename="`+escapeQuotes(f.Name)+`"`)
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		pw, err := w.CreatePart(h)
		if err != nil {
			return errors.Wrap(err, "create part")
		}
		if _, err := io.Copy(pw, f.Data); err != nil {
			return errors.Wrapf(err, "copy %s", f.Name)
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "close multipart")
	}
	_, err := c.do(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType(), out)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

/* ===============================
   Auth
=================================*/

type AuthService struct{ c *Client }

// Login authenticates and keeps the token for later calls. Reads made with
// a token are cached apart from anonymous ones.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	if _, err := s.c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, LoginRequest{Email: email, Password: password}, &out); err != nil {
		return out, err
	}
	s.c.setToken(out.Token)
	return out, nil
}

func (s *AuthService) Me(ctx context.Context) (AdminUser, error) {
	var out AdminUser
	_, err := s.c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out)
	return out, err
}

func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	s.c.setToken("")
	return err
}

/* ===============================
   Profile
=================================*/

type ProfileService struct{ c *Client }

func (s *ProfileService) Get(ctx context.Context) (ProfileModel, error) {
	return Query(ctx, s.c.cache, NSProfile, "get", s.c.scoped(nil), func(ctx context.Context) (ProfileModel, error) {
		var out ProfileModel
		_, err := s.c.doJSON(ctx, http.MethodGet, "/api/profile", nil, nil, &out)
		return out, err
	})
}

// Upsert sends in as the body of PUT /api/profile. Pass a
// CreateProfileRequest for the first profile and an UpdateProfileRequest
// afterwards.
func (s *ProfileService) Upsert(ctx context.Context, in any) (ProfileModel, error) {
	var out ProfileModel
	_, err := s.c.doJSON(ctx, http.MethodPut, "/api/profile", nil, in, &out)
	if err == nil {
		s.c.cache.Invalidate(NSProfile)
	}
	return out, err
}

type ProfileFile struct {
	Profile ProfileModel `json:"profile"`
	File    StoredFile   `json:"file"`
}

func (s *ProfileService) UploadAvatar(ctx context.Context, f File) (ProfileFile, error) {
	f.Field = "avatar"
	return s.replace(ctx, "/api/profile/avatar", f)
}

func (s *ProfileService) UploadResume(ctx context.Context, f File) (ProfileFile, error) {
	f.Field = "resume"
	return s.replace(ctx, "/api/profile/resume", f)
}

func (s *ProfileService) replace(ctx context.Context, path string, f File) (ProfileFile, error) {
	var out ProfileFile
	err := s.c.upload(ctx, path, []File{f}, &out)
	if err == nil {
		s.c.cache.Invalidate(NSProfile)
	}
	return out, err
}

/* ===============================
   Projects
=================================*/

type ProjectService struct {
	*Resource[ProjectModel, CreateProjectRequest, UpdateProjectRequest]
}

func (s *ProjectService) Featured(ctx context.Context, q ListQuery) (*Page[ProjectModel], error) {
	return s.list(ctx, "featured", s.path+"/featured", q)
}

func (s *ProjectService) BySlug(ctx context.Context, slug string) (ProjectModel, error) {
	return Query(ctx, s.c.cache, s.namespace, "slug:"+slug, s.c.scoped(nil), func(ctx context.Context) (ProjectModel, error) {
		var out ProjectModel
		_, err := s.c.doJSON(ctx, http.MethodGet, s.path+"/slug/"+url.PathEscape(slug), nil, nil, &out)
		return out, err
	})
}

func (s *ProjectService) UploadImages(ctx context.Context, id string, files ...File) (ProjectModel, error) {
	for i := range files {
		files[i].Field = "projectImages"
	}
	var out ProjectModel
	err := s.c.upload(ctx, s.path+"/"+url.PathEscape(id)+"/images", files, &out)
	if err == nil {
		s.c.cache.Invalidate(s.namespace)
	}
	return out, err
}

func (s *ProjectService) SetPrimaryImage(ctx context.Context, id, imageID string) (ProjectModel, error) {
	return s.imageCall(ctx, http.MethodPut, s.path+"/"+url.PathEscape(id)+"/images/"+url.PathEscape(imageID)+"/primary")
}

func (s *ProjectService) DeleteImage(ctx context.Context, id, imageID string) (ProjectModel, error) {
	return s.imageCall(ctx, http.MethodDelete, s.path+"/"+url.PathEscape(id)+"/images/"+url.PathEscape(imageID))
}

func (s *ProjectService) imageCall(ctx context.Context, method, path string) (ProjectModel, error) {
	var out ProjectModel
	_, err := s.c.doJSON(ctx, method, path, nil, nil, &out)
	if err == nil {
		s.c.cache.Invalidate(s.namespace)
	}
	return out, err
}

/* ===============================
   Experience
=================================*/

type ExperienceService struct {
	*Resource[ExperienceModel, CreateExperienceRequest, UpdateExperienceRequest]
}

func (s *ExperienceService) Current(ctx context.Context) ([]ExperienceModel, error) {
	return Query(ctx, s.c.cache, s.namespace, "current", s.c.scoped(nil), func(ctx context.Context) ([]ExperienceModel, error) {
		var out []ExperienceModel
		_, err := s.c.doJSON(ctx, http.MethodGet, s.path+"/current", nil, nil, &out)
		return out, err
	})
}

/* ===============================
   Contact
=================================*/

// ContactService covers the public form and the moderation routes. Reading
// a single message marks it read on the server, so it is never cached.
type ContactService struct{ c *Client }

const contactPath = "/api/contact"

func (s *ContactService) Submit(ctx context.Context, in SubmitContactRequest) (SubmitContactResponse, error) {
	var out SubmitContactResponse
	_, err := s.c.doJSON(ctx, http.MethodPost, contactPath, nil, in, &out)
	if err == nil {
		s.c.cache.Invalidate(NSContact)
	}
	return out, err
}

func (s *ContactService) List(ctx context.Context, q ListQuery) (*Page[ContactMessage], error) {
	params := q.values()
	return Query(ctx, s.c.cache, NSContact, "list", s.c.scoped(params), func(ctx context.Context) (*Page[ContactMessage], error) {
		var items []ContactMessage
		p, err := s.c.doJSON(ctx, http.MethodGet, contactPath, params, nil, &items)
		if err != nil {
			return nil, err
		}
		page := &Page[ContactMessage]{Items: items}
		if p != nil {
			page.Pagination = *p
		}
		return page, nil
	})
}

func (s *ContactService) Get(ctx context.Context, id string) (ContactMessage, error) {
	var out ContactMessage
	_, err := s.c.doJSON(ctx, http.MethodGet, contactPath+"/"+url.PathEscape(id), nil, nil, &out)
	if err == nil {
		s.c.cache.Invalidate(NSContact)
	}
	return out, err
}

func (s *ContactService) Stats(ctx context.Context) (ContactStats, error) {
	return Query(ctx, s.c.cache, NSContact, "stats", s.c.scoped(nil), func(ctx context.Context) (ContactStats, error) {
		var out ContactStats
		_, err := s.c.doJSON(ctx, http.MethodGet, contactPath+"/stats", nil, nil, &out)
		return out, err
	})
}

func (s *ContactService) UpdateStatus(ctx context.Context, id, status string) (ContactMessage, error) {
	return s.mutate(ctx, http.MethodPut, "/"+url.PathEscape(id)+"/status", map[string]string{"status": status})
}

func (s *ContactService) Reply(ctx context.Context, id, message string) (ContactMessage, error) {
	return s.mutate(ctx, http.MethodPost, "/"+url.PathEscape(id)+"/reply", map[string]string{"message": message})
}

func (s *ContactService) MarkAsSpam(ctx context.Context, id string) (ContactMessage, error) {
	return s.mutate(ctx, http.MethodPut, "/"+url.PathEscape(id)+"/spam", nil)
}

// Close is the DELETE route: the message is closed, never removed.
func (s *ContactService) Close(ctx context.Context, id string) (ContactMessage, error) {
	return s.mutate(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil)
}

func (s *ContactService) mutate(ctx context.Context, method, sub string, in any) (ContactMessage, error) {
	var out ContactMessage
	_, err := s.c.doJSON(ctx, method, contactPath+sub, nil, in, &out)
	if err == nil {
		s.c.cache.Invalidate(NSContact)
	}
	return out, err
}

/* ===============================
   Uploads
=================================*/

type UploadService struct{ c *Client }

func (s *UploadService) Upload(ctx context.Context, files ...File) ([]StoredFile, error) {
	var out []StoredFile
	err := s.c.upload(ctx, "/api/upload", files, &out)
	return out, err
}

func (s *UploadService) Delete(ctx context.Context, fileURL string) error {
	_, err := s.c.doJSON(ctx, http.MethodDelete, "/api/upload", nil, map[string]string{"url": fileURL}, nil)
	return err
}

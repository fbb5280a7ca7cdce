package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"portfolio_backend/internals/features/profile/model"
	"portfolio_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
)

func (h *harness) localPath(url string) string {
	return filepath.Join(h.cfg.UploadDir, filepath.FromSlash(strings.TrimPrefix(url, UploadsPrefix+"/")))
}

func TestProfileUpsert(t *testing.T) {
	h := newHarness(t)
	if status, _ := h.call(t, http.MethodGet, "/api/profile", "", false); status != fiber.StatusNotFound {
		t.Fatalf("empty profile = %d, want 404", status)
	}

	status, env := h.call(t, http.MethodPut, "/api/profile", `{"title":"Engineer"}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("incomplete first profile = %d %+v", status, env.Error)
	}

	body := `{"name":"Ada","title":"Engineer","bio":"Writes programs","email":"ada@example.com","socialLinks":{"github":"https://github.com/ada"}}`
	status, env = h.call(t, http.MethodPut, "/api/profile", body, true)
	var p model.ProfileModel
	env.decode(t, &p)
	if status != fiber.StatusCreated || p.SocialLinks.Data().Github != "https://github.com/ada" {
		t.Fatalf("create = %d %+v", status, p)
	}

	status, env = h.call(t, http.MethodPut, "/api/profile", `{"title":"Staff Engineer"}`, true)
	env.decode(t, &p)
	if status != fiber.StatusOK || p.Title != "Staff Engineer" || p.Name != "Ada" {
		t.Fatalf("partial update = %d %+v", status, p)
	}

	if status, _ := h.call(t, http.MethodPut, "/api/profile", `{"title":"x"}`, false); status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous update = %d", status)
	}
	var n int64
	h.db.Model(&model.ProfileModel{}).Count(&n)
	if n != 1 {
		t.Fatalf("profiles = %d, want 1", n)
	}
}

func TestProfileConcurrentFirstUpsertKeepsOneProfile(t *testing.T) {
	h := newHarness(t)
	const callers = 8
	statuses := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"name":"Ada %d","title":"Engineer","bio":"Writes programs","email":"ada@example.com"}`, i)
			req := httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+h.token)
			resp, err := h.app.Test(req, -1)
			if err != nil {
				statuses <- -1
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(statuses)

	created := 0
	for status := range statuses {
		switch status {
		case fiber.StatusCreated:
			created++
		case fiber.StatusOK:
		default:
			t.Fatalf("concurrent upsert status = %d", status)
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want exactly 1", created)
	}
	var n int64
	h.db.Model(&model.ProfileModel{}).Where("is_active = ?", true).Count(&n)
	if n != 1 {
		t.Fatalf("active profiles = %d, want 1", n)
	}
}

func TestProfileAvatarReplacesFile(t *testing.T) {
	h := newHarness(t)
	body := `{"name":"Ada","title":"Engineer","bio":"Writes programs","email":"ada@example.com"}`
	if status, _ := h.call(t, http.MethodPut, "/api/profile", body, true); status != fiber.StatusCreated {
		t.Fatalf("create = %d", status)
	}

	var first, second struct {
		Profile model.ProfileModel `json:"profile"`
		File    oss.StoredFile     `json:"file"`
	}
	status, env := h.upload(t, "/api/profile/avatar", part{"avatar", "me.png", "image/png", tinyPNG(t)})
	env.decode(t, &first)
	if status != fiber.StatusOK || first.Profile.Avatar != first.File.URL || first.File.Dir != "avatars" {
		t.Fatalf("first avatar = %d %+v", status, first)
	}
	if _, err := os.Stat(h.localPath(first.File.URL)); err != nil {
		t.Fatalf("avatar not on disk: %v", err)
	}

	status, env = h.upload(t, "/api/profile/avatar", part{"avatar", "me2.png", "image/png", tinyPNG(t)})
	env.decode(t, &second)
	if status != fiber.StatusOK || second.Profile.Avatar == first.File.URL {
		t.Fatalf("second avatar = %d %+v", status, second)
	}
	if _, err := os.Stat(h.localPath(first.File.URL)); !os.IsNotExist(err) {
		t.Fatalf("previous avatar still on disk: %v", err)
	}

	status, _ = h.upload(t, "/api/profile/resume", part{"resume", "cv.png", "image/png", tinyPNG(t)})
	if status != fiber.StatusBadRequest {
		t.Fatalf("image as resume = %d, want 400", status)
	}
}

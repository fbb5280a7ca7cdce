package routes

import (
	"net/http"
	"os"
	"testing"

	"portfolio_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
)

func TestGenericUpload(t *testing.T) {
	h := newHarness(t)

	status, env := h.upload(t, "/api/upload",
		part{"logo", "logo.png", "image/png", tinyPNG(t)},
		part{"attachment", "brief.pdf", "application/pdf", []byte("%PDF-1.4 test")},
	)
	var files []oss.StoredFile
	env.decode(t, &files)
	if status != fiber.StatusCreated || len(files) != 2 {
		t.Fatalf("upload = %d %+v", status, env)
	}
	dirs := map[string]bool{}
	for _, f := range files {
		dirs[f.Dir] = true
		if _, err := os.Stat(h.localPath(f.URL)); err != nil {
			t.Fatalf("%s not on disk: %v", f.URL, err)
		}
	}
	if !dirs["logos"] || !dirs["misc"] {
		t.Fatalf("dirs = %v", dirs)
	}

	status, _ = h.call(t, http.MethodDelete, "/api/upload", `{"url":"`+files[1].URL+`"}`, true)
	if status != fiber.StatusOK {
		t.Fatalf("delete = %d", status)
	}
	if _, err := os.Stat(h.localPath(files[1].URL)); !os.IsNotExist(err) {
		t.Fatalf("file still on disk: %v", err)
	}

	status, _ = h.call(t, http.MethodDelete, "/api/upload", `{"url":"https://elsewhere.example/x.png"}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("foreign delete = %d", status)
	}
}

func TestGenericUploadLimits(t *testing.T) {
	h := newHarness(t)
	png := tinyPNG(t)

	status, env := h.upload(t, "/api/upload",
		part{"logo", "1.png", "image/png", png},
		part{"logo", "2.png", "image/png", png},
		part{"logo", "3.png", "image/png", png},
		part{"logo", "4.png", "image/png", png},
	)
	if status != fiber.StatusBadRequest || env.Error.Message != "Too many files. Maximum is 3 per request" {
		t.Fatalf("too many = %d %+v", status, env.Error)
	}

	status, _ = h.upload(t, "/api/upload", part{"logo", "x.exe", "application/x-msdownload", []byte("MZ")})
	if status != fiber.StatusBadRequest {
		t.Fatalf("exe = %d", status)
	}
	entries, _ := os.ReadDir(h.cfg.UploadDir)
	if len(entries) != 0 {
		t.Fatalf("rejected upload left files: %v", entries)
	}
}

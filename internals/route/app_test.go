package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio_backend/internals/configs"
	"portfolio_backend/internals/databases/dbtest"
	"portfolio_backend/internals/features/deps"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/dispatch"
	"portfolio_backend/internals/helpers/mailer"
	"portfolio_backend/internals/helpers/oss"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/middlewares/auth"
	"portfolio_backend/internals/middlewares/ratestore"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testSecret   = "route-test-secret"
	testAdmin    = "admin@example.com"
	testPassword = "correct horse"
)

// recordingDispatcher runs every task inline so tests can assert on effects.
type recordingDispatcher struct {
	mu    sync.Mutex
	names []string
}

func (d *recordingDispatcher) Submit(name string, fn dispatch.Task) bool {
	d.mu.Lock()
	d.names = append(d.names, name)
	d.mu.Unlock()
	_ = fn(context.Background())
	return true
}

func (d *recordingDispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.names...)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type harness struct {
	app        *fiber.App
	db         *gorm.DB
	cfg        *configs.Config
	dispatcher *recordingDispatcher
	mailer     *fakeMailer
	storage    *oss.LocalStorage
	janitor    *oss.Janitor
	token      string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	dir := t.TempDir()
	cfg := &configs.Config{
		Env:                    "test",
		ClientURLs:             []string{"http://localhost:3000"},
		JWTSecret:              testSecret,
		JWTTTL:                 time.Hour,
		AdminEmail:             testAdmin,
		AdminPasswordHash:      string(hash),
		AdminNotifyEmail:       "owner@example.com",
		UploadDir:              dir,
		MaxFileSize:            1 << 20,
		MaxFiles:               3,
		ContactRateLimitMax:    3,
		ContactRateLimitWindow: 15 * time.Minute,
		GlobalRateLimitMax:     1000,
	}

	storage, err := oss.NewLocalStorage(dir, UploadsPrefix)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	store := ratestore.NewMemory(time.Minute)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		db:         dbtest.Open(t, Models()...),
		cfg:        cfg,
		dispatcher: &recordingDispatcher{},
		mailer:     &fakeMailer{},
		storage:    storage,
		janitor:    oss.NewJanitor(storage),
	}
	h.app = NewApp(&deps.Deps{
		DB:           h.db,
		Config:       cfg,
		Storage:      storage,
		Janitor:      h.janitor,
		Dispatcher:   h.dispatcher,
		Mailer:       h.mailer,
		RateStore:    store,
		RequireAdmin: auth.RequireAdmin(testSecret),
		Upload:       middlewares.UploadGuard(middlewares.DefaultUploadPolicy(cfg.MaxFileSize, cfg.MaxFiles)),
	})

	tok, _, err := auth.IssueToken(testSecret, testAdmin, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	h.token = tok
	return h
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Error      *helper.ErrorBody `json:"error"`
	Pagination map[string]any    `json:"pagination"`
}

func (e envelope) decode(t *testing.T, out any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

func (h *harness) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", req.Method, req.URL.Path, err)
	}
	return resp.StatusCode, env
}

func (h *harness) call(t *testing.T, method, path, body string, admin bool) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	return h.do(t, req)
}

type part struct {
	field, name, contentType string
	body                     []byte
}

func (h *harness) upload(t *testing.T, path string, parts ...part) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + p.field + `"; filename="` + p.name + `"`}
		hdr["Content-Type"] = []string{p.contentType}
		pw, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		pw.Write(p.body)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.token)
	return h.do(t, req)
}

var errSMTPDown = errors.New("smtp down")

func TestHealth(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != fiber.StatusOK || body["database"] != "Connected" || body["storage"] != "local" {
		t.Fatalf("health = %d %v", resp.StatusCode, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	status, env := h.call(t, http.MethodGet, "/api/nope", "", false)
	if status != fiber.StatusNotFound || env.Success || env.Error == nil {
		t.Fatalf("status = %d env = %+v", status, env)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/api/skills", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q", got)
	}
}

package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio_backend/internals/databases/dbtest"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type widget struct {
	Base
	Name      string     `gorm:"not null" json:"name"`
	Category  string     `gorm:"index" json:"category"`
	Score     int        `json:"score"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (w *widget) CheckInvariants() []helper.FieldViolation {
	return DateRange(w.StartDate, w.EndDate)
}

type widgetCreate struct {
	Name      string       `json:"name" validate:"required,min=2"`
	Category  string       `json:"category" validate:"required,oneof=a b c"`
	Score     int          `json:"score" validate:"gte=0,lte=100"`
	StartDate helper.Date  `json:"startDate" validate:"required"`
	EndDate   *helper.Date `json:"endDate" validate:"omitempty,after_field=StartDate"`
}

func (in widgetCreate) ToModel() *widget {
	return &widget{
		Base:      Base{IsActive: true},
		Name:      in.Name,
		Category:  in.Category,
		Score:     in.Score,
		StartDate: in.StartDate.Time,
		EndDate:   in.EndDate.Ptr(),
	}
}

type widgetUpdate struct {
	Name     *string      `json:"name" validate:"omitnil,min=2"`
	Category *string      `json:"category" validate:"omitnil,oneof=a b c"`
	Score    *int         `json:"score" validate:"omitnil,gte=0,lte=100"`
	EndDate  *helper.Date `json:"endDate"`
	IsActive *bool        `json:"isActive"`
}

func (in widgetUpdate) ToUpdates() map[string]any {
	f := map[string]any{}
	if in.Name != nil {
		f["name"] = *in.Name
	}
	if in.Category != nil {
		f["category"] = *in.Category
	}
	if in.Score != nil {
		f["score"] = *in.Score
	}
	if in.EndDate != nil {
		f["end_date"] = in.EndDate.Time
	}
	return CommonUpdates(f, nil, in.IsActive)
}

var widgetDesc = &Descriptor{
	Name:          "widgets",
	Resource:      "Widget",
	CountKey:      "totalWidgets",
	Filters:       map[string]string{"category": "category"},
	BoolFilters:   map[string]string{"isActive": "is_active"},
	SearchColumns: []string{"name"},
	Sorts:         map[string]string{"name": "name", "score": "score", "createdAt": "created_at"},
	DefaultSort:   "-score",
	GroupParam:    "category",
	GroupColumn:   "category",
	GroupValues:   []string{"a", "b", "c"},
}

func newWidgetApp(t *testing.T) (*fiber.App, *Repository[widget]) {
	t.Helper()
	db := dbtest.Open(t, &widget{})
	h := NewController[widget, widgetCreate, widgetUpdate](db, widgetDesc)
	h.Stats = func(ctx context.Context, db *gorm.DB, stats fiber.Map) error {
		var max int
		if err := Active(db.Model(&widget{})).Select("COALESCE(MAX(score), 0)").Scan(&max).Error; err != nil {
			return err
		}
		stats["maxScore"] = max
		return nil
	}

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	api := app.Group("/api", auth.OptionalAdmin(testSecret))
	h.Register(api.Group("/widgets"), auth.RequireAdmin(testSecret))
	return app, h.Repo
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, _, err := auth.IssueToken(testSecret, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      *helper.ErrorBody
	Pagination map[string]any `json:"pagination"`
}

func call(t *testing.T, app *fiber.App, method, path, body, token string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func seed(t *testing.T, repo *Repository[widget], name, cat string, score, order int) *widget {
	t.Helper()
	w := &widget{Base: Base{IsActive: true, DisplayOrder: order}, Name: name, Category: cat, Score: score, StartDate: time.Now()}
	if err := repo.Create(context.Background(), w); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return w
}

func TestCreateThenGet(t *testing.T) {
	app, _ := newWidgetApp(t)
	tok := adminToken(t)

	status, env := call(t, app, http.MethodPost, "/api/widgets", `{"name":"X","category":"a","startDate":"2024-01-15"}`, tok)
	if status != fiber.StatusBadRequest {
		t.Fatalf("short name accepted: %d", status)
	}

	status, env = call(t, app, http.MethodPost, "/api/widgets", `{"name":"Xy","category":"a","score":5,"startDate":"2024-01-15"}`, tok)
	if status != fiber.StatusCreated || !env.Success {
		t.Fatalf("create status = %d env = %+v", status, env)
	}
	var created widget
	json.Unmarshal(env.Data, &created)
	if created.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("no id generated")
	}

	status, env = call(t, app, http.MethodGet, "/api/widgets/"+created.ID.String(), "", "")
	if status != fiber.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	var got widget
	json.Unmarshal(env.Data, &got)
	if got.Name != "Xy" || got.Category != "a" || got.Score != 5 || !got.IsActive {
		t.Fatalf("got %+v", got)
	}
}

func TestCreate_RequiresAdmin(t *testing.T) {
	app, _ := newWidgetApp(t)
	status, _ := call(t, app, http.MethodPost, "/api/widgets", `{"name":"Xy","category":"a","startDate":"2024-01-15"}`, "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}

func TestCreate_CollectsAllViolations(t *testing.T) {
	app, repo := newWidgetApp(t)
	status, env := call(t, app, http.MethodPost, "/api/widgets",
		`{"name":"","category":"z","score":101,"startDate":"2024-05-01","endDate":"2024-01-01"}`, adminToken(t))
	if status != fiber.StatusBadRequest || env.Success {
		t.Fatalf("status = %d", status)
	}
	raw, _ := json.Marshal(env.Error.Details)
	for _, field := range []string{`"name"`, `"category"`, `"score"`, `"endDate"`} {
		if !strings.Contains(string(raw), field) {
			t.Fatalf("details %s missing %s", raw, field)
		}
	}
	if n, _ := repo.CountActive(context.Background()); n != 0 {
		t.Fatalf("record persisted after validation failure")
	}
}

func TestCreate_SchemaTypeMismatch(t *testing.T) {
	db := dbtest.Open(t, &widget{})
	desc := *widgetDesc
	desc.Schema = mustSchema(t, `{"type":"object","properties":{"score":{"type":"integer"}}}`)
	h := NewController[widget, widgetCreate, widgetUpdate](db, &desc)
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Post("/w", h.Create)

	status, env := call(t, app, http.MethodPost, "/w", `{"name":"   ","category":"a","score":"high","startDate":"2024-99-01"}`, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	raw, _ := json.Marshal(env.Error.Details)
	for _, field := range []string{`"score"`, `"name"`, `"startDate"`} {
		if !strings.Contains(string(raw), field) {
			t.Fatalf("details %s missing %s", raw, field)
		}
	}
	if strings.Count(string(raw), `"score"`) != 1 {
		t.Fatalf("score reported twice: %s", raw)
	}
}

func TestUpdate_PartialAndInvariant(t *testing.T) {
	app, repo := newWidgetApp(t)
	tok := adminToken(t)
	w := seed(t, repo, "alpha", "a", 10, 0)
	before := w.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	status, env := call(t, app, http.MethodPut, "/api/widgets/"+w.ID.String(), `{"score":42}`, tok)
	if status != fiber.StatusOK {
		t.Fatalf("update status = %d %+v", status, env.Error)
	}
	var got widget
	json.Unmarshal(env.Data, &got)
	if got.Score != 42 || got.Name != "alpha" || got.Category != "a" {
		t.Fatalf("partial update changed other fields: %+v", got)
	}
	if !got.UpdatedAt.After(before) {
		t.Fatalf("updatedAt not re-stamped")
	}

	past := w.StartDate.AddDate(0, 0, -3).Format("2006-01-02")
	status, _ = call(t, app, http.MethodPut, "/api/widgets/"+w.ID.String(), `{"endDate":"`+past+`"}`, tok)
	if status != fiber.StatusBadRequest {
		t.Fatalf("end before start accepted: %d", status)
	}
	stored, _ := repo.FindByID(context.Background(), w.ID.String(), true)
	if stored.EndDate != nil {
		t.Fatalf("invalid merge persisted")
	}

	status, _ = call(t, app, http.MethodPut, "/api/widgets/00000000-0000-0000-0000-000000000001", `{"score":1}`, tok)
	if status != fiber.StatusNotFound {
		t.Fatalf("missing id status = %d", status)
	}
	status, _ = call(t, app, http.MethodPut, "/api/widgets/not-a-uuid", `{"score":1}`, tok)
	if status != fiber.StatusNotFound {
		t.Fatalf("malformed id status = %d", status)
	}
}

func TestSoftDelete_InvisibleAndIdempotent(t *testing.T) {
	app, repo := newWidgetApp(t)
	tok := adminToken(t)
	keep := seed(t, repo, "keep", "a", 1, 0)
	gone := seed(t, repo, "gone", "a", 2, 0)

	status, _ := call(t, app, http.MethodDelete, "/api/widgets/"+gone.ID.String(), "", tok)
	if status != fiber.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	status, _ = call(t, app, http.MethodDelete, "/api/widgets/"+gone.ID.String(), "", tok)
	if status != fiber.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", status)
	}

	if status, _ := call(t, app, http.MethodGet, "/api/widgets/"+gone.ID.String(), "", ""); status != fiber.StatusNotFound {
		t.Fatalf("public get of inactive = %d", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/widgets/"+gone.ID.String(), "", tok); status != fiber.StatusOK {
		t.Fatalf("admin get of inactive = %d", status)
	}

	_, env := call(t, app, http.MethodGet, "/api/widgets", "", "")
	var items []widget
	json.Unmarshal(env.Data, &items)
	if len(items) != 1 || items[0].ID != keep.ID {
		t.Fatalf("public list = %+v", items)
	}
	_, env = call(t, app, http.MethodGet, "/api/widgets", "", tok)
	json.Unmarshal(env.Data, &items)
	if len(items) != 2 {
		t.Fatalf("admin list len = %d, want 2", len(items))
	}
	_, env = call(t, app, http.MethodGet, "/api/widgets?isActive=false", "", tok)
	json.Unmarshal(env.Data, &items)
	if len(items) != 1 || items[0].ID != gone.ID {
		t.Fatalf("admin isActive=false list = %+v", items)
	}

	_, env = call(t, app, http.MethodGet, "/api/widgets/stats", "", "")
	var stats map[string]any
	json.Unmarshal(env.Data, &stats)
	if stats["totalWidgets"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}
}

func TestList_FilterSearchAndGroup(t *testing.T) {
	app, repo := newWidgetApp(t)
	seed(t, repo, "React", "a", 90, 0)
	seed(t, repo, "Vue", "a", 70, 0)
	seed(t, repo, "Go", "b", 95, 0)

	_, env := call(t, app, http.MethodGet, "/api/widgets?category=a", "", "")
	if env.Pagination["totalWidgets"] != float64(2) || env.Pagination["totalItems"] != float64(2) {
		t.Fatalf("pagination = %v", env.Pagination)
	}

	_, env = call(t, app, http.MethodGet, "/api/widgets?search=rEa", "", "")
	var items []widget
	json.Unmarshal(env.Data, &items)
	if len(items) != 1 || items[0].Name != "React" {
		t.Fatalf("search result = %+v", items)
	}

	_, env = call(t, app, http.MethodGet, "/api/widgets?search=%25", "", "")
	json.Unmarshal(env.Data, &items)
	if len(items) != 0 {
		t.Fatalf("wildcard search matched %d", len(items))
	}

	status, env := call(t, app, http.MethodGet, "/api/widgets/category/b", "", "")
	json.Unmarshal(env.Data, &items)
	if status != fiber.StatusOK || len(items) != 1 || items[0].Name != "Go" {
		t.Fatalf("group result = %d %+v", status, items)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/widgets/category/zzz", "", ""); status != fiber.StatusBadRequest {
		t.Fatalf("invalid group status = %d", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/widgets?isActive=maybe", "", ""); status != fiber.StatusBadRequest {
		t.Fatalf("invalid bool filter status = %d", status)
	}

	_, env = call(t, app, http.MethodGet, "/api/widgets/stats", "", "")
	var stats struct {
		Total      int64        `json:"totalWidgets"`
		ByCategory []GroupCount `json:"byCategory"`
		MaxScore   int          `json:"maxScore"`
	}
	json.Unmarshal(env.Data, &stats)
	if stats.Total != 3 || stats.MaxScore != 95 || len(stats.ByCategory) != 2 ||
		stats.ByCategory[0].Key != "a" || stats.ByCategory[0].Count != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestList_PaginationConsistency(t *testing.T) {
	app, repo := newWidgetApp(t)
	// equal scores force the display_order/id tie-break
	for i := 0; i < 23; i++ {
		seed(t, repo, fmt.Sprintf("w%02d", i), "a", 50, i%3)
	}

	for _, limit := range []int{1, 5, 7, 10, 23, 50} {
		seen := map[string]bool{}
		var all []string
		wantPages := (23 + limit - 1) / limit
		for page := 1; ; page++ {
			_, env := call(t, app, http.MethodGet, fmt.Sprintf("/api/widgets?page=%d&limit=%d", page, limit), "", "")
			if int(env.Pagination["totalPages"].(float64)) != wantPages {
				t.Fatalf("limit %d: totalPages = %v, want %d", limit, env.Pagination["totalPages"], wantPages)
			}
			var items []widget
			json.Unmarshal(env.Data, &items)
			for _, it := range items {
				if seen[it.ID.String()] {
					t.Fatalf("limit %d: duplicate %s", limit, it.Name)
				}
				seen[it.ID.String()] = true
				all = append(all, it.ID.String())
			}
			if env.Pagination["hasNext"] != true {
				break
			}
		}
		if len(all) != 23 {
			t.Fatalf("limit %d: collected %d items, want 23", limit, len(all))
		}
	}

	items, _, err := repo.List(context.Background(), ListQuery{ListParams: helper.ListParams{Page: 1, Limit: 100}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		if a.DisplayOrder > b.DisplayOrder || (a.DisplayOrder == b.DisplayOrder && a.ID.String() > b.ID.String()) {
			t.Fatalf("tie-break order broken at %d", i)
		}
	}
}

func TestList_EmptyHasZeroPages(t *testing.T) {
	app, _ := newWidgetApp(t)
	_, env := call(t, app, http.MethodGet, "/api/widgets", "", "")
	if env.Pagination["totalPages"] != float64(0) || env.Pagination["hasNext"] != false || string(env.Data) != "[]" {
		t.Fatalf("empty list = %s %v", env.Data, env.Pagination)
	}
}

func TestHTTPError(t *testing.T) {
	var fe *fiber.Error
	if err := HTTPError(ErrNotFound, "Skill"); !errors.As(err, &fe) || fe.Code != 404 || fe.Message != "Skill not found" {
		t.Fatalf("not found = %v", err)
	}
	if err := HTTPError(fmt.Errorf("wrap: %w", ErrConflict), "Project"); !errors.As(err, &fe) || fe.Code != 409 {
		t.Fatalf("conflict = %v", err)
	}
	other := errors.New("disk full")
	if err := HTTPError(other, "x"); err != other {
		t.Fatalf("unknown error rewritten: %v", err)
	}
	if !isUniqueViolation(errors.New("UNIQUE constraint failed: projects.slug")) {
		t.Fatalf("sqlite unique message not detected")
	}
}

package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	skillModel "portfolio_backend/internals/features/skills/model"
	helper "portfolio_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

// violations maps every reported field of a 400 response to its message.
func (e envelope) violations(t *testing.T) map[string]string {
	t.Helper()
	if e.Error == nil {
		t.Fatalf("no error body in %+v", e)
	}
	raw, err := json.Marshal(e.Error.Details)
	if err != nil {
		t.Fatalf("marshal details: %v", err)
	}
	var list []helper.FieldViolation
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("details %s: %v", raw, err)
	}
	out := make(map[string]string, len(list))
	for _, v := range list {
		out[v.Field] = v.Message
	}
	return out
}

func (h *harness) countRows(t *testing.T) int64 {
	t.Helper()
	var total int64
	for _, m := range Models() {
		var n int64
		if err := h.db.Model(m).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", m, err)
		}
		total += n
	}
	return total
}

func TestBlankRequiredFieldsRejected(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name, method, path, body string
		fields                   []string
	}{
		{"skill", http.MethodPost, "/api/skills",
			`{"name":"   ","category":"backend","proficiency":50}`, []string{"name"}},
		{"project", http.MethodPost, "/api/projects",
			`{"title":"  ","description":"\t\n","category":"web","technologies":["Go"],"startDate":"2024-01-01"}`, []string{"title", "description"}},
		{"experience", http.MethodPost, "/api/experience",
			`{"company":" ","position":"Engineer","employmentType":"full-time","startDate":"2024-01-01"}`, []string{"company"}},
		{"education", http.MethodPost, "/api/education",
			`{"institution":"MIT","degree":"  ","level":"master","startDate":"2020-09-01"}`, []string{"degree"}},
		{"profile", http.MethodPut, "/api/profile",
			`{"name":"  ","title":"Engineer","bio":"   ","email":"ada@example.com"}`, []string{"name", "bio"}},
		{"contact", http.MethodPost, "/api/contact",
			`{"name":"Ada Lovelace","email":"ada@example.com","subject":"   ","message":"x         "}`, []string{"subject", "message"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := h.call(t, tc.method, tc.path, tc.body, true)
			if status != fiber.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%+v)", status, env)
			}
			got := env.violations(t)
			for _, f := range tc.fields {
				if _, ok := got[f]; !ok {
					t.Fatalf("violations %v do not name %q", got, f)
				}
			}
		})
	}
	if n := h.countRows(t); n != 0 {
		t.Fatalf("stored %d rows from rejected input", n)
	}
}

func TestStringsAreTrimmedBeforeStoring(t *testing.T) {
	h := newHarness(t)
	status, env := h.call(t, http.MethodPost, "/api/skills", `{"name":"  Go  ","category":"backend","proficiency":90,"icon":" go.svg "}`, true)
	var s skillModel.SkillModel
	env.decode(t, &s)
	if status != fiber.StatusCreated || s.Name != "Go" || s.Icon != "go.svg" {
		t.Fatalf("create = %d %+v", status, s)
	}

	status, env = h.call(t, http.MethodPut, "/api/skills/"+s.ID.String(), `{"name":"    "}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("blank update = %d, want 400", status)
	}
	if _, ok := env.violations(t)["name"]; !ok {
		t.Fatalf("blank update violations = %v", env.violations(t))
	}
	var stored skillModel.SkillModel
	h.db.First(&stored, "id = ?", s.ID)
	if stored.Name != "Go" {
		t.Fatalf("name after rejected update = %q", stored.Name)
	}
}

func TestViolationsAreCollectedTogether(t *testing.T) {
	h := newHarness(t)
	status, env := h.call(t, http.MethodPost, "/api/skills", `{"proficiency":"high","category":"zzz"}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	got := env.violations(t)
	for _, f := range []string{"proficiency", "name", "category"} {
		if _, ok := got[f]; !ok {
			t.Fatalf("violations %v do not name %q", got, f)
		}
	}
	if len(got) != 3 {
		t.Fatalf("violations = %v, want exactly name, category and proficiency", got)
	}
}

func TestInvalidDateNamesField(t *testing.T) {
	h := newHarness(t)
	status, env := h.call(t, http.MethodPost, "/api/projects",
		`{"description":"A thing","category":"web","technologies":["Go"],"startDate":"2024-13-45"}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	got := env.violations(t)
	if _, ok := got["startDate"]; !ok {
		t.Fatalf("violations %v do not name startDate", got)
	}
	if _, ok := got["title"]; !ok {
		t.Fatalf("violations %v do not name title", got)
	}

	status, env = h.call(t, http.MethodPost, "/api/experience",
		`{"company":"Acme","position":"Engineer","employmentType":"contract","startDate":"2023-01-01"}`, true)
	var e struct {
		ID string `json:"id"`
	}
	env.decode(t, &e)
	if status != fiber.StatusCreated {
		t.Fatalf("create experience = %d %+v", status, env.Error)
	}
	status, env = h.call(t, http.MethodPut, "/api/experience/"+e.ID, `{"endDate":"2024-02-30"}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad endDate update = %d, want 400", status)
	}
	if _, ok := env.violations(t)["endDate"]; !ok {
		t.Fatalf("violations %v do not name endDate", env.violations(t))
	}
}

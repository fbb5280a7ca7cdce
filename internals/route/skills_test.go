package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSkillsFilterAndStats(t *testing.T) {
	h := newHarness(t)
	for _, s := range []struct {
		name, category string
		proficiency    int
		years          float64
	}{
		{"Go", "backend", 90, 5},
		{"PostgreSQL", "backend", 80, 4},
		{"React", "frontend", 70, 3},
	} {
		body := fmt.Sprintf(`{"name":%q,"category":%q,"proficiency":%d,"yearsOfExperience":%v}`, s.name, s.category, s.proficiency, s.years)
		if status, env := h.call(t, http.MethodPost, "/api/skills", body, true); status != fiber.StatusCreated {
			t.Fatalf("create %s = %d %+v", s.name, status, env.Error)
		}
	}

	status, env := h.call(t, http.MethodGet, "/api/skills?category=backend", "", false)
	if status != fiber.StatusOK || env.Pagination["totalSkills"] != float64(2) {
		t.Fatalf("filter = %d %+v", status, env.Pagination)
	}

	status, env = h.call(t, http.MethodGet, "/api/skills/stats", "", false)
	var stats map[string]any
	env.decode(t, &stats)
	if status != fiber.StatusOK || stats["totalSkills"] != float64(3) || stats["averageProficiency"] != float64(80) || stats["maxProficiency"] != float64(90) {
		t.Fatalf("stats = %d %+v", status, stats)
	}
	if cats, ok := stats["byCategory"].([]any); !ok || len(cats) != 2 {
		t.Fatalf("byCategory = %+v", stats["byCategory"])
	}

	status, _ = h.call(t, http.MethodPost, "/api/skills", `{"name":"Bad","category":"backend","proficiency":101}`, true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("proficiency 101 = %d", status)
	}
}

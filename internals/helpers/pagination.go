package helper

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage = 1
)

type Options struct {
	DefaultLimit int
	MaxLimit     int
}

var DefaultOpts = Options{DefaultLimit: 10, MaxLimit: 100}

// ListParams is the parsed page/limit/sort/search part of a list query.
type ListParams struct {
	Page   int
	Limit  int
	Sort   string
	Search string
}

func (p ListParams) Offset() int { return (p.Page - 1) * p.Limit }

// ParseListParams reads ?page, ?limit (alias ?per_page), ?sort and ?search.
// ?sort takes a key with an optional "-" prefix for descending order; the
// older ?sort_by + ?order pair is still accepted.
func ParseListParams(c *fiber.Ctx, opt Options) ListParams {
	page := atoiDefault(c.Query("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := atoiDefault(firstNonEmpty(c.Query("limit"), c.Query("per_page")), opt.DefaultLimit)
	if limit < 1 {
		limit = opt.DefaultLimit
	}
	if opt.MaxLimit > 0 && limit > opt.MaxLimit {
		limit = opt.MaxLimit
	}

	sort := strings.TrimSpace(c.Query("sort"))
	if sortBy := strings.TrimSpace(c.Query("sort_by")); sort == "" && sortBy != "" {
		sort = sortBy
		if strings.EqualFold(strings.TrimSpace(c.Query("order")), "desc") {
			sort = "-" + sortBy
		}
	}

	return ListParams{
		Page:   page,
		Limit:  limit,
		Sort:   sort,
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// OrderClause resolves a sort key against a whitelist of key -> column.
// Unknown keys fall back to def. The returned clause has no ORDER BY prefix.
func OrderClause(sort string, allowed map[string]string, def string) string {
	key := strings.TrimSpace(sort)
	if key == "" {
		key = def
	}
	desc := strings.HasPrefix(key, "-")
	col, ok := allowed[strings.TrimPrefix(key, "-")]
	if !ok {
		desc = strings.HasPrefix(def, "-")
		col, ok = allowed[strings.TrimPrefix(def, "-")]
		if !ok {
			return ""
		}
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

/* ===============================
   Pagination meta
=================================*/

type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	Limit       int
	HasNext     bool
	HasPrev     bool
	// CountKey adds an entity-named alias of TotalItems, e.g. "totalSkills".
	CountKey string
}

func BuildPagination(total int64, page, limit int, countKey string) Pagination {
	if limit <= 0 {
		limit = DefaultOpts.DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		CountKey:    countKey,
	}
}

func (p Pagination) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"currentPage": p.CurrentPage,
		"totalPages":  p.TotalPages,
		"totalItems":  p.TotalItems,
		"limit":       p.Limit,
		"hasNext":     p.HasNext,
		"hasPrev":     p.HasPrev,
	}
	if p.CountKey != "" {
		m[p.CountKey] = p.TotalItems
	}
	return json.Marshal(m)
}

func (p *Pagination) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	fields := map[string]any{
		"currentPage": &p.CurrentPage,
		"totalPages":  &p.TotalPages,
		"totalItems":  &p.TotalItems,
		"limit":       &p.Limit,
		"hasNext":     &p.HasNext,
		"hasPrev":     &p.HasPrev,
	}
	for k, v := range raw {
		dst, known := fields[k]
		if !known {
			if strings.HasPrefix(k, "total") && k != "totalItems" && k != "totalPages" {
				p.CountKey = k
			}
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
	}
	return nil
}

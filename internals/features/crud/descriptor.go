package crud

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/qri-io/jsonschema"
)

// Descriptor is the data that turns the generic engine into one entity's
// API: its route segment, query surface and body schema.
type Descriptor struct {
	// Name is the route segment, Resource the label used in messages.
	Name     string
	Resource string
	// CountKey aliases totalItems in pagination, e.g. "totalSkills".
	CountKey string

	// query param -> column, exact match
	Filters     map[string]string
	BoolFilters map[string]string
	// lowercase substring match on any of these
	SearchColumns []string
	// sort key -> column; DefaultSort may carry a "-" prefix
	Sorts       map[string]string
	DefaultSort string

	// GroupParam/GroupColumn back the /<group>/:value routes and the stats
	// breakdown. GroupValues is the closed set the value must come from.
	GroupParam  string
	GroupColumn string
	GroupValues []string

	Schema *jsonschema.Schema
}

// ParseFilters resolves the descriptor's filter params from the query
// string into column -> value.
func (d *Descriptor) ParseFilters(c *fiber.Ctx) (map[string]any, error) {
	out := make(map[string]any)
	for param, col := range d.Filters {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			out[col] = v
		}
	}
	for param, col := range d.BoolFilters {
		v := strings.TrimSpace(c.Query(param))
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid value for "+param+": expected true or false")
		}
		out[col] = b
	}
	return out, nil
}

// ValidGroup reports whether v is one of GroupValues. An empty set accepts
// anything.
func (d *Descriptor) ValidGroup(v string) bool {
	if len(d.GroupValues) == 0 {
		return true
	}
	for _, g := range d.GroupValues {
		if g == v {
			return true
		}
	}
	return false
}

// StatsGroupKey is the stats member holding the per-group counts, e.g.
// "byCategory".
func (d *Descriptor) StatsGroupKey() string {
	if d.GroupParam == "" {
		return ""
	}
	return "by" + strings.ToUpper(d.GroupParam[:1]) + d.GroupParam[1:]
}

package crud

import (
	"encoding/json"
	"testing"

	"github.com/qri-io/jsonschema"
)

func mustSchema(t *testing.T, doc string) *jsonschema.Schema {
	t.Helper()
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(doc), rs); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return rs
}

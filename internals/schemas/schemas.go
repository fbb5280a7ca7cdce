// Package schemas holds the JSON schema documents that describe the type
// shape of every request body.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

//go:embed *.json
var files embed.FS

var (
	Profile    = mustLoad("profile.json")
	Project    = mustLoad("project.json")
	Skill      = mustLoad("skill.json")
	Experience = mustLoad("experience.json")
	Education  = mustLoad("education.json")
	Contact    = mustLoad("contact.json")
	Login      = mustLoad("login.json")
)

func mustLoad(name string) *jsonschema.Schema {
	raw, err := files.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("schemas: read %s: %v", name, err))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		panic(fmt.Sprintf("schemas: compile %s: %v", name, err))
	}
	return rs
}

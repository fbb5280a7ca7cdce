package helper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/qri-io/jsonschema"
)

// FieldViolation is one (field, message) pair of a rejected input.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in one pass.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})
	if err := v.RegisterValidation("after_field", afterField); err != nil {
		panic(err)
	}
	return v
}

// afterField: `after_field=StartDate` passes when either date is absent,
// otherwise the field must not be before the named sibling.
func afterField(fl validator.FieldLevel) bool {
	cur, ok := asTime(fl.Field())
	if !ok || cur.IsZero() {
		return true
	}
	parent := fl.Parent()
	for parent.Kind() == reflect.Ptr {
		if parent.IsNil() {
			return true
		}
		parent = parent.Elem()
	}
	other, ok := asTime(parent.FieldByName(fl.Param()))
	if !ok || other.IsZero() {
		return true
	}
	return !cur.Before(other)
}

func asTime(v reflect.Value) (time.Time, bool) {
	if !v.IsValid() {
		return time.Time{}, false
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return time.Time{}, false
		}
		v = v.Elem()
	}
	switch t := v.Interface().(type) {
	case time.Time:
		return t, true
	case Date:
		return t.Time, true
	}
	return time.Time{}, false
}

// Validate runs the struct's declarative rules and returns every violation.
func Validate(s any) []FieldViolation {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{Field: "body", Message: err.Error()}}
	}
	out := make([]FieldViolation, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldViolation{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min", "gte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "after_field":
		return "must not be before " + lowerFirst(fe.Param())
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

/* ===============================
   JSON schema (type shape)
=================================*/

// CheckSchema validates the raw body against a JSON schema and converts
// every key error into a FieldViolation. A non-nil error means the body is
// not JSON at all.
func CheckSchema(ctx context.Context, schema *jsonschema.Schema, body []byte) ([]FieldViolation, error) {
	if schema == nil {
		return nil, nil
	}
	kerrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return nil, err
	}
	out := make([]FieldViolation, 0, len(kerrs))
	for _, ke := range kerrs {
		out = append(out, FieldViolation{Field: pointerToPath(ke.PropertyPath), Message: ke.Message})
	}
	return out, nil
}

// pointerToPath turns "/images/0/url" into "images[0].url".
func pointerToPath(ptr string) string {
	ptr = strings.Trim(ptr, "/")
	if ptr == "" {
		return "body"
	}
	var b strings.Builder
	for i, seg := range strings.Split(ptr, "/") {
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize trims surrounding whitespace from every string reachable from v
// through struct fields, pointers and slices. Fields tagged `trim:"-"` are
// kept exactly as sent.
func Normalize(v any) {
	normalize(reflect.ValueOf(v))
}

func normalize(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			normalize(v.Elem())
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			normalize(v.Index(i))
		}
	case reflect.Struct:
		if v.Type() == dateType {
			return
		}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("trim") == "-" {
				continue
			}
			normalize(v.Field(i))
		}
	}
}

var dateType = reflect.TypeOf(Date{})

// dateViolations reports top-level Date fields of out whose raw value is a
// string that does not parse as a date.
func dateViolations(out any, fields map[string]json.RawMessage, rejected map[string]bool) []FieldViolation {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var violations []FieldViolation
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft != dateType {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		raw, ok := fields[name]
		if !ok || rejected[name] || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if _, err := ParseDate(s); err != nil {
			violations = append(violations, FieldViolation{Field: name, Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}
	return violations
}

// rootField returns the top-level property of a violation path:
// "images[0].url" -> "images".
func rootField(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

// DecodeAndValidate checks the body against schema, decodes it into out,
// trims its strings and applies out's validation rules. Violations from
// every stage are returned together; a property that already failed the
// type check or date parsing is left out of the decode and not reported
// twice. Nothing is persisted by this function.
func DecodeAndValidate(c *fiber.Ctx, schema *jsonschema.Schema, out any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		body = []byte("{}")
	}

	violations, err := CheckSchema(c.UserContext(), schema, body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if len(violations) > 0 {
			return NewValidationError(violations...)
		}
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}

	rejected := make(map[string]bool, len(violations))
	for _, v := range violations {
		rejected[rootField(v.Field)] = true
	}
	for _, v := range dateViolations(out, fields, rejected) {
		violations = append(violations, v)
		rejected[v.Field] = true
	}
	if len(rejected) > 0 {
		for name := range rejected {
			delete(fields, name)
		}
		if body, err = json.Marshal(fields); err != nil {
			return err
		}
	}

	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}
	Normalize(out)
	for _, v := range Validate(out) {
		if !rejected[rootField(v.Field)] {
			violations = append(violations, v)
		}
	}
	if len(violations) > 0 {
		return NewValidationError(violations...)
	}
	return nil
}

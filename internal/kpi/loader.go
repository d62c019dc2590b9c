package kpi

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/fairwaykit/fairway/internal/canon"
)

//go:embed schema.cue
var schemaSource string

// ValidationError is a template document that failed schema validation.
type ValidationError struct {
	Path    string // source file, when loaded from disk
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid template %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("invalid template: %s", e.Message)
}

// IsValidationError reports whether err is a template schema failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// LoadFile reads a template document from a YAML or JSON file, validates
// it against the embedded schema, and returns the parsed template. JSON is
// a YAML subset, so one decoder covers both.
func LoadFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("load template: %w", err)
	}
	t, err := Load(data)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Path = path
			return Template{}, ve
		}
		return Template{}, fmt.Errorf("load template %s: %w", path, err)
	}
	return t, nil
}

// Load parses and validates a template document from raw YAML or JSON.
func Load(data []byte) (Template, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Template{}, &ValidationError{Message: fmt.Sprintf("not valid YAML or JSON: %v", err)}
	}

	if err := validateSchema(doc); err != nil {
		return Template{}, err
	}

	value, err := canon.FromGo(doc)
	if err != nil {
		return Template{}, &ValidationError{Message: err.Error()}
	}
	content, ok := value.(canon.Object)
	if !ok {
		return Template{}, &ValidationError{Message: fmt.Sprintf("document is %T, expected object", value)}
	}

	t, err := fromContent(content)
	if err != nil {
		return Template{}, &ValidationError{Message: err.Error()}
	}
	return t, nil
}

// validateSchema unifies the decoded document with the embedded #Template
// definition.
func validateSchema(doc any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile template schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Template"))
	if !def.Exists() {
		return fmt.Errorf("template schema missing #Template definition")
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return &ValidationError{Message: err.Error()}
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

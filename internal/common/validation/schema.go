// internal/common/validation/schema.go
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is wrapped by every document validation failure.
var ErrSchemaViolation = errors.New("SCHEMA_VIOLATION")

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustCompile panics on an invalid schema; schemas are package-level literals.
func MustCompile(name, schemaJSON string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return &Schema{name: name, schema: s}
}

func (s *Schema) Name() string { return s.name }

// Validate checks a raw JSON document.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaViolation, s.name, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s: %s", ErrSchemaViolation, s.name, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateGo checks an already decoded value, e.g. a request body.
func (s *Schema) ValidateGo(v interface{}) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaViolation, s.name, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s: %s", ErrSchemaViolation, s.name, strings.Join(errs, "; "))
	}
	return nil
}

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlPattern      = regexp.MustCompile(`^https?://[^\s/$.?#][^\s]*\.[^\s]+$`)
	languagePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateURL accepts absolute http(s) URLs with a dotted host.
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}

// ValidateLanguage accepts BCP 47 style tags such as "en" or "pt-BR".
func ValidateLanguage(tag string) bool {
	return languagePattern.MatchString(tag)
}

// internal/common/validation/schema_test.go
package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = MustCompile("slide", `{
	"type": "object",
	"required": ["title", "bullets"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"bullets": {"type": "array", "items": {"type": "string"}}
	}
}`)

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"title":"Problem","bullets":["a","b"]}`, false},
		{"missing bullets", `{"title":"Problem"}`, true},
		{"wrong type", `{"title":"Problem","bullets":"a"}`, true},
		{"empty title", `{"title":"","bullets":[]}`, true},
		{"not json", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testSchema.Validate([]byte(tt.doc))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaViolation))
			assert.Contains(t, err.Error(), "slide")
		})
	}
}

func TestSchemaValidateGo(t *testing.T) {
	assert.NoError(t, testSchema.ValidateGo(map[string]interface{}{"title": "x", "bullets": []interface{}{}}))
	assert.Error(t, testSchema.ValidateGo(map[string]interface{}{"title": 3}))
	assert.Equal(t, "slide", testSchema.Name())
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("bad", `{"type": 12}`) })
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://www.alibaba.com/product-detail/123.html"))
	assert.True(t, ValidateURL("http://amazon.com/dp/B0"))
	assert.False(t, ValidateURL("ftp://example.com/x"))
	assert.False(t, ValidateURL("www.alibaba.com"))
	assert.False(t, ValidateURL("https://localhost"))
	assert.False(t, ValidateURL(""))
}

func TestValidateEmailAndLanguage(t *testing.T) {
	assert.True(t, ValidateEmail("founder@example.com"))
	assert.False(t, ValidateEmail("founder@"))
	assert.True(t, ValidateLanguage("en"))
	assert.True(t, ValidateLanguage("pt-BR"))
	assert.False(t, ValidateLanguage("English"))
}

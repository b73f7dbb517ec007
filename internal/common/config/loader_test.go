// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: idealab
    user: lab
  redis:
    address: localhost:6379
genai:
  api_key: test-key
`

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "idea-lab", cfg.App.Name)
	assert.Equal(t, "en", cfg.App.DefaultLanguage)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "business_ideas", cfg.Database.Elasticsearch.Index)
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
	assert.Equal(t, "gemini", cfg.GenAI.Provider)
	assert.Equal(t, 3, cfg.GenAI.MaxRetries)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 30*24*time.Hour, cfg.Cache.CacheTTL())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("LAB_TEST_PG_PASSWORD", "s3cret")
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
  model: gemini-1.5-pro
`+"\n"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", cfg.GenAI.Model)

	cfg, err = LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: localhost
    database: idealab
    user: lab
    password: ${LAB_TEST_PG_PASSWORD}
cache:
  backend: memory
genai:
  api_key: k
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "password=s3cret")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "genai:\n  api_key: k\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name: "unknown provider",
			body: `
database:
  postgres: {host: h, database: d, user: u}
  redis: {address: a}
genai:
  provider: openai
`,
			wantErr: "genai.provider must be gemini or gateway",
		},
		{
			name: "gateway without base url",
			body: `
database:
  postgres: {host: h, database: d, user: u}
  redis: {address: a}
genai:
  provider: gateway
`,
			wantErr: "genai.base_url is required",
		},
		{
			name: "redis backend without address",
			body: `
database:
  postgres: {host: h, database: d, user: u}
genai:
  api_key: k
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "funding notifications without topic",
			body: `
database:
  postgres: {host: h, database: d, user: u}
cache: {backend: memory}
genai: {api_key: k}
notifications:
  funding: {enabled: true}
`,
			wantErr: "notifications.funding.topic_arn is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"generate-roadmap": {Enabled: false},
	}}
	applyDefaults(cfg)

	w := GetWorkerConfig(cfg, "generate-roadmap")
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 60000, w.Timeout)
	assert.False(t, IsWorkerEnabled(cfg, "generate-roadmap"))
	assert.True(t, IsWorkerEnabled(cfg, "generate-canvas"))
	assert.Error(t, ValidateWorkers(cfg))
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

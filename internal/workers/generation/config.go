// internal/workers/generation/config.go
package generation

import (
	"strings"
	"time"

	"idea-lab/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	DefaultLanguage string
}

// ConfigKey is the workers.<key> entry for a task type. Viper splits keys
// on dots, so the task type namespace is dropped.
func ConfigKey(taskType string) string {
	return strings.TrimPrefix(taskType, "idea-lab.")
}

// ConfigFor reads the per-task worker settings, falling back to the
// worker defaults when the task has no entry.
func ConfigFor(cfg *config.Config, taskType string) *Config {
	wc := config.GetWorkerConfig(cfg, ConfigKey(taskType))
	return &Config{
		Timeout:         config.GetDuration(wc.Timeout),
		DefaultLanguage: cfg.App.DefaultLanguage,
	}
}

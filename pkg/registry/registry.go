// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

var validStatuses = map[string]bool{
	"planned":     true,
	"in-progress": true,
	"completed":   true,
	"verified":    true,
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry stamps LastUpdated and writes reg as indented JSON.
func SaveRegistry(path string, reg *ActivityRegistry, now time.Time) error {
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate reports every problem found, joined into one error.
func Validate(reg *ActivityRegistry) error {
	var problems []string
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for i, a := range reg.Activities {
		where := fmt.Sprintf("activity %d (%s)", i, a.ID)
		switch {
		case a.ID == "":
			problems = append(problems, where+": missing id")
		case ids[a.ID]:
			problems = append(problems, where+": duplicate id")
		}
		ids[a.ID] = true

		switch {
		case a.TaskType == "":
			problems = append(problems, where+": missing taskType")
		case taskTypes[a.TaskType]:
			problems = append(problems, where+": duplicate taskType")
		}
		taskTypes[a.TaskType] = true

		if !validStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Sprintf("%s: invalid status %q", where, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", where, a.Timeout))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("registry invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

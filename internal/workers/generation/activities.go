// internal/workers/generation/activities.go
package generation

import (
	"idea-lab/internal/common/config"
	"idea-lab/internal/common/errors"
	"idea-lab/pkg/registry"
)

type activityInfo struct {
	name     string
	desc     string
	required []string
	output   string
}

var activityInfos = map[string]activityInfo{
	TaskGenerateIdeas: {"Generate Ideas", "Generate business ideas for an industry", []string{"industry"}, "ideas"},
	TaskDetails:       {"Generate Blueprint", "Generate the business blueprint for an idea", []string{"idea"}, "businessDetails"},
	TaskStressTest:    {"Stress Test", "Challenge an idea's assumptions", []string{"idea"}, "stressTest"},
	TaskFinancials:    {"Estimate Financials", "Estimate unit economics and break-even metrics", []string{"idea"}, "financials"},
	TaskRoadmap:       {"Launch Roadmap", "Generate or reuse the launch roadmap with progress", []string{"idea"}, "roadmap"},
	TaskSuppliers:     {"Find Suppliers", "Find sourcing links for the idea's machine", []string{"machineName"}, "suppliers"},
	TaskPitchDeck:     {"Pitch Deck", "Outline an investor pitch deck", []string{"idea"}, "pitchDeck"},
	TaskCanvas:        {"Business Canvas", "Generate and store a business model canvas", []string{"idea"}, "canvas"},
	TaskFunding:       {"Funding Milestones", "Split a funding amount into milestones", []string{"idea", "amount"}, "fundingMilestones"},
}

// Activities describes every generation task type for the activity registry.
func Activities(cfg *config.Config) []registry.Activity {
	codes := []string{
		string(errors.ErrCodeGenerationFailed),
		string(errors.ErrCodeGenerationTimeout),
		string(errors.ErrCodeGenerationEmpty),
		string(errors.ErrCodeInvalidPayload),
		string(errors.ErrCodeValidationFailed),
	}

	acts := make([]registry.Activity, 0, len(TaskTypes))
	for _, tt := range TaskTypes {
		info := activityInfos[tt]
		key := ConfigKey(tt)
		wc := config.GetWorkerConfig(cfg, key)

		status := "completed"
		if !config.IsWorkerEnabled(cfg, key) {
			status = "planned"
		}
		acts = append(acts, registry.Activity{
			ID:                   key,
			DisplayName:          info.name,
			Description:          info.desc,
			Category:             "generation",
			Version:              cfg.App.Version,
			TaskType:             tt,
			ImplementationStatus: status,
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": info.required,
			},
			OutputVariable: info.output,
			ErrorCodes:     codes,
			Timeout:        config.GetDuration(wc.Timeout).String(),
			Retries:        errors.GetRetryCount(errors.ErrCodeGenerationFailed),
			Tags:           []string{"genai", kinds[tt]},
		})
	}
	return acts
}

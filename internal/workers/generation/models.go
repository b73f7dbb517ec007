// internal/workers/generation/models.go
package generation

import (
	"idea-lab/internal/finance"
	"idea-lab/internal/models"
)

// Input is the process variable set a generation task reads.
type Input struct {
	Idea        *models.BusinessIdea `json:"idea"`
	Industry    string               `json:"industry"`
	MachineName string               `json:"machineName"`
	Amount      float64              `json:"amount"`
	Language    string               `json:"language"`
}

// Output is written back as process variables. Only the field for the
// task's content kind is set.
type Output struct {
	Kind            string                     `json:"contentKind"`
	Ideas           []models.BusinessIdea      `json:"ideas,omitempty"`
	Details         *models.BusinessDetails    `json:"businessDetails,omitempty"`
	StressTest      *models.StressTestAnalysis `json:"stressTest,omitempty"`
	Financials      *models.FinancialEstimates `json:"financials,omitempty"`
	Metrics         *finance.Metrics           `json:"financialMetrics,omitempty"`
	Roadmap         models.Roadmap             `json:"roadmap,omitempty"`
	RoadmapProgress *int                       `json:"roadmapProgress,omitempty"`
	Suppliers       []models.SourcingLink      `json:"suppliers,omitempty"`
	PitchDeck       *models.PitchDeck          `json:"pitchDeck,omitempty"`
	Canvas          *models.BusinessCanvas     `json:"canvas,omitempty"`
	Milestones      []models.FundingMilestone  `json:"fundingMilestones,omitempty"`
}

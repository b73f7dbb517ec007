// internal/models/content.go
package models

import "time"

// BusinessDetails is the "blueprint" view of an idea.
type BusinessDetails struct {
	Overview                string   `json:"overview"`
	TargetMarket            string   `json:"targetMarket"`
	SkillRequirements       []string `json:"skillRequirements"`
	OperationalRequirements []string `json:"operationalRequirements"`
	StartupCosts            []string `json:"startupCosts"`
	RevenueStreams          []string `json:"revenueStreams"`
	MarketingStrategy       []string `json:"marketingStrategy"`
	Risks                   []string `json:"risks"`
}

// IsEmpty reports whether the generator produced nothing usable.
func (d *BusinessDetails) IsEmpty() bool {
	return d == nil || (d.Overview == "" && d.TargetMarket == "" &&
		len(d.SkillRequirements) == 0 && len(d.OperationalRequirements) == 0 &&
		len(d.RevenueStreams) == 0)
}

// StressScenario is one adverse scenario of a stress test.
type StressScenario struct {
	Scenario   string `json:"scenario"`
	Impact     string `json:"impact"`
	Likelihood string `json:"likelihood"`
	Mitigation string `json:"mitigation"`
}

// StressTestAnalysis challenges an idea's assumptions.
type StressTestAnalysis struct {
	ViabilityScore int              `json:"viabilityScore"`
	Summary        string           `json:"summary"`
	Weaknesses     []string         `json:"weaknesses"`
	Scenarios      []StressScenario `json:"scenarios"`
	Recommendation string           `json:"recommendation"`
}

func (s *StressTestAnalysis) IsEmpty() bool {
	return s == nil || (s.Summary == "" && len(s.Weaknesses) == 0 && len(s.Scenarios) == 0)
}

// FinancialEstimates is generated once per session and then edited by the user.
type FinancialEstimates struct {
	InitialInvestment     float64 `json:"initialInvestment"`
	MonthlyFixedCosts     float64 `json:"monthlyFixedCosts"`
	CostPerUnit           float64 `json:"costPerUnit"`
	PricePerUnit          float64 `json:"pricePerUnit"`
	EstimatedMonthlySales float64 `json:"estimatedMonthlySales"`
	Currency              string  `json:"currency"`
}

func (f *FinancialEstimates) IsEmpty() bool {
	return f == nil || (f.InitialInvestment == 0 && f.MonthlyFixedCosts == 0 &&
		f.CostPerUnit == 0 && f.PricePerUnit == 0 && f.EstimatedMonthlySales == 0)
}

// LandedCost adjusts the initial investment for import costs.
// Percent fields are whole percents: 15 means 15%.
type LandedCost struct {
	Shipping       float64 `json:"shipping"`
	CustomsPercent float64 `json:"customsPercent"`
	VATPercent     float64 `json:"vatPercent"`
	Fees           float64 `json:"fees"`
	Enabled        bool    `json:"enabled"`
}

// RoadmapPhase is one ordered phase of a launch roadmap.
type RoadmapPhase struct {
	PhaseName string   `json:"phaseName"`
	Duration  string   `json:"duration"`
	Steps     []string `json:"steps"`
}

// Roadmap is an ordered list of phases.
type Roadmap []RoadmapPhase

// TotalSteps sums the step counts of all phases.
func (r Roadmap) TotalSteps() int {
	n := 0
	for _, p := range r {
		n += len(p.Steps)
	}
	return n
}

// HasStep reports whether (phase, step) addresses an existing step.
func (r Roadmap) HasStep(phase, step int) bool {
	return phase >= 0 && phase < len(r) && step >= 0 && step < len(r[phase].Steps)
}

// SourcingLink points at a listing for the idea's machine.
type SourcingLink struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// PitchSlide is one slide of a pitch deck.
type PitchSlide struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Bullets  []string `json:"bullets"`
}

// PitchDeck is an ordered list of slides.
type PitchDeck struct {
	Slides []PitchSlide `json:"slides"`
}

func (p *PitchDeck) IsEmpty() bool {
	return p == nil || len(p.Slides) == 0
}

// BusinessCanvas is a business model canvas with nine sections.
type BusinessCanvas struct {
	KeyPartners           []string `json:"keyPartners"`
	KeyActivities         []string `json:"keyActivities"`
	KeyResources          []string `json:"keyResources"`
	ValuePropositions     []string `json:"valuePropositions"`
	CustomerRelationships []string `json:"customerRelationships"`
	Channels              []string `json:"channels"`
	CustomerSegments      []string `json:"customerSegments"`
	CostStructure         []string `json:"costStructure"`
	RevenueStreams        []string `json:"revenueStreams"`
}

func (c *BusinessCanvas) IsEmpty() bool {
	if c == nil {
		return true
	}
	for _, s := range [][]string{
		c.KeyPartners, c.KeyActivities, c.KeyResources, c.ValuePropositions,
		c.CustomerRelationships, c.Channels, c.CustomerSegments, c.CostStructure, c.RevenueStreams,
	} {
		if len(s) > 0 {
			return false
		}
	}
	return true
}

// CanvasRecord is the persisted form of a generated canvas.
type CanvasRecord struct {
	Idea      BusinessIdea   `json:"idea"`
	Canvas    BusinessCanvas `json:"canvas"`
	Timestamp time.Time      `json:"timestamp"`
}

// MilestoneStatus tracks a funding milestone.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted:
		return true
	}
	return false
}

// FundingMilestone is one tranche of a funding plan.
type FundingMilestone struct {
	PhaseName   string          `json:"phaseName"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Status      MilestoneStatus `json:"status"`
}

// FundingPlan is the persisted set of milestones for an idea.
type FundingPlan struct {
	Idea       BusinessIdea       `json:"idea"`
	Amount     float64            `json:"amount"`
	Milestones []FundingMilestone `json:"milestones"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// ChatRole is the speaker of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of chat history.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

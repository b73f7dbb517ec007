// internal/session/snapshot.go
package session

import (
	"idea-lab/internal/finance"
	"idea-lab/internal/models"
	"idea-lab/internal/roadmap"
)

// Snapshot is a point-in-time copy of the session for rendering.
type Snapshot struct {
	Idea            *models.BusinessIdea `json:"idea"`
	ActiveTab       Tab                  `json:"activeTab"`
	Slots           map[Tab]SlotView     `json:"slots"`
	LandedCost      models.LandedCost    `json:"landedCost"`
	Metrics         *finance.Metrics     `json:"metrics,omitempty"`
	RoadmapProgress int                  `json:"roadmapProgress"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ActiveTab:  c.tab,
		LandedCost: c.landedCost,
		Slots: map[Tab]SlotView{
			TabBlueprint:  c.slots.details.view(),
			TabStressTest: c.slots.stress.view(),
			TabROI:        c.slots.financials.view(),
			TabPitchDeck:  c.slots.pitch.view(),
			TabSupplier:   c.slots.sourcing.view(),
		},
	}
	if c.idea != nil {
		cp := *c.idea
		snap.Idea = &cp
	}

	rv := c.slots.roadmap.view()
	if rec := c.slots.roadmap.Value; c.slots.roadmap.State == Loaded && rec != nil {
		rv.Data = roadmap.Record{Roadmap: rec.Roadmap, Progress: rec.Progress.Clone()}
		snap.RoadmapProgress = rec.Percent()
	}
	snap.Slots[TabRoadmap] = rv

	if c.slots.financials.State == Loaded {
		est := *c.slots.financials.Value
		snap.Slots[TabROI] = SlotView{State: Loaded, Data: est}
		m := finance.Calculate(est, c.landedCost).JSONSafe()
		snap.Metrics = &m
	}
	return snap
}

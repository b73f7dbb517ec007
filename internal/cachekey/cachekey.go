// internal/cachekey/cachekey.go

// Package cachekey derives storage keys for per-idea records.
package cachekey

import (
	"strings"

	"idea-lab/internal/models"
)

const (
	RoadmapNamespace = "roadmap_"
	CanvasNamespace  = "canvas_"
	FundingNamespace = "funding_"
)

// Builder prefixes every key with Namespace.
type Builder struct {
	Namespace string
}

var (
	Roadmap = Builder{Namespace: RoadmapNamespace}
	Canvas  = Builder{Namespace: CanvasNamespace}
	Funding = Builder{Namespace: FundingNamespace}
)

// TitleKey is the namespace followed by the business title with every run of
// whitespace replaced by a single underscore. Ideas with equal titles collide.
func (b Builder) TitleKey(idea *models.BusinessIdea) string {
	return b.Namespace + strings.Join(strings.Fields(idea.BusinessTitle), "_")
}

// Key prefers the idea's stable id and falls back to TitleKey.
func (b Builder) Key(idea *models.BusinessIdea) string {
	if idea.ID != "" {
		return b.Namespace + idea.ID
	}
	return b.TitleKey(idea)
}

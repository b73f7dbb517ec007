// internal/ideagen/schemas.go
package ideagen

import "idea-lab/internal/common/validation"

const stringList = `{"type": "array", "items": {"type": "string"}}`

var (
	ideasSchema = validation.MustCompile("ideas", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["machineName", "businessTitle"],
			"properties": {
				"machineName": {"type": "string", "minLength": 1},
				"businessTitle": {"type": "string", "minLength": 1},
				"description": {"type": "string"},
				"priceRange": {"type": "string"},
				"sourcePlatform": {"type": "string"},
				"potentialRevenue": {"type": "string"},
				"industry": {"type": "string"},
				"skillRequirements": `+stringList+`,
				"operationalRequirements": `+stringList+`
			}
		}
	}`)

	canvasSchema = validation.MustCompile("canvas", `{
		"type": "object",
		"properties": {
			"keyPartners": `+stringList+`,
			"keyActivities": `+stringList+`,
			"keyResources": `+stringList+`,
			"valuePropositions": `+stringList+`,
			"customerRelationships": `+stringList+`,
			"channels": `+stringList+`,
			"customerSegments": `+stringList+`,
			"costStructure": `+stringList+`,
			"revenueStreams": `+stringList+`
		}
	}`)

	detailsSchema = validation.MustCompile("details", `{
		"type": "object",
		"properties": {
			"overview": {"type": "string"},
			"targetMarket": {"type": "string"},
			"skillRequirements": `+stringList+`,
			"operationalRequirements": `+stringList+`,
			"startupCosts": `+stringList+`,
			"revenueStreams": `+stringList+`,
			"marketingStrategy": `+stringList+`,
			"risks": `+stringList+`
		}
	}`)

	stressSchema = validation.MustCompile("stress_test", `{
		"type": "object",
		"properties": {
			"viabilityScore": {"type": "integer", "minimum": 0, "maximum": 100},
			"summary": {"type": "string"},
			"weaknesses": `+stringList+`,
			"scenarios": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"scenario": {"type": "string"},
						"impact": {"type": "string"},
						"likelihood": {"type": "string"},
						"mitigation": {"type": "string"}
					}
				}
			},
			"recommendation": {"type": "string"}
		}
	}`)

	financialsSchema = validation.MustCompile("financials", `{
		"type": "object",
		"required": ["initialInvestment", "monthlyFixedCosts", "costPerUnit", "pricePerUnit", "estimatedMonthlySales"],
		"properties": {
			"initialInvestment": {"type": "number", "minimum": 0},
			"monthlyFixedCosts": {"type": "number", "minimum": 0},
			"costPerUnit": {"type": "number", "minimum": 0},
			"pricePerUnit": {"type": "number", "minimum": 0},
			"estimatedMonthlySales": {"type": "number", "minimum": 0},
			"currency": {"type": "string"}
		}
	}`)

	roadmapSchema = validation.MustCompile("roadmap", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["phaseName", "steps"],
			"properties": {
				"phaseName": {"type": "string"},
				"duration": {"type": "string"},
				"steps": `+stringList+`
			}
		}
	}`)

	suppliersSchema = validation.MustCompile("suppliers", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["title", "url"],
			"properties": {
				"title": {"type": "string"},
				"url": {"type": "string"},
				"source": {"type": "string"}
			}
		}
	}`)

	pitchDeckSchema = validation.MustCompile("pitch_deck", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["title"],
			"properties": {
				"title": {"type": "string"},
				"subtitle": {"type": "string"},
				"bullets": `+stringList+`
			}
		}
	}`)

	fundingSchema = validation.MustCompile("funding", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["phaseName", "amount"],
			"properties": {
				"phaseName": {"type": "string"},
				"description": {"type": "string"},
				"amount": {"type": "number", "minimum": 0},
				"status": {"type": "string"}
			}
		}
	}`)
)

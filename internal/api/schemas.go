// internal/api/schemas.go
package api

import "idea-lab/internal/common/validation"

const ideaSchema = `{
	"type": "object",
	"required": ["businessTitle"],
	"properties": {
		"id": {"type": "string"},
		"machineName": {"type": "string"},
		"businessTitle": {"type": "string", "minLength": 1},
		"skillRequirements": {"type": "array", "items": {"type": "string"}},
		"operationalRequirements": {"type": "array", "items": {"type": "string"}}
	}
}`

var (
	generateIdeasSchema = validation.MustCompile("generate_ideas_request", `{
		"type": "object",
		"required": ["industry"],
		"properties": {
			"industry": {"type": "string", "minLength": 1},
			"language": {"type": "string"}
		}
	}`)

	ideaBodySchema = validation.MustCompile("idea", ideaSchema)

	profileSchema = validation.MustCompile("profile", `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"skills": {"type": "array", "items": {"type": "string"}},
			"interests": {"type": "array", "items": {"type": "string"}},
			"budget": {"type": "string"},
			"location": {"type": "string"},
			"language": {"type": "string"}
		}
	}`)

	openSchema = validation.MustCompile("open_request", `{
		"type": "object",
		"required": ["idea"],
		"properties": {
			"idea": `+ideaSchema+`,
			"language": {"type": "string"}
		}
	}`)

	tabSchema = validation.MustCompile("tab_request", `{
		"type": "object",
		"required": ["tab"],
		"properties": {"tab": {"type": "string"}}
	}`)

	toggleSchema = validation.MustCompile("toggle_request", `{
		"type": "object",
		"required": ["phase", "step"],
		"properties": {
			"phase": {"type": "integer", "minimum": 0},
			"step": {"type": "integer", "minimum": 0}
		}
	}`)

	financialsSchema = validation.MustCompile("financials_patch", `{
		"type": "object",
		"properties": {
			"initialInvestment": {"type": "number", "minimum": 0},
			"monthlyFixedCosts": {"type": "number", "minimum": 0},
			"costPerUnit": {"type": "number", "minimum": 0},
			"pricePerUnit": {"type": "number", "minimum": 0},
			"estimatedMonthlySales": {"type": "number", "minimum": 0},
			"currency": {"type": "string"}
		}
	}`)

	landedCostSchema = validation.MustCompile("landed_cost", `{
		"type": "object",
		"properties": {
			"shipping": {"type": "number", "minimum": 0},
			"customsPercent": {"type": "number", "minimum": 0},
			"vatPercent": {"type": "number", "minimum": 0},
			"fees": {"type": "number", "minimum": 0},
			"enabled": {"type": "boolean"}
		}
	}`)

	emailSchema = validation.MustCompile("email_request", `{
		"type": "object",
		"required": ["to"],
		"properties": {"to": {"type": "string"}}
	}`)

	ideaRequestSchema = validation.MustCompile("idea_request", `{
		"type": "object",
		"required": ["idea"],
		"properties": {
			"idea": `+ideaSchema+`,
			"language": {"type": "string"}
		}
	}`)

	fundingSchema = validation.MustCompile("funding_request", `{
		"type": "object",
		"required": ["idea", "amount"],
		"properties": {
			"idea": `+ideaSchema+`,
			"amount": {"type": "number", "minimum": 0},
			"language": {"type": "string"}
		}
	}`)

	fundingStatusSchema = validation.MustCompile("funding_status_request", `{
		"type": "object",
		"required": ["idea", "index", "status"],
		"properties": {
			"idea": `+ideaSchema+`,
			"index": {"type": "integer", "minimum": 0},
			"status": {"enum": ["pending", "in_progress", "completed"]}
		}
	}`)

	chatSchema = validation.MustCompile("chat_request", `{
		"type": "object",
		"required": ["prompt"],
		"properties": {
			"prompt": {"type": "string", "minLength": 1},
			"context": {"type": "string"},
			"language": {"type": "string"},
			"history": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["role", "text"],
					"properties": {
						"role": {"enum": ["user", "model"]},
						"text": {"type": "string"}
					}
				}
			}
		}
	}`)
)

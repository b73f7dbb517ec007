// internal/models/idea.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourcePlatform is the marketplace a machine is bought from.
type SourcePlatform string

const (
	PlatformAlibaba       SourcePlatform = "Alibaba"
	PlatformAmazon        SourcePlatform = "Amazon"
	PlatformGlobalSources SourcePlatform = "GlobalSources"
)

// Valid reports whether p is one of the known platforms.
func (p SourcePlatform) Valid() bool {
	switch p {
	case PlatformAlibaba, PlatformAmazon, PlatformGlobalSources:
		return true
	}
	return false
}

// ParseSourcePlatform accepts the platform names the generator tends to emit,
// including "Global Sources" with a space.
func ParseSourcePlatform(s string) (SourcePlatform, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch norm {
	case "alibaba":
		return PlatformAlibaba, nil
	case "amazon":
		return PlatformAmazon, nil
	case "globalsources":
		return PlatformGlobalSources, nil
	}
	return "", fmt.Errorf("unknown source platform %q", s)
}

// ideaNamespace seeds content-derived idea ids.
var ideaNamespace = uuid.MustParse("6f1c2b4e-8d3a-4f7e-9a51-0c2d7b8e4a13")

// BusinessIdea is a small-business idea built around one purchasable machine.
type BusinessIdea struct {
	ID                      string         `json:"id" db:"id"`
	MachineName             string         `json:"machineName" db:"machine_name"`
	BusinessTitle           string         `json:"businessTitle" db:"business_title"`
	Description             string         `json:"description" db:"description"`
	PriceRange              string         `json:"priceRange" db:"price_range"`
	SourcePlatform          SourcePlatform `json:"sourcePlatform" db:"source_platform"`
	PotentialRevenue        string         `json:"potentialRevenue" db:"potential_revenue"`
	Industry                string         `json:"industry,omitempty" db:"industry"`
	SkillRequirements       []string       `json:"skillRequirements,omitempty" db:"skill_requirements"`
	OperationalRequirements []string       `json:"operationalRequirements,omitempty" db:"operational_requirements"`
	Upvotes                 int            `json:"upvotes,omitempty" db:"upvotes"`
	IsUpvoted               bool           `json:"isUpvoted,omitempty" db:"is_upvoted"`
	IsSaved                 bool           `json:"isSaved,omitempty" db:"is_saved"`
	CreatedAt               time.Time      `json:"createdAt,omitempty" db:"created_at"`
}

// StableID derives an id from the idea's content. Two ideas with the same
// title but different machines get different ids.
func (i *BusinessIdea) StableID() string {
	name := strings.ToLower(strings.TrimSpace(i.MachineName)) + "\x00" +
		strings.ToLower(strings.TrimSpace(i.BusinessTitle))
	return uuid.NewSHA1(ideaNamespace, []byte(name)).String()
}

// EnsureID assigns StableID when the idea has no id yet.
func (i *BusinessIdea) EnsureID() {
	if i.ID == "" {
		i.ID = i.StableID()
	}
}

// SameIdea compares identity, not content.
func SameIdea(a, b *BusinessIdea) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.BusinessTitle == b.BusinessTitle
}

// UserProfile drives personalized idea generation. One row per user.
type UserProfile struct {
	UserID    string    `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Skills    []string  `json:"skills" db:"skills"`
	Interests []string  `json:"interests" db:"interests"`
	Budget    string    `json:"budget" db:"budget"`
	Location  string    `json:"location" db:"location"`
	Language  string    `json:"language" db:"language"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

//nolint:revive // types is a standard Go package name pattern
package types

// ExperienceKind distinguishes positions from standalone projects.
type ExperienceKind string

// Experience kinds.
const (
	KindPosition ExperienceKind = "position"
	KindProject  ExperienceKind = "project"
)

// Experience is a flattened view of a Position or Project used for ranking.
// Retrieval operates on this shape so both record types score uniformly.
type Experience struct {
	Kind         ExperienceKind `json:"kind"`
	ID           string         `json:"id"`
	Company      string         `json:"company,omitempty"`
	Role         string         `json:"role"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date,omitempty"`
	Description  string         `json:"description,omitempty"`
	Achievements []string       `json:"achievements"`
	Technologies []string       `json:"technologies"`
	Tags         []string       `json:"tags,omitempty"`
}

// RankedExperience pairs an experience with its relevance score.
type RankedExperience struct {
	Experience          Experience `json:"experience"`
	Score               float64    `json:"score"`
	MatchedTechnologies []string   `json:"matched_technologies,omitempty"`
}

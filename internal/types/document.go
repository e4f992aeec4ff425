//nolint:revive // types is a standard Go package name pattern
package types

// DocumentKind identifies the target document type.
type DocumentKind string

// Document kinds.
const (
	KindCV          DocumentKind = "cv"
	KindCoverLetter DocumentKind = "cover_letter"
)

// Valid reports whether the kind is a known document type.
func (k DocumentKind) Valid() bool {
	return k == KindCV || k == KindCoverLetter
}

// PageBudget returns the maximum page count for the document kind.
func (k DocumentKind) PageBudget() int {
	if k == KindCoverLetter {
		return 1
	}
	return 2
}

// ComposedDocument is the final structured document handed to the rendering
// boundary. Sections appear in their fixed render order; the composer has
// already enforced the page budget.
type ComposedDocument struct {
	Kind     DocumentKind `json:"kind"`
	Language Language     `json:"language"`

	Header  DocumentHeader `json:"header"`
	Summary string         `json:"summary,omitempty"`

	Experiences []ComposedExperience `json:"experiences,omitempty"`
	SkillGroups []SkillGroup         `json:"skill_groups,omitempty"`
	Education   []Education          `json:"education,omitempty"`

	// Letter holds the cover-letter body sections; nil for CVs.
	Letter *LetterBody `json:"letter,omitempty"`

	PageBudget     int `json:"page_budget"`
	EstimatedLines int `json:"estimated_lines"`
}

// DocumentHeader holds the header/contact section.
type DocumentHeader struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// ComposedExperience is one experience entry with its final bullets.
type ComposedExperience struct {
	Role         string   `json:"role"`
	Company      string   `json:"company,omitempty"`
	Period       string   `json:"period"`
	Bullets      []string `json:"bullets"`
	Technologies []string `json:"technologies,omitempty"`
}

// LetterBody holds the ordered cover-letter sections.
type LetterBody struct {
	Greeting   string   `json:"greeting"`
	Opening    string   `json:"opening"`
	Highlights []string `json:"highlights"`
	Closing    string   `json:"closing"`
}

// CompanyFacts holds best-effort research about the hiring company.
// An empty value is valid and must never block document composition.
type CompanyFacts struct {
	Company  string   `json:"company"`
	Overview string   `json:"overview,omitempty"`
	Industry string   `json:"industry,omitempty"`
	Values   string   `json:"values,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// Empty reports whether the research yielded no usable facts.
func (f *CompanyFacts) Empty() bool {
	return f == nil || (f.Overview == "" && f.Industry == "" && f.Values == "")
}

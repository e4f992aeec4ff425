//nolint:revive // types is a standard Go package name pattern
package types

// Language identifies one of the two supported document locales.
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// Valid reports whether the language is one of the supported locales.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageSpanish
}

// JobSignal is the normalized structured summary extracted from a job posting.
// It is ephemeral: one per request, discarded afterwards.
type JobSignal struct {
	Language      Language `json:"language"`
	RoleTitle     string   `json:"role_title"`
	SeniorityHint string   `json:"seniority_hint,omitempty"`
	Technologies  []string `json:"technologies"`
	Company       string   `json:"company,omitempty"`
	MinYears      int      `json:"min_years,omitempty"`
	IndustryTags  []string `json:"industry_tags,omitempty"`

	// Summary is a bounded excerpt of the source text, kept for prompt context.
	Summary string `json:"summary,omitempty"`
}

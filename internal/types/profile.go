// Package types provides type definitions for structured data used throughout the cv-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ProfessionalProfile is the fixed knowledge base loaded once per process.
// All generated content must derive strictly from this data.
type ProfessionalProfile struct {
	PersonalInfo PersonalInfo        `yaml:"personal_info" json:"personal_info" validate:"required"`
	Summary      ProfessionalSummary `yaml:"professional_summary" json:"professional_summary" validate:"required"`
	Companies    []Company           `yaml:"companies" json:"companies" validate:"required,min=1,dive"`
	Projects     map[string]Project  `yaml:"projects" json:"projects" validate:"dive"`
	Education    []Education         `yaml:"education" json:"education"`
	SkillGroups  []SkillGroup        `yaml:"skills" json:"skills"`
	Languages    []LanguageSkill     `yaml:"languages" json:"languages"`

	// PrimaryLanguage is the fallback when job-description language detection
	// is inconclusive. Defaults to English when unset.
	PrimaryLanguage Language `yaml:"primary_language" json:"primary_language"`
}

// PersonalInfo holds the candidate's contact fields for the document header.
type PersonalInfo struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Title    string `yaml:"title" json:"title" validate:"required"`
	Email    string `yaml:"email" json:"email" validate:"required,email"`
	Phone    string `yaml:"phone" json:"phone,omitempty"`
	Location string `yaml:"location" json:"location,omitempty"`
	Website  string `yaml:"website" json:"website,omitempty"`
	LinkedIn string `yaml:"linkedin" json:"linkedin,omitempty"`
	GitHub   string `yaml:"github" json:"github,omitempty"`
}

// ProfessionalSummary holds the short and detailed summary variants.
type ProfessionalSummary struct {
	Short    string `yaml:"short" json:"short" validate:"required"`
	Detailed string `yaml:"detailed" json:"detailed"`
}

// Company represents one employer with its ordered positions.
type Company struct {
	ID        string     `yaml:"id" json:"id" validate:"required"`
	Name      string     `yaml:"name" json:"name" validate:"required"`
	Location  string     `yaml:"location" json:"location,omitempty"`
	Positions []Position `yaml:"positions" json:"positions" validate:"required,min=1,dive"`
}

// Position represents one role held at a company.
// Dates use the "YYYY-MM" format; an empty EndDate means the position is current.
type Position struct {
	ID           string   `yaml:"id" json:"id" validate:"required"`
	Role         string   `yaml:"role" json:"role" validate:"required"`
	StartDate    string   `yaml:"start_date" json:"start_date" validate:"required"`
	EndDate      string   `yaml:"end_date" json:"end_date,omitempty"`
	Achievements []string `yaml:"achievements" json:"achievements"`
	ProjectRefs  []string `yaml:"project_refs" json:"project_refs,omitempty"`
	Technologies []string `yaml:"technologies" json:"technologies"`
}

// Project represents a standalone project referenced by position ProjectRefs.
type Project struct {
	Name         string   `yaml:"name" json:"name" validate:"required"`
	Role         string   `yaml:"role" json:"role"`
	StartDate    string   `yaml:"start_date" json:"start_date"`
	EndDate      string   `yaml:"end_date" json:"end_date,omitempty"`
	Description  string   `yaml:"description" json:"description"`
	Achievements []string `yaml:"achievements" json:"achievements"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	Tags         []string `yaml:"tags" json:"tags,omitempty"`
}

// Education represents a single education record.
type Education struct {
	Degree      string `yaml:"degree" json:"degree" validate:"required"`
	Institution string `yaml:"institution" json:"institution" validate:"required"`
	Period      string `yaml:"period" json:"period"`
	Details     string `yaml:"details" json:"details,omitempty"`
}

// SkillGroup groups related skills under a category label.
type SkillGroup struct {
	Category string   `yaml:"category" json:"category"`
	Items    []string `yaml:"items" json:"items"`
}

// LanguageSkill describes spoken language proficiency.
type LanguageSkill struct {
	Name  string `yaml:"name" json:"name"`
	Level string `yaml:"level" json:"level"`
}

// Package profile loads and validates the professional-history knowledge base.
// The loaded profile is the sole factual source for all generated content and
// is treated as read-only for the process lifetime.
package profile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/cv-tailor/internal/types"
)

// ValidationError represents a malformed knowledge base at load time.
// It is fatal: the process must not start with an invalid profile.
type ValidationError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid profile %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid profile %s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Load reads, parses, and validates the knowledge base YAML at path.
func Load(path string) (*types.ProfessionalProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Message: "failed to read file", Cause: err}
	}
	return Parse(data, path)
}

// Parse validates raw YAML bytes into a ProfessionalProfile.
// The path argument is only used for error reporting.
func Parse(data []byte, path string) (*types.ProfessionalProfile, error) {
	var p types.ProfessionalProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, &ValidationError{Path: path, Message: "failed to parse YAML", Cause: err}
	}

	if !p.PrimaryLanguage.Valid() {
		p.PrimaryLanguage = types.LanguageEnglish
	}

	validate := validator.New()
	if err := validate.Struct(&p); err != nil {
		return nil, &ValidationError{Path: path, Message: "schema validation failed", Cause: err}
	}

	if err := checkProjectRefs(&p); err != nil {
		return nil, &ValidationError{Path: path, Message: "unresolved project reference", Cause: err}
	}

	return &p, nil
}

// checkProjectRefs verifies that every project key referenced by any position
// resolves to a loaded project.
func checkProjectRefs(p *types.ProfessionalProfile) error {
	var missing []string
	for _, company := range p.Companies {
		for _, position := range company.Positions {
			for _, ref := range position.ProjectRefs {
				if _, ok := p.Projects[ref]; !ok {
					missing = append(missing, fmt.Sprintf("%s/%s -> %q", company.ID, position.ID, ref))
				}
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("positions reference unknown projects: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Experiences flattens the profile's positions and projects into the uniform
// shape consumed by the retriever. Positions keep their company name; projects
// carry their description and tags. Order follows the profile document.
func Experiences(p *types.ProfessionalProfile) []types.Experience {
	var out []types.Experience
	for _, company := range p.Companies {
		for _, position := range company.Positions {
			exp := types.Experience{
				Kind:         types.KindPosition,
				ID:           position.ID,
				Company:      company.Name,
				Role:         position.Role,
				StartDate:    position.StartDate,
				EndDate:      position.EndDate,
				Achievements: position.Achievements,
				Technologies: position.Technologies,
			}
			// Fold referenced project technologies into the position so tech
			// overlap scoring sees the full stack used in the role.
			for _, ref := range position.ProjectRefs {
				if project, ok := p.Projects[ref]; ok {
					exp.Technologies = mergeUnique(exp.Technologies, project.Technologies)
					exp.Tags = mergeUnique(exp.Tags, project.Tags)
				}
			}
			out = append(out, exp)
		}
	}
	// Standalone projects follow in sorted key order so retrieval tie-breaks
	// are stable across runs.
	keys := make([]string, 0, len(p.Projects))
	for k := range p.Projects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		project := p.Projects[k]
		out = append(out, types.Experience{
			Kind:         types.KindProject,
			ID:           k,
			Role:         project.Role,
			StartDate:    project.StartDate,
			EndDate:      project.EndDate,
			Description:  project.Description,
			Achievements: project.Achievements,
			Technologies: project.Technologies,
			Tags:         project.Tags,
		})
	}
	return out
}

func mergeUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[strings.ToLower(v)] = true
	}
	for _, v := range src {
		if !seen[strings.ToLower(v)] {
			seen[strings.ToLower(v)] = true
			dst = append(dst, v)
		}
	}
	return dst
}

// Package analyzer - heuristic.go is the keyword-based extraction fallback.
// It always produces a signal, so analysis can never exhaust its options.
package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

// techKeywords is the closed vocabulary the heuristic scans for.
var techKeywords = []string{
	"python", "java", "javascript", "typescript", "go", "rust", "c++", "c#", "ruby",
	"react", "vue", "angular", "node.js", "spring boot", "django", "fastapi", "flask",
	"aws", "gcp", "azure", "docker", "kubernetes", "terraform", "ansible",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"machine learning", "deep learning", "nlp", "computer vision",
	"microservices", "rest api", "graphql", "grpc",
	"ci/cd", "devops", "tdd",
	"tensorflow", "pytorch", "scikit-learn", "pandas", "numpy",
	"kafka", "rabbitmq",
	"git", "jenkins", "github actions",
}

var industryKeywords = []string{
	"banking", "finance", "fintech", "bancario", "financiero",
	"retail", "e-commerce", "comercio",
	"healthcare", "salud",
	"education", "educación", "edtech",
	"startup", "saas", "b2b", "b2c",
	"telecom", "telecomunicaciones",
	"government", "gobierno",
}

var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:looking for|seeking|hiring)\s+(?:an?\s+)?([A-Z][a-zA-Z /]+(?:Engineer|Developer|Architect|Manager|Lead|Specialist|Analyst|Consultant|Scientist))`),
	regexp.MustCompile(`([A-Z][a-zA-Z /]+(?:Engineer|Developer|Architect|Manager|Lead|Specialist|Analyst|Consultant|Scientist))`),
	regexp.MustCompile(`(?i)(?:buscamos|se busca|estamos buscando)\s+(?:un|una)?\s*([A-ZÁÉÍÓÚÑ][\wáéíóúñ /]{5,60})`),
	regexp.MustCompile(`(?i)(?:position|role|title|puesto|posición|rol|vacante)[:\s]+([A-ZÁÉÍÓÚÑ][\wáéíóúñ /]{3,60})`),
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*of\s*experience`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*años?\s*de\s*experiencia`),
	regexp.MustCompile(`(?i)minimum\s*(\d+)\s*years?`),
	regexp.MustCompile(`(?i)mínimo\s*(\d+)\s*años?`),
}

var seniorityHints = []string{"principal", "staff", "lead", "senior", "junior"}

// HeuristicSignal extracts a job signal from raw text without any model
// call. The result may be sparse but is never nil.
func HeuristicSignal(text string) *types.JobSignal {
	lower := strings.ToLower(text)

	var technologies []string
	for _, keyword := range techKeywords {
		if strings.Contains(lower, keyword) {
			technologies = append(technologies, keyword)
		}
	}

	var industries []string
	for _, keyword := range industryKeywords {
		if strings.Contains(lower, keyword) {
			industries = append(industries, keyword)
		}
	}

	return &types.JobSignal{
		RoleTitle:     extractRole(text),
		SeniorityHint: extractSeniority(lower),
		Technologies:  dedupe(technologies),
		MinYears:      extractMinYears(lower),
		IndustryTags:  dedupe(industries),
	}
}

func extractRole(text string) string {
	for _, pattern := range rolePatterns {
		if match := pattern.FindStringSubmatch(text); len(match) > 1 {
			role := strings.Join(strings.Fields(match[1]), " ")
			if len(role) < 100 {
				return role
			}
		}
	}
	return ""
}

func extractSeniority(lower string) string {
	for _, hint := range seniorityHints {
		if strings.Contains(lower, hint) {
			return hint
		}
	}
	return ""
}

func extractMinYears(lower string) int {
	for _, pattern := range experiencePatterns {
		if match := pattern.FindStringSubmatch(lower); len(match) > 1 {
			if years, err := strconv.Atoi(match[1]); err == nil {
				return years
			}
		}
	}
	return 0
}

// dedupe removes case-insensitive duplicates preserving first occurrence.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

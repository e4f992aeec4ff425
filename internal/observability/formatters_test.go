package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-tailor/internal/types"
)

func TestPrintJobSignal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	signal := &types.JobSignal{
		Company:       "Acme Corp",
		RoleTitle:     "Senior Backend Engineer",
		Language:      types.LanguageEnglish,
		SeniorityHint: "senior",
		Technologies:  []string{"Go", "PostgreSQL", "Kubernetes"},
		IndustryTags:  []string{"fintech"},
	}

	p.PrintJobSignal(signal)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED JOB SIGNAL")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Senior Backend Engineer")
	assert.Contains(t, output, "Go")
	assert.Contains(t, output, "fintech")
}

func TestPrintJobSignal_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobSignal(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := []types.RankedExperience{
		{
			Experience:          types.Experience{ID: "acme-backend", Role: "Backend Engineer"},
			Score:               0.82,
			MatchedTechnologies: []string{"Go", "PostgreSQL"},
		},
		{
			Experience: types.Experience{ID: "side-project", Role: "Maintainer"},
			Score:      0.31,
		},
	}

	p.PrintRanking(ranked)
	output := buf.String()

	assert.Contains(t, output, "EXPERIENCE RANKING")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "0.82")
	assert.Contains(t, output, "Go, PostgreSQL")
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := &types.ComposedDocument{
		Kind:           types.KindCoverLetter,
		Language:       types.LanguageSpanish,
		PageBudget:     1,
		EstimatedLines: 30,
		Letter: &types.LetterBody{
			Greeting:   "Estimado equipo de selección:",
			Highlights: []string{"one", "two"},
		},
	}

	p.PrintDocument(doc)
	output := buf.String()

	assert.Contains(t, output, "COMPOSED DOCUMENT")
	assert.Contains(t, output, "cover_letter")
	assert.Contains(t, output, "2 highlights")
}

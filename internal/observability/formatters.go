// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobSignal outputs a human-readable summary of the extracted job signal.
func (p *Printer) PrintJobSignal(signal *types.JobSignal) {
	if signal == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Company:   %s\n", signal.Company))
	sb.WriteString(fmt.Sprintf("Role:      %s\n", signal.RoleTitle))
	sb.WriteString(fmt.Sprintf("Language:  %s\n", signal.Language))
	if signal.SeniorityHint != "" {
		sb.WriteString(fmt.Sprintf("Seniority: %s\n", signal.SeniorityHint))
	}
	if signal.MinYears > 0 {
		sb.WriteString(fmt.Sprintf("Min years: %d\n", signal.MinYears))
	}

	if len(signal.Technologies) > 0 {
		sb.WriteString("\nTechnologies:\n")
		count := min(len(signal.Technologies), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", signal.Technologies[i]))
		}
		if len(signal.Technologies) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(signal.Technologies)-maxItemsToShow))
		}
	}

	if len(signal.IndustryTags) > 0 {
		sb.WriteString(fmt.Sprintf("\nIndustry: %s\n", strings.Join(signal.IndustryTags, ", ")))
	}

	p.printBox("EXTRACTED JOB SIGNAL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanking outputs the top N ranked experiences with scores and matches.
func (p *Printer) PrintRanking(ranked []types.RankedExperience) {
	if len(ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total experiences ranked: %d\n\n", len(ranked)))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, entry.Experience.Role, entry.Experience.ID))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", entry.Score))
		if len(entry.MatchedTechnologies) > 0 {
			matched := strings.Join(entry.MatchedTechnologies, ", ")
			if len(matched) > 40 {
				matched = matched[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Matched: %s\n", matched))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more\n", len(ranked)-maxItemsToShow))
	}

	p.printBox("EXPERIENCE RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocument outputs a compact summary of the composed document.
func (p *Printer) PrintDocument(doc *types.ComposedDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:      %s\n", doc.Kind))
	sb.WriteString(fmt.Sprintf("Language:  %s\n", doc.Language))
	sb.WriteString(fmt.Sprintf("Budget:    %d page(s), ~%d lines used\n", doc.PageBudget, doc.EstimatedLines))
	sb.WriteString(fmt.Sprintf("Sections:  %d experiences, %d skill groups, %d education\n",
		len(doc.Experiences), len(doc.SkillGroups), len(doc.Education)))

	if doc.Letter != nil {
		sb.WriteString(fmt.Sprintf("Letter:    %d highlights\n", len(doc.Letter.Highlights)))
	}

	for i, exp := range doc.Experiences {
		if i == 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("  %s: %d bullets\n", exp.Role, len(exp.Bullets)))
	}

	p.printBox("COMPOSED DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

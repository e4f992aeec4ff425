// Package pipeline provides the high-level orchestration for document
// generation: analyze the posting, rank experience, adapt content, research
// the company, and compose the final document.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-tailor/internal/adapt"
	"github.com/jonathan/cv-tailor/internal/analyzer"
	"github.com/jonathan/cv-tailor/internal/composer"
	"github.com/jonathan/cv-tailor/internal/observability"
	"github.com/jonathan/cv-tailor/internal/profile"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/research"
	"github.com/jonathan/cv-tailor/internal/retriever"
	"github.com/jonathan/cv-tailor/internal/store"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Step identifiers for progress events and persistence.
const (
	StepAnalyze  = "analyze"
	StepRank     = "rank"
	StepAdapt    = "adapt"
	StepResearch = "research"
	StepCompose  = "compose"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds per-run configuration.
type Options struct {
	// JobInput is raw posting text or a posting URL.
	JobInput string
	Kind     types.DocumentKind

	MaxBullets int
	Verbose    bool
	OnProgress ProgressCallback
}

// Pipeline wires the generation stages together. Construct once, run many.
type Pipeline struct {
	profile    *types.ProfessionalProfile
	analyzer   *analyzer.Analyzer
	adapter    *adapt.Service
	retriever  *retriever.Retriever
	researcher *research.Researcher
	store      *store.Store
	printer    *observability.Printer
}

// Deps holds the pipeline's collaborators. Store may be nil; Researcher may
// be a disabled instance.
type Deps struct {
	Profile    *types.ProfessionalProfile
	Analyzer   *analyzer.Analyzer
	Adapter    *adapt.Service
	Retriever  *retriever.Retriever
	Researcher *research.Researcher
	Store      *store.Store
}

// New assembles a Pipeline from its collaborators.
func New(deps Deps) *Pipeline {
	return &Pipeline{
		profile:    deps.Profile,
		analyzer:   deps.Analyzer,
		adapter:    deps.Adapter,
		retriever:  deps.Retriever,
		researcher: deps.Researcher,
		store:      deps.Store,
		printer:    observability.NewPrinter(os.Stdout),
	}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *Options, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run executes the full generation pipeline for one document and returns the
// composed result. Fetch, extraction, and profile errors propagate; research
// and individual slot adaptations degrade without failing the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*types.ComposedDocument, error) {
	if !opts.Kind.Valid() {
		return nil, fmt.Errorf("unknown document kind: %q", opts.Kind)
	}
	if opts.MaxBullets <= 0 {
		opts.MaxBullets = 4
	}

	signal, err := p.analyzer.Analyze(ctx, opts.JobInput)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		p.printer.PrintJobSignal(signal)
	}
	emitProgress(&opts, StepAnalyze,
		fmt.Sprintf("Extracted job signal: %s at %s", signal.RoleTitle, signal.Company), signal)

	experiences := profile.Experiences(p.profile)
	ranked := p.retriever.Rank(signal, experiences)
	top := retriever.Top(opts.Kind, ranked)
	if opts.Verbose {
		p.printer.PrintRanking(ranked)
	}
	emitProgress(&opts, StepRank,
		fmt.Sprintf("Ranked %d experiences, keeping %d", len(ranked), len(top)), nil)

	// Adaptation and research are independent; run them in parallel. Both
	// branches absorb their own failures, so the group only fails on
	// context cancellation.
	var adapted types.AdaptedContent
	var facts *types.CompanyFacts
	var adaptedMu, factsMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		requests := p.buildRequests(signal, top, opts.Kind, opts.MaxBullets)
		content := p.adapter.AdaptAll(gCtx, requests, signal)
		adaptedMu.Lock()
		adapted = content
		adaptedMu.Unlock()
		return gCtx.Err()
	})

	g.Go(func() error {
		result := p.researcher.Research(gCtx, signal.Company)
		factsMu.Lock()
		facts = result
		factsMu.Unlock()
		return gCtx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The letter body depends on research output, so it is adapted after
	// both branches join.
	if opts.Kind == types.KindCoverLetter {
		req := p.letterRequest(signal, top, facts)
		if text, err := p.adapter.Adapt(ctx, req, signal); err != nil {
			adapted[types.SlotLetterBody] = types.AdaptedText{Text: req.Source, Adapted: false}
		} else {
			adapted[types.SlotLetterBody] = types.AdaptedText{Text: text, Adapted: true}
		}
	}

	adaptedCount := 0
	for _, entry := range adapted {
		if entry.Adapted {
			adaptedCount++
		}
	}
	emitProgress(&opts, StepAdapt,
		fmt.Sprintf("Adapted %d/%d content slots", adaptedCount, len(adapted)), nil)
	if p.researcher.Enabled() {
		emitProgress(&opts, StepResearch,
			fmt.Sprintf("Company research complete for %s", signal.Company), facts)
	}

	doc := composer.Compose(p.profile, signal, top, adapted, facts, opts.Kind)
	if opts.Verbose {
		p.printer.PrintDocument(doc)
	}
	emitProgress(&opts, StepCompose,
		fmt.Sprintf("Composed %s (%d experiences, ~%d lines)", doc.Kind, len(doc.Experiences), doc.EstimatedLines), nil)

	p.persist(ctx, opts.JobInput, signal, doc)

	return doc, nil
}

// persist saves the run when a store is configured. Persistence failures are
// warnings; they never fail the run.
func (p *Pipeline) persist(ctx context.Context, jobSource string, signal *types.JobSignal, doc *types.ComposedDocument) {
	if p.store == nil {
		return
	}

	runID, err := p.store.CreateRun(ctx, signal, jobSource, doc.Kind)
	if err != nil {
		fmt.Printf("Warning: failed to create run record: %v\n", err)
		return
	}
	if err := p.store.SaveSignal(ctx, runID, signal); err != nil {
		fmt.Printf("Warning: failed to save job signal: %v\n", err)
	}
	if err := p.store.SaveDocument(ctx, runID, doc); err != nil {
		fmt.Printf("Warning: failed to save document: %v\n", err)
		_ = p.store.CompleteRun(ctx, runID, "failed")
		return
	}
	_ = p.store.CompleteRun(ctx, runID, "completed")
}

// buildRequests assembles the slot adaptation requests for the document kind.
// The letter body slot is excluded: it needs research output and runs after
// the parallel branches join.
func (p *Pipeline) buildRequests(signal *types.JobSignal, top []types.RankedExperience, kind types.DocumentKind, maxBullets int) []adapt.Request {
	data := promptData(signal, maxBullets)

	var requests []adapt.Request

	if kind == types.KindCV {
		summary := p.profile.Summary.Detailed
		if summary == "" {
			summary = p.profile.Summary.Short
		}
		requests = append(requests, adapt.Request{
			Slot:   types.SlotSummary,
			Source: summary,
			Prompt: slotPrompt("adapt-summary", summary, data),
		})

		skills := formatSkills(p.profile.SkillGroups)
		requests = append(requests, adapt.Request{
			Slot:   types.SlotSkills,
			Source: skills,
			Prompt: slotPrompt("adapt-skills", skills, data),
		})
	}

	translateRoles := signal.Language != p.profile.PrimaryLanguage
	for _, entry := range top {
		bullets := formatBullets(entry.Experience.Achievements)
		if bullets != "" {
			requests = append(requests, adapt.Request{
				Slot:   types.BulletsSlot(entry.Experience.ID),
				Source: bullets,
				Prompt: slotPrompt("adapt-bullets", bullets, data),
			})
		}
		if translateRoles {
			requests = append(requests, adapt.Request{
				Slot:   types.RoleSlot(entry.Experience.ID),
				Source: entry.Experience.Role,
				Prompt: slotPrompt("translate-role", entry.Experience.Role, data),
			})
		}
	}

	return requests
}

// letterRequest builds the letter body adaptation request, flavored with
// whatever the research branch produced.
func (p *Pipeline) letterRequest(signal *types.JobSignal, top []types.RankedExperience, facts *types.CompanyFacts) adapt.Request {
	source := experienceDigest(top)
	data := promptData(signal, 0)
	data["Company"] = signal.Company
	data["CompanyFacts"] = formatFacts(facts)
	return adapt.Request{
		Slot:   types.SlotLetterBody,
		Source: source,
		Prompt: slotPrompt("letter-body", source, data),
	}
}

func promptData(signal *types.JobSignal, maxBullets int) map[string]string {
	return map[string]string{
		"RoleTitle":    signal.RoleTitle,
		"Technologies": strings.Join(signal.Technologies, ", "),
		"Language":     languageName(signal.Language),
		"MaxBullets":   strconv.Itoa(maxBullets),
	}
}

func slotPrompt(key, source string, data map[string]string) string {
	withSource := cloneData(data)
	withSource["Source"] = source
	return prompts.Format(prompts.MustGet("adaptation.json", key), withSource)
}

func cloneData(data map[string]string) map[string]string {
	clone := make(map[string]string, len(data)+2)
	for k, v := range data {
		clone[k] = v
	}
	return clone
}

// formatBullets renders achievements as "- " lines for prompt sources.
func formatBullets(achievements []string) string {
	var b strings.Builder
	for _, a := range achievements {
		if a = strings.TrimSpace(a); a != "" {
			b.WriteString("- ")
			b.WriteString(a)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatSkills renders skill groups as "Category: a, b" lines.
func formatSkills(groups []types.SkillGroup) string {
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g.Items) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", g.Category, strings.Join(g.Items, ", ")))
	}
	return strings.Join(lines, "\n")
}

// experienceDigest renders the top experiences as the letter-body source.
func experienceDigest(top []types.RankedExperience) string {
	var b strings.Builder
	for _, entry := range top {
		exp := entry.Experience
		fmt.Fprintf(&b, "%s at %s (%s - %s):\n", exp.Role, exp.Company, exp.StartDate, endOrPresent(exp.EndDate))
		for _, a := range exp.Achievements {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func endOrPresent(endDate string) string {
	if endDate == "" {
		return "present"
	}
	return endDate
}

func formatFacts(facts *types.CompanyFacts) string {
	if facts.Empty() {
		return "(none available)"
	}
	var parts []string
	if facts.Overview != "" {
		parts = append(parts, facts.Overview)
	}
	if facts.Industry != "" {
		parts = append(parts, "Industry: "+facts.Industry)
	}
	if facts.Values != "" {
		parts = append(parts, "Values: "+facts.Values)
	}
	return strings.Join(parts, "\n")
}

func languageName(lang types.Language) string {
	if lang == types.LanguageSpanish {
		return "Spanish"
	}
	return "English"
}

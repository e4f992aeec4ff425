// Package research provides best-effort external lookup of company facts for
// cover-letter generation. The feature is additive: every failure yields an
// empty result, never an error on the critical path.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/cv-tailor/internal/types"
)

// DefaultTimeout bounds one research pass.
const DefaultTimeout = 15 * time.Second

// maxSnippets caps how many result snippets feed each extracted field.
const maxSnippets = 3

// Researcher queries an external search provider for company facts.
// A disabled (or nil) Researcher returns empty facts immediately.
type Researcher struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
}

// Config holds search provider settings.
type Config struct {
	APIKey   string
	EngineID string
	Enabled  bool
	Timeout  time.Duration
}

// New creates a Researcher. When the feature is disabled or credentials are
// missing it returns a disabled instance rather than an error: research must
// never prevent startup.
func New(ctx context.Context, cfg Config) *Researcher {
	if !cfg.Enabled || cfg.APIKey == "" || cfg.EngineID == "" {
		return &Researcher{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return &Researcher{}
	}
	return &Researcher{svc: svc, engineID: cfg.EngineID, timeout: timeout}
}

// Enabled reports whether the researcher will issue queries.
func (r *Researcher) Enabled() bool {
	return r != nil && r.svc != nil
}

// Research returns company facts, possibly empty. It never returns an error:
// network failures, rate limits, and parse problems all degrade to an empty
// result within the bounded timeout.
func (r *Researcher) Research(ctx context.Context, company string) *types.CompanyFacts {
	facts := &types.CompanyFacts{Company: company}
	if !r.Enabled() || strings.TrimSpace(company) == "" {
		return facts
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	overview := r.search(ctx, fmt.Sprintf("%s company", company))
	values := r.search(ctx, fmt.Sprintf("%s values culture", company))

	facts.Overview = joinSnippets(overview)
	facts.Values = joinSnippets(values)
	facts.Industry = extractIndustry(overview)
	for _, item := range overview {
		if item.Link != "" {
			facts.Sources = append(facts.Sources, item.Link)
		}
	}
	return facts
}

// search runs one query, swallowing failures.
func (r *Researcher) search(ctx context.Context, query string) []*customsearch.Result {
	resp, err := r.svc.Cse.List().
		Cx(r.engineID).
		Q(query).
		Num(maxSnippets).
		Context(ctx).
		Do()
	if err != nil {
		return nil
	}
	return resp.Items
}

func joinSnippets(items []*customsearch.Result) string {
	var parts []string
	for _, item := range items {
		snippet := strings.TrimSpace(item.Snippet)
		if snippet != "" {
			parts = append(parts, snippet)
		}
		if len(parts) >= maxSnippets {
			break
		}
	}
	return strings.Join(parts, " ")
}

var industryKeywords = []string{
	"fintech", "banking", "finance", "healthcare", "e-commerce", "retail",
	"saas", "telecom", "education", "consulting", "automotive", "energy",
}

// extractIndustry picks the first industry keyword mentioned in snippets.
func extractIndustry(items []*customsearch.Result) string {
	for _, item := range items {
		lower := strings.ToLower(item.Snippet)
		for _, keyword := range industryKeywords {
			if strings.Contains(lower, keyword) {
				return keyword
			}
		}
	}
	return ""
}

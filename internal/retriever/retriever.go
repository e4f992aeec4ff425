// Package retriever ranks the knowledge base's experiences against a job
// signal. It is pure: no I/O, no model calls, fully deterministic for a
// given clock.
package retriever

import (
	"sort"
	"strings"
	"time"

	"github.com/jonathan/cv-tailor/internal/types"
)

// Weights holds the scoring component weights. The defaults are tuned
// starting points, not constants mandated by correctness.
type Weights struct {
	Technology float64 `json:"technology"`
	Role       float64 `json:"role"`
	Recency    float64 `json:"recency"`
	Industry   float64 `json:"industry"`
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Technology: 0.5,
		Role:       0.2,
		Recency:    0.2,
		Industry:   0.1,
	}
}

// recencyHorizonYears is the span over which the recency score decays to zero.
const recencyHorizonYears = 10.0

// Selection caps per document kind. The composer further truncates against
// the page budget; these bound how much adaptation work is fanned out.
const (
	maxExperiencesCV     = 5
	maxExperiencesLetter = 3
)

// Retriever scores and ranks experiences.
type Retriever struct {
	weights Weights
	now     func() time.Time
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithClock overrides the recency reference clock. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) { r.now = now }
}

// New creates a Retriever with the given weights.
func New(weights Weights, opts ...Option) *Retriever {
	r := &Retriever{weights: weights, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every experience against the signal and returns them ordered
// by descending score, ties broken by most-recent date range first, then by
// original profile order.
func (r *Retriever) Rank(signal *types.JobSignal, experiences []types.Experience) []types.RankedExperience {
	ranked := make([]types.RankedExperience, 0, len(experiences))
	for _, exp := range experiences {
		score, matched := r.score(signal, &exp)
		ranked = append(ranked, types.RankedExperience{
			Experience:          exp,
			Score:               score,
			MatchedTechnologies: matched,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return recencyKey(&ranked[i].Experience).After(recencyKey(&ranked[j].Experience))
	})

	return ranked
}

// Top bounds a ranking to the selection cap for the document kind.
func Top(kind types.DocumentKind, ranked []types.RankedExperience) []types.RankedExperience {
	limit := maxExperiencesCV
	if kind == types.KindCoverLetter {
		limit = maxExperiencesLetter
	}
	if len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// score computes the weighted relevance of one experience.
func (r *Retriever) score(signal *types.JobSignal, exp *types.Experience) (float64, []string) {
	techScore, matched := technologyOverlap(signal.Technologies, exp.Technologies)
	roleScore := tokenOverlap(signal.RoleTitle, exp.Role)
	recency := r.recencyScore(exp)
	industryScore, _ := technologyOverlap(signal.IndustryTags, exp.Tags)

	score := r.weights.Technology*techScore +
		r.weights.Role*roleScore +
		r.weights.Recency*recency +
		r.weights.Industry*industryScore

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score, matched
}

// technologyOverlap returns the fraction of wanted entries present in the
// candidate set. Partial matches count ("python" matches "python/fastapi").
func technologyOverlap(wanted, have []string) (float64, []string) {
	if len(wanted) == 0 || len(have) == 0 {
		return 0.0, nil
	}

	haveLower := make([]string, len(have))
	for i, h := range have {
		haveLower[i] = strings.ToLower(h)
	}

	matches := 0
	var matched []string
	for _, w := range wanted {
		wLower := strings.ToLower(w)
		for _, h := range haveLower {
			if h == wLower || strings.Contains(h, wLower) || strings.Contains(wLower, h) {
				matches++
				matched = append(matched, w)
				break
			}
		}
	}

	return float64(matches) / float64(len(wanted)), matched
}

var stopTokens = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"de": true, "la": true, "el": true, "y": true, "o": true,
}

// tokenOverlap returns the fraction of target-role tokens shared with the
// entity's role text.
func tokenOverlap(target, candidate string) float64 {
	targetTokens := tokenize(target)
	if len(targetTokens) == 0 {
		return 0.0
	}
	candidateTokens := make(map[string]bool)
	for _, tok := range tokenize(candidate) {
		candidateTokens[tok] = true
	}

	shared := 0
	for _, tok := range targetTokens {
		if candidateTokens[tok] {
			shared++
		}
	}
	return float64(shared) / float64(len(targetTokens))
}

func tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,;:()[]/")
		if field == "" || stopTokens[field] {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// recencyScore decays linearly from 1.0 (current) to 0.0 over the horizon.
// Unparsable dates score a neutral 0.5.
func (r *Retriever) recencyScore(exp *types.Experience) float64 {
	end := recencyKey(exp)
	if end.IsZero() {
		return 0.5
	}

	yearsSince := r.now().Sub(end).Hours() / (24 * 365.25)
	if yearsSince <= 0 {
		return 1.0
	}
	if yearsSince >= recencyHorizonYears {
		return 0.0
	}
	return 1.0 - yearsSince/recencyHorizonYears
}

// recencyKey returns the effective end of an experience's date range. An
// empty end date means the experience is current.
func recencyKey(exp *types.Experience) time.Time {
	if exp.EndDate == "" {
		if exp.StartDate == "" {
			return time.Time{}
		}
		// Current role: rank as of the far future so it sorts first.
		return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	t, err := time.Parse("2006-01", exp.EndDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Package analyzer turns a raw job description (free text or URL) into a
// normalized JobSignal. Extraction prefers the model; a heuristic keyword
// pass backs it so extraction can never hard-fail a request.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/cv-tailor/internal/adapt"
	"github.com/jonathan/cv-tailor/internal/fetch"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/types"
)

// summaryLength bounds the source excerpt kept on the signal.
const summaryLength = 500

// extractionInputLength bounds the text sent to the extraction prompt.
const extractionInputLength = 8000

// ExtractionError means fetched content could not be reduced to readable
// text. Propagated to the request caller.
type ExtractionError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.URL, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Analyzer derives job signals from raw postings.
type Analyzer struct {
	adapter         *adapt.Service
	fetchOptions    *fetch.Options
	useBrowser      bool
	browserTimeout  time.Duration
	primaryLanguage types.Language
}

// Options configures an Analyzer.
type Options struct {
	FetchOptions *fetch.Options
	// UseBrowser enables the headless-browser fallback for SPA job pages.
	UseBrowser     bool
	BrowserTimeout time.Duration
	// PrimaryLanguage is the detection fallback, from the loaded profile.
	PrimaryLanguage types.Language
}

// New creates an Analyzer using the given adaptation service for extraction.
func New(adapter *adapt.Service, opts Options) *Analyzer {
	if opts.FetchOptions == nil {
		opts.FetchOptions = fetch.DefaultOptions()
	}
	if opts.BrowserTimeout == 0 {
		opts.BrowserTimeout = 45 * time.Second
	}
	if !opts.PrimaryLanguage.Valid() {
		opts.PrimaryLanguage = types.LanguageEnglish
	}
	return &Analyzer{
		adapter:         adapter,
		fetchOptions:    opts.FetchOptions,
		useBrowser:      opts.UseBrowser,
		browserTimeout:  opts.BrowserTimeout,
		primaryLanguage: opts.PrimaryLanguage,
	}
}

// Analyze produces a JobSignal for the input, fetching it first when the
// input is a URL. Fetch and extraction failures on the URL path propagate;
// signal extraction itself always succeeds via the heuristic fallback.
func (a *Analyzer) Analyze(ctx context.Context, input string) (*types.JobSignal, error) {
	text := input

	if fetch.IsURL(input) {
		result, err := fetch.URL(ctx, input, a.fetchOptions)
		if err != nil {
			return nil, err
		}

		text, err = fetch.ExtractMainText(result.HTML, fetch.JobPostingSelectors())
		if err != nil {
			return nil, &ExtractionError{URL: input, Message: "unparsable content", Cause: err}
		}

		if a.useBrowser && fetch.ShouldUseBrowser(text) {
			if rendered, berr := fetch.WithBrowser(ctx, input, a.browserTimeout); berr == nil {
				if renderedText, xerr := fetch.ExtractMainText(rendered, fetch.JobPostingSelectors()); xerr == nil && len(renderedText) > len(text) {
					text = renderedText
				}
			}
		}

		if strings.TrimSpace(text) == "" {
			return nil, &ExtractionError{URL: input, Message: "no readable text in fetched content"}
		}
	}

	signal := a.extractSignal(ctx, text)
	signal.Language = DetectLanguage(text, a.primaryLanguage)
	signal.Summary = excerpt(text, summaryLength)
	return signal, nil
}

// extractSignal runs model extraction with one strict retry, then falls back
// to the keyword heuristic. It never fails.
func (a *Analyzer) extractSignal(ctx context.Context, text string) *types.JobSignal {
	bounded := excerpt(text, extractionInputLength)

	prompt := prompts.Format(prompts.MustGet("extraction.json", "extract-signal"),
		map[string]string{"JobText": bounded})
	if signal := a.tryExtract(ctx, prompt); signal != nil {
		return signal
	}

	strict := prompts.Format(prompts.MustGet("extraction.json", "extract-signal-strict"),
		map[string]string{"JobText": bounded})
	if signal := a.tryExtract(ctx, strict); signal != nil {
		return signal
	}

	return HeuristicSignal(text)
}

// tryExtract issues one extraction call and validates the output against the
// signal schema. Nil means the attempt failed.
func (a *Analyzer) tryExtract(ctx context.Context, prompt string) *types.JobSignal {
	raw, err := a.adapter.Extract(ctx, prompt)
	if err != nil {
		return nil
	}
	signal, err := parseSignalJSON(raw)
	if err != nil {
		return nil
	}
	return signal
}

// excerpt returns at most n bytes of text, cut on a rune boundary so Spanish
// postings never lose a split multi-byte character.
func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

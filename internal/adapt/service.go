// Package adapt provides the LLM adaptation service: cached, fingerprinted
// completion calls with concurrent fan-out for independent content slots.
package adapt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/types"
)

// UnavailableError means the completion endpoint was unreachable after a
// retry. It is surfaced as a request-level failure only when it blocks the
// mandatory extraction step; slot adaptations absorb it via fallback.
type UnavailableError struct {
	Slot  string
	Cause error
}

func (e *UnavailableError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("completion endpoint unavailable for slot %s: %v", e.Slot, e.Cause)
	}
	return fmt.Sprintf("completion endpoint unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// ErrEmptyResponse means the model returned no usable text. The affected slot
// falls back to its original content; the call is not retried further.
var ErrEmptyResponse = fmt.Errorf("empty completion response")

// defaultMaxConcurrent bounds the fan-out of independent adaptation calls.
const defaultMaxConcurrent = 4

// defaultRetryBackoff is the wait before the single retry of a failed call.
const defaultRetryBackoff = 2 * time.Second

// Request describes one slot adaptation: the slot identifier, the source
// text the output must derive from, and the fully built prompt.
type Request struct {
	Slot   string
	Source string
	Prompt string
}

// Service issues completion calls with per-fingerprint caching. It owns the
// cache; there is no package-level state.
type Service struct {
	client        llm.Client
	cache         *Cache
	maxConcurrent int
	retryBackoff  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithMaxConcurrent sets the fan-out bound for AdaptAll.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithRetryBackoff sets the wait before the single retry.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *Service) { s.retryBackoff = d }
}

// NewService creates an adaptation service around a completion client.
func NewService(client llm.Client, opts ...Option) *Service {
	s := &Service{
		client:        client,
		cache:         NewCache(),
		maxConcurrent: defaultMaxConcurrent,
		retryBackoff:  defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Adapt returns adapted text for one slot. On a cache hit it returns the
// cached text with zero network calls; on a miss it issues one completion
// request (with a single retry on failure) and stores the result.
func (s *Service) Adapt(ctx context.Context, req Request, signal *types.JobSignal) (string, error) {
	key := Fingerprint(req.Slot, req.Source, req.Prompt, signal)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	text, err := s.completeWithRetry(ctx, req.Prompt, false)
	if err != nil {
		return "", &UnavailableError{Slot: req.Slot, Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("slot %s: %w", req.Slot, ErrEmptyResponse)
	}

	text = strings.TrimSpace(text)
	s.cache.Put(key, text)
	return text, nil
}

// AdaptAll runs independent slot adaptations concurrently and joins them.
// A failed slot is isolated: its entry carries the original source text with
// Adapted=false. The batch itself never fails.
func (s *Service) AdaptAll(ctx context.Context, requests []Request, signal *types.JobSignal) types.AdaptedContent {
	results := make([]types.AdaptedText, len(requests))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, req := range requests {
		g.Go(func() error {
			text, err := s.Adapt(gCtx, req, signal)
			if err != nil {
				results[i] = types.AdaptedText{Text: req.Source, Adapted: false}
				return nil
			}
			results[i] = types.AdaptedText{Text: text, Adapted: true}
			return nil
		})
	}
	// Workers never return errors; failures degrade to fallback entries.
	_ = g.Wait()

	content := make(types.AdaptedContent, len(requests))
	for i, req := range requests {
		content[req.Slot] = results[i]
	}
	return content
}

// Extract issues a JSON-constrained completion for structured extraction.
// Unlike slot adaptation the result is not cached here: the analyzer caches
// through Adapt when it needs to, and extraction prompts embed full postings.
func (s *Service) Extract(ctx context.Context, prompt string) (string, error) {
	text, err := s.completeWithRetry(ctx, prompt, true)
	if err != nil {
		return "", &UnavailableError{Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// completeWithRetry issues one completion with a single retry after backoff.
func (s *Service) completeWithRetry(ctx context.Context, prompt string, asJSON bool) (string, error) {
	complete := s.client.Complete
	if asJSON {
		complete = s.client.CompleteJSON
	}

	text, err := complete(ctx, prompt)
	if err == nil {
		return text, nil
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.retryBackoff):
	}

	text, retryErr := complete(ctx, prompt)
	if retryErr != nil {
		return "", fmt.Errorf("retry failed after %v: %w", s.retryBackoff, retryErr)
	}
	return text, nil
}

// Fingerprint derives the cache key from exactly the inputs that determine an
// adaptation's output: slot identifier, source text, the built prompt, and
// the job signal. The prompt must participate because it carries per-request
// knobs (bullet caps, research context) beyond slot and source.
func Fingerprint(slot, source, prompt string, signal *types.JobSignal) string {
	h := sha256.New()
	h.Write([]byte(slot))
	h.Write([]byte{0})
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write([]byte(canonicalSignal(signal)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalSignal renders the signal fields that influence adaptation output
// in a stable order, so equivalent signals produce equal fingerprints.
func canonicalSignal(signal *types.JobSignal) string {
	if signal == nil {
		return ""
	}
	techs := make([]string, len(signal.Technologies))
	for i, t := range signal.Technologies {
		techs[i] = strings.ToLower(t)
	}
	sort.Strings(techs)
	return strings.Join([]string{
		string(signal.Language),
		strings.ToLower(signal.RoleTitle),
		signal.SeniorityHint,
		strings.Join(techs, ","),
		strings.ToLower(signal.Company),
	}, "|")
}

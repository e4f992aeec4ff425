package adapt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/types"
)

type stubClient struct {
	calls    atomic.Int64
	response string
	err      error
	fn       func(prompt string) (string, error)
}

func (c *stubClient) Complete(_ context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	if c.fn != nil {
		return c.fn(prompt)
	}
	return c.response, c.err
}

func (c *stubClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.Complete(ctx, prompt)
}

func (c *stubClient) Close() error { return nil }

func testSignal() *types.JobSignal {
	return &types.JobSignal{
		Language:     types.LanguageEnglish,
		RoleTitle:    "Backend Engineer",
		Technologies: []string{"Go", "PostgreSQL"},
		Company:      "Acme",
	}
}

func TestAdapt_CachesByFingerprint(t *testing.T) {
	client := &stubClient{response: "adapted summary"}
	svc := NewService(client, WithRetryBackoff(0))
	req := Request{Slot: "summary", Source: "original", Prompt: "adapt this"}

	first, err := svc.Adapt(context.Background(), req, testSignal())
	require.NoError(t, err)
	second, err := svc.Adapt(context.Background(), req, testSignal())
	require.NoError(t, err)

	assert.Equal(t, "adapted summary", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), client.calls.Load(), "second call must be served from cache")
}

func TestAdapt_RetriesOnceThenSucceeds(t *testing.T) {
	client := &stubClient{}
	client.fn = func(string) (string, error) {
		if client.calls.Load() == 1 {
			return "", errors.New("connection reset")
		}
		return "recovered", nil
	}
	svc := NewService(client, WithRetryBackoff(0))

	text, err := svc.Adapt(context.Background(), Request{Slot: "summary", Source: "s", Prompt: "p"}, testSignal())
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int64(2), client.calls.Load())
}

func TestAdapt_UnavailableAfterRetry(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	svc := NewService(client, WithRetryBackoff(0))

	_, err := svc.Adapt(context.Background(), Request{Slot: "skills", Source: "s", Prompt: "p"}, testSignal())
	require.Error(t, err)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "skills", unavailable.Slot)
	assert.Equal(t, int64(2), client.calls.Load(), "exactly one retry")
}

func TestAdapt_EmptyResponseNotCached(t *testing.T) {
	client := &stubClient{response: "   "}
	svc := NewService(client, WithRetryBackoff(0))
	req := Request{Slot: "summary", Source: "s", Prompt: "p"}

	_, err := svc.Adapt(context.Background(), req, testSignal())
	require.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 0, svc.cache.Len())
}

func TestAdaptAll_FailedSlotFallsBack(t *testing.T) {
	client := &stubClient{}
	client.fn = func(prompt string) (string, error) {
		if prompt == "fail" {
			return "", errors.New("boom")
		}
		return "adapted", nil
	}
	svc := NewService(client, WithRetryBackoff(0))

	requests := []Request{
		{Slot: "summary", Source: "summary source", Prompt: "ok"},
		{Slot: "skills", Source: "skills source", Prompt: "fail"},
	}
	content := svc.AdaptAll(context.Background(), requests, testSignal())

	assert.Equal(t, types.AdaptedText{Text: "adapted", Adapted: true}, content["summary"])
	assert.Equal(t, types.AdaptedText{Text: "skills source", Adapted: false}, content["skills"])
}

func TestAdaptAll_ConcurrentSharedFingerprint(t *testing.T) {
	client := &stubClient{response: "adapted"}
	svc := NewService(client, WithRetryBackoff(0), WithMaxConcurrent(8))

	requests := make([]Request, 16)
	for i := range requests {
		requests[i] = Request{Slot: fmt.Sprintf("position:%d:bullets", i), Source: "source", Prompt: "p"}
	}
	content := svc.AdaptAll(context.Background(), requests, testSignal())

	require.Len(t, content, 16)
	for slot, text := range content {
		assert.True(t, text.Adapted, slot)
		assert.Equal(t, "adapted", text.Text)
	}
}

func TestAdapt_DistinctPromptsBypassCache(t *testing.T) {
	client := &stubClient{fn: func(prompt string) (string, error) {
		return "for " + prompt, nil
	}}
	svc := NewService(client, WithRetryBackoff(0))
	signal := testSignal()

	four, err := svc.Adapt(context.Background(), Request{
		Slot: "position:payments:bullets", Source: "- shipped", Prompt: "keep at most 4 bullets",
	}, signal)
	require.NoError(t, err)

	two, err := svc.Adapt(context.Background(), Request{
		Slot: "position:payments:bullets", Source: "- shipped", Prompt: "keep at most 2 bullets",
	}, signal)
	require.NoError(t, err)

	assert.Equal(t, "for keep at most 4 bullets", four)
	assert.Equal(t, "for keep at most 2 bullets", two,
		"a different prompt for the same slot and source must not reuse the cached text")
	assert.Equal(t, int64(2), client.calls.Load())
}

func TestAdapt_ConcurrentSameFingerprint(t *testing.T) {
	client := &stubClient{response: "adapted"}
	svc := NewService(client, WithRetryBackoff(0))
	req := Request{Slot: "summary", Source: "source", Prompt: "p"}

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := svc.Adapt(context.Background(), req, testSignal())
			assert.NoError(t, err)
			results[i] = text
		}()
	}
	wg.Wait()

	for _, text := range results {
		assert.Equal(t, "adapted", text)
	}
	// Racing misses may each call once, but a later sequential call must not.
	before := client.calls.Load()
	_, err := svc.Adapt(context.Background(), req, testSignal())
	require.NoError(t, err)
	assert.Equal(t, before, client.calls.Load())
}

func TestFingerprint_Stability(t *testing.T) {
	a := &types.JobSignal{
		Language:     types.LanguageEnglish,
		RoleTitle:    "Backend Engineer",
		Technologies: []string{"PostgreSQL", "Go"},
		Company:      "Acme",
	}
	b := &types.JobSignal{
		Language:     types.LanguageEnglish,
		RoleTitle:    "backend engineer",
		Technologies: []string{"go", "postgresql"},
		Company:      "acme",
	}

	assert.Equal(t, Fingerprint("summary", "text", "prompt", a), Fingerprint("summary", "text", "prompt", b),
		"case and technology order must not change the fingerprint")
}

func TestFingerprint_Sensitivity(t *testing.T) {
	signal := testSignal()
	base := Fingerprint("summary", "text", "prompt", signal)

	assert.NotEqual(t, base, Fingerprint("skills", "text", "prompt", signal), "slot changes key")
	assert.NotEqual(t, base, Fingerprint("summary", "other text", "prompt", signal), "source changes key")
	assert.NotEqual(t, base, Fingerprint("summary", "text", "other prompt", signal), "prompt changes key")

	other := testSignal()
	other.RoleTitle = "Data Engineer"
	assert.NotEqual(t, base, Fingerprint("summary", "text", "prompt", other), "signal changes key")
}

func TestFingerprint_NilSignal(t *testing.T) {
	assert.NotPanics(t, func() {
		Fingerprint("summary", "text", "prompt", nil)
	})
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Put("k", "v")
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Len())
}

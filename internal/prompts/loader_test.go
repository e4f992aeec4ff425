package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("extraction.json", "extract-signal")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("extraction.json", "no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-prompt")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "extract-signal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("extraction.json", "no-such-prompt")
	})
}

func TestMustGet_AllAdaptationPrompts(t *testing.T) {
	for _, key := range []string{"adapt-summary", "adapt-bullets", "adapt-skills", "letter-body", "translate-role"} {
		assert.NotEmpty(t, MustGet("adaptation.json", key), key)
	}
}

func TestFormat(t *testing.T) {
	template := "Adapt {{.Source}} for {{.RoleTitle}} at {{.Company}}"
	result := Format(template, map[string]string{
		"Source":    "the summary",
		"RoleTitle": "Backend Engineer",
		"Company":   "Acme",
	})
	assert.Equal(t, "Adapt the summary for Backend Engineer at Acme", result)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x and {{.Unknown}}", result)
}

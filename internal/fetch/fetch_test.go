package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/jobs/123", true},
		{"http://example.com", true},
		{"  https://example.com  ", true},
		{"ftp://example.com", false},
		{"example.com/jobs", false},
		{"We are hiring a Backend Engineer", false},
		{"https://example.com/jobs with spaces", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.input))
		})
	}
}

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>Job posting</p></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Job posting")
	assert.Contains(t, result.ContentType, "text/html")
}

func TestURL_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL+"/gone", nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)

	// The partial result still carries the status for diagnostics.
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not a url", nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "invalid URL")
}

func TestURL_ConnectionRefused(t *testing.T) {
	_, err := URL(context.Background(), "http://127.0.0.1:1/job", nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "HTTP request failed")
}

func TestExtractMainText_UsesContentSelector(t *testing.T) {
	html := `
	<html><body>
	<nav>Home | Jobs | About</nav>
	<div class="job-description"><h1>Backend Engineer</h1><p>Go and PostgreSQL required.</p></div>
	<footer>Copyright 2025</footer>
	</body></html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)

	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Go and PostgreSQL required.")
	assert.NotContains(t, text, "Home | Jobs")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractMainText_BodyFallback(t *testing.T) {
	html := `<html><body><p>Plain posting text without any known container.</p></body></html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Plain posting text")
}

func TestExtractMainText_RemovesScripts(t *testing.T) {
	html := `<html><body><script>var x = "tracking";</script><p>Visible text</p></body></html>`

	text, err := ExtractMainText(html, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Visible text")
	assert.NotContains(t, text, "tracking")
}

func TestCleanWhitespace(t *testing.T) {
	input := "  line one  \n\n\n   line two\n   \nline three  "
	assert.Equal(t, "line one\nline two\nline three", cleanWhitespace(input))
}

func TestShouldUseBrowser(t *testing.T) {
	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}

	assert.True(t, ShouldUseBrowser("short"))
	assert.False(t, ShouldUseBrowser(string(long)))
}

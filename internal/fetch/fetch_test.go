package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML(), "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.MediaType())
	assert.True(t, result.IsHTML())
}

func TestURL_BinaryDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.False(t, result.IsHTML())
	assert.Equal(t, []byte("%PDF-1.4"), result.Body)
}

func TestURL_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBytes = 16
	_, err := URL(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")

	_, err = URL(context.Background(), "ftp://example.com/cv.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Main Content</h1>
				<p>This is the important text.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, ResumeSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Main Content")
	assert.Contains(t, text, "important text")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_ResumeSection(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Sidebar junk</div>
			<section class="resume">
				<h2>Experience</h2>
				<p>5 years building Go services</p>
			</section>
		</body>
	</html>`

	text, err := ExtractMainText(html, ResumeSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Experience")
	assert.Contains(t, text, "5 years building Go services")
	assert.NotContains(t, text, "Sidebar junk")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><main><p>Keep me</p><div class="share">Share this</div></main></body></html>`

	text, err := ExtractMainText(html, ResumeSelectors(), ".share")
	require.NoError(t, err)
	assert.Contains(t, text, "Keep me")
	assert.NotContains(t, text, "Share this")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `
	<html>
		<body>
			<div>Some content here.</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, ResumeSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser(""))
	assert.True(t, ShouldUseBrowser("Loading..."))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		url  string
		want Source
	}{
		{"https://www.linkedin.com/in/alexrivera", SourceLinkedIn},
		{"https://linkedin.com/in/alexrivera", SourceLinkedIn},
		{"https://github.com/alexrivera", SourceGitHub},
		{"https://alexrivera.github.io/cv", SourceGitHub},
		{"https://docs.google.com/document/d/abc123/edit", SourceGoogleDocs},
		{"https://alexrivera.dev/resume", SourceUnknown},
		{"://bad", SourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSource(tt.url))
		})
	}
}

func TestSelectorsFor(t *testing.T) {
	assert.Equal(t, ".core-section-container", SelectorsFor(SourceLinkedIn)[0])
	assert.Equal(t, "article.markdown-body", SelectorsFor(SourceGitHub)[0])
	assert.Equal(t, ResumeSelectors(), SelectorsFor(SourceUnknown))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/document/d/abc123/export?format=txt",
		NormalizeURL("https://docs.google.com/document/d/abc123/edit#heading=h.1"))
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc/edit",
		NormalizeURL("https://docs.google.com/spreadsheets/d/abc/edit"))
	assert.Equal(t, "https://alexrivera.dev/cv", NormalizeURL("https://alexrivera.dev/cv"))
}

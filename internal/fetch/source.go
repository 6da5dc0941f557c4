package fetch

import (
	"net/url"
	"strings"
)

// Source is a known host for candidate documents.
type Source string

// Known sources
const (
	SourceLinkedIn   Source = "linkedin"
	SourceGitHub     Source = "github"
	SourceGoogleDocs Source = "google_docs"
	SourceUnknown    Source = "unknown"
)

// DetectSource identifies where a document URL points.
func DetectSource(urlStr string) Source {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return SourceUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return SourceLinkedIn
	case host == "github.com" || strings.HasSuffix(host, ".github.io"):
		return SourceGitHub
	case host == "docs.google.com":
		return SourceGoogleDocs
	default:
		return SourceUnknown
	}
}

// SelectorsFor returns content selectors for a source, most specific first.
func SelectorsFor(s Source) []string {
	switch s {
	case SourceLinkedIn:
		return append([]string{".core-section-container", ".top-card-layout", "section.profile"}, ResumeSelectors()...)
	case SourceGitHub:
		return append([]string{"article.markdown-body", ".js-profile-editable-area"}, ResumeSelectors()...)
	default:
		return ResumeSelectors()
	}
}

// NormalizeURL rewrites share links into a directly fetchable form.
// Google Docs documents are exported as plain text.
func NormalizeURL(urlStr string) string {
	if DetectSource(urlStr) != SourceGoogleDocs {
		return urlStr
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	// /document/d/<id>/edit
	if len(parts) < 3 || parts[0] != "document" || parts[1] != "d" {
		return urlStr
	}
	parsed.Path = "/document/d/" + parts[2] + "/export"
	parsed.RawQuery = "format=txt"
	parsed.Fragment = ""
	return parsed.String()
}

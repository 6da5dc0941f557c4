package resume

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jonathan/screeniq/internal/fetch"
	"github.com/jonathan/screeniq/internal/llm"
)

// DefaultMaxChars bounds the resume text handed to question generation.
const DefaultMaxChars = 12000

// Error describes a failure while resolving a resume reference.
type Error struct {
	Ref   string
	Stage string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resume %s: %s: %v", e.Ref, e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrNoSource is returned when a reference matches no configured source.
var ErrNoSource = errors.New("no source configured for reference")

// Resolver turns a resume reference into plain text.
type Resolver struct {
	// Objects serves bare keys and s3:// URIs. Nil disables object storage.
	Objects Downloader
	// Attempts is the retry budget for downloads.
	Attempts int
	// Fetch configures http(s) retrieval.
	Fetch *fetch.Options
	// Browser enables headless rendering of pages with too little static text.
	Browser        bool
	BrowserTimeout time.Duration
	MaxChars       int
	Verbose        bool
}

// NewResolver creates a Resolver with default limits.
func NewResolver(objects Downloader) *Resolver {
	return &Resolver{
		Objects:        objects,
		Attempts:       3,
		Fetch:          fetch.DefaultOptions(),
		BrowserTimeout: 30 * time.Second,
		MaxChars:       DefaultMaxChars,
	}
}

// Resolve returns the text of the resume at ref. mime overrides type detection.
func (r *Resolver) Resolve(ctx context.Context, ref, mime string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &Error{Ref: ref, Stage: "parse", Cause: errors.New("empty reference")}
	}

	var (
		text string
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		text, err = r.resolveURL(ctx, ref, mime)
	case strings.HasPrefix(ref, "s3://"):
		bucket, key, _ := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
		text, err = r.resolveObject(ctx, ref, bucket, key, mime)
	case fileExists(ref):
		text, err = r.resolveFile(ref, mime)
	default:
		text, err = r.resolveObject(ctx, ref, "", ref, mime)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if r.MaxChars > 0 && len(text) > r.MaxChars {
		text = truncateRunes(text, r.MaxChars)
	}
	if r.Verbose {
		log.Printf("[resume] resolved %s (%d chars)", ref, len(text))
	}
	return text, nil
}

func (r *Resolver) resolveObject(ctx context.Context, ref, bucket, key, mime string) (string, error) {
	if r.Objects == nil {
		return "", &Error{Ref: ref, Stage: "download", Cause: ErrNoSource}
	}
	if key == "" {
		return "", &Error{Ref: ref, Stage: "parse", Cause: errors.New("missing object key")}
	}

	data, err := llm.Retry(ctx, r.Attempts, func(ctx context.Context) ([]byte, error) {
		return r.Objects.Download(ctx, bucket, key)
	})
	if err != nil {
		log.Printf("[resume] failed to download %s: %v", ref, err)
		return "", &Error{Ref: ref, Stage: "download", Cause: err}
	}
	return r.extract(ref, key, mime, data)
}

func (r *Resolver) resolveFile(ref, mime string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", &Error{Ref: ref, Stage: "read", Cause: err}
	}
	return r.extract(ref, ref, mime, data)
}

func (r *Resolver) resolveURL(ctx context.Context, ref, mime string) (string, error) {
	target := fetch.NormalizeURL(ref)
	result, err := fetch.URL(ctx, target, r.Fetch)
	if err != nil {
		return "", &Error{Ref: ref, Stage: "fetch", Cause: err}
	}

	if normalizeMIME(mime) == "text/html" {
		mime = ""
	}
	if mime == "" && !result.IsHTML() {
		mime = result.MediaType()
		if mime == "" || mime == "application/octet-stream" {
			mime = GuessMIME(target, result.Body)
		}
	}
	if mime != "" {
		return r.extract(ref, target, mime, result.Body)
	}

	selectors := fetch.SelectorsFor(fetch.DetectSource(target))
	text, err := fetch.ExtractMainText(result.HTML(), selectors)
	if err != nil {
		return "", &Error{Ref: ref, Stage: "extract", Cause: err}
	}
	if r.Browser && fetch.ShouldUseBrowser(text) {
		if r.Verbose {
			log.Printf("[resume] static text too short (%d chars), rendering %s", len(text), target)
		}
		html, berr := fetch.WithBrowser(ctx, target, r.BrowserTimeout, r.Verbose)
		if berr != nil {
			log.Printf("[resume] browser fallback failed for %s: %v", target, berr)
			return text, nil
		}
		if rendered, eerr := fetch.ExtractMainText(html, selectors); eerr == nil {
			text = rendered
		}
	}
	return text, nil
}

func (r *Resolver) extract(ref, name, mime string, data []byte) (string, error) {
	if mime == "" {
		mime = GuessMIME(name, data)
	}
	text, err := ExtractText(mime, data)
	if err != nil {
		log.Printf("[resume] text extraction failed for %s: %v", ref, err)
		return "", &Error{Ref: ref, Stage: "extract", Cause: err}
	}
	return text, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Package resume resolves candidate resume references into plain text.
// References may be object keys in the R2 bucket, s3:// URIs, http(s) URLs
// or local files. PDF, DOCX and plain text documents are supported.
package resume

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/screeniq/internal/fetch"
)

// Supported document types.
const (
	MIMEPlain = "text/plain"
	MIMEPDF   = "application/pdf"
	MIMEDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ExtractText converts a document to plain text according to its MIME type.
func ExtractText(mime string, data []byte) (string, error) {
	switch normalizeMIME(mime) {
	case MIMEPlain, "text/markdown":
		return string(data), nil
	case MIMEPDF:
		return extractPDFText(data)
	case MIMEDOCX:
		return extractDocxText(data)
	case "text/html", "application/xhtml+xml":
		return fetch.ExtractMainText(string(data), fetch.ResumeSelectors())
	default:
		return "", fmt.Errorf("unsupported file type: %s", mime)
	}
}

// GuessMIME picks a MIME type from the file extension of name, falling back to
// sniffing the content.
func GuessMIME(name string, data []byte) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	case ".txt", ".md", ".text":
		return MIMEPlain
	}
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return MIMEPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		// Zip container, assume a Word document.
		return MIMEDOCX
	case len(data) > 0:
		return normalizeMIME(http.DetectContentType(data))
	}
	return ""
}

func normalizeMIME(mime string) string {
	mt, _, _ := strings.Cut(mime, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

var xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

// docxXMLToText flattens WordprocessingML into lines of text.
func docxXMLToText(content string) string {
	content = paragraphEnd.ReplaceAllStringFunc(content, func(m string) string {
		if m == "<w:tab/>" {
			return " "
		}
		return "\n"
	})
	content = xmlTag.ReplaceAllString(content, "")
	content = xmlEntities.Replace(content)

	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

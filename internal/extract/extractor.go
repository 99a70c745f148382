// Package extract turns FAQ documents into corpus text, one entry per line.
package extract

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Extractor extracts corpus lines from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extensions lists the file extensions with a dedicated extractor.
// Anything else is read as plain text.
func Extensions() []string {
	return []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".ods"}
}

// Extract reads the file at path and returns its corpus text.
// Plain text is returned as-is (UTF-8 validated). For PDF, DOCX, XLSX and
// ODS every paragraph, text row or non-empty cell becomes its own line so
// the question and answer markers survive.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts corpus text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".ods":
		return extractODS(content)
	default:
		return extractPlain(content)
	}
}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// xmlText strips tags from an XML fragment and unescapes entities.
func xmlText(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(xmlTag.ReplaceAllString(fragment, "")))
}

// joinLines drops blank entries and joins the rest with newlines.
func joinLines(lines []string) string {
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

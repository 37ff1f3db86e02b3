// Package importer turns batch write-ups (plain text or PDF) into ingredient
// and step lines for the batch editor.
package importer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"batchbook/internal/exceptions"
)

const MaxDocumentSize = 5 << 20 // 5 MiB

// Document is the parsed content of an uploaded write-up.
type Document struct {
	Ingredients []string
	Steps       []string
	Notes       string
}

func (d Document) Empty() bool {
	return len(d.Ingredients) == 0 && len(d.Steps) == 0
}

type section int

const (
	sectionNotes section = iota
	sectionIngredients
	sectionSteps
)

var headings = map[string]section{
	"ingredients":  sectionIngredients,
	"steps":        sectionSteps,
	"method":       sectionSteps,
	"instructions": sectionSteps,
	"directions":   sectionSteps,
	"notes":        sectionNotes,
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)]|\[[ xX]?\])\s+`)

// Parse extracts a Document from an upload. The content type falls back to
// the file extension when empty.
func Parse(name, contentType string, data []byte) (Document, error) {
	if len(data) > MaxDocumentSize {
		return Document{}, exceptions.InvalidInput("Document must be less than 5MB")
	}
	if strings.TrimSpace(contentType) == "" || contentType == "application/octet-stream" {
		contentType = mimeTypeFromName(name)
	}

	var text string
	lower := strings.ToLower(contentType)
	switch {
	case strings.Contains(lower, "pdf"):
		extracted, err := ExtractPDFText(data)
		if err != nil {
			return Document{}, exceptions.InvalidInput("Could not read the PDF document")
		}
		text = extracted
	case strings.HasPrefix(lower, "text/"):
		text = string(data)
	default:
		return Document{}, exceptions.InvalidInput("Please upload a PDF or text document")
	}

	doc := ParseText(text)
	if doc.Empty() {
		return Document{}, exceptions.InvalidInput("No ingredients or steps found in document")
	}
	return doc, nil
}

// ParseText splits text on Ingredients / Steps / Notes headings. Lines before
// the first heading are kept as notes.
func ParseText(text string) Document {
	var (
		doc     Document
		notes   []string
		current = sectionNotes
	)

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if s, ok := heading(line); ok {
			current = s
			continue
		}
		switch current {
		case sectionIngredients:
			doc.Ingredients = append(doc.Ingredients, stripMarker(line))
		case sectionSteps:
			doc.Steps = append(doc.Steps, stripMarker(line))
		default:
			notes = append(notes, line)
		}
	}

	doc.Notes = strings.Join(notes, "\n")
	return doc
}

func heading(line string) (section, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimRight(strings.TrimLeft(line, "# "), ":")))
	s, ok := headings[key]
	return s, ok
}

func stripMarker(line string) string {
	return strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
}

// ExtractPDFText returns the plain text of every page.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func mimeTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

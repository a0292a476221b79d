// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export renders a CompleteGuide as a downloadable document. Every
// format uses the same section order and carries the AI prompt verbatim
// (the PDF is limited to the characters its core fonts can encode).
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"brandguide/internal/markdown"
	"brandguide/internal/models"
)

// Format names a download format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned for a format Render does not support.
var ErrUnknownFormat = errors.New("unknown export format")

// baseFilename is the download name without extension.
const baseFilename = "brand-guide"

// Formats lists the formats in the order they are offered.
var Formats = []Format{FormatPDF, FormatMarkdown, FormatText, FormatHTML}

// Artifact is a rendered document ready to be served or stored.
type Artifact struct {
	Format      Format
	Filename    string
	ContentType string
	Body        []byte
}

// Render produces the artifact for format f.
func Render(f Format, g models.CompleteGuide) (*Artifact, error) {
	switch f {
	case FormatMarkdown:
		return &Artifact{f, baseFilename + ".md", "text/markdown; charset=utf-8", []byte(Markdown(g))}, nil
	case FormatText:
		return &Artifact{f, baseFilename + ".txt", "text/plain; charset=utf-8", []byte(Text(g))}, nil
	case FormatPDF:
		body, err := PDF(g)
		if err != nil {
			return nil, err
		}
		return &Artifact{f, baseFilename + ".pdf", "application/pdf", body}, nil
	case FormatHTML:
		body, err := HTML(g)
		if err != nil {
			return nil, err
		}
		return &Artifact{f, baseFilename + ".html", "text/html; charset=utf-8", []byte(body)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// section is one titled block of a document.
type section struct {
	title string
	body  string
	code  bool // rendered as a preformatted block
}

func sections(g models.CompleteGuide, bullet string) []section {
	traits := make([]string, len(g.KeyTraits))
	for i, t := range g.KeyTraits {
		traits[i] = bullet + " " + t
	}
	return []section{
		{title: "Tone Summary", body: g.ToneSummary},
		{title: "Key Traits", body: strings.Join(traits, "\n")},
		{title: "Brand Personality", body: g.BrandPersonality},
		{title: "Target Audience", body: g.PrimaryAudience},
		{title: "Content Direction", body: g.ContentDirection},
		{title: "AI Content Prompt", body: g.AIPrompt, code: true},
	}
}

// Markdown renders g as a Markdown document.
func Markdown(g models.CompleteGuide) string {
	var b strings.Builder
	b.WriteString("# Brand Style Guide\n")
	for _, s := range sections(g, "-") {
		b.WriteString("\n## " + s.title + "\n")
		if s.code {
			b.WriteString("\n```\n" + s.body + "\n```\n")
			continue
		}
		b.WriteString(s.body + "\n")
	}
	return b.String()
}

const banner = "===================="

// Text renders g as plain text with banner headings.
func Text(g models.CompleteGuide) string {
	var b strings.Builder
	b.WriteString("BRAND STYLE GUIDE\n")
	for _, s := range sections(g, "•") {
		b.WriteString("\n" + banner + "\n" + strings.ToUpper(s.title) + "\n" + banner + "\n")
		b.WriteString(s.body + "\n")
	}
	return b.String()
}

// HTML renders the Markdown document to an HTML fragment.
func HTML(g models.CompleteGuide) (string, error) {
	out, err := markdown.ToHTML(Markdown(g))
	if err != nil {
		return "", fmt.Errorf("export html: %w", err)
	}
	return out, nil
}

// PDF renders g as an A4 PDF document.
func PDF(g models.CompleteGuide) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Brand Style Guide", true)
	pdf.SetCreator("brandguide", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, "Brand Style Guide", "", "L", false)
	pdf.Ln(4)

	for _, s := range sections(g, "•") {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, tr(s.title), "", "L", false)
		pdf.Ln(1)
		if s.code {
			pdf.SetFont("Courier", "", 9)
			pdf.MultiCell(0, 4.5, tr(s.body), "", "L", false)
		} else {
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(s.body), "", "L", false)
		}
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseFormat maps a query value to a Format. An empty value means PDF.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case "md":
		return FormatMarkdown, nil
	case "txt":
		return FormatText, nil
	case FormatMarkdown, FormatText, FormatPDF, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

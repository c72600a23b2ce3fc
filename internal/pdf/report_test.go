package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var exportTime = time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)

func TestRenderMarkdown(t *testing.T) {
	records := []AnnotationRecord{
		{
			Page:            2,
			PageLabel:       "Page 2 (Internal: 1)",
			Type:            "Highlight",
			HighlightedText: "important finding",
			Author:          "Reviewer",
			ModifiedDate:    "D:20240102103000+01'00'",
		},
		{
			Page:      1,
			PageLabel: "Page 1 (Title page/Front matter)",
			Type:      "Text/Sticky Note/Highlight",
			Content:   "Front note",
		},
		{
			Page:      2,
			PageLabel: "Page 2 (Internal: 1)",
			Type:      "Underline",
			Content:   "typo?",
		},
	}

	var buf bytes.Buffer
	err := NewReportRenderer(nil).Render(&buf, records, ReportMetadata{
		FilePath:   "docs/paper.pdf",
		ExportedAt: exportTime,
		TotalPages: 3,
		Offset:     -1,
	})
	require.NoError(t, err)

	want := "# PDF Annotations Export\n\n" +
		"**File:** docs/paper.pdf\n" +
		"**Date:** 2024-03-01 12:00:05\n" +
		"**Total Pages:** 3\n" +
		"**Page Numbering Starts At:** 0\n" +
		"\n---\n\n" +
		"\n## Page 1 (Title page/Front matter)\n\n" +
		"### Text/Sticky Note/Highlight\n\n" +
		"**Comment:** Front note\n\n" +
		"\n---\n\n" +
		"\n## Page 2 (Internal: 1)\n\n" +
		"### Highlight\n\n" +
		"**Highlighted Text:** important finding\n\n" +
		"**Author:** Reviewer\n" +
		"**Date:** D:20240102103000+01'00'\n" +
		"\n---\n\n" +
		"### Underline\n\n" +
		"**Comment:** typo?\n\n" +
		"\n---\n\n"

	assert.Equal(t, want, buf.String())

	// Render sorts a copy
	assert.Equal(t, 2, records[0].Page)
}

func TestRenderNoRecords(t *testing.T) {
	var buf bytes.Buffer
	err := NewReportRenderer(nil).Render(&buf, nil, ReportMetadata{
		FilePath:   "empty.pdf",
		ExportedAt: exportTime,
		TotalPages: 1,
		Offset:     2,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(buf.String(), "**Page Numbering Starts At:** 3\n\n---\n\n"))
	assert.NotContains(t, buf.String(), "## ")
}

// sectionHeadings parses the markdown and returns the level 2 headings in order
func sectionHeadings(t *testing.T, src []byte) []string {
	t.Helper()

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var headings []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 2 {
			var b strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if seg, ok := c.(*ast.Text); ok {
					b.Write(seg.Segment.Value(src))
				}
			}
			headings = append(headings, b.String())
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return headings
}

func TestRenderGroupsByLabel(t *testing.T) {
	records := []AnnotationRecord{
		{Page: 3, PageLabel: "Page 3 (Internal: 1)", Type: "Ink", Content: "c"},
		{Page: 1, PageLabel: "Page 1 (Title page/Front matter)", Type: "Ink", Content: "a"},
		{Page: 3, PageLabel: "Page 3 (Internal: 1)", Type: "Ink", Content: "d"},
		{Page: 2, PageLabel: "Page 2 (Title page/Front matter)", Type: "Ink", Content: "b"},
		{Page: 5, PageLabel: "Page 5 (Internal: 3)", Type: "Ink", Content: "e"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReportRenderer(nil).Render(&buf, records, ReportMetadata{ExportedAt: exportTime}))

	assert.Equal(t, []string{
		"Page 1 (Title page/Front matter)",
		"Page 2 (Title page/Front matter)",
		"Page 3 (Internal: 1)",
		"Page 5 (Internal: 3)",
	}, sectionHeadings(t, buf.Bytes()))

	out := buf.String()
	assert.Less(t, strings.Index(out, "**Comment:** c"), strings.Index(out, "**Comment:** d"))
}

func TestRenderMergesIdenticalLabels(t *testing.T) {
	records := []AnnotationRecord{
		{Page: 1, PageLabel: "same", Type: "Ink", Content: "a"},
		{Page: 2, PageLabel: "same", Type: "Ink", Content: "b"},
		{Page: 3, PageLabel: "other", Type: "Ink", Content: "c"},
		{Page: 4, PageLabel: "same", Type: "Ink", Content: "d"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReportRenderer(nil).Render(&buf, records, ReportMetadata{ExportedAt: exportTime}))

	assert.Equal(t, []string{"same", "other", "same"}, sectionHeadings(t, buf.Bytes()))
}

func TestRenderHTML(t *testing.T) {
	records := []AnnotationRecord{
		{Page: 1, PageLabel: "Page 1 (Internal: 1)", Type: "Highlight", HighlightedText: "a < b"},
	}

	var buf bytes.Buffer
	err := NewReportRenderer(nil).RenderHTML(&buf, records, ReportMetadata{
		FilePath:   "/tmp/in.pdf",
		ExportedAt: exportTime,
		TotalPages: 1,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>PDF Annotations Export: in.pdf</title>")
	assert.Contains(t, out, "<h1>PDF Annotations Export</h1>")
	assert.Contains(t, out, "<h2>Page 1 (Internal: 1)</h2>")
	assert.Contains(t, out, "<h3>Highlight</h3>")
	assert.Contains(t, out, "a &lt; b")
	assert.Contains(t, out, "<hr>")
}

func TestRenderFormat(t *testing.T) {
	r := NewReportRenderer(nil)
	meta := ReportMetadata{ExportedAt: exportTime}

	var md, html bytes.Buffer
	require.NoError(t, r.RenderFormat(&md, FormatMarkdown, nil, meta))
	require.NoError(t, r.RenderFormat(&html, FormatHTML, nil, meta))
	assert.True(t, strings.HasPrefix(md.String(), "# PDF Annotations Export"))
	assert.True(t, strings.HasPrefix(html.String(), "<!DOCTYPE html>"))

	assert.Error(t, r.RenderFormat(&md, ReportFormat("pdf"), nil, meta))
}

func TestParseReportFormat(t *testing.T) {
	for in, want := range map[string]ReportFormat{
		"":         FormatMarkdown,
		"markdown": FormatMarkdown,
		"MD":       FormatMarkdown,
		" html ":   FormatHTML,
	} {
		got, err := ParseReportFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseReportFormat("docx")
	assert.Error(t, err)
}

func TestOutputPathFor(t *testing.T) {
	assert.Equal(t, "/data/report_annotations.md", OutputPathFor("/data/report.pdf", FormatMarkdown))
	assert.Equal(t, "/data/report_annotations.html", OutputPathFor("/data/report.pdf", FormatHTML))
	assert.Equal(t, "notes.v2_annotations.md", OutputPathFor("notes.v2.PDF", FormatMarkdown))
	assert.Equal(t, "noext_annotations.md", OutputPathFor("noext", FormatMarkdown))
}

func TestRenderLocalized(t *testing.T) {
	records := []AnnotationRecord{
		{Page: 1, PageLabel: "[xx] Page 1 (Internal: 1)", Type: "Highlight", Content: "note", Author: "Ada"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReportRenderer(tagMessages{}).Render(&buf, records, ReportMetadata{ExportedAt: exportTime}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# [xx] PDF Annotations Export\n\n"))
	assert.Contains(t, out, "**[xx] Total Pages:** 0\n")
	assert.Contains(t, out, "### [xx] Highlight\n\n")
	assert.Contains(t, out, "**[xx] Comment:** note\n\n")
	assert.Contains(t, out, "**[xx] Author:** Ada\n")
}

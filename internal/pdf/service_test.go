package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-annotations/internal/pdf/errors"
	"github.com/a3tai/pdf-annotations/internal/pdf/pdftest"
	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// paperDocument has a cover page, printed numbering starting on page two,
// a highlight, a form widget and a commented underline.
func paperDocument() pdftest.Document {
	return pdftest.Document{
		Pages: []pdftest.Page{
			{
				Lines: []pdftest.TextLine{pdftest.Text(72, 720, "Cover")},
				Annotations: []pdftest.Annotation{
					{Subtype: "Text", Rect: []float64{500, 700, 520, 720}, Contents: "Front note"},
				},
			},
			{
				Lines: []pdftest.TextLine{
					pdftest.Text(72, 700, "important finding"),
					pdftest.Text(300, 40, "1"),
				},
				Annotations: []pdftest.Annotation{
					{
						Subtype:  "Highlight",
						Rect:     []float64{70, 695, 300, 715},
						Author:   "Reviewer",
						Modified: "D:20240102103000+01'00'",
					},
					{Subtype: "Widget", Rect: []float64{10, 10, 50, 30}},
				},
			},
			{
				Lines: []pdftest.TextLine{
					pdftest.Text(72, 700, "typo here"),
					pdftest.Text(300, 40, "2"),
				},
				Annotations: []pdftest.Annotation{
					{Subtype: "Underline", Rect: []float64{70, 695, 300, 715}, Contents: "typo?"},
				},
			},
		},
	}
}

func newTestService() *Service {
	s := NewService(DefaultMaxFileSize)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestServiceExtract(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())

	var progress []string
	result, err := newTestService().Extract(context.Background(), ExtractRequest{
		Path:     path,
		Offset:   AutoDetectOffset,
		Progress: func(msg string) { progress = append(progress, msg) },
	})
	require.NoError(t, err)

	wantPath := filepath.Join(filepath.Dir(path), "paper_annotations.md")
	assert.Equal(t, wantPath, result.OutputPath)
	assert.Equal(t, -1, result.Offset)
	assert.Equal(t, OffsetFromPageText, result.OffsetSource)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 3, result.AnnotationCount)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, []string{
		"Detecting page offset...",
		"Processing page 1 of 3...",
		"Processing page 2 of 3...",
		"Processing page 3 of 3...",
	}, progress)

	report, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)

	want := "# PDF Annotations Export\n\n" +
		"**File:** " + path + "\n" +
		"**Date:** 2024-03-01 12:00:00\n" +
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
		"\n## Page 3 (Internal: 2)\n\n" +
		"### Underline\n\n" +
		"**Comment:** typo?\n\n" +
		"\n---\n\n"

	if diff := cmp.Diff(want, string(report)); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceListAnnotations(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())

	result, err := newTestService().ListAnnotations(context.Background(), ListAnnotationsRequest{
		Path:   path,
		Offset: AutoDetectOffset,
	})
	require.NoError(t, err)

	want := []AnnotationRecord{
		{
			Page:      1,
			PageLabel: "Page 1 (Title page/Front matter)",
			Type:      "Text/Sticky Note/Highlight",
			TypeCode:  8,
			Content:   "Front note",
			Rect:      wrapper.NewRectangle(500, 700, 520, 720),
		},
		{
			Page:            2,
			PageLabel:       "Page 2 (Internal: 1)",
			Type:            "Highlight",
			TypeCode:        0,
			HighlightedText: "important finding",
			Author:          "Reviewer",
			ModifiedDate:    "D:20240102103000+01'00'",
			Rect:            wrapper.NewRectangle(70, 695, 300, 715),
		},
		{
			Page:      3,
			PageLabel: "Page 3 (Internal: 2)",
			Type:      "Underline",
			TypeCode:  1,
			Content:   "typo?",
			Rect:      wrapper.NewRectangle(70, 695, 300, 715),
		},
	}
	if diff := cmp.Diff(want, result.Annotations); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}

	_, err = os.Stat(OutputPathFor(path, FormatMarkdown))
	assert.True(t, os.IsNotExist(err), "listing must not write a report")
}

func TestServiceOffsetOverride(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())

	result, err := newTestService().ListAnnotations(context.Background(), ListAnnotationsRequest{
		Path:   path,
		Offset: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Offset)
	assert.Equal(t, OffsetFromOverride, result.OffsetSource)
	assert.Equal(t, "Page 1 (Internal: 5)", result.Annotations[0].PageLabel)
}

func TestServiceExtractHTML(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())
	output := filepath.Join(t.TempDir(), "out", "report.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(output), 0o755))

	result, err := newTestService().Extract(context.Background(), ExtractRequest{
		Path:       path,
		Offset:     AutoDetectOffset,
		OutputPath: output,
		Format:     FormatHTML,
	})
	require.NoError(t, err)
	assert.Equal(t, output, result.OutputPath)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h2>Page 2 (Internal: 1)</h2>")
	assert.Contains(t, string(data), "important finding")
}

func TestServiceMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.pdf")

	result, err := newTestService().Extract(context.Background(), ExtractRequest{
		Path:   path,
		Offset: AutoDetectOffset,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, pdferrors.IsOpenError(err))
	assert.False(t, pdferrors.IsProcessingError(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no report may be written on a fatal error")
}

func TestServiceOpenErrors(t *testing.T) {
	dir := t.TempDir()

	notPDF := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("plain text, not a PDF document"), 0o644))

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	for _, path := range []string{"", dir, notPDF, empty} {
		_, err := newTestService().Extract(context.Background(), ExtractRequest{Path: path, Offset: AutoDetectOffset})
		assert.True(t, pdferrors.IsOpenError(err), "%q: %v", path, err)
	}

	_, err := os.Stat(OutputPathFor(notPDF, FormatMarkdown))
	assert.True(t, os.IsNotExist(err))
}

func TestServiceFileSizeLimit(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())

	_, err := NewService(64).Extract(context.Background(), ExtractRequest{Path: path, Offset: AutoDetectOffset})
	require.Error(t, err)
	assert.True(t, pdferrors.IsOpenError(err))
	assert.Contains(t, err.Error(), "file too large")
}

func TestServiceProcessingErrors(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())

	_, err := newTestService().Extract(context.Background(), ExtractRequest{
		Path:       path,
		Offset:     AutoDetectOffset,
		OutputPath: filepath.Join(t.TempDir(), "no", "such", "dir", "out.md"),
	})
	require.Error(t, err)
	assert.True(t, pdferrors.IsProcessingError(err))
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeOutput))

	_, err = newTestService().Extract(context.Background(), ExtractRequest{
		Path:   path,
		Offset: AutoDetectOffset,
		Format: ReportFormat("docx"),
	})
	assert.True(t, pdferrors.IsProcessingError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestService().Extract(ctx, ExtractRequest{Path: path, Offset: AutoDetectOffset})
	assert.True(t, pdferrors.IsProcessingError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceRefusesToOverwriteInput(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	link := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.Symlink(path, link))

	outputs := map[string]string{
		"same path":     path,
		"unclean path":  filepath.Join(filepath.Dir(path), ".", "paper.pdf"),
		"symlink to it": link,
	}

	for name, output := range outputs {
		t.Run(name, func(t *testing.T) {
			_, err := newTestService().Extract(context.Background(), ExtractRequest{
				Path:       path,
				Offset:     AutoDetectOffset,
				OutputPath: output,
			})
			require.Error(t, err)
			assert.True(t, pdferrors.IsProcessingError(err))
			assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeOutput))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, original, data, "input PDF must be untouched")
		})
	}

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	_, err = newTestService().Extract(context.Background(), ExtractRequest{
		Path:       missing,
		Offset:     AutoDetectOffset,
		OutputPath: missing,
	})
	require.Error(t, err)
	assert.True(t, pdferrors.IsOpenError(err), "a missing input is still an open error")
}

func TestServiceLabelsWarning(t *testing.T) {
	doc := textPages("cover", "1")
	doc.labelsErr = errors.New("broken number tree")

	var progress []string
	ex, err := newTestService().extract(context.Background(), doc, AutoDetectOffset, true,
		messagesOrDefault(nil), func(msg string) { progress = append(progress, msg) })
	require.NoError(t, err)

	want := "Warning: Could not read page labels: broken number tree"
	assert.Equal(t, []string{want}, ex.warnings)
	assert.Contains(t, progress, want)
	require.Len(t, ex.problems.Warnings, 1)
	assert.Equal(t, pdferrors.ErrorTypeInvalidPageLabels, ex.problems.Warnings[0].Type)
	assert.Equal(t, "Found 0 error(s) and 1 warning(s)", ex.problems.Summary())
	assert.Equal(t, -1, ex.offset)
	assert.Equal(t, OffsetFromPageText, ex.source)
}

func TestServiceDetectOffset(t *testing.T) {
	path := pdftest.Write(t, "paper.pdf", paperDocument())

	result, err := newTestService().DetectOffset(DetectOffsetRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, -1, result.Offset)
	assert.Equal(t, 0, result.StartsAt)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, []string{
		"Page 1 (Title page/Front matter)",
		"Page 2 (Internal: 1)",
		"Page 3 (Internal: 2)",
	}, result.PageLabels)
}

func TestServicePageLabels(t *testing.T) {
	doc := paperDocument()
	doc.Labels = []pdftest.LabelRange{
		{Start: 0, Style: "r"},
		{Start: 2, Style: "D", First: 1},
	}
	path := pdftest.Write(t, "labelled.pdf", doc)

	withLabels, err := newTestService().DetectOffset(DetectOffsetRequest{Path: path, UsePageLabels: true})
	require.NoError(t, err)
	assert.Equal(t, -2, withLabels.Offset)
	assert.Equal(t, OffsetFromPageLabels, withLabels.OffsetSource)

	withoutLabels, err := newTestService().DetectOffset(DetectOffsetRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, -1, withoutLabels.Offset)
	assert.Equal(t, OffsetFromPageText, withoutLabels.OffsetSource)

	// "1" prefix in decimal style renders 15, 16, 17
	prefixed := paperDocument()
	prefixed.Labels = []pdftest.LabelRange{{Start: 0, Style: "D", Prefix: "1", First: 5}}
	path = pdftest.Write(t, "prefixed.pdf", prefixed)

	result, err := newTestService().DetectOffset(DetectOffsetRequest{Path: path, UsePageLabels: true})
	require.NoError(t, err)
	assert.Equal(t, -1, result.Offset)
	assert.Equal(t, OffsetFromPageText, result.OffsetSource)
}

func TestExtractAnnotations(t *testing.T) {
	path := pdftest.Write(t, "thesis.pdf", paperDocument())

	var progress []string
	output, err := ExtractAnnotations(path, AutoDetectOffset, func(msg string) {
		progress = append(progress, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(path, ".pdf")+"_annotations.md", output)
	assert.Equal(t, "Detecting page offset...", progress[0])

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Highlighted Text:** important finding")
	assert.NotContains(t, string(data), "Widget")
}

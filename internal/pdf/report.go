package pdf

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// ReportFormat selects the output representation of a report
type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatHTML     ReportFormat = "html"
)

// Extension returns the file extension used for the format
func (f ReportFormat) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

// ParseReportFormat accepts "markdown", "md" and "html"; empty means markdown
func ParseReportFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", s)
	}
}

// ReportTimeLayout is the layout of the export timestamp
const ReportTimeLayout = "2006-01-02 15:04:05"

// ReportMetadata is the document information shown in the report header
type ReportMetadata struct {
	FilePath   string    `json:"file_path"`
	ExportedAt time.Time `json:"exported_at"`
	TotalPages int       `json:"total_pages"`
	Offset     int       `json:"offset"`
}

// ReportRenderer serializes annotation records into a report
type ReportRenderer struct {
	messages Messages
	markdown goldmark.Markdown
}

// NewReportRenderer creates a renderer. Headings and type names are looked
// up through messages; nil keeps them in English.
func NewReportRenderer(messages Messages) *ReportRenderer {
	return &ReportRenderer{
		messages: messagesOrDefault(messages),
		markdown: goldmark.New(),
	}
}

// Render writes the markdown report. Records are stably sorted by page and a
// section header is written whenever the page label changes.
func (r *ReportRenderer) Render(w io.Writer, records []AnnotationRecord, meta ReportMetadata) error {
	var b strings.Builder
	tr := r.messages.Sprintf

	fmt.Fprintf(&b, "# %s\n\n", tr(MsgReportTitle))
	fmt.Fprintf(&b, "**%s:** %s\n", tr(MsgReportFile), meta.FilePath)
	fmt.Fprintf(&b, "**%s:** %s\n", tr(MsgReportDate), meta.ExportedAt.Format(ReportTimeLayout))
	fmt.Fprintf(&b, "**%s:** %d\n", tr(MsgReportTotalPages), meta.TotalPages)
	fmt.Fprintf(&b, "**%s:** %d\n", tr(MsgReportStartsAt), 1+meta.Offset)
	b.WriteString("\n---\n\n")

	sorted := append([]AnnotationRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	currentLabel := ""
	for i, record := range sorted {
		if i == 0 || record.PageLabel != currentLabel {
			fmt.Fprintf(&b, "\n## %s\n\n", record.PageLabel)
			currentLabel = record.PageLabel
		}

		fmt.Fprintf(&b, "### %s\n\n", tr(record.Type))
		if record.HighlightedText != "" {
			fmt.Fprintf(&b, "**%s:** %s\n\n", tr(MsgReportHighlighted), record.HighlightedText)
		}
		if record.Content != "" {
			fmt.Fprintf(&b, "**%s:** %s\n\n", tr(MsgReportComment), record.Content)
		}
		if record.Author != "" {
			fmt.Fprintf(&b, "**%s:** %s\n", tr(MsgReportAuthor), record.Author)
		}
		if record.ModifiedDate != "" {
			fmt.Fprintf(&b, "**%s:** %s\n", tr(MsgReportDate), record.ModifiedDate)
		}
		b.WriteString("\n---\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderHTML renders the markdown report with goldmark into a standalone page
func (r *ReportRenderer) RenderHTML(w io.Writer, records []AnnotationRecord, meta ReportMetadata) error {
	var md bytes.Buffer
	if err := r.Render(&md, records, meta); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := r.markdown.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to convert report to HTML: %w", err)
	}

	title := r.messages.Sprintf(MsgReportTitle) + ": " + filepath.Base(meta.FilePath)

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")

	_, err := w.Write(out.Bytes())
	return err
}

// RenderFormat dispatches on the report format
func (r *ReportRenderer) RenderFormat(w io.Writer, format ReportFormat, records []AnnotationRecord, meta ReportMetadata) error {
	switch format {
	case FormatHTML:
		return r.RenderHTML(w, records, meta)
	case FormatMarkdown, "":
		return r.Render(w, records, meta)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// OutputPathFor returns <input-stem>_annotations.<ext> next to the input
func OutputPathFor(inputPath string, format ReportFormat) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return stem + "_annotations" + format.Extension()
}

package wrapper

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	pdferrors "github.com/a3tai/pdf-annotations/internal/pdf/errors"
	"github.com/ledongthuc/pdf"
)

// LedongthucDocument implements Document using ledongthuc/pdf
type LedongthucDocument struct {
	file      *os.File
	reader    *pdf.Reader
	labels    *PageLabels
	labelsErr error
	filePath  string
	closed    bool
}

// OpenLedongthuc opens a PDF file with ledongthuc/pdf
func OpenLedongthuc(path string) (*LedongthucDocument, error) {
	var doc *LedongthucDocument

	err := pdferrors.Guard("open", func() error {
		f, reader, err := pdf.Open(path)
		if err != nil {
			return err
		}
		doc = &LedongthucDocument{
			file:     f,
			reader:   reader,
			filePath: path,
		}
		return nil
	})
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	return doc, nil
}

// PageCount returns the number of pages in the document
func (d *LedongthucDocument) PageCount() int {
	if d.closed {
		return 0
	}

	var count int
	_ = pdferrors.Guard("page_count", func() error {
		count = d.reader.NumPage()
		return nil
	})
	return count
}

// page resolves a 0-based index into a ledongthuc page
func (d *LedongthucDocument) page(op string, index int) (pdf.Page, error) {
	if d.closed {
		return pdf.Page{}, &WrapperError{Library: LibraryLedongthuc, Op: op, Err: ErrDocumentClosed}
	}

	count := d.PageCount()
	if index < 0 || index >= count {
		return pdf.Page{}, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      op,
			Err:     fmt.Errorf("%w: index %d (document has %d pages)", ErrInvalidPage, index, count),
		}
	}

	var p pdf.Page
	err := pdferrors.Guard(op, func() error {
		p = d.reader.Page(index + 1)
		if p.V.IsNull() {
			return fmt.Errorf("%w: page %d not found in page tree", ErrInvalidPage, index+1)
		}
		return nil
	})
	if err != nil {
		return pdf.Page{}, &WrapperError{Library: LibraryLedongthuc, Op: op, Err: err}
	}
	return p, nil
}

// PageText returns the plain text of a page
func (d *LedongthucDocument) PageText(index int) (string, error) {
	p, err := d.page("page_text", index)
	if err != nil {
		return "", err
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "page_text",
			Err:     fmt.Errorf("page %d: %w", index+1, err),
		}
	}
	return text, nil
}

// Annotations decodes the page's /Annots array
func (d *LedongthucDocument) Annotations(index int) ([]RawAnnotation, error) {
	p, err := d.page("annotations", index)
	if err != nil {
		return nil, err
	}

	var annots pdf.Value
	var count int
	err = pdferrors.Guard("annotations", func() error {
		annots = p.V.Key("Annots")
		count = annots.Len()
		return nil
	})
	if err != nil {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "annotations", Err: err}
	}

	result := make([]RawAnnotation, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, decodeAnnotation(annots, i))
	}
	return result, nil
}

// decodeAnnotation converts one /Annots entry. Decoding problems are
// reported on the annotation itself so the caller can skip just this one.
func decodeAnnotation(annots pdf.Value, i int) (raw RawAnnotation) {
	raw.TypeCode = UnknownTypeCode

	err := pdferrors.Guard("decode_annotation", func() error {
		v := annots.Index(i)
		if v.Kind() != pdf.Dict {
			return fmt.Errorf("annotation %d is not a dictionary", i)
		}

		raw.Subtype = v.Key("Subtype").Name()
		raw.TypeCode = TypeCodeForSubtype(raw.Subtype)

		if rect := v.Key("Rect"); rect.Len() == 4 {
			raw.Rect = NewRectangle(
				rect.Index(0).Float64(), rect.Index(1).Float64(),
				rect.Index(2).Float64(), rect.Index(3).Float64(),
			)
		}

		raw.Info = make(map[string]string)
		for key, pdfKey := range map[string]string{
			InfoContent:      "Contents",
			InfoTitle:        "T",
			InfoCreationDate: "CreationDate",
			InfoModDate:      "M",
		} {
			if value := v.Key(pdfKey); value.Kind() == pdf.String {
				raw.Info[key] = value.Text()
			}
		}
		return nil
	})
	if err != nil {
		raw.Err = err
	}
	return raw
}

// TextInRect collects the glyphs whose reference point lies inside rect
func (d *LedongthucDocument) TextInRect(index int, rect Rectangle) (string, error) {
	if err := rect.Validate(); err != nil {
		return "", &WrapperError{Library: LibraryLedongthuc, Op: "text_in_rect", Err: err}
	}

	p, err := d.page("text_in_rect", index)
	if err != nil {
		return "", err
	}

	var content pdf.Content
	err = pdferrors.Guard("text_in_rect", func() error {
		content = p.Content()
		return nil
	})
	if err != nil {
		return "", &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "text_in_rect",
			Err:     fmt.Errorf("page %d: %w", index+1, err),
		}
	}

	return textInRect(content.Text, rect), nil
}

type textLine struct {
	y      float64
	glyphs []pdf.Text
}

// textInRect groups the selected glyphs into lines, top to bottom, and
// orders each line left to right.
func textInRect(glyphs []pdf.Text, rect Rectangle) string {
	var lines []*textLine

	for _, g := range glyphs {
		if g.S == "\n" || g.S == "" {
			continue
		}
		// Baseline origins sit at the bottom of a highlight box, so test a
		// point slightly above the baseline, in the middle of the glyph.
		anchor := Point{X: g.X + g.W/2, Y: g.Y + g.FontSize*0.25}
		if !rect.Contains(anchor) {
			continue
		}

		tolerance := math.Max(g.FontSize*0.5, 1)
		var line *textLine
		for _, l := range lines {
			if math.Abs(l.y-g.Y) <= tolerance {
				line = l
				break
			}
		}
		if line == nil {
			line = &textLine{y: g.Y}
			lines = append(lines, line)
		}
		line.glyphs = append(line.glyphs, g)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })

		var b strings.Builder
		for i, g := range l.glyphs {
			if i > 0 {
				prev := l.glyphs[i-1]
				gap := g.X - (prev.X + prev.W)
				if prev.W > 0 && gap > g.FontSize*0.25 && prev.S != " " && g.S != " " {
					b.WriteByte(' ')
				}
			}
			b.WriteString(g.S)
		}
		out = append(out, strings.TrimSpace(b.String()))
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// PageLabel returns the embedded label of a page
func (d *LedongthucDocument) PageLabel(index int) (string, bool) {
	if d.closed || d.labels == nil {
		return "", false
	}
	return d.labels.Label(index)
}

// PageNumber returns the embedded decimal page number of a page
func (d *LedongthucDocument) PageNumber(index int) (int, bool) {
	if d.closed || d.labels == nil {
		return 0, false
	}
	return d.labels.Number(index)
}

// LabelsError returns why requested page labels could not be read
func (d *LedongthucDocument) LabelsError() error {
	return d.labelsErr
}

// Close closes the document
func (d *LedongthucDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

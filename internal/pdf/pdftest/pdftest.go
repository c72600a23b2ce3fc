// Package pdftest builds small, well-formed PDF files for tests: pages with
// positioned text, annotation dictionaries and an optional /PageLabels tree.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// DefaultFontSize is the size used by Text
const DefaultFontSize = 12

// TextLine is a run of text drawn at a baseline position
type TextLine struct {
	X, Y float64
	Size float64
	Text string
}

// Text returns a TextLine in the default font size
func Text(x, y float64, s string) TextLine {
	return TextLine{X: x, Y: y, Size: DefaultFontSize, Text: s}
}

// Annotation describes an annotation dictionary
type Annotation struct {
	Subtype  string
	Rect     []float64
	Contents string
	Author   string
	Created  string
	Modified string
}

// Page describes one page
type Page struct {
	Lines       []TextLine
	Annotations []Annotation

	// RawAnnots are appended to the /Annots array verbatim, e.g. "42"
	RawAnnots []string
}

// LabelRange is a /PageLabels entry
type LabelRange struct {
	Start  int
	Style  string
	Prefix string
	First  int
}

// Document describes a whole file
type Document struct {
	Pages  []Page
	Labels []LabelRange
}

type builder struct {
	objects []string
}

// add reserves the next object number
func (b *builder) add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

func (b *builder) set(num int, body string) {
	b.objects[num-1] = body
}

// Bytes renders the document as a PDF file
func (d Document) Bytes() []byte {
	b := &builder{}

	catalog := b.add("")
	pages := b.add("")
	font := b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	kids := make([]string, 0, len(d.Pages))
	for _, page := range d.Pages {
		var content strings.Builder
		for _, line := range page.Lines {
			size := line.Size
			if size == 0 {
				size = DefaultFontSize
			}
			fmt.Fprintf(&content, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n",
				num(size), num(line.X), num(line.Y), escape(line.Text))
		}
		stream := content.String()
		contents := b.add(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))

		annots := make([]string, 0, len(page.Annotations)+len(page.RawAnnots))
		for _, a := range page.Annotations {
			ref := b.add(a.dict())
			annots = append(annots, fmt.Sprintf("%d 0 R", ref))
		}
		annots = append(annots, page.RawAnnots...)

		pageDict := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R", pages, font, contents)
		if len(annots) > 0 {
			pageDict += " /Annots [" + strings.Join(annots, " ") + "]"
		}
		pageDict += " >>"

		kids = append(kids, fmt.Sprintf("%d 0 R", b.add(pageDict)))
	}

	b.set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))

	catalogDict := fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R", pages)
	if len(d.Labels) > 0 {
		nums := make([]string, 0, len(d.Labels))
		for _, l := range d.Labels {
			entry := "<<"
			if l.Style != "" {
				entry += " /S /" + l.Style
			}
			if l.Prefix != "" {
				entry += " /P (" + escape(l.Prefix) + ")"
			}
			if l.First > 0 {
				entry += fmt.Sprintf(" /St %d", l.First)
			}
			entry += " >>"
			nums = append(nums, fmt.Sprintf("%d %s", l.Start, entry))
		}
		catalogDict += " /PageLabels << /Nums [" + strings.Join(nums, " ") + "] >>"
	}
	b.set(catalog, catalogDict+" >>")

	return b.render(catalog)
}

func (b *builder) render(root int) []byte {
	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(b.objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objects)+1, root, xref)

	return out.Bytes()
}

func (a Annotation) dict() string {
	var b strings.Builder
	b.WriteString("<< /Type /Annot /Subtype /" + a.Subtype)
	if len(a.Rect) > 0 {
		parts := make([]string, len(a.Rect))
		for i, v := range a.Rect {
			parts[i] = num(v)
		}
		b.WriteString(" /Rect [" + strings.Join(parts, " ") + "]")
	}
	if a.Contents != "" {
		b.WriteString(" /Contents (" + escape(a.Contents) + ")")
	}
	if a.Author != "" {
		b.WriteString(" /T (" + escape(a.Author) + ")")
	}
	if a.Created != "" {
		b.WriteString(" /CreationDate (" + escape(a.Created) + ")")
	}
	if a.Modified != "" {
		b.WriteString(" /M (" + escape(a.Modified) + ")")
	}
	b.WriteString(" >>")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Write stores the document under the test's temp directory and returns its path
func Write(t testing.TB, name string, d Document) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test PDF %s: %v", path, err)
	}
	return path
}

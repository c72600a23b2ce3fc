package pdf

import (
	"fmt"

	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// fakePage is one page of a fakeDocument
type fakePage struct {
	text      string
	textErr   error
	annots    []wrapper.RawAnnotation
	annotsErr error
	regions   map[wrapper.Rectangle]string
	regionErr error
	label     string
	hasLabel  bool
	number    int
	hasNumber bool
}

// fakeDocument implements wrapper.Document in memory
type fakeDocument struct {
	pages       []fakePage
	labelsErr   error
	closed      bool
	textCalls   int
	regionCalls int
}

func (d *fakeDocument) PageCount() int {
	return len(d.pages)
}

func (d *fakeDocument) page(index int) (*fakePage, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d", wrapper.ErrInvalidPage, index)
	}
	return &d.pages[index], nil
}

func (d *fakeDocument) PageText(index int) (string, error) {
	d.textCalls++
	p, err := d.page(index)
	if err != nil {
		return "", err
	}
	return p.text, p.textErr
}

func (d *fakeDocument) Annotations(index int) ([]wrapper.RawAnnotation, error) {
	p, err := d.page(index)
	if err != nil {
		return nil, err
	}
	return p.annots, p.annotsErr
}

func (d *fakeDocument) TextInRect(index int, rect wrapper.Rectangle) (string, error) {
	d.regionCalls++
	p, err := d.page(index)
	if err != nil {
		return "", err
	}
	if p.regionErr != nil {
		return "", p.regionErr
	}
	if err := rect.Validate(); err != nil {
		return "", err
	}
	return p.regions[rect], nil
}

func (d *fakeDocument) PageLabel(index int) (string, bool) {
	p, err := d.page(index)
	if err != nil {
		return "", false
	}
	return p.label, p.hasLabel
}

func (d *fakeDocument) PageNumber(index int) (int, bool) {
	p, err := d.page(index)
	if err != nil {
		return 0, false
	}
	return p.number, p.hasNumber
}

func (d *fakeDocument) LabelsError() error {
	return d.labelsErr
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// textPages builds a document whose pages carry only text
func textPages(texts ...string) *fakeDocument {
	doc := &fakeDocument{}
	for _, text := range texts {
		doc.pages = append(doc.pages, fakePage{text: text})
	}
	return doc
}

// rawAnnot builds a raw annotation of the given type code
func rawAnnot(code int, rect wrapper.Rectangle, info map[string]string) wrapper.RawAnnotation {
	return wrapper.RawAnnotation{TypeCode: code, Rect: rect, Info: info}
}

// tagMessages marks every formatted message so tests can see it was used
type tagMessages struct{}

func (tagMessages) Sprintf(key string, args ...interface{}) string {
	return "[xx] " + fmt.Sprintf(key, args...)
}

package wrapper

import (
	"fmt"
	"math"
)

// Document is the read-only view of an opened PDF that the annotation
// pipeline works against. Page indexes are 0-based.
type Document interface {
	// PageCount returns the number of pages in the document
	PageCount() int

	// PageText returns the plain text of a page in extraction order
	PageText(index int) (string, error)

	// Annotations returns the page's annotations in the order the file stores them
	Annotations(index int) ([]RawAnnotation, error)

	// TextInRect returns the text whose glyphs fall inside rect
	TextInRect(index int, rect Rectangle) (string, error)

	// PageLabel returns the embedded /PageLabels label of a page, if any
	PageLabel(index int) (string, bool)

	// PageNumber returns the embedded page number of a page whose label is
	// plain decimal without a prefix
	PageNumber(index int) (int, bool)

	// Close releases the underlying file. It is safe to call more than once.
	Close() error
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// Keys of RawAnnotation.Info
const (
	InfoTitle        = "title"
	InfoContent      = "content"
	InfoCreationDate = "creationDate"
	InfoModDate      = "modDate"
)

// UnknownTypeCode is the type code of annotation subtypes outside the fixed table
const UnknownTypeCode = -1

// RawAnnotation is an annotation as read from the file, before classification
type RawAnnotation struct {
	// TypeCode is the position of the subtype in the fixed 24-entry type table
	TypeCode int               `json:"type_code"`
	Subtype  string            `json:"subtype"`
	Rect     Rectangle         `json:"rect"`
	Info     map[string]string `json:"info,omitempty"`

	// Err is set when the annotation dictionary could not be decoded
	Err error `json:"-"`
}

// Get returns an Info value, or "" when the key is absent
func (a RawAnnotation) Get(key string) string {
	if a.Info == nil {
		return ""
	}
	return a.Info[key]
}

// subtypeCodes maps PDF /Subtype names onto the fixed type table.
// Code 9 (the alternate strike-out entry) has no subtype of its own.
var subtypeCodes = map[string]int{
	"Highlight":      0,
	"Underline":      1,
	"StrikeOut":      2,
	"Squiggly":       3,
	"Square":         4,
	"Circle":         5,
	"Line":           6,
	"PolyLine":       7,
	"Text":           8,
	"Stamp":          10,
	"Caret":          11,
	"Ink":            12,
	"Popup":          13,
	"FileAttachment": 14,
	"Sound":          15,
	"Movie":          16,
	"Widget":         17,
	"Screen":         18,
	"PrinterMark":    19,
	"TrapNet":        20,
	"Watermark":      21,
	"3D":             22,
	"Redact":         23,
}

// TypeCodeForSubtype returns the type table code of a PDF annotation subtype
func TypeCodeForSubtype(subtype string) int {
	if code, ok := subtypeCodes[subtype]; ok {
		return code
	}
	return UnknownTypeCode
}

// Point represents a coordinate point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rectangle represents a rectangular area
type Rectangle struct {
	LowerLeft  Point   `json:"lower_left"`
	UpperRight Point   `json:"upper_right"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// NewRectangle builds a normalized rectangle from two opposite corners
func NewRectangle(x0, y0, x1, y1 float64) Rectangle {
	llx, urx := math.Min(x0, x1), math.Max(x0, x1)
	lly, ury := math.Min(y0, y1), math.Max(y0, y1)
	return Rectangle{
		LowerLeft:  Point{X: llx, Y: lly},
		UpperRight: Point{X: urx, Y: ury},
		Width:      urx - llx,
		Height:     ury - lly,
	}
}

// Validate reports whether the rectangle can be used as an extraction region
func (r Rectangle) Validate() error {
	for _, v := range []float64{r.LowerLeft.X, r.LowerLeft.Y, r.UpperRight.X, r.UpperRight.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrInvalidRect)
		}
	}
	if r.UpperRight.X <= r.LowerLeft.X || r.UpperRight.Y <= r.LowerLeft.Y {
		return fmt.Errorf("%w: empty area [%g %g %g %g]", ErrInvalidRect,
			r.LowerLeft.X, r.LowerLeft.Y, r.UpperRight.X, r.UpperRight.Y)
	}
	return nil
}

// Contains reports whether the point lies inside the rectangle, edges included
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.LowerLeft.X && p.X <= r.UpperRight.X &&
		p.Y >= r.LowerLeft.Y && p.Y <= r.UpperRight.Y
}

// WrapperError is returned by every library-backed operation
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = fmt.Errorf("document is closed")
	ErrInvalidPage    = fmt.Errorf("invalid page number")
	ErrInvalidRect    = fmt.Errorf("invalid annotation rectangle")
)

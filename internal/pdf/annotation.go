package pdf

import (
	"fmt"
	"strings"

	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// UnknownAnnotationType is the type name of codes outside the type table
const UnknownAnnotationType = "Unknown Type"

// annotationTypeNames is indexed by type code
var annotationTypeNames = [...]string{
	"Highlight",
	"Underline",
	"StrikeOut",
	"Squiggly",
	"Rectangle/Square",
	"Circle/Ellipse",
	"Line",
	"Polyline",
	"Text/Sticky Note/Highlight",
	"Strike Out",
	"Stamp",
	"Caret",
	"Ink",
	"Popup",
	"FileAttachment",
	"Sound",
	"Movie",
	"Widget",
	"Screen",
	"PrinterMark",
	"TrapNet",
	"Watermark",
	"3D",
	"Redact",
}

// AnnotationTypeNames returns the type table in code order
func AnnotationTypeNames() []string {
	return append([]string(nil), annotationTypeNames[:]...)
}

// AnnotationTypeName returns the display name of a type code
func AnnotationTypeName(code int) string {
	if code < 0 || code >= len(annotationTypeNames) {
		return UnknownAnnotationType
	}
	return annotationTypeNames[code]
}

// ExtractionRule decides whether the text under an annotation is extracted
type ExtractionRule int

const (
	// RuleMetadataOnly uses only the comment and metadata fields
	RuleMetadataOnly ExtractionRule = iota
	// RuleRegionAlways extracts the covered text even when a comment exists
	RuleRegionAlways
	// RuleRegionWithoutComment extracts the covered text only for uncommented markup
	RuleRegionWithoutComment
)

// RuleForType returns the extraction rule of a type code
func RuleForType(code int) ExtractionRule {
	switch code {
	case 0, 8:
		return RuleRegionAlways
	case 1, 2, 3, 9:
		return RuleRegionWithoutComment
	default:
		return RuleMetadataOnly
	}
}

// wantsRegionText reports whether the covered text should be extracted
func (r ExtractionRule) wantsRegionText(content string) bool {
	switch r {
	case RuleRegionAlways:
		return true
	case RuleRegionWithoutComment:
		return content == ""
	default:
		return false
	}
}

// AnnotationRecord is one extracted annotation as it appears in the report
type AnnotationRecord struct {
	Page            int               `json:"page"`
	PageLabel       string            `json:"page_label"`
	Type            string            `json:"type"`
	TypeCode        int               `json:"type_code"`
	Content         string            `json:"content"`
	HighlightedText string            `json:"highlighted_text,omitempty"`
	Author          string            `json:"author,omitempty"`
	CreationDate    string            `json:"creation_date,omitempty"`
	ModifiedDate    string            `json:"modified_date,omitempty"`
	Rect            wrapper.Rectangle `json:"rect"`
}

// Retained reports whether the record carries a comment or highlighted text
func (r AnnotationRecord) Retained() bool {
	return r.Content != "" || r.HighlightedText != ""
}

func (r AnnotationRecord) String() string {
	return fmt.Sprintf("%s on page %d (%s)", r.Type, r.Page, r.PageLabel)
}

// newRecord copies the metadata of a raw annotation into a record
func newRecord(raw wrapper.RawAnnotation, index int, label string) AnnotationRecord {
	return AnnotationRecord{
		Page:         index + 1,
		PageLabel:    label,
		Type:         AnnotationTypeName(raw.TypeCode),
		TypeCode:     raw.TypeCode,
		Content:      strings.TrimSpace(raw.Get(wrapper.InfoContent)),
		Author:       raw.Get(wrapper.InfoTitle),
		CreationDate: raw.Get(wrapper.InfoCreationDate),
		ModifiedDate: raw.Get(wrapper.InfoModDate),
		Rect:         raw.Rect,
	}
}

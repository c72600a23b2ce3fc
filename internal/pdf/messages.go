package pdf

import (
	"fmt"
	"strconv"
)

// Message keys used for progress output and page labels. Keys double as the
// English text; numeric arguments are passed pre-formatted with %s so that a
// localized printer does not apply digit grouping.
const (
	MsgDetectingOffset   = "Detecting page offset..."
	MsgProcessingPage    = "Processing page %s of %s..."
	MsgAnnotationWarning = "Warning: Could not process annotation on page %s: %s"
	MsgRegionWarning     = "Could not extract text for annotation on page %s: %s"
	MsgPageWarning       = "Warning: Could not read annotations on page %s: %s"
	MsgLabelsWarning     = "Warning: Could not read page labels: %s"
	MsgFrontMatterLabel  = "Page %s (Title page/Front matter)"
	MsgInternalLabel     = "Page %s (Internal: %s)"
)

// Report headings
const (
	MsgReportTitle       = "PDF Annotations Export"
	MsgReportFile        = "File"
	MsgReportDate        = "Date"
	MsgReportTotalPages  = "Total Pages"
	MsgReportStartsAt    = "Page Numbering Starts At"
	MsgReportHighlighted = "Highlighted Text"
	MsgReportComment     = "Comment"
	MsgReportAuthor      = "Author"
)

// MessageKeys lists every key the package formats through Messages,
// annotation type names included.
func MessageKeys() []string {
	keys := []string{
		MsgDetectingOffset,
		MsgProcessingPage,
		MsgAnnotationWarning,
		MsgRegionWarning,
		MsgPageWarning,
		MsgLabelsWarning,
		MsgFrontMatterLabel,
		MsgInternalLabel,
		MsgReportTitle,
		MsgReportFile,
		MsgReportDate,
		MsgReportTotalPages,
		MsgReportStartsAt,
		MsgReportHighlighted,
		MsgReportComment,
		MsgReportAuthor,
		UnknownAnnotationType,
	}
	return append(keys, AnnotationTypeNames()...)
}

// Messages looks up and formats a user-facing message by key
type Messages interface {
	Sprintf(key string, args ...interface{}) string
}

type plainMessages struct{}

func (plainMessages) Sprintf(key string, args ...interface{}) string {
	return fmt.Sprintf(key, args...)
}

func messagesOrDefault(m Messages) Messages {
	if m == nil {
		return plainMessages{}
	}
	return m
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

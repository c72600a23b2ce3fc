package pdf

import (
	"regexp"
	"strconv"

	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// AutoDetectOffset asks ResolveOffset to detect the offset from page text
const AutoDetectOffset = -1

const (
	offsetScanPages = 10
	offsetTolerance = 2
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// OffsetSource records how an offset was obtained
type OffsetSource string

const (
	OffsetFromOverride   OffsetSource = "override"
	OffsetFromPageLabels OffsetSource = "page_labels"
	OffsetFromPageText   OffsetSource = "page_text"
	OffsetFallback       OffsetSource = "fallback"
)

// ResolveOffset returns the page offset O with internal = index + 1 + O.
// Any override other than AutoDetectOffset is returned unchanged.
func ResolveOffset(doc wrapper.Document, override int) int {
	offset, _ := resolveOffset(doc, override, false)
	return offset
}

func resolveOffset(doc wrapper.Document, override int, usePageLabels bool) (int, OffsetSource) {
	if override != AutoDetectOffset {
		return override, OffsetFromOverride
	}
	if usePageLabels {
		if offset, ok := OffsetFromLabels(doc); ok {
			return offset, OffsetFromPageLabels
		}
	}
	if offset, ok := DetectOffset(doc); ok {
		return offset, OffsetFromPageText
	}
	return AutoDetectOffset, OffsetFallback
}

// DetectOffset scans the first pages for a printed page number. The first
// digit run n > 0 within two of the physical page number wins.
func DetectOffset(doc wrapper.Document) (int, bool) {
	pages := doc.PageCount()
	if pages > offsetScanPages {
		pages = offsetScanPages
	}

	for index := 0; index < pages; index++ {
		text, err := doc.PageText(index)
		if err != nil {
			continue
		}

		absolute := index + 1
		for _, run := range digitRun.FindAllString(text, -1) {
			n, err := strconv.Atoi(run)
			if err != nil || n <= 0 {
				continue
			}
			if diff := n - absolute; diff >= -offsetTolerance && diff <= offsetTolerance {
				return diff, true
			}
		}
	}

	return 0, false
}

// OffsetFromLabels derives the offset from the first page whose embedded
// label is a plain decimal number.
func OffsetFromLabels(doc wrapper.Document) (int, bool) {
	for index := 0; index < doc.PageCount(); index++ {
		if n, ok := doc.PageNumber(index); ok {
			return n - (index + 1), true
		}
	}
	return 0, false
}

// FormatPageLabel renders the display label of a 0-based page index
func FormatPageLabel(msgs Messages, index, offset int) string {
	msgs = messagesOrDefault(msgs)

	absolute := index + 1
	internal := absolute + offset
	if internal <= 0 {
		return msgs.Sprintf(MsgFrontMatterLabel, itoa(absolute))
	}
	return msgs.Sprintf(MsgInternalLabel, itoa(absolute), itoa(internal))
}

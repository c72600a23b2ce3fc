package pdf

import (
	"context"
	"fmt"
	"log"
	"strings"

	pdferrors "github.com/a3tai/pdf-annotations/internal/pdf/errors"
	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// ProgressFunc receives human readable status lines. It is called
// synchronously between pipeline steps.
type ProgressFunc func(message string)

// Extractor walks the pages of a document and builds annotation records
type Extractor struct {
	messages Messages
	progress ProgressFunc
	debug    bool
}

// NewExtractor creates an extractor. Both arguments may be nil.
func NewExtractor(messages Messages, progress ProgressFunc) *Extractor {
	return &Extractor{
		messages: messagesOrDefault(messages),
		progress: progress,
	}
}

// SetDebug enables logging of every dropped annotation
func (e *Extractor) SetDebug(debug bool) {
	e.debug = debug
}

func (e *Extractor) report(message string) {
	if e.progress != nil {
		e.progress(message)
	}
}

// warn records a recoverable problem and forwards it to the progress callback
func (e *Extractor) warn(warnings *pdferrors.ErrorCollection, err *pdferrors.PDFError, message string) {
	warnings.Add(err.WithContext(message))
	e.report(message)
}

// Extract returns the retained annotations of every page in page order.
// Page and annotation failures are collected as warnings; the returned error
// is non-nil only when ctx is done.
func (e *Extractor) Extract(ctx context.Context, doc wrapper.Document, offset int) ([]AnnotationRecord, *pdferrors.ErrorCollection, error) {
	warnings := pdferrors.NewErrorCollection("")
	records := make([]AnnotationRecord, 0)

	total := doc.PageCount()
	for index := 0; index < total; index++ {
		if err := ctx.Err(); err != nil {
			return records, warnings, err
		}

		e.report(e.messages.Sprintf(MsgProcessingPage, itoa(index+1), itoa(total)))

		label := FormatPageLabel(e.messages, index, offset)

		annots, err := doc.Annotations(index)
		if err != nil {
			e.warn(warnings,
				pdferrors.WrapError(pdferrors.ErrorTypeMalformedPage, err).WithPage(index+1),
				e.messages.Sprintf(MsgPageWarning, itoa(index+1), err.Error()))
			continue
		}

		for _, raw := range annots {
			record, err := e.processAnnotation(doc, index, label, raw, warnings)
			if err != nil {
				e.warn(warnings,
					pdferrors.WrapError(pdferrors.ErrorTypeInvalidAnnotation, err).WithPage(index+1),
					e.messages.Sprintf(MsgAnnotationWarning, itoa(index+1), err.Error()))
				continue
			}

			if !record.Retained() {
				if e.debug {
					log.Printf("Dropping %s: no comment or highlighted text", record)
				}
				continue
			}
			records = append(records, record)
		}
	}

	return records, warnings, nil
}

// processAnnotation classifies one raw annotation. A failed region lookup is
// a warning on its own and leaves HighlightedText empty.
func (e *Extractor) processAnnotation(doc wrapper.Document, index int, label string,
	raw wrapper.RawAnnotation, warnings *pdferrors.ErrorCollection,
) (record AnnotationRecord, err error) {
	if raw.Err != nil {
		return AnnotationRecord{}, raw.Err
	}

	defer pdferrors.Recover(&err, "process_annotation")

	record = newRecord(raw, index, label)

	if !RuleForType(raw.TypeCode).wantsRegionText(record.Content) {
		return record, nil
	}

	text, regionErr := doc.TextInRect(index, raw.Rect)
	if regionErr != nil {
		e.warn(warnings,
			pdferrors.WrapError(pdferrors.ErrorTypeRegionExtraction,
				fmt.Errorf("%s annotation: %w", record.Type, regionErr)).WithPage(index+1),
			e.messages.Sprintf(MsgRegionWarning, itoa(index+1), regionErr.Error()))
		return record, nil
	}

	record.HighlightedText = strings.TrimSpace(text)
	return record, nil
}

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	pdferrors "github.com/a3tai/pdf-annotations/internal/pdf/errors"
	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// DefaultMaxFileSize is the input size limit used by ExtractAnnotations
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// Service runs the annotation pipeline: open, resolve the offset, extract,
// close, render.
type Service struct {
	maxFileSize int64
	validator   *Validator
	debug       bool
	now         func() time.Time
}

// NewService creates a new service with the given input size limit
func NewService(maxFileSize int64) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		now:         time.Now,
	}
}

// SetDebug enables diagnostic logging
func (s *Service) SetDebug(debug bool) {
	s.debug = debug
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// ExtractAnnotations writes <stem>_annotations.md next to path and returns
// its location. offset is an override, or AutoDetectOffset.
func ExtractAnnotations(path string, offset int, progress ProgressFunc) (string, error) {
	result, err := NewService(DefaultMaxFileSize).Extract(context.Background(), ExtractRequest{
		Path:     path,
		Offset:   offset,
		Progress: progress,
	})
	if err != nil {
		return "", err
	}
	return result.OutputPath, nil
}

// extraction is the outcome of one pass over a document
type extraction struct {
	records    []AnnotationRecord
	warnings   []string
	problems   *pdferrors.ErrorCollection
	offset     int
	source     OffsetSource
	totalPages int
}

// Extract runs the pipeline and writes the report. Failures to open the input
// are PDF_OPEN errors; everything else is a PDF_PROCESSING error.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	format := req.Format
	if format == "" {
		format = FormatMarkdown
	}
	if _, err := ParseReportFormat(string(format)); err != nil {
		return nil, processingError(req.Path, err)
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = OutputPathFor(req.Path, format)
	}

	ex, err := s.run(ctx, req.Path, req.Offset, req.UsePageLabels, req.Messages, req.Progress)
	if err != nil {
		return nil, err
	}
	if sameFile(outputPath, req.Path) {
		return nil, processingError(req.Path, pdferrors.WrapError(pdferrors.ErrorTypeOutput,
			fmt.Errorf("report path %s is the input PDF", outputPath)))
	}

	meta := ReportMetadata{
		FilePath:   req.Path,
		ExportedAt: s.now(),
		TotalPages: ex.totalPages,
		Offset:     ex.offset,
	}

	var buf bytes.Buffer
	if err := NewReportRenderer(req.Messages).RenderFormat(&buf, format, ex.records, meta); err != nil {
		return nil, processingError(req.Path, fmt.Errorf("failed to render report: %w", err))
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return nil, processingError(req.Path, pdferrors.WrapError(pdferrors.ErrorTypeOutput,
			fmt.Errorf("failed to write report %s: %w", outputPath, err)))
	}

	return &ExtractResult{
		Path:            req.Path,
		OutputPath:      outputPath,
		Format:          format,
		Offset:          ex.offset,
		OffsetSource:    ex.source,
		TotalPages:      ex.totalPages,
		AnnotationCount: len(ex.records),
		Warnings:        ex.warnings,
	}, nil
}

// ListAnnotations runs the pipeline and returns the records without writing anything
func (s *Service) ListAnnotations(ctx context.Context, req ListAnnotationsRequest) (*ListAnnotationsResult, error) {
	ex, err := s.run(ctx, req.Path, req.Offset, req.UsePageLabels, req.Messages, nil)
	if err != nil {
		return nil, err
	}

	return &ListAnnotationsResult{
		Path:         req.Path,
		Offset:       ex.offset,
		OffsetSource: ex.source,
		TotalPages:   ex.totalPages,
		Annotations:  ex.records,
		Warnings:     ex.warnings,
	}, nil
}

// DetectOffset resolves the page offset and the display labels of the
// first pages.
func (s *Service) DetectOffset(req DetectOffsetRequest) (*DetectOffsetResult, error) {
	doc, err := s.open(req.Path, req.UsePageLabels)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	offset, source := resolveOffset(doc, AutoDetectOffset, req.UsePageLabels)

	total := doc.PageCount()
	shown := total
	if shown > offsetScanPages {
		shown = offsetScanPages
	}
	labels := make([]string, 0, shown)
	for index := 0; index < shown; index++ {
		labels = append(labels, FormatPageLabel(nil, index, offset))
	}

	return &DetectOffsetResult{
		Path:         req.Path,
		Offset:       offset,
		OffsetSource: source,
		StartsAt:     1 + offset,
		TotalPages:   total,
		PageLabels:   labels,
	}, nil
}

// open validates the path and opens the document
func (s *Service) open(path string, usePageLabels bool) (wrapper.Document, error) {
	if err := s.validator.ValidateFile(path); err != nil {
		return nil, openError(path, err)
	}

	config := wrapper.DefaultFactoryConfig()
	config.ReadPageLabels = usePageLabels
	config.DebugMode = s.debug

	doc, err := wrapper.Open(path, config)
	if err != nil {
		return nil, openError(path, err)
	}
	return doc, nil
}

// run opens the document, resolves the offset and extracts the records. The
// document is closed before run returns, on every path.
func (s *Service) run(ctx context.Context, path string, override int, usePageLabels bool,
	messages Messages, progress ProgressFunc,
) (*extraction, error) {
	messages = messagesOrDefault(messages)

	doc, err := s.open(path, usePageLabels)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil && s.debug {
			log.Printf("Failed to close %s: %v", path, closeErr)
		}
	}()

	var ex *extraction
	err = pdferrors.Guard("extract_annotations", func() error {
		var runErr error
		ex, runErr = s.extract(ctx, doc, override, usePageLabels, messages, progress)
		return runErr
	})
	if err != nil {
		return nil, processingError(path, err)
	}

	if s.debug {
		log.Printf("Extracted %d annotation(s) from %s: %s", len(ex.records), path, ex.problems.Summary())
	}
	return ex, nil
}

func (s *Service) extract(ctx context.Context, doc wrapper.Document, override int, usePageLabels bool,
	messages Messages, progress ProgressFunc,
) (*extraction, error) {
	if override == AutoDetectOffset && progress != nil {
		progress(messages.Sprintf(MsgDetectingOffset))
	}
	offset, source := resolveOffset(doc, override, usePageLabels)

	extractor := NewExtractor(messages, progress)
	extractor.SetDebug(s.debug)

	records, warnings, err := extractor.Extract(ctx, doc, offset)
	if err != nil {
		return nil, err
	}

	if labelsErr := wrapper.LabelsError(doc); labelsErr != nil {
		extractor.warn(warnings,
			pdferrors.WrapError(pdferrors.ErrorTypeInvalidPageLabels, labelsErr),
			messages.Sprintf(MsgLabelsWarning, labelsErr.Error()))
	}

	ex := &extraction{
		records:    records,
		problems:   warnings,
		offset:     offset,
		source:     source,
		totalPages: doc.PageCount(),
	}
	for _, w := range warnings.Warnings {
		ex.warnings = append(ex.warnings, w.Context)
	}
	return ex, nil
}

// sameFile reports whether a and b name the same file, lexically or, when
// both exist, on disk (hard links and symlinks included).
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}

	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

func openError(path string, err error) error {
	return pdferrors.WrapError(pdferrors.ErrorTypeOpen,
		fmt.Errorf("failed to open PDF %s: %w", path, err)).WithFile(path)
}

func processingError(path string, err error) error {
	if pdferrors.IsOpenError(err) || pdferrors.IsProcessingError(err) {
		return err
	}
	return pdferrors.WrapError(pdferrors.ErrorTypeProcessing,
		fmt.Errorf("failed to process PDF %s: %w", path, err)).WithFile(path)
}

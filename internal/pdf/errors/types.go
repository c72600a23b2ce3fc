package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// PDFError represents a PDF processing error with page context and recovery information
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Recoverable bool      `json:"recoverable"`
	StackTrace  string    `json:"stack_trace,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Err         error     `json:"-"`
}

// ErrorType represents different categories of annotation extraction errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeOpen covers a missing input file or one the PDF library cannot parse.
	ErrorTypeOpen
	// ErrorTypeProcessing wraps every other failure surfaced at the entry point.
	ErrorTypeProcessing
	ErrorTypeMalformedPage
	ErrorTypeInvalidAnnotation
	ErrorTypeRegionExtraction
	ErrorTypeInvalidPageLabels
	ErrorTypeOutput
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityFatal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), e.Message, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeOpen:
		return "PDF_OPEN"
	case ErrorTypeProcessing:
		return "PDF_PROCESSING"
	case ErrorTypeMalformedPage:
		return "MALFORMED_PAGE"
	case ErrorTypeInvalidAnnotation:
		return "INVALID_ANNOTATION"
	case ErrorTypeRegionExtraction:
		return "REGION_EXTRACTION"
	case ErrorTypeInvalidPageLabels:
		return "INVALID_PAGE_LABELS"
	case ErrorTypeOutput:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeOpen:
		return SeverityFatal
	case ErrorTypeProcessing, ErrorTypeOutput:
		return SeverityCritical
	case ErrorTypeMalformedPage, ErrorTypeInvalidAnnotation, ErrorTypeRegionExtraction:
		return SeverityWarning
	case ErrorTypeInvalidPageLabels:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// IsRecoverable determines if an error type allows the run to continue
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeOpen, ErrorTypeProcessing, ErrorTypeOutput:
		return false
	case ErrorTypeMalformedPage, ErrorTypeInvalidAnnotation, ErrorTypeRegionExtraction:
		return true // skip the page, the annotation or the field
	case ErrorTypeInvalidPageLabels:
		return true // document is treated as unlabelled
	default:
		return false
	}
}

// NewPDFError creates a new PDFError with full context
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
		StackTrace:  string(debug.Stack()),
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, err error) *PDFError {
	e := NewPDFError(errorType, err.Error())
	e.Err = err
	return e
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsCritical returns true if this error is critical or fatal
func (e *PDFError) IsCritical() bool {
	severity := e.GetSeverity()
	return severity == SeverityCritical || severity == SeverityFatal
}

// IsType reports whether err is, or wraps, a PDFError of the given type.
// PDFErrors nested inside other PDFErrors are checked too.
func IsType(err error, errorType ErrorType) bool {
	for err != nil {
		var pdfErr *PDFError
		if !errors.As(err, &pdfErr) {
			return false
		}
		if pdfErr.Type == errorType {
			return true
		}
		err = pdfErr.Err
	}
	return false
}

// IsOpenError reports whether err means the input could not be opened as a PDF
func IsOpenError(err error) bool {
	return IsType(err, ErrorTypeOpen)
}

// IsProcessingError reports whether err is a wrapped processing failure
func IsProcessingError(err error) bool {
	return IsType(err, ErrorTypeProcessing)
}

// ErrorCollection manages the non-fatal errors gathered during one run
type ErrorCollection struct {
	Errors   []*PDFError `json:"errors"`
	Warnings []*PDFError `json:"warnings"`
	FilePath string      `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*PDFError, 0),
		Warnings: make([]*PDFError, 0),
		FilePath: filePath,
	}
}

// Add adds an error to the appropriate collection based on severity
func (ec *ErrorCollection) Add(err *PDFError) {
	if err.FilePath == "" && ec.FilePath != "" {
		err.FilePath = ec.FilePath
	}

	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		ec.Warnings = append(ec.Warnings, err)
	} else {
		ec.Errors = append(ec.Errors, err)
	}
}

// HasCriticalErrors returns true if any critical errors exist
func (ec *ErrorCollection) HasCriticalErrors() bool {
	for _, err := range ec.Errors {
		if err.IsCritical() {
			return true
		}
	}
	return false
}

// Count returns the total number of errors and warnings
func (ec *ErrorCollection) Count() (errors, warnings int) {
	return len(ec.Errors), len(ec.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount := ec.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}

	summary := fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)

	if ec.HasCriticalErrors() {
		summary += " (including critical errors)"
	}

	return summary
}

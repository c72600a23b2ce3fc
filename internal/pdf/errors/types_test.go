package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeClassification(t *testing.T) {
	tests := []struct {
		errorType   ErrorType
		name        string
		severity    ErrorSeverity
		recoverable bool
	}{
		{ErrorTypeOpen, "PDF_OPEN", SeverityFatal, false},
		{ErrorTypeProcessing, "PDF_PROCESSING", SeverityCritical, false},
		{ErrorTypeMalformedPage, "MALFORMED_PAGE", SeverityWarning, true},
		{ErrorTypeInvalidAnnotation, "INVALID_ANNOTATION", SeverityWarning, true},
		{ErrorTypeRegionExtraction, "REGION_EXTRACTION", SeverityWarning, true},
		{ErrorTypeInvalidPageLabels, "INVALID_PAGE_LABELS", SeverityInfo, true},
		{ErrorTypeUnknown, "UNKNOWN", SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.errorType.String())
			assert.Equal(t, tt.severity, tt.errorType.GetSeverity())
			assert.Equal(t, tt.recoverable, tt.errorType.IsRecoverable())
		})
	}
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapError(ErrorTypeOpen, cause).WithFile("/tmp/x.pdf")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/tmp/x.pdf", err.FilePath)
	assert.True(t, err.IsCritical())
	assert.Equal(t, "[PDF_OPEN] no such file", err.Error())
}

func TestIsOpenError(t *testing.T) {
	openErr := NewPDFError(ErrorTypeOpen, "cannot open")
	wrapped := fmt.Errorf("extract: %w", openErr)

	assert.True(t, IsOpenError(openErr))
	assert.True(t, IsOpenError(wrapped))
	assert.False(t, IsProcessingError(wrapped))
	assert.False(t, IsOpenError(errors.New("plain")))
	assert.True(t, IsProcessingError(NewPDFError(ErrorTypeProcessing, "boom")))

	output := WrapError(ErrorTypeOutput, errors.New("disk full"))
	processing := WrapError(ErrorTypeProcessing, fmt.Errorf("write report: %w", output))
	assert.True(t, IsProcessingError(processing))
	assert.True(t, IsType(processing, ErrorTypeOutput))
	assert.False(t, IsOpenError(processing))
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection("doc.pdf")
	assert.Equal(t, "No errors or warnings", ec.Summary())

	ec.Add(NewPDFError(ErrorTypeRegionExtraction, "bad rect").WithPage(2))
	ec.Add(NewPDFError(ErrorTypeMalformedPage, "bad page").WithPage(3))
	ec.Add(NewPDFError(ErrorTypeOutput, "disk full"))

	errs, warnings := ec.Count()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warnings)
	assert.True(t, ec.HasCriticalErrors())
	assert.Equal(t, "doc.pdf", ec.Warnings[0].FilePath)
	assert.Equal(t, 2, ec.Warnings[0].PageNumber)
	assert.Equal(t, "Found 1 error(s) and 2 warning(s) (including critical errors)", ec.Summary())
}

func TestGuardRecoversPanics(t *testing.T) {
	err := Guard("read page", func() error {
		panic("malformed stream")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read page")
	assert.Contains(t, err.Error(), "malformed stream")

	cause := errors.New("typed")
	err = Guard("read page", func() error {
		panic(cause)
	})
	assert.ErrorIs(t, err, cause)

	assert.NoError(t, Guard("noop", func() error { return nil }))
}

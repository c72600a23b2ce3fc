package pdf

import (
	"fmt"
	"os"
)

// Validator checks an input path before the PDF library sees it
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified size limit.
// A limit of zero or less disables the size check.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that the path names an existing, non-empty regular
// file within the size limit. Whether it parses as a PDF is left to the
// document opener.
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	return v.ValidateFileInfo(filePath, fileInfo)
}

// ValidateFileInfo performs the checks that need only the file info
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

package wrapper

import (
	"fmt"
	"log"
)

// FactoryConfig contains configuration options for opening documents
type FactoryConfig struct {
	// ReadPageLabels attaches the /PageLabels tree read with pdfcpu
	ReadPageLabels bool `json:"read_page_labels"`

	// DebugMode enables debug logging for library operations
	DebugMode bool `json:"debug_mode"`
}

// DefaultFactoryConfig returns the configuration used by the command line tool
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		ReadPageLabels: false,
		DebugMode:      false,
	}
}

// Open opens a PDF for annotation extraction. Text and annotations come from
// ledongthuc/pdf; page labels, when requested, from pdfcpu. A document whose
// labels cannot be read is still returned, just without labels; LabelsError
// reports why.
func Open(path string, config FactoryConfig) (Document, error) {
	if path == "" {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("path cannot be empty"),
		}
	}

	doc, err := OpenLedongthuc(path)
	if err != nil {
		return nil, err
	}

	if config.ReadPageLabels {
		labels, err := ReadPageLabels(path)
		if err != nil {
			if config.DebugMode {
				log.Printf("Page labels unavailable for %s: %v", path, err)
			}
			doc.labelsErr = err
		} else {
			doc.labels = labels
		}
	}

	return doc, nil
}

// LabelsError returns the error that kept a document's page labels from
// being read, or nil.
func LabelsError(doc Document) error {
	if d, ok := doc.(interface{ LabelsError() error }); ok {
		return d.LabelsError()
	}
	return nil
}

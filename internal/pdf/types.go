package pdf

// Request Types

// ExtractRequest asks for a report file to be written for one PDF
type ExtractRequest struct {
	Path string `json:"path"`
	// Offset is the page offset override; AutoDetectOffset detects it
	Offset        int          `json:"offset"`
	OutputPath    string       `json:"output_path,omitempty"`
	Format        ReportFormat `json:"format,omitempty"`
	UsePageLabels bool         `json:"use_page_labels,omitempty"`

	Messages Messages     `json:"-"`
	Progress ProgressFunc `json:"-"`
}

// ListAnnotationsRequest asks for the annotation records without writing a report
type ListAnnotationsRequest struct {
	Path          string `json:"path"`
	Offset        int    `json:"offset"`
	UsePageLabels bool   `json:"use_page_labels,omitempty"`

	Messages Messages `json:"-"`
}

// DetectOffsetRequest asks for the page offset of a PDF
type DetectOffsetRequest struct {
	Path          string `json:"path"`
	UsePageLabels bool   `json:"use_page_labels,omitempty"`
}

// Response Types

// ExtractResult describes a written report
type ExtractResult struct {
	Path            string       `json:"path"`
	OutputPath      string       `json:"output_path"`
	Format          ReportFormat `json:"format"`
	Offset          int          `json:"offset"`
	OffsetSource    OffsetSource `json:"offset_source"`
	TotalPages      int          `json:"total_pages"`
	AnnotationCount int          `json:"annotation_count"`
	Warnings        []string     `json:"warnings,omitempty"`
}

// ListAnnotationsResult carries the extracted records
type ListAnnotationsResult struct {
	Path         string             `json:"path"`
	Offset       int                `json:"offset"`
	OffsetSource OffsetSource       `json:"offset_source"`
	TotalPages   int                `json:"total_pages"`
	Annotations  []AnnotationRecord `json:"annotations"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// DetectOffsetResult reports the resolved page offset
type DetectOffsetResult struct {
	Path         string       `json:"path"`
	Offset       int          `json:"offset"`
	OffsetSource OffsetSource `json:"offset_source"`
	StartsAt     int          `json:"numbering_starts_at"`
	TotalPages   int          `json:"total_pages"`
	PageLabels   []string     `json:"page_labels,omitempty"`
}

package models

import "time"

// ImportStatus tracks the grade import lifecycle.
type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// GradeImport is one uploaded grade file and its processing outcome.
type GradeImport struct {
	ID           string       `db:"id" json:"id"`
	FileName     string       `db:"file_name" json:"file_name"`
	GradeSheetID *string      `db:"grade_sheet_id" json:"grade_sheet_id,omitempty"`
	Status       ImportStatus `db:"status" json:"status"`
	TotalRows    int          `db:"total_rows" json:"total_rows"`
	ImportedRows int          `db:"imported_rows" json:"imported_rows"`
	FailedRows   int          `db:"failed_rows" json:"failed_rows"`
	ErrorLog     *string      `db:"error_log" json:"error_log,omitempty"`
	UploadedBy   *string      `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}

// GradeImportRow is one parsed line from an uploaded grade file.
type GradeImportRow struct {
	RowNumber   int
	StudentCode string
	ValueLabel  string
	Points      *float64
	Comments    *string
}

// ExportFormat selects the generated document type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// GradeExportResult describes a generated export artifact. DownloadToken
// grants time-limited access to the file through the download endpoint.
type GradeExportResult struct {
	FileName      string     `json:"file_name"`
	ContentType   string     `json:"content_type"`
	Size          int64      `json:"size"`
	Path          string     `json:"path"`
	DownloadToken string     `json:"download_token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

package entity

import "time"

// Evidence file kind constants
const (
	FileKindInvoice  = "INVOICE"
	FileKindContract = "CONTRACT"
	FileKindReceipt  = "RECEIPT"
	FileKindOther    = "OTHER"
)

// EvidenceFile represents an uploaded document attached to a submission.
// The analysis payload is populated asynchronously and may be absent.
type EvidenceFile struct {
	ID             string     `json:"id"`
	SubmissionID   string     `json:"submission_id"`
	Kind           string     `json:"kind"`
	ObjectKey      string     `json:"object_key"`
	FileName       string     `json:"file_name"`
	FileSize       int64      `json:"file_size"`
	MimeType       string     `json:"mime_type"`
	ExtractedText  string     `json:"extracted_text,omitempty"`
	Analysis       string     `json:"analysis,omitempty"` // JSON DocumentAnalysis
	AnalysisStatus string     `json:"analysis_status"`
	AnalysisError  string     `json:"analysis_error,omitempty"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsValidFileKind reports whether k is one of the declared kinds.
func IsValidFileKind(k string) bool {
	switch k {
	case FileKindInvoice, FileKindContract, FileKindReceipt, FileKindOther:
		return true
	}
	return false
}

// DocumentAnalysis is the structured extraction result persisted on an
// evidence file, serialized as JSON into EvidenceFile.Analysis.
type DocumentAnalysis struct {
	AmountCents  *int64             `json:"amount_cents,omitempty"`
	Currency     string             `json:"currency,omitempty"`
	DocumentDate string             `json:"document_date,omitempty"`
	Supplier     string             `json:"supplier,omitempty"`
	DocumentType string             `json:"document_type,omitempty"`
	Confidences  map[string]float64 `json:"confidences,omitempty"`
	Commentary   string             `json:"commentary,omitempty"`
	Model        string             `json:"model,omitempty"`
	ExtractedAt  time.Time          `json:"extracted_at"`
}

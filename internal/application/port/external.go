package port

import (
	"context"

	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

// ExtractionResult is the structured payload returned by the document
// extraction collaborator. Failure carries a reason; the collaborator
// is treated as unreliable and optional.
type ExtractionResult struct {
	Success  bool
	Analysis *entity.DocumentAnalysis
	Reason   string
}

// DocumentExtractor requests structured field extraction for a stored
// document.
type DocumentExtractor interface {
	Extract(ctx context.Context, content []byte, mimeType, rawText string) (*ExtractionResult, error)
}

// TextExtractor extracts raw text from a document, when the format
// supports it. Returning an empty string (no error) means no text layer.
type TextExtractor interface {
	ExtractText(ctx context.Context, content []byte, mimeType string) (string, error)
}

// MessageSender delivers a notification message to a user through an
// out-of-band channel. Delivery is best-effort.
type MessageSender interface {
	SendMessage(ctx context.Context, userID, message string) error
}

// Package openai implements the structured extraction collaborator on
// the OpenAI chat completion API. The collaborator is treated as
// unreliable: failures surface as unsuccessful results or errors and
// never carry further than the analysis worker.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a document analyst for an expense-justification system. " +
	"Extract structured fields from expense evidence documents (invoices, receipts, contracts). " +
	"Always respond with valid JSON."

const defaultTimeout = 60 * time.Second

// Extractor implements port.DocumentExtractor using OpenAI
type Extractor struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewExtractor creates a new OpenAI extractor. The timeout bounds each
// Extract call on top of the caller's context.
func NewExtractor(apiKey, model string, temperature float32, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// extractionResponse mirrors the JSON shape requested in the prompt
type extractionResponse struct {
	Amount       *float64           `json:"amount"`
	Currency     string             `json:"currency"`
	DocumentDate string             `json:"document_date"`
	Supplier     string             `json:"supplier"`
	DocumentType string             `json:"document_type"`
	Confidences  map[string]float64 `json:"confidences"`
	Commentary   string             `json:"commentary"`
}

// Extract requests structured field extraction for a document. Text
// documents are sent as text; images go through the vision content
// parts.
func (e *Extractor) Extract(ctx context.Context, content []byte, mimeType, rawText string) (*port.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
	}

	switch {
	case rawText != "":
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: e.buildTextPrompt(rawText),
		})
	case strings.HasPrefix(mimeType, "image/"):
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: e.buildTextPrompt(""),
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(content)),
					},
				},
			},
		})
	default:
		return &port.ExtractionResult{
			Success: false,
			Reason:  fmt.Sprintf("no text layer and unsupported media type %s", mimeType),
		}, nil
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages:    messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var parsed extractionResponse
	raw := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		e.logger.Error("Failed to parse extraction response",
			zap.Error(err),
			zap.String("content", raw))
		return &port.ExtractionResult{
			Success: false,
			Reason:  "extraction response was not valid JSON",
		}, nil
	}

	analysis := &entity.DocumentAnalysis{
		Currency:     parsed.Currency,
		DocumentDate: parsed.DocumentDate,
		Supplier:     parsed.Supplier,
		DocumentType: parsed.DocumentType,
		Confidences:  parsed.Confidences,
		Commentary:   parsed.Commentary,
		Model:        e.model,
		ExtractedAt:  time.Now(),
	}
	if parsed.Amount != nil {
		cents := int64(*parsed.Amount*100 + 0.5)
		analysis.AmountCents = &cents
	}

	e.logger.Info("Document extraction completed",
		zap.String("document_type", analysis.DocumentType),
		zap.String("supplier", analysis.Supplier))

	return &port.ExtractionResult{Success: true, Analysis: analysis}, nil
}

// buildTextPrompt builds the extraction instruction, with the document
// text inlined when available.
func (e *Extractor) buildTextPrompt(rawText string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from the expense document")
	if rawText != "" {
		b.WriteString(" text below")
	} else {
		b.WriteString(" image")
	}
	b.WriteString(`:
- amount: total amount as a number, null if absent
- currency: ISO 4217 code, empty if unknown
- document_date: YYYY-MM-DD, empty if unknown
- supplier: issuing company or vendor name
- document_type: one of invoice, receipt, contract, other
- confidences: object mapping each field name to a 0..1 confidence
- commentary: one short sentence on anything unusual

Respond with a single JSON object using exactly these keys.`)

	if rawText != "" {
		b.WriteString("\n\nDocument text:\n")
		b.WriteString(rawText)
	}

	return b.String()
}

// Verify interface compliance
var _ port.DocumentExtractor = (*Extractor)(nil)

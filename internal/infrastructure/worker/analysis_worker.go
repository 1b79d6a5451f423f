package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
)

// AnalysisWorkerConfig holds configuration for the analysis worker
type AnalysisWorkerConfig struct {
	PollInterval   time.Duration
	BatchSize      int
	ProcessTimeout time.Duration
}

// DefaultAnalysisWorkerConfig returns default configuration
func DefaultAnalysisWorkerConfig() AnalysisWorkerConfig {
	return AnalysisWorkerConfig{
		PollInterval:   10 * time.Second,
		BatchSize:      5,
		ProcessTimeout: 120 * time.Second,
	}
}

// AnalysisWorker processes evidence files awaiting analysis: it fetches
// the stored document, extracts its text layer and asks the extraction
// collaborator for structured fields. A submission never waits on it;
// the worker only settles the analysis columns of the file row.
type AnalysisWorker struct {
	config AnalysisWorkerConfig

	fileRepo      port.FileRepository
	storage       port.ObjectStorage
	textExtractor port.TextExtractor
	extractor     port.DocumentExtractor
	logger        *zap.Logger

	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	isRunning      bool
	processedCount int
	failedCount    int
}

// NewAnalysisWorker creates a new analysis worker
func NewAnalysisWorker(
	config AnalysisWorkerConfig,
	fileRepo port.FileRepository,
	storage port.ObjectStorage,
	textExtractor port.TextExtractor,
	extractor port.DocumentExtractor,
	logger *zap.Logger,
) *AnalysisWorker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultAnalysisWorkerConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultAnalysisWorkerConfig().BatchSize
	}
	if config.ProcessTimeout <= 0 {
		config.ProcessTimeout = DefaultAnalysisWorkerConfig().ProcessTimeout
	}
	return &AnalysisWorker{
		config:        config,
		fileRepo:      fileRepo,
		storage:       storage,
		textExtractor: textExtractor,
		extractor:     extractor,
		logger:        logger,
	}
}

// Start begins the worker polling loop
func (w *AnalysisWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("analysis worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("AnalysisWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop()

	return nil
}

// Stop gracefully terminates the worker
func (w *AnalysisWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	processed, failed := w.processedCount, w.failedCount
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("AnalysisWorker stopped",
		zap.Int("processed_count", processed),
		zap.Int("failed_count", failed))

	return nil
}

// Name returns the worker name for identification
func (w *AnalysisWorker) Name() string {
	return "AnalysisWorker"
}

func (w *AnalysisWorker) pollLoop() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Poll loop context cancelled")
			return

		case <-ticker.C:
			if err := w.processPendingBatch(w.ctx); err != nil {
				w.logger.Error("Failed to process pending batch", zap.Error(err))
			}
		}
	}
}

// processPendingBatch picks up the oldest pending files and analyzes
// them one at a time. Per-file failures settle that file as FAILED and
// never stop the batch.
func (w *AnalysisWorker) processPendingBatch(ctx context.Context) error {
	files, err := w.fileRepo.GetPendingAnalysis(ctx, w.config.BatchSize)
	if err != nil {
		return fmt.Errorf("fetch pending files: %w", err)
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.processFile(ctx, file); err != nil {
			w.mu.Lock()
			w.failedCount++
			w.mu.Unlock()

			w.logger.Error("Document analysis failed",
				zap.String("file_id", file.ID),
				zap.String("file_name", file.FileName),
				zap.Error(err))

			if markErr := w.fileRepo.MarkAnalysisFailed(ctx, file.ID, err.Error()); markErr != nil {
				w.logger.Error("Failed to mark analysis failed",
					zap.String("file_id", file.ID),
					zap.Error(markErr))
			}
			continue
		}

		w.mu.Lock()
		w.processedCount++
		w.mu.Unlock()
	}

	return nil
}

func (w *AnalysisWorker) processFile(ctx context.Context, file *entity.EvidenceFile) error {
	processCtx, cancel := context.WithTimeout(ctx, w.config.ProcessTimeout)
	defer cancel()

	w.logger.Info("Analyzing evidence file",
		zap.String("file_id", file.ID),
		zap.String("file_name", file.FileName),
		zap.String("mime_type", file.MimeType))

	content, err := w.storage.Get(processCtx, file.ObjectKey)
	if err != nil {
		return fmt.Errorf("fetch object %s: %w", file.ObjectKey, err)
	}

	rawText, err := w.textExtractor.ExtractText(processCtx, content, file.MimeType)
	if err != nil {
		// A broken text layer is not fatal; vision extraction still works.
		w.logger.Warn("Text extraction failed, continuing without text layer",
			zap.String("file_id", file.ID),
			zap.Error(err))
		rawText = ""
	}

	result, err := w.extractor.Extract(processCtx, content, file.MimeType, rawText)
	if err != nil {
		return fmt.Errorf("extract document fields: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("extraction rejected: %s", result.Reason)
	}

	analysisJSON, err := json.Marshal(result.Analysis)
	if err != nil {
		return fmt.Errorf("serialize analysis: %w", err)
	}

	if err := w.fileRepo.SetAnalysis(ctx, file.ID, rawText, string(analysisJSON)); err != nil {
		return fmt.Errorf("persist analysis: %w", err)
	}

	w.logger.Info("Evidence file analyzed",
		zap.String("file_id", file.ID),
		zap.String("supplier", result.Analysis.Supplier))

	return nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/metrics"
	"github.com/employsmart/employsmart/internal/ocr"
	"github.com/employsmart/employsmart/internal/storage"
)

// ExtractionStore is the persistence surface for the audit trail.
// *repository.Queries satisfies it.
type ExtractionStore interface {
	CreateExtraction(ctx context.Context, e *domain.Extraction) error
	ListExtractionsByRecruiter(ctx context.Context, recruiterID uuid.UUID, limit int32) ([]*domain.Extraction, error)
}

// ExtractionService runs the OCR pipeline: extract text via the provider,
// archive the source document, and record the run.
type ExtractionService struct {
	provider ocr.Provider
	archive  storage.Storage
	store    ExtractionStore
	logger   *slog.Logger
}

// NewExtractionService creates the extraction service. archive may be nil
// to skip CV archiving.
func NewExtractionService(provider ocr.Provider, archive storage.Storage, store ExtractionStore, logger *slog.Logger) *ExtractionService {
	return &ExtractionService{
		provider: provider,
		archive:  archive,
		store:    store,
		logger:   logger,
	}
}

// Extract runs text extraction on an uploaded document. recruiterID is
// unset for anonymous uploads. Archiving and audit recording are
// best-effort; only the extraction itself can fail the call.
func (s *ExtractionService) Extract(ctx context.Context, recruiterID uuid.NullUUID, filename, contentType string, doc io.ReadSeeker) (*ocr.Result, error) {
	start := time.Now()

	result, err := s.provider.Extract(ctx, filename, contentType, doc)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("extract %q: %w", filename, err)
	}

	metrics.ExtractionsTotal.WithLabelValues("success").Inc()
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	metrics.ExtractionShards.Observe(float64(len(result.ShardNames)))

	archiveKey := s.archiveDocument(ctx, recruiterID, filename, contentType, doc)
	s.record(ctx, recruiterID, filename, archiveKey, result)

	return result, nil
}

// History returns a recruiter's recent extraction runs, newest first.
func (s *ExtractionService) History(ctx context.Context, recruiterID uuid.UUID, limit int32) ([]*domain.Extraction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out, err := s.store.ListExtractionsByRecruiter(ctx, recruiterID, limit)
	if err != nil {
		return nil, domain.Internal(err, "extraction.history", "failed to list extractions")
	}
	return out, nil
}

// archiveDocument stores a copy of the uploaded CV. Returns "" when
// archiving is disabled or fails.
func (s *ExtractionService) archiveDocument(ctx context.Context, recruiterID uuid.NullUUID, filename, contentType string, doc io.ReadSeeker) string {
	if s.archive == nil {
		return ""
	}
	if _, err := doc.Seek(0, io.SeekStart); err != nil {
		s.logger.Warn("failed to rewind document for archiving", "filename", filename, "error", err)
		return ""
	}

	key := storage.CVKey(recruiterID, filename)
	err := s.archive.Put(ctx, key, doc, storage.PutOptions{
		ContentType: contentType,
		Overwrite:   true,
	})
	if err != nil {
		s.logger.Warn("failed to archive document", "filename", filename, "key", key, "error", err)
		return ""
	}
	return key
}

// record writes the audit row. Failures are logged only.
func (s *ExtractionService) record(ctx context.Context, recruiterID uuid.NullUUID, filename, archiveKey string, result *ocr.Result) {
	err := s.store.CreateExtraction(ctx, &domain.Extraction{
		ID:          uuid.New(),
		RecruiterID: recruiterID,
		Filename:    filename,
		BucketName:  result.Bucket,
		ArchiveKey:  archiveKey,
		ShardNames:  result.ShardNames,
		RawResponse: result.RawFirstShard,
		TextLength:  len(result.Text),
	})
	if err != nil {
		s.logger.Warn("failed to record extraction", "filename", filename, "error", err)
	}
}

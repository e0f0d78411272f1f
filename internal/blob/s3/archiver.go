package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// ---------------------------------------------------------------------------
// Narrow store interfaces required by the archiver.
//
// The archiver only requires the time-ranged query and delete methods it
// actually calls, not the full domain store interfaces. The Postgres stores
// satisfy these implicitly.
// ---------------------------------------------------------------------------

// TradeArchiveStore provides archival access to closed paper trades.
type TradeArchiveStore interface {
	// ListClosedBefore returns all closed trades resolved strictly before
	// the given cutoff time.
	ListClosedBefore(ctx context.Context, before time.Time) ([]domain.Position, error)
	// DeleteClosedBefore removes closed trades resolved strictly before the
	// cutoff and returns the number deleted.
	DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error)
}

// OpportunityArchiveStore provides archival access to opportunity history.
type OpportunityArchiveStore interface {
	// ListBefore returns all opportunities detected strictly before the
	// given cutoff time.
	ListBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error)
	// DeleteBefore removes opportunities detected strictly before the cutoff
	// and returns the number deleted.
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ---------------------------------------------------------------------------
// ArchiveImpl
// ---------------------------------------------------------------------------

// ArchiveImpl implements domain.Archiver by querying the stores for aged
// records, serializing them to JSONL, uploading the result to S3, and then
// deleting the archived rows from the primary store. Deletion only happens
// after the upload succeeds, so a failed upload leaves the rows in place for
// the next run.
type ArchiveImpl struct {
	writer domain.BlobWriter
	trades TradeArchiveStore
	opps   OpportunityArchiveStore
	logger *slog.Logger
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(
	writer domain.BlobWriter,
	trades TradeArchiveStore,
	opps OpportunityArchiveStore,
	logger *slog.Logger,
) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		trades: trades,
		opps:   opps,
		logger: logger.With("component", "archiver"),
	}
}

var _ domain.Archiver = (*ArchiveImpl)(nil)

// ArchiveTrades queries all closed paper trades resolved before the cutoff,
// serializes them to JSONL, uploads the file to S3 at
// archive/trades/YYYY-MM.jsonl, and deletes the archived rows. The count of
// archived records is returned.
func (a *ArchiveImpl) ArchiveTrades(ctx context.Context, before time.Time) (int64, error) {
	trades, err := a.trades.ListClosedBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades query: %w", err)
	}
	if len(trades) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(trades)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades marshal: %w", err)
	}

	path := archivePath("trades", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive trades upload: %w", err)
	}

	deleted, err := a.trades.DeleteClosedBefore(ctx, before)
	if err != nil {
		return int64(len(trades)), fmt.Errorf("s3blob: archive trades delete: %w", err)
	}

	a.logger.Info("archived trades",
		"path", path,
		"archived", len(trades),
		"deleted", deleted,
		"before", before.Format(time.RFC3339),
	)
	return int64(len(trades)), nil
}

// ArchiveOpportunities queries all opportunities detected before the cutoff,
// serializes them to JSONL, uploads the file to S3 at
// archive/opportunities/YYYY-MM.jsonl, and deletes the archived rows. The
// count of archived records is returned.
func (a *ArchiveImpl) ArchiveOpportunities(ctx context.Context, before time.Time) (int64, error) {
	opps, err := a.opps.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities query: %w", err)
	}
	if len(opps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(opps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities marshal: %w", err)
	}

	path := archivePath("opportunities", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities upload: %w", err)
	}

	deleted, err := a.opps.DeleteBefore(ctx, before)
	if err != nil {
		return int64(len(opps)), fmt.Errorf("s3blob: archive opportunities delete: %w", err)
	}

	a.logger.Info("archived opportunities",
		"path", path,
		"archived", len(opps),
		"deleted", deleted,
		"before", before.Format(time.RFC3339),
	)
	return int64(len(opps)), nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/trades/2025-01.jsonl
//	archive/opportunities/2025-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

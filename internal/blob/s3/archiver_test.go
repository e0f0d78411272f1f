package s3blob

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

type fakeWriter struct {
	paths []string
	data  map[string][]byte
	err   error
}

func (f *fakeWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if f.err != nil {
		return f.err
	}
	buf, _ := io.ReadAll(data)
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.paths = append(f.paths, path)
	f.data[path] = buf
	return nil
}

type fakeTradeStore struct {
	trades  []domain.Position
	deleted bool
}

func (f *fakeTradeStore) ListClosedBefore(_ context.Context, _ time.Time) ([]domain.Position, error) {
	return f.trades, nil
}

func (f *fakeTradeStore) DeleteClosedBefore(_ context.Context, _ time.Time) (int64, error) {
	f.deleted = true
	return int64(len(f.trades)), nil
}

type fakeOppStore struct {
	opps    []domain.Opportunity
	deleted bool
}

func (f *fakeOppStore) ListBefore(_ context.Context, _ time.Time) ([]domain.Opportunity, error) {
	return f.opps, nil
}

func (f *fakeOppStore) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	f.deleted = true
	return int64(len(f.opps)), nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestArchiveTrades(t *testing.T) {
	w := &fakeWriter{}
	trades := &fakeTradeStore{trades: []domain.Position{
		{ID: "t1", MarketID: "m1", Status: domain.PositionClosed},
		{ID: "t2", MarketID: "m2", Status: domain.PositionClosed},
	}}
	a := NewArchiver(w, trades, &fakeOppStore{}, discard())

	before := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	n, err := a.ArchiveTrades(context.Background(), before)
	if err != nil {
		t.Fatalf("ArchiveTrades: %v", err)
	}
	if n != 2 {
		t.Errorf("archived %d, want 2", n)
	}
	if len(w.paths) != 1 || w.paths[0] != "archive/trades/2025-01.jsonl" {
		t.Errorf("paths = %v", w.paths)
	}
	if !trades.deleted {
		t.Error("expected archived rows to be deleted")
	}
	lines := bytes.Count(w.data[w.paths[0]], []byte("\n"))
	if lines != 2 {
		t.Errorf("jsonl lines = %d, want 2", lines)
	}
}

func TestArchiveTradesEmpty(t *testing.T) {
	w := &fakeWriter{}
	a := NewArchiver(w, &fakeTradeStore{}, &fakeOppStore{}, discard())

	n, err := a.ArchiveTrades(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("ArchiveTrades: %v", err)
	}
	if n != 0 || len(w.paths) != 0 {
		t.Errorf("n=%d paths=%v, want no upload", n, w.paths)
	}
}

func TestArchiveOpportunitiesUploadFails(t *testing.T) {
	w := &fakeWriter{err: io.ErrClosedPipe}
	opps := &fakeOppStore{opps: []domain.Opportunity{{ID: "o1"}}}
	a := NewArchiver(w, &fakeTradeStore{}, opps, discard())

	_, err := a.ArchiveOpportunities(context.Background(), time.Now())
	if err == nil || !strings.Contains(err.Error(), "upload") {
		t.Fatalf("err = %v, want upload error", err)
	}
	if opps.deleted {
		t.Error("rows must not be deleted when upload fails")
	}
}

package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitebind/sitebind/internal/metrics"
)

// Reassembler consumes fetch results that may arrive out of order, re-imposes
// discovery order via a pending buffer keyed by sequence number, and appends
// content into the current output unit, splitting into a new part whenever
// the size threshold would be exceeded.
//
// A Reassembler is not safe for concurrent use. The engine funnels all
// results through a single consuming goroutine, so Submit and Flush never
// race.
//
// Memory held by the pending buffer is bounded by the maximum out-of-order
// gap, which worker concurrency caps in practice.
type Reassembler struct {
	next     uint64
	pending  map[uint64]FetchResult
	unit     OutputUnit
	writer   PartWriter
	baseName string
	part     int

	written  int
	fetched  int
	failed   int
	absorbed uint64

	logger *zap.Logger
}

// NewReassembler builds a Reassembler starting at the first sequence number
// the frontier issues.
func NewReassembler(unit OutputUnit, writer PartWriter, baseName string, logger *zap.Logger) *Reassembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reassembler{
		pending:  make(map[uint64]FetchResult),
		unit:     unit,
		writer:   writer,
		baseName: baseName,
		part:     1,
		logger:   logger,
	}
}

// Submit inserts one fetch result and absorbs every result that is now in
// sequence. Re-submitting an already-absorbed or already-pending sequence
// number is a no-op. A returned error means a part flush failed, which is
// fatal to the run; parts already written remain valid.
func (r *Reassembler) Submit(ctx context.Context, res FetchResult) error {
	if res.Seq < r.next {
		r.logger.Warn("Duplicate result dropped",
			zap.Uint64("seq", res.Seq),
			zap.String("url", res.URL),
		)
		return nil
	}
	if _, dup := r.pending[res.Seq]; dup {
		r.logger.Warn("Duplicate pending result dropped", zap.Uint64("seq", res.Seq))
		return nil
	}
	r.pending[res.Seq] = res

	for {
		next, ok := r.pending[r.next]
		if !ok {
			return nil
		}
		delete(r.pending, r.next)
		if err := r.absorb(ctx, next); err != nil {
			return err
		}
		r.next++
		r.absorbed++
	}
}

func (r *Reassembler) absorb(ctx context.Context, res FetchResult) error {
	if res.Failed() {
		r.failed++
		metrics.ObservePage(res.URL, FailureLabel(res.Err))
		r.logger.Warn("Fetch failed, sequence slot kept empty",
			zap.Uint64("seq", res.Seq),
			zap.String("url", res.URL),
			zap.String("reason", FailureLabel(res.Err)),
			zap.Error(res.Err),
		)
		return nil
	}

	r.fetched++
	metrics.ObservePage(res.URL, FailureLabel(nil))
	if len(res.Content) == 0 {
		return nil
	}

	if r.unit.WouldOverflow(int64(len(res.Content))) {
		if err := r.rotate(ctx); err != nil {
			return err
		}
	}
	r.unit.Append(res.Content)
	metrics.ObserveContentBytes(string(res.Kind), len(res.Content))
	return nil
}

// rotate finalizes the current unit, writes it as the next part, and starts
// a fresh unit.
func (r *Reassembler) rotate(ctx context.Context) error {
	data, err := r.unit.Finalize()
	if err != nil {
		return fmt.Errorf("finalize part %d: %w", r.part, err)
	}
	name := fmt.Sprintf("%s_part%d%s", r.baseName, r.part, r.unit.Ext())
	uri, err := r.writer.WritePart(ctx, name, data)
	if err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	r.logger.Info("Part written",
		zap.String("part", name),
		zap.String("uri", uri),
		zap.Int("bytes", len(data)),
	)
	metrics.ObservePart(r.unit.Ext())
	r.part++
	r.written++
	r.unit.Reset()
	return nil
}

// Flush writes any still-open output unit. It is called once the frontier is
// exhausted and every issued work item has been submitted and absorbed.
func (r *Reassembler) Flush(ctx context.Context) error {
	if len(r.pending) != 0 {
		r.logger.Warn("Flushing with unabsorbed results", zap.Int("pending", len(r.pending)))
	}
	if r.unit.Empty() {
		return nil
	}
	return r.rotate(ctx)
}

// PartsWritten returns the number of parts flushed so far.
func (r *Reassembler) PartsWritten() int { return r.written }

// Fetched returns the number of successfully absorbed URLs.
func (r *Reassembler) Fetched() int { return r.fetched }

// Failed returns the number of failure results absorbed.
func (r *Reassembler) Failed() int { return r.failed }

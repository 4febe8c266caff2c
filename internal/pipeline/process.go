package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"orgtree/internal"
	"orgtree/internal/logging"
	"orgtree/internal/metrics"
)

const StageLoad = "load"

// Store keeps the latest processed document.
type Store interface {
	ReplaceSnapshot(doc internal.Document, traceID string) error
}

// DumpFetcher retrieves a remote raw dump and its content type.
type DumpFetcher interface {
	FetchDump(ctx context.Context, url string) ([]byte, string, error)
}

type ProcessingService struct {
	store   Store
	fetcher DumpFetcher
	rec     *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewProcessingService wires the batch run. store, fetcher and rec may be nil.
func NewProcessingService(store Store, fetcher DumpFetcher, rec *metrics.Recorder, logger *slog.Logger) *ProcessingService {
	return &ProcessingService{store: store, fetcher: fetcher, rec: rec, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for processedAt.
func (s *ProcessingService) WithClock(now func() time.Time) *ProcessingService {
	s.now = now
	return s
}

type Request struct {
	Input  string
	Type   internal.InputType
	Output string
	XLSX   string
}

type Result struct {
	TraceID  string
	Document internal.Document
	Timings  map[string]time.Duration
}

// Process loads the raw hierarchy, runs the pipeline and writes every
// configured output. Nothing is written when loading fails.
func (s *ProcessingService) Process(ctx context.Context, req Request) (Result, error) {
	res := Result{TraceID: uuid.NewString(), Timings: map[string]time.Duration{}}
	log := s.logger
	if log != nil {
		log = log.With(logging.FieldTraceID, res.TraceID)
	}

	start := time.Now()
	raw, err := LoadRaw(ctx, s.fetcher, req.Input, req.Type)
	if err != nil {
		logging.Error(log, "load raw input failed", err, logging.FieldInput, req.Input)
		return Result{}, err
	}
	s.observe(log, res.Timings)(StageLoad, len(raw), time.Since(start))

	res.Document = run(raw, s.now(), s.observe(log, res.Timings))
	meta := res.Document.Metadata

	if req.Output != "" {
		start = time.Now()
		if err := WriteDocument(res.Document, req.Output); err != nil {
			logging.Error(log, "write document failed", err, logging.FieldOutput, req.Output)
			return Result{}, fmt.Errorf("write document: %w", err)
		}
		res.Timings["write"] = time.Since(start)
	}
	if req.XLSX != "" {
		start = time.Now()
		if err := ExportTeamsToXLSX(res.Document, req.XLSX); err != nil {
			logging.Error(log, "export workbook failed", err, logging.FieldOutput, req.XLSX)
			return Result{}, fmt.Errorf("export workbook: %w", err)
		}
		res.Timings["xlsx"] = time.Since(start)
	}
	if s.store != nil {
		if err := s.store.ReplaceSnapshot(res.Document, res.TraceID); err != nil {
			logging.Error(log, "store snapshot failed", err)
			return Result{}, fmt.Errorf("store snapshot: %w", err)
		}
	}

	s.rec.RecordRun(meta.TotalTeams, meta.TotalMentions, meta.RawDataSize, s.now())
	logging.Info(log, "run complete",
		"teams", meta.TotalTeams,
		"top_level", len(res.Document.TopLevelTeams),
		"mentions", meta.TotalMentions,
		"raw_entries", meta.RawDataSize,
		logging.FieldOutput, req.Output,
	)
	return res, nil
}

func (s *ProcessingService) observe(log *slog.Logger, timings map[string]time.Duration) StageFunc {
	return func(stage string, records int, took time.Duration) {
		timings[stage] = took
		s.rec.RecordStage(stage, records, took)
		logging.Debug(log, "stage done",
			logging.FieldStage, stage,
			logging.FieldCount, records,
			logging.FieldDurationMS, took.Milliseconds(),
		)
	}
}

// Package importer drives one import run: it lists the files of a type in a
// time window and persists them one at a time, oldest first.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/withObsrvr/oracle-persist/internal/checkpoint"
	"github.com/withObsrvr/oracle-persist/internal/filetype"
	"github.com/withObsrvr/oracle-persist/internal/logging"
	"github.com/withObsrvr/oracle-persist/internal/metrics"
	"github.com/withObsrvr/oracle-persist/internal/retry"
	"github.com/withObsrvr/oracle-persist/internal/source"
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/tables"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

// Version information (set via ldflags)
var (
	Version = "v0.1.0"
	GitSHA  = "unknown"
)

// Config selects what one run imports.
type Config struct {
	FileType  string
	After     time.Time // inclusive, zero is open
	Before    time.Time // exclusive, zero is open
	MaxParams int       // 0 uses the dialect limit
	Retry     retry.Config

	// Checkpoint, when set, moves After past the last file a previous run
	// imported and is updated after every file.
	Checkpoint checkpoint.Manager
}

// Importer imports oracle files into a store.
type Importer struct {
	cfg     Config
	handler filetype.Handler
	src     source.Source
	store   storage.Store
	metrics *metrics.Metrics
	log     *slog.Logger

	provisioned bool
}

// New returns an importer for cfg.FileType. m may be nil.
func New(cfg Config, src source.Source, store storage.Store, m *metrics.Metrics) (*Importer, error) {
	h, err := filetype.Lookup(cfg.FileType)
	if err != nil {
		return nil, err
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	return &Importer{
		cfg:     cfg,
		handler: h,
		src:     src,
		store:   store,
		metrics: m,
		log:     logging.Component("importer"),
	}, nil
}

// FileResult is the outcome of one imported file.
type FileResult struct {
	File     source.FileInfo
	Records  int
	Dropped  int
	Rows     storage.Results
	Duration time.Duration
}

// Summary totals a run. Rows includes tables committed by a file that later
// failed.
type Summary struct {
	Files    []FileResult
	Records  int
	Dropped  int
	Rows     storage.Results
	Duration time.Duration
}

func (s *Summary) add(r FileResult) {
	s.Files = append(s.Files, r)
	s.Records += r.Records
	s.Dropped += r.Dropped
}

// Run provisions the tables, then imports every file in the window. It stops
// at the first file that fails; files before it stay committed. A later Run
// on the same Importer starts after the last imported file and does not
// provision again.
func (im *Importer) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{Rows: storage.Results{}}

	correlationID := logging.CorrelationID(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
		ctx = logging.WithCorrelationID(ctx, correlationID)
	}
	log := im.log.With("correlation_id", correlationID, "file_type", im.handler.Name)

	if !im.provisioned {
		if err := tables.NewProvisioner(im.store, im.handler.Tables...).EnsureTablesExist(ctx); err != nil {
			return summary, err
		}
		im.provisioned = true
	}

	if err := im.resume(ctx, log); err != nil {
		return summary, err
	}

	files, err := im.src.List(ctx, im.handler.Name, im.cfg.After, im.cfg.Before)
	if err != nil {
		im.metrics.IncSourceErrors(im.handler.Name)
		return summary, fmt.Errorf("list %s files: %w", im.handler.Name, err)
	}

	log.Info("starting import",
		"files", len(files),
		"after", formatBound(im.cfg.After),
		"before", formatBound(im.cfg.Before),
		"version", Version,
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := im.importWithRetry(ctx, correlationID, file)
		summary.Rows.Merge(res.Rows)
		if err != nil {
			im.metrics.IncFilesProcessed(im.handler.Name, "failed")
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("import %s: %w", file.Key, err)
		}
		summary.add(res)
		im.metrics.IncFilesProcessed(im.handler.Name, "ok")
		im.metrics.SetLastFileTimestamp(im.handler.Name, float64(file.Timestamp.Unix()))
		im.advance(ctx, log, correlationID, file)
	}

	summary.Duration = time.Since(start)
	log.Info("import complete",
		"files", len(summary.Files),
		"records", summary.Records,
		"dropped", summary.Dropped,
		"duration", summary.Duration.String(),
	)
	return summary, nil
}

func (im *Importer) importWithRetry(ctx context.Context, correlationID string, file source.FileInfo) (FileResult, error) {
	log := logging.FileLogger(correlationID, im.handler.Name, file.Key)
	result := FileResult{File: file, Rows: storage.Results{}}

	attempt := 0
	err := retry.WithBackoff(ctx, im.cfg.Retry, log, "import file", func() error {
		attempt++
		if attempt > 1 {
			im.metrics.IncRetryAttempts("import_file")
		}
		res, err := im.importFile(ctx, log, file)
		result.Rows.Merge(res.Rows)
		if err != nil {
			if !retryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		result.Records, result.Dropped, result.Duration = res.Records, res.Dropped, res.Duration
		return nil
	})
	return result, err
}

// resume moves the lower bound past the checkpointed file.
func (im *Importer) resume(ctx context.Context, log *slog.Logger) error {
	if im.cfg.Checkpoint == nil {
		return nil
	}
	cp, err := im.cfg.Checkpoint.Load(ctx, im.handler.Name)
	if errors.Is(err, checkpoint.ErrNoCheckpoint) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if after := cp.ResumeAfter(); after.After(im.cfg.After) {
		log.Info("resuming from checkpoint", "last_file", cp.LastFileKey, "after", formatBound(after))
		im.cfg.After = after
	}
	return nil
}

// advance records file as imported, so the next Run starts after it.
func (im *Importer) advance(ctx context.Context, log *slog.Logger, correlationID string, file source.FileInfo) {
	im.cfg.After = file.Timestamp.Add(time.Millisecond)
	if im.cfg.Checkpoint == nil {
		return
	}
	err := im.cfg.Checkpoint.Save(ctx, &checkpoint.Checkpoint{
		FileType:      im.handler.Name,
		LastFileKey:   file.Key,
		LastFileTime:  file.Timestamp,
		CorrelationID: correlationID,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		log.Warn("failed to save checkpoint", "file_key", file.Key, "error", err)
	}
}

// importFile decodes file completely, then persists it.
func (im *Importer) importFile(ctx context.Context, log *slog.Logger, file source.FileInfo) (FileResult, error) {
	start := time.Now()
	res := FileResult{File: file}

	frames, err := im.src.Open(ctx, file)
	if err != nil {
		im.metrics.IncSourceErrors(im.handler.Name)
		return res, err
	}
	batch, err := im.handler.Decode(frames, log)
	frames.Close()
	if err != nil {
		return res, fmt.Errorf("decode: %w", err)
	}

	res.Records, res.Dropped = batch.Records(), batch.Dropped()
	for kind, n := range batch.Counts() {
		im.metrics.AddRecordsRouted(im.handler.Name, kind.String(), n)
	}
	im.metrics.AddRecordsDropped(im.handler.Name, res.Dropped)
	if res.Dropped > 0 {
		log.Warn("dropped records without a reward variant", "dropped", res.Dropped)
	}

	rows, err := batch.Persist(ctx, im.store, im.cfg.MaxParams)
	res.Rows = rows
	for table, r := range rows {
		im.metrics.ObserveTableWrite(table, r.Rows, r.Statements)
	}
	if err != nil {
		im.metrics.IncStorageErrors(im.store.Dialect().Name)
		return res, fmt.Errorf("persist: %w", err)
	}

	res.Duration = time.Since(start)
	im.metrics.ObserveFileDuration(im.handler.Name, res.Duration.Seconds())
	log.Info("file imported",
		"records", res.Records,
		"dropped", res.Dropped,
		"tables", len(rows),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// retryable reports whether another attempt at the same file could succeed.
func retryable(err error) bool {
	var de *wire.DecodeError
	var ke *storage.KeyAssociationError
	switch {
	case errors.As(err, &de), errors.As(err, &ke):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format(time.RFC3339)
}

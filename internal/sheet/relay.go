package sheet

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/sheetrelay/internal/config"
	"github.com/JonMunkholm/sheetrelay/internal/logging"
	"github.com/google/uuid"
)

// Observer receives one call per load. metrics.Metrics implements it.
type Observer interface {
	ObserveFetch(outcome string, elapsed time.Duration, bytes, rows int)
}

// Relay loads the configured sheet on demand. It keeps no state between
// loads: every call fetches and parses anew.
type Relay struct {
	fetcher   *Fetcher
	sourceURL string
	host      string // logged in place of the URL, which embeds a document key
	observer  Observer
	logger    *slog.Logger
}

// NewRelay creates a Relay for the configured source. An unset source is
// allowed; every Load then reports KindConfigMissing. observer may be nil.
func NewRelay(fetcher *Fetcher, src config.SheetConfig, observer Observer, logger *slog.Logger) *Relay {
	return &Relay{
		fetcher:   fetcher,
		sourceURL: src.SourceURL(),
		host:      src.Host(),
		observer:  observer,
		logger:    logger,
	}
}

// Load fetches and parses the sheet. All failures are logged here with full
// context; the returned Result carries only what the caller needs to respond.
func (r *Relay) Load(ctx context.Context) Result {
	logger := logging.FromContext(ctx, r.logger)
	start := time.Now()

	if r.sourceURL == "" {
		res := Classify(ErrSourceMissing)
		logger.Error("SHEET_CSV_URL is not set")
		r.observe(res, start, 0)
		return res
	}

	logger = logger.With("fetch_id", uuid.NewString(), "host", r.host)
	logger.Info("fetching csv")

	body, err := r.fetcher.Fetch(ctx, r.sourceURL)
	if err != nil {
		res := Classify(err)
		r.logFailure(logger, res, start)
		r.observe(res, start, len(body))
		return res
	}

	table, err := Parse(bytes.NewReader(body))
	if err != nil {
		res := Classify(err)
		r.logFailure(logger, res, start)
		r.observe(res, start, len(body))
		return res
	}

	res := Success(table)
	logger.Info("parsed csv",
		"rows", len(table.Records),
		"columns", len(table.Columns),
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	r.observe(res, start, len(body))
	return res
}

func (r *Relay) logFailure(logger *slog.Logger, res Result, start time.Time) {
	attrs := []any{
		"outcome", res.Kind.String(),
		"error", res.Err,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if res.Kind == KindUpstreamStatus {
		attrs = append(attrs, "status", res.Status)
	}
	logger.Error("csv load failed", attrs...)
}

func (r *Relay) observe(res Result, start time.Time, size int) {
	if r.observer == nil {
		return
	}
	rows := 0
	if res.Table != nil {
		rows = len(res.Table.Records)
	}
	r.observer.ObserveFetch(res.Kind.String(), time.Since(start), size, rows)
}

// Package catalog composes query building, fetching, decoding, and
// post-filtering into the two catalog operations used by forecasting code.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/quake-catalog-service/internal/adapter/fdsn"
	"github.com/couchcryptid/quake-catalog-service/internal/domain"
	"github.com/couchcryptid/quake-catalog-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrInvalidArgument marks caller mistakes. Network and document failures
// never surface as errors; they degrade to an empty Result.
var ErrInvalidArgument = errors.New("invalid argument")

// Fetcher retrieves a raw catalog document. The caller closes the body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Decoder turns a catalog document into records in document order.
type Decoder interface {
	Decode(r io.Reader) ([]domain.EventRecord, domain.DecodeStats, error)
}

// Result is the outcome of one accessor call. Failure is set when the fetch
// or the document failed; Records is then empty.
type Result struct {
	Records []domain.EventRecord
	Stats   domain.DecodeStats
	Failure error
}

const (
	opEvent  = "event"
	opWindow = "window"

	outcomeSuccess       = "success"
	outcomeEmpty         = "empty"
	outcomeFetchError    = "fetch_error"
	outcomeDocumentError = "document_error"
)

// Accessor fetches earthquake catalogs from one FDSN endpoint. It holds no
// per-call state and is safe for concurrent use.
type Accessor struct {
	baseURL string
	fetcher Fetcher
	decoder Decoder
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Accessor for baseURL.
func New(baseURL string, f Fetcher, d Decoder, logger *slog.Logger, metrics *observability.Metrics) *Accessor {
	return &Accessor{
		baseURL: baseURL,
		fetcher: f,
		decoder: d,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
}

// FetchEvent returns the first record the service reports for id, or false
// when nothing usable came back for any reason.
func (a *Accessor) FetchEvent(ctx context.Context, id string) (domain.EventRecord, bool) {
	res := a.LookupEvent(ctx, id)
	if len(res.Records) == 0 {
		return domain.EventRecord{}, false
	}
	return res.Records[0], true
}

// LookupEvent is FetchEvent with the full Result, for callers that need to
// tell a missing event from a failed request.
func (a *Accessor) LookupEvent(ctx context.Context, id string) Result {
	q, err := fdsn.EventQuery(a.baseURL, id)
	if err != nil {
		a.logger.Warn("invalid event lookup", "event_id", id, "error", err)
		return Result{Records: []domain.EventRecord{}, Failure: fmt.Errorf("%w: %w", ErrInvalidArgument, err)}
	}

	res := a.run(ctx, opEvent, q)
	a.metrics.RecordsReturned.Observe(float64(len(res.Records)))
	return res
}

// FetchWindow returns the events within w and region relative to ref, with
// ref itself removed and the rest ordered by origin time. The error is
// non-nil only for invalid arguments.
func (a *Accessor) FetchWindow(ctx context.Context, ref domain.EventRecord, w domain.Window, region domain.Region) (Result, error) {
	if ref.ID == "" || ref.OriginTime.IsZero() {
		return Result{}, fmt.Errorf("%w: reference event must have an id and origin time", ErrInvalidArgument)
	}
	if err := w.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	start, end := w.TimeBounds(ref.OriginTime)
	q, err := fdsn.WindowQuery(a.baseURL, start, end, w.MinDepthKm, w.MaxDepthKm, region)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	res := a.run(ctx, opWindow, q)
	res.Records = domain.ExcludeAndSort(res.Records, ref.ID)
	a.metrics.RecordsReturned.Observe(float64(len(res.Records)))

	a.logger.Info("window fetched",
		"mainshock_id", ref.ID,
		"start", start,
		"end", end,
		"region", region.String(),
		"records", len(res.Records),
		"dropped", res.Stats.DroppedTotal(),
	)
	return res, nil
}

// run performs one fetch and decode pass. The body is closed on every path.
func (a *Accessor) run(ctx context.Context, op, rawURL string) Result {
	logger := a.logger.With("fetch_id", uuid.NewString(), "operation", op)
	start := a.clock.Now()
	defer func() {
		a.metrics.FetchDuration.WithLabelValues(op).Observe(a.clock.Since(start).Seconds())
	}()

	logger.Debug("fetching catalog", "url", rawURL)
	body, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		logger.Warn("catalog fetch failed, returning empty result", "error", err)
		a.metrics.FetchRequests.WithLabelValues(op, outcomeFetchError).Inc()
		return Result{Records: []domain.EventRecord{}, Failure: err}
	}
	defer body.Close()

	records, stats, err := a.decoder.Decode(body)
	a.observeStats(stats)
	if err != nil {
		logger.Warn("catalog document unreadable, returning empty result", "error", err)
		a.metrics.FetchRequests.WithLabelValues(op, outcomeDocumentError).Inc()
		return Result{Records: []domain.EventRecord{}, Stats: stats, Failure: err}
	}

	if stats.DroppedTotal() > 0 {
		logger.Warn("events dropped during decode",
			"attempted", stats.Attempted,
			"dropped", stats.DroppedTotal(),
		)
	}

	outcome := outcomeSuccess
	if len(records) == 0 {
		outcome = outcomeEmpty
	}
	a.metrics.FetchRequests.WithLabelValues(op, outcome).Inc()

	return Result{Records: records, Stats: stats}
}

func (a *Accessor) observeStats(stats domain.DecodeStats) {
	a.metrics.EventsDecoded.Add(float64(stats.Decoded))
	for reason, n := range stats.Dropped {
		a.metrics.EventsDropped.WithLabelValues(string(reason)).Add(float64(n))
	}
}

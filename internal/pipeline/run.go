package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/seojoon/ipofeed/internal/brokermeta"
	"github.com/seojoon/ipofeed/internal/calendar"
	"github.com/seojoon/ipofeed/internal/charsetx"
	"github.com/seojoon/ipofeed/internal/feed"
	"github.com/seojoon/ipofeed/internal/observability"
	"github.com/seojoon/ipofeed/internal/registry"
)

// PageSource supplies raw month pages. The direct HTTP client and the
// rendered-browser fetcher both satisfy it; the pipeline never knows which
// strategy is active.
type PageSource interface {
	MonthHTML(ctx context.Context, year int, month time.Month) ([]byte, string, error)
}

// MonthStat is the per-month diagnostic surfaced after a run. A month with
// zero events and no error is valid but suspicious.
type MonthStat struct {
	Year    int
	Month   time.Month
	Charset string
	Events  int
	Err     error
}

// Runner owns one pipeline run. The accumulated events, the classifier cache
// and the diagnostics all live and die with it; nothing persists across runs.
type Runner struct {
	Source      PageSource
	SourceLabel string
	Resolver    *charsetx.Resolver
	Classifier  *Classifier
	Listed      registry.NameSet
	Meta        brokermeta.Map
	Mode        Mode
	Delay       time.Duration
	Logger      *slog.Logger
}

// Result is the assembled feed plus per-month diagnostics.
type Result struct {
	Feed   *feed.Feed
	Months []MonthStat
}

// Run executes the full pipeline over every month touching [start, end].
// Per-month fetch failures are absorbed into diagnostics; the only errors
// returned are context cancellation.
func (r *Runner) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := r.Resolver
	if resolver == nil {
		resolver = charsetx.NewResolver(calendar.CountMarkers)
	}

	var (
		events []calendar.RawEvent
		months []MonthStat
	)
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for cur := first; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		if len(months) > 0 && r.Delay > 0 {
			if err := sleepWithContext(ctx, r.Delay); err != nil {
				return nil, err
			}
		}
		stat := r.scrapeMonth(ctx, resolver, logger, cur, &events)
		months = append(months, stat)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	// Guard against garbage day parses outside the fetched span.
	spanEnd := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	inSpan := events[:0]
	for _, ev := range events {
		if ev.Date.Before(first) || ev.Date.After(spanEnd) {
			continue
		}
		inSpan = append(inSpan, ev)
	}

	records := Merge(inSpan)
	observability.AddRecordsMerged(len(records))

	records, excludedListed := ExcludeListed(records, r.Listed)

	// Window-filter before classifying so filings are only fetched for
	// records that can actually appear in the feed. Dropping from the
	// finalized slice preserves its ordering.
	final := Finalize(records, start, end)

	items := make([]feed.Item, 0, len(final))
	excludedNonIPO := 0
	for _, rec := range final {
		rec.OfferType = OfferUnknown
		if r.Classifier != nil {
			rec.OfferType = r.Classifier.Classify(ctx, rec.RcpNo)
		}
		if !r.Mode.keeps(rec.OfferType) {
			excludedNonIPO++
			continue
		}
		meta := r.Meta.Get(rec.Company)
		items = append(items, feed.Item{
			CorpName:    rec.Company,
			MarketShort: rec.Market,
			Market:      rec.MarketName,
			SbdStart:    rec.Start.Format(feed.DateLayout),
			SbdEnd:      rec.End.Format(feed.DateLayout),
			RcpNo:       rec.RcpNo,
			OfferType:   string(rec.OfferType),
			Brokers:     meta.Brokers,
			EqualMin:    meta.EqualMin,
			Note:        meta.Note,
		})
	}

	f := &feed.Feed{
		OK:     true,
		Source: r.SourceLabel,
		Range: feed.Range{
			Start: start.Format(feed.DateLayout),
			End:   end.Format(feed.DateLayout),
		},
		LastUpdatedKST: time.Now().In(feed.KST).Format(feed.DateLayout),
		Count:          len(items),
		ExcludedListed: excludedListed,
		ExcludedNonIPO: excludedNonIPO,
		Items:          items,
	}
	return &Result{Feed: f, Months: months}, nil
}

func (r *Runner) scrapeMonth(ctx context.Context, resolver *charsetx.Resolver, logger *slog.Logger, cur time.Time, events *[]calendar.RawEvent) MonthStat {
	stat := MonthStat{Year: cur.Year(), Month: cur.Month()}

	body, contentType, err := r.Source.MonthHTML(ctx, cur.Year(), cur.Month())
	if err != nil {
		stat.Err = err
		observability.IncError(observability.ClassifyFetchError(err), "calendar")
		logger.Warn("month fetch failed", "year", stat.Year, "month", int(stat.Month), "error", err)
		return stat
	}
	observability.IncMonthFetched()

	decoded := resolver.Resolve(body, contentType)
	stat.Charset = decoded.Charset
	observability.IncCharsetDecision(decoded.Charset)

	monthEvents := calendar.Extract(cur.Year(), cur.Month(), decoded.Text)
	stat.Events = len(monthEvents)
	observability.AddEventsExtracted(len(monthEvents))
	if len(monthEvents) == 0 {
		observability.IncMonthEmpty()
		logger.Warn("no events extracted",
			"year", stat.Year, "month", int(stat.Month),
			"charset", decoded.Charset, "scores", decoded.Scores)
	} else {
		logger.Info("month extracted",
			"year", stat.Year, "month", int(stat.Month),
			"charset", decoded.Charset, "events", len(monthEvents))
	}
	*events = append(*events, monthEvents...)
	return stat
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

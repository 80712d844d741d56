package pipeline

import (
	"github.com/seojoon/ipofeed/internal/calendar"
	"github.com/seojoon/ipofeed/internal/textutil"
)

// Merge folds raw sightings into one record per company. The key is the
// normalized name only: a company is assumed to appear under a single market
// across a run. Duplicate or conflicting sightings resolve to the earliest
// start and the latest end, and a record that only ever saw one boundary gets
// the other imputed equal to it.
func Merge(events []calendar.RawEvent) []OfferingRecord {
	byName := make(map[string]*OfferingRecord)
	var order []string

	for _, ev := range events {
		key := textutil.Normalize(ev.Company)
		if key == "" {
			continue
		}
		rec, ok := byName[key]
		if !ok {
			rec = &OfferingRecord{
				Company:    key,
				Market:     ev.Market,
				MarketName: calendar.MarketName(ev.Market),
			}
			byName[key] = rec
			order = append(order, key)
		}
		switch ev.Boundary {
		case calendar.BoundaryStart:
			if rec.Start.IsZero() || ev.Date.Before(rec.Start) {
				rec.Start = ev.Date
			}
		case calendar.BoundaryEnd:
			if rec.End.IsZero() || ev.Date.After(rec.End) {
				rec.End = ev.Date
			}
		}
		if rec.RcpNo == "" {
			rec.RcpNo = ev.RcpNo
		}
	}

	out := make([]OfferingRecord, 0, len(order))
	for _, key := range order {
		rec := byName[key]
		// Extraction never emits a boundary-less event, but defend anyway.
		if rec.Start.IsZero() && rec.End.IsZero() {
			continue
		}
		if rec.Start.IsZero() {
			rec.Start = rec.End
		}
		if rec.End.IsZero() {
			rec.End = rec.Start
		}
		out = append(out, *rec)
	}
	return out
}

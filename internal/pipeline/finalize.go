package pipeline

import (
	"sort"
	"time"

	"github.com/seojoon/ipofeed/internal/registry"
)

// ExcludeListed drops records whose company already appears in the listed
// registry; only not-yet-listed companies are IPO candidates. Returns the
// survivors and the exclusion count.
func ExcludeListed(records []OfferingRecord, listed registry.NameSet) ([]OfferingRecord, int) {
	if len(listed) == 0 {
		return records, 0
	}
	kept := make([]OfferingRecord, 0, len(records))
	excluded := 0
	for _, rec := range records {
		if listed.Contains(rec.Company) {
			excluded++
			continue
		}
		kept = append(kept, rec)
	}
	return kept, excluded
}

// Overlaps reports whether the record's subscription interval intersects the
// inclusive [start, end] window.
func Overlaps(rec OfferingRecord, start, end time.Time) bool {
	return !rec.End.Before(start) && !rec.Start.After(end)
}

// Finalize window-filters, dedups by company keeping the earliest start, and
// orders by (start, company). Records with no start sort last; after merge
// that cannot happen, but the ordering is defined anyway.
func Finalize(records []OfferingRecord, start, end time.Time) []OfferingRecord {
	index := make(map[string]int)
	out := make([]OfferingRecord, 0, len(records))
	for _, rec := range records {
		if !Overlaps(rec, start, end) {
			continue
		}
		if i, ok := index[rec.Company]; ok {
			cur := out[i]
			if !rec.Start.IsZero() && (cur.Start.IsZero() || rec.Start.Before(cur.Start)) {
				out[i] = rec
			}
			continue
		}
		index[rec.Company] = len(out)
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Start.IsZero() && b.Start.IsZero():
			return a.Company < b.Company
		case a.Start.IsZero():
			return false
		case b.Start.IsZero():
			return true
		case !a.Start.Equal(b.Start):
			return a.Start.Before(b.Start)
		}
		return a.Company < b.Company
	})
	return out
}

// Package observability tracks run diagnostics. Per-unit failures are
// absorbed by the pipeline, so these counters are the only place an operator
// can see a degraded-but-"successful" run.
package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	MonthsFetched     uint64            `json:"months_fetched"`
	MonthsEmpty       uint64            `json:"months_empty"`
	EventsExtracted   uint64            `json:"events_extracted"`
	RecordsMerged     uint64            `json:"records_merged"`
	FilingLookups     uint64            `json:"filing_lookups"`
	FilingCacheHits   uint64            `json:"filing_cache_hits"`
	ErrorsTotal       uint64            `json:"errors_total"`
	CharsetDecisions  map[string]uint64 `json:"charset_decisions,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	monthsFetched   uint64
	monthsEmpty     uint64
	eventsExtracted uint64
	recordsMerged   uint64
	filingLookups   uint64
	filingCacheHits uint64
	errorsTotal     uint64

	statsMu           sync.Mutex
	charsetDecisions  = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncMonthFetched() {
	atomic.AddUint64(&monthsFetched, 1)
}

func IncMonthEmpty() {
	atomic.AddUint64(&monthsEmpty, 1)
}

func AddEventsExtracted(n int) {
	if n > 0 {
		atomic.AddUint64(&eventsExtracted, uint64(n))
	}
}

func AddRecordsMerged(n int) {
	if n > 0 {
		atomic.AddUint64(&recordsMerged, uint64(n))
	}
}

func IncFilingLookup() {
	atomic.AddUint64(&filingLookups, 1)
}

func IncFilingCacheHit() {
	atomic.AddUint64(&filingCacheHits, 1)
}

func IncCharsetDecision(charset string) {
	if charset == "" {
		charset = "unknown"
	}
	statsMu.Lock()
	charsetDecisions[charset]++
	statsMu.Unlock()
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	charsetCopy := copyMap(charsetDecisions)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	return StatsSnapshot{
		MonthsFetched:     atomic.LoadUint64(&monthsFetched),
		MonthsEmpty:       atomic.LoadUint64(&monthsEmpty),
		EventsExtracted:   atomic.LoadUint64(&eventsExtracted),
		RecordsMerged:     atomic.LoadUint64(&recordsMerged),
		FilingLookups:     atomic.LoadUint64(&filingLookups),
		FilingCacheHits:   atomic.LoadUint64(&filingCacheHits),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		CharsetDecisions:  charsetCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

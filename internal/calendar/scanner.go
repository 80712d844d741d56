package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/seojoon/ipofeed/internal/textutil"
)

// ScanTokens recovers events from whitespace-delimited calendar text. The
// widget renders each day cell as a bare day number followed by zero or more
// "<market> <company>[시작|마감]" runs, so the scan keeps a day cursor,
// switches into name accumulation when a market tag appears, and emits an
// event when it reaches a boundary marker. A market tag with no boundary
// before the next day number is an incomplete event and is dropped.
func ScanTokens(year int, month time.Month, text string) []RawEvent {
	var (
		events []RawEvent
		day    int
		market string
		name   []string
		inName bool
	)
	reset := func() {
		market = ""
		name = name[:0]
		inName = false
	}

	for _, tok := range strings.Fields(textutil.Normalize(text)) {
		if d, ok := dayToken(tok); ok {
			reset()
			day = d
			continue
		}
		if !inName {
			if day > 0 && IsMarketCode(tok) {
				market = tok
				inName = true
			}
			continue
		}
		body, boundary, ok := splitBoundary(tok)
		if !ok {
			name = append(name, tok)
			continue
		}
		if body != "" {
			name = append(name, body)
		}
		if company := textutil.Normalize(strings.Join(name, " ")); company != "" {
			events = append(events, RawEvent{
				Date:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
				Market:   market,
				Company:  company,
				Boundary: boundary,
			})
		}
		reset()
	}
	return events
}

// dayToken recognizes a bare 1-2 digit day-of-month marker. Four-digit years
// and anything outside 1..31 are rejected.
func dayToken(tok string) (int, bool) {
	if len(tok) == 0 || len(tok) > 2 {
		return 0, false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	d, err := strconv.Atoi(tok)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

func splitBoundary(tok string) (string, Boundary, bool) {
	switch {
	case strings.HasSuffix(tok, "[시작]"):
		return strings.TrimSuffix(tok, "[시작]"), BoundaryStart, true
	case strings.HasSuffix(tok, "[마감]"):
		return strings.TrimSuffix(tok, "[마감]"), BoundaryEnd, true
	}
	return "", BoundaryStart, false
}

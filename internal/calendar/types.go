// Package calendar extracts subscription-window events from the portal's
// monthly calendar widget. The widget is not machine-friendly: events span
// multiple text tokens with no reliable anchor, and the same logical window
// shows up as separate start/end fragments.
package calendar

import (
	"regexp"
	"time"
)

// Boundary marks which end of a subscription window a sighting refers to.
type Boundary int

const (
	BoundaryStart Boundary = iota
	BoundaryEnd
)

func (b Boundary) String() string {
	if b == BoundaryEnd {
		return "end"
	}
	return "start"
}

// RawEvent is one (day, market, company, boundary) sighting taken directly
// from page text. Events are transient: the merger consumes them immediately.
type RawEvent struct {
	Date     time.Time
	Market   string
	Company  string
	Boundary Boundary
	RcpNo    string
}

var marketNames = map[string]string{
	"유": "유가증권",
	"코": "코스닥",
	"넥": "코넥스",
	"기": "기타",
}

// MarketName maps a calendar market tag to its board name. Unknown tags fall
// back to 기타.
func MarketName(code string) string {
	if name, ok := marketNames[code]; ok {
		return name
	}
	return "기타"
}

// IsMarketCode reports whether a token is one of the widget's market tags.
func IsMarketCode(tok string) bool {
	_, ok := marketNames[tok]
	return ok
}

var markerRe = regexp.MustCompile(`\[(시작|마감)\]`)

// CountMarkers reports how many boundary markers appear in text. The charset
// resolver uses it as a decode-quality signal: garbled Hangul yields none.
func CountMarkers(text string) int {
	return len(markerRe.FindAllStringIndex(text, -1))
}

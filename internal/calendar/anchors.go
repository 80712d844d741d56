package calendar

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seojoon/ipofeed/internal/textutil"
)

var (
	eventRe = regexp.MustCompile(`^(유|코|넥|기)\s*([^\[\]]+)\[(시작|마감)\]$`)
	rcpNoRe = regexp.MustCompile(`rcpNo=(\d{14})`)
)

// ScanAnchors walks calendar markup and emits an event for every leaf element
// whose visible text is a complete "<market> <company>[boundary]" pattern.
// The owning day is resolved by walking ancestors outward until one carries a
// bare day number that is not a year or month label.
func ScanAnchors(year int, month time.Month, doc *goquery.Document) []RawEvent {
	var events []RawEvent
	doc.Find("a, span, td, div").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		m := eventRe.FindStringSubmatch(textutil.Normalize(sel.Text()))
		if m == nil {
			return
		}
		day := resolveDay(sel)
		if day == 0 {
			return
		}
		ev := RawEvent{
			Date:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			Market:   m[1],
			Company:  textutil.Normalize(m[2]),
			Boundary: boundaryFromWord(m[3]),
		}
		if href, ok := sel.Closest("a").Attr("href"); ok {
			if rm := rcpNoRe.FindStringSubmatch(href); rm != nil {
				ev.RcpNo = rm[1]
			}
		}
		events = append(events, ev)
	})
	return events
}

// resolveDay finds the day cell owning an event element. Ancestor text
// includes the event's own tokens, but day numbers inside company names are
// rare enough that the first bare 1-31 token wins.
func resolveDay(sel *goquery.Selection) int {
	depth := 0
	for p := sel.Parent(); p.Length() > 0 && depth < 6; p = p.Parent() {
		toks := strings.Fields(textutil.Normalize(p.Text()))
		for i, tok := range toks {
			d, ok := dayToken(tok)
			if !ok {
				continue
			}
			if i+1 < len(toks) && (toks[i+1] == "월" || toks[i+1] == "년" || toks[i+1] == "일") {
				continue
			}
			return d
		}
		depth++
	}
	return 0
}

func boundaryFromWord(word string) Boundary {
	if word == "마감" {
		return BoundaryEnd
	}
	return BoundaryStart
}

// Extract pulls all events for one (year, month) page render. The anchor scan
// runs first; when the markup yields nothing (some renders inline the
// calendar as loose text) the token scan runs over the stripped page text.
// Zero events is valid output, reported upstream as a per-month diagnostic.
func Extract(year int, month time.Month, page string) []RawEvent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ScanTokens(year, month, page)
	}
	if events := ScanAnchors(year, month, doc); len(events) > 0 {
		return events
	}
	return ScanTokens(year, month, doc.Text())
}

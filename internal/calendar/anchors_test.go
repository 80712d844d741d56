package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarHTML = `<html><body>
<table class="calendar">
<tr><td>일</td><td>월</td><td>화</td></tr>
<tr>
  <td><span>1</span></td>
  <td><span>2</span>
    <a href="https://dart.fss.or.kr/dsaf001/main.do?rcpNo=20260220000123">기 케이뱅크[시작]</a>
  </td>
  <td><span>3</span>
    <a href="#">기 케이뱅크[마감]</a>
    <a href="#">코 넥스트칩[시작]</a>
  </td>
</tr>
</table>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestScanAnchors(t *testing.T) {
	events := ScanAnchors(2026, time.March, parseDoc(t, calendarHTML))

	require.Len(t, events, 3)

	assert.Equal(t, "케이뱅크", events[0].Company)
	assert.Equal(t, "기", events[0].Market)
	assert.Equal(t, BoundaryStart, events[0].Boundary)
	assert.Equal(t, day(2), events[0].Date)
	assert.Equal(t, "20260220000123", events[0].RcpNo)

	assert.Equal(t, BoundaryEnd, events[1].Boundary)
	assert.Equal(t, day(3), events[1].Date)
	assert.Empty(t, events[1].RcpNo)

	assert.Equal(t, "넥스트칩", events[2].Company)
	assert.Equal(t, "코", events[2].Market)
	assert.Equal(t, day(3), events[2].Date)
}

func TestScanAnchorsSkipsDaylessEvents(t *testing.T) {
	html := `<html><body><a href="#">유 공중부양회사[시작]</a></body></html>`

	events := ScanAnchors(2026, time.March, parseDoc(t, html))

	assert.Empty(t, events)
}

func TestScanAnchorsIgnoresYearAndMonthLabels(t *testing.T) {
	html := `<html><body><table>
<tr><td><div>2026 년 3 월</div><span>14</span><a href="#">유 삼월회사[시작]</a></td></tr>
</table></body></html>`

	events := ScanAnchors(2026, time.March, parseDoc(t, html))

	require.Len(t, events, 1)
	assert.Equal(t, day(14), events[0].Date)
}

func TestExtractFallsBackToTokenScan(t *testing.T) {
	// No anchor matches the full pattern, but the flattened text still
	// carries a complete day/market/boundary run.
	html := `<html><body><p>21 기 평문회사 [시작]</p></body></html>`

	events := Extract(2026, time.March, html)

	require.Len(t, events, 1)
	assert.Equal(t, "평문회사", events[0].Company)
	assert.Equal(t, day(21), events[0].Date)
}

func TestExtractEmptyPage(t *testing.T) {
	assert.Empty(t, Extract(2026, time.March, "<html><body></body></html>"))
}

func TestMarketName(t *testing.T) {
	assert.Equal(t, "유가증권", MarketName("유"))
	assert.Equal(t, "코스닥", MarketName("코"))
	assert.Equal(t, "코넥스", MarketName("넥"))
	assert.Equal(t, "기타", MarketName("기"))
	assert.Equal(t, "기타", MarketName("??"))
}

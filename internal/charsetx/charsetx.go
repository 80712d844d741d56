// Package charsetx picks between the two charsets the subscription portal
// actually serves. The server's declared charset is not trustworthy, but a
// correct Hangul decode produces many more calendar event markers than a
// garbled one, so each candidate decode is scored by marker count and the
// higher score wins.
package charsetx

import (
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8  = "utf-8"
	CharsetEUCKR = "euc-kr"
)

// Result is a chosen decoding plus both candidate scores for diagnostics.
type Result struct {
	Text    string
	Charset string
	Scores  map[string]int
}

// Resolver decodes a raw buffer under both candidate charsets and keeps the
// one whose text scores higher. Ties go to the declared (or detected) charset,
// so a buffer with no markers at all falls back to the declared decode rather
// than failing.
type Resolver struct {
	score func(text string) int
}

// NewResolver builds a resolver around a scoring function, normally the
// calendar package's event-marker counter.
func NewResolver(score func(string) int) *Resolver {
	if score == nil {
		score = func(string) int { return 0 }
	}
	return &Resolver{score: score}
}

// Resolve never fails: worst case both scores are zero and the declared
// decode comes back unchanged, which downstream extraction surfaces as an
// empty month.
func (r *Resolver) Resolve(raw []byte, declaredContentType string) Result {
	declared := charsetFromContentType(declaredContentType)
	if declared == "" {
		declared = detectCharset(raw)
	}
	alternate := CharsetEUCKR
	if declared == CharsetEUCKR {
		alternate = CharsetUTF8
	} else {
		declared = CharsetUTF8
	}

	declaredText := decode(raw, declared)
	alternateText := decode(raw, alternate)
	scores := map[string]int{
		declared:  r.score(declaredText),
		alternate: r.score(alternateText),
	}

	if scores[alternate] > scores[declared] {
		return Result{Text: alternateText, Charset: alternate, Scores: scores}
	}
	return Result{Text: declaredText, Charset: declared, Scores: scores}
}

func decode(raw []byte, charset string) string {
	if charset == CharsetEUCKR {
		decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
		if err != nil {
			return string(raw)
		}
		return string(decoded)
	}
	return string(raw)
}

// charsetFromContentType pulls the charset out of a Content-Type header value
// like "text/html; charset=euc-kr". Returns "" when no usable charset is
// present.
func charsetFromContentType(contentType string) string {
	_, after, ok := strings.Cut(strings.ToLower(contentType), "charset=")
	if !ok {
		return ""
	}
	cs := strings.Trim(strings.TrimSpace(after), `"';`)
	if i := strings.IndexByte(cs, ';'); i >= 0 {
		cs = cs[:i]
	}
	switch cs {
	case "utf-8", "utf8":
		return CharsetUTF8
	case "euc-kr", "euckr", "cp949", "x-windows-949", "ks_c_5601-1987":
		return CharsetEUCKR
	}
	return ""
}

func detectCharset(raw []byte) string {
	best, err := chardet.NewHtmlDetector().DetectBest(raw)
	if err == nil && strings.EqualFold(best.Charset, "EUC-KR") {
		return CharsetEUCKR
	}
	return CharsetUTF8
}

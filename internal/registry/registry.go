// Package registry builds the listed-company name set used to screen out
// offerings by companies that are already on a board. Matching is by
// normalized name only; a unique corporate identifier is not available from
// the calendar side, so same-named entities and divergent legal renderings
// are known failure modes.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/seojoon/ipofeed/internal/httpx"
	"github.com/seojoon/ipofeed/internal/textutil"
)

// DefaultMinEntries is the sanity floor: the real exchange lists a couple
// thousand companies, so anything under this means the download or parse
// broke and the exclusion filter cannot be trusted.
const DefaultMinEntries = 500

// ErrTooFewEntries marks a registry fetch that parsed but is implausibly
// small. Callers must treat it as fatal for the run.
var ErrTooFewEntries = errors.New("implausibly few listed companies")

// NameSet holds normalized listed-company names.
type NameSet map[string]struct{}

func (s NameSet) Add(name string) {
	if key := textutil.Normalize(name); key != "" {
		s[key] = struct{}{}
	}
}

func (s NameSet) Contains(name string) bool {
	_, ok := s[textutil.Normalize(name)]
	return ok
}

// Client downloads the exchange's corp-list document, which is served as an
// EUC-KR HTML table behind an .xls filename.
type Client struct {
	http       *httpx.Client
	url        string
	minEntries int
}

func NewClient(client *httpx.Client, url string, minEntries int) *Client {
	if minEntries <= 0 {
		minEntries = DefaultMinEntries
	}
	return &Client{http: client, url: url, minEntries: minEntries}
}

// Fetch downloads and parses the listed-name set. The encoding is fixed by
// the exchange, so no charset scoring is needed here.
func (c *Client) Fetch(ctx context.Context) (NameSet, error) {
	body, _, err := c.http.GetBody(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("registry fetch: %w", err)
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), body)
	if err != nil {
		decoded = body
	}
	set, err := Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("registry parse: %w", err)
	}
	if len(set) < c.minEntries {
		return nil, fmt.Errorf("registry: %w (got %d, want at least %d)", ErrTooFewEntries, len(set), c.minEntries)
	}
	return set, nil
}

// Parse extracts company names from the first cell of every table row,
// skipping the header.
func Parse(r io.Reader) (NameSet, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	set := NameSet{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		name := textutil.Normalize(row.Find("td").First().Text())
		if name == "" || name == "회사명" {
			return
		}
		set.Add(name)
	})
	return set, nil
}

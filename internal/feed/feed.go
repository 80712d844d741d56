// Package feed defines the persisted output envelope consumed by the
// calendar/reminder front end.
package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const DateLayout = "2006-01-02"

// KST is the feed's reference timezone.
var KST = time.FixedZone("KST", 9*60*60)

type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Item is one offering. The front end depends on sbd_start/sbd_end being
// valid ISO dates and corp_name being non-empty.
type Item struct {
	CorpName    string `json:"corp_name"`
	MarketShort string `json:"market_short"`
	Market      string `json:"market"`
	SbdStart    string `json:"sbd_start"`
	SbdEnd      string `json:"sbd_end"`
	RcpNo       string `json:"rcp_no,omitempty"`
	OfferType   string `json:"offer_type,omitempty"`
	Brokers     string `json:"brokers"`
	EqualMin    string `json:"equalMin"`
	Note        string `json:"note"`
}

type Feed struct {
	OK             bool   `json:"ok"`
	Source         string `json:"source"`
	Range          Range  `json:"range"`
	LastUpdatedKST string `json:"last_updated_kst"`
	Count          int    `json:"count"`
	ExcludedListed int    `json:"excluded_listed"`
	ExcludedNonIPO int    `json:"excluded_non_ipo"`
	Items          []Item `json:"items"`
}

// WriteFile persists the feed atomically (temp file + rename) so a serving
// process never reads a half-written feed.
func WriteFile(path string, f *Feed) error {
	out := *f
	if out.Items == nil {
		out.Items = []Item{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}

// ReadFile loads a previously written feed.
func ReadFile(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Feed
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", path, err)
	}
	return &f, nil
}

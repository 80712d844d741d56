// Package pipeline turns raw calendar sightings into the finalized offering
// feed: merge, registry exclusion, offering-type classification, window
// filtering, dedup and ordering.
package pipeline

import (
	"fmt"
	"time"

	"github.com/seojoon/ipofeed/internal/brokermeta"
)

// OfferType tags how an offering was classified from its filing text.
type OfferType string

const (
	OfferIPO     OfferType = "IPO"
	OfferRights  OfferType = "RIGHTS_OR_CAPITAL_INCREASE"
	OfferUnknown OfferType = "UNKNOWN"
)

// OfferingRecord is the merged, company-level view of one subscription
// window. Both dates are always populated once merge completes.
type OfferingRecord struct {
	Company    string
	Market     string
	MarketName string
	Start      time.Time
	End        time.Time
	RcpNo      string
	OfferType  OfferType
	Meta       brokermeta.Entry
}

// Mode selects which offering types survive into the feed.
type Mode string

const (
	// ModeIPOOnly keeps only verified new listings.
	ModeIPOOnly Mode = "ipo"
	// ModeExcludeRights drops verified capital raises but keeps UNKNOWN,
	// preferring false inclusion over false exclusion. This is the default.
	ModeExcludeRights Mode = "exclude-rights"
	// ModeAll keeps everything and only tags.
	ModeAll Mode = "all"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIPOOnly, ModeExcludeRights, ModeAll:
		return Mode(s), nil
	case "":
		return ModeExcludeRights, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) keeps(t OfferType) bool {
	switch m {
	case ModeAll:
		return true
	case ModeIPOOnly:
		return t == OfferIPO
	default:
		return t != OfferRights
	}
}

package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seojoon/ipofeed/internal/observability"
)

// FilingFetcher returns the plain text of a disclosure document by its
// 14-digit reference.
type FilingFetcher interface {
	FilingText(ctx context.Context, rcpNo string) (string, error)
}

// Keywords are the two classifier vocabularies. They are operator-tunable;
// the defaults reflect the filing language actually seen on the portal.
type Keywords struct {
	Rights  []string
	Listing []string
}

func DefaultKeywords() Keywords {
	return Keywords{
		Rights: []string{
			"유상증자", "무상증자", "주주배정", "제3자배정", "제삼자배정", "신주인수권",
		},
		Listing: []string{
			"신규상장", "상장예정", "수요예측", "공모가", "공모희망가", "대표주관회사", "인수회사",
		},
	}
}

// Classifier tags offerings by fetching the linked filing and scanning it for
// rights-issue vs new-listing vocabulary. Results are cached per reference
// for the life of the run, and all lookups share one limiter so the aggregate
// request rate stays capped even if callers ever parallelize.
type Classifier struct {
	fetcher  FilingFetcher
	keywords Keywords
	limiter  *rate.Limiter
	cache    map[string]OfferType
	logger   *slog.Logger
}

func NewClassifier(fetcher FilingFetcher, keywords Keywords, delay time.Duration, logger *slog.Logger) *Classifier {
	if len(keywords.Rights) == 0 && len(keywords.Listing) == 0 {
		keywords = DefaultKeywords()
	}
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Classifier{
		fetcher:  fetcher,
		keywords: keywords,
		limiter:  limiter,
		cache:    map[string]OfferType{},
		logger:   logger,
	}
}

// Classify resolves one filing reference to an offering type. No reference,
// no fetcher, or a failed fetch all mean UNKNOWN: the record stays in the
// feed when it cannot be verified.
func (c *Classifier) Classify(ctx context.Context, rcpNo string) OfferType {
	if rcpNo == "" || c.fetcher == nil {
		return OfferUnknown
	}
	if cached, ok := c.cache[rcpNo]; ok {
		observability.IncFilingCacheHit()
		return cached
	}
	result := c.lookup(ctx, rcpNo)
	c.cache[rcpNo] = result
	return result
}

func (c *Classifier) lookup(ctx context.Context, rcpNo string) OfferType {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return OfferUnknown
		}
	}
	observability.IncFilingLookup()
	text, err := c.fetcher.FilingText(ctx, rcpNo)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "filing")
		c.logger.Warn("filing fetch failed", "rcp_no", rcpNo, "error", err)
		return OfferUnknown
	}
	return ClassifyText(text, c.keywords)
}

// ClassifyText applies the keyword policy to already-fetched filing text.
// Rights evidence wins outright: miscounting a capital raise as an IPO is the
// failure mode this biases against.
func ClassifyText(text string, kw Keywords) OfferType {
	if containsAny(text, kw.Rights) {
		return OfferRights
	}
	if containsAny(text, kw.Listing) {
		return OfferIPO
	}
	return OfferUnknown
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

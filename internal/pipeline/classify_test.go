package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubFetcher struct {
	texts map[string]string
	err   error
	calls int
}

func (s *stubFetcher) FilingText(_ context.Context, rcpNo string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.texts[rcpNo], nil
}

func TestClassifyText(t *testing.T) {
	kw := DefaultKeywords()

	tests := []struct {
		name string
		text string
		want OfferType
	}{
		{"rights keyword", "주주배정 유상증자 결정", OfferRights},
		{"listing keyword", "코스닥시장 신규상장을 위한 수요예측 안내", OfferIPO},
		{"rights wins over listing", "신규상장 관련 제3자배정 유상증자", OfferRights},
		{"no keywords", "분기보고서 제출", OfferUnknown},
		{"empty text", "", OfferUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyText(tt.text, kw))
		})
	}
}

func TestClassifierNoReference(t *testing.T) {
	fetcher := &stubFetcher{}
	c := NewClassifier(fetcher, DefaultKeywords(), 0, nil)

	assert.Equal(t, OfferUnknown, c.Classify(context.Background(), ""))
	assert.Zero(t, fetcher.calls)
}

func TestClassifierFetchFailureIsUnknown(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	c := NewClassifier(fetcher, DefaultKeywords(), 0, nil)

	assert.Equal(t, OfferUnknown, c.Classify(context.Background(), "20260220000123"))
}

func TestClassifierCachesPerReference(t *testing.T) {
	fetcher := &stubFetcher{texts: map[string]string{
		"20260220000123": "신규상장 수요예측",
	}}
	c := NewClassifier(fetcher, DefaultKeywords(), 0, nil)

	for range 3 {
		assert.Equal(t, OfferIPO, c.Classify(context.Background(), "20260220000123"))
	}
	assert.Equal(t, 1, fetcher.calls)
}

func TestClassifierCachesFailures(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	c := NewClassifier(fetcher, DefaultKeywords(), 0, nil)

	c.Classify(context.Background(), "20260220000123")
	c.Classify(context.Background(), "20260220000123")

	assert.Equal(t, 1, fetcher.calls)
}

func TestCustomKeywordsOverrideDefaults(t *testing.T) {
	kw := Keywords{Rights: []string{"특수증자"}, Listing: []string{"특수상장"}}

	assert.Equal(t, OfferRights, ClassifyText("특수증자 공시", kw))
	assert.Equal(t, OfferIPO, ClassifyText("특수상장 공시", kw))
	assert.Equal(t, OfferUnknown, ClassifyText("유상증자 공시", kw))
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"ipo", "exclude-rights", "all"} {
		m, err := ParseMode(s)
		assert.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}

	m, err := ParseMode("")
	assert.NoError(t, err)
	assert.Equal(t, ModeExcludeRights, m)

	_, err = ParseMode("everything")
	assert.Error(t, err)
}

func TestModeKeeps(t *testing.T) {
	assert.True(t, ModeAll.keeps(OfferRights))
	assert.True(t, ModeExcludeRights.keeps(OfferUnknown))
	assert.True(t, ModeExcludeRights.keeps(OfferIPO))
	assert.False(t, ModeExcludeRights.keeps(OfferRights))
	assert.True(t, ModeIPOOnly.keeps(OfferIPO))
	assert.False(t, ModeIPOOnly.keeps(OfferUnknown))
}

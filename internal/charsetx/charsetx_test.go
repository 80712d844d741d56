package charsetx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/seojoon/ipofeed/internal/calendar"
)

func eucKR(t *testing.T, s string) []byte {
	t.Helper()
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return encoded
}

const samplePage = `<html><body>
2 기 케이뱅크[시작]
3 기 케이뱅크[마감]
</body></html>`

func TestResolvePicksEUCKRDespiteDeclaredUTF8(t *testing.T) {
	raw := eucKR(t, samplePage)
	r := NewResolver(calendar.CountMarkers)

	res := r.Resolve(raw, "text/html; charset=utf-8")

	assert.Equal(t, CharsetEUCKR, res.Charset)
	assert.Contains(t, res.Text, "케이뱅크[시작]")
	assert.Equal(t, 0, res.Scores[CharsetUTF8])
	assert.Greater(t, res.Scores[CharsetEUCKR], 0)
}

func TestResolveHonorsCorrectDeclaration(t *testing.T) {
	r := NewResolver(calendar.CountMarkers)

	res := r.Resolve([]byte(samplePage), "text/html; charset=utf-8")

	assert.Equal(t, CharsetUTF8, res.Charset)
	assert.Contains(t, res.Text, "케이뱅크[마감]")
}

func TestResolveTieFavorsDeclared(t *testing.T) {
	// Pure ASCII scores zero under both candidates.
	r := NewResolver(calendar.CountMarkers)

	res := r.Resolve([]byte("<html>no events here</html>"), "text/html; charset=euc-kr")

	assert.Equal(t, CharsetEUCKR, res.Charset)
	assert.Equal(t, 0, res.Scores[CharsetUTF8])
	assert.Equal(t, 0, res.Scores[CharsetEUCKR])
}

func TestResolveNeverFails(t *testing.T) {
	r := NewResolver(calendar.CountMarkers)

	res := r.Resolve([]byte{0xff, 0xfe, 0x00}, "")

	assert.NotEmpty(t, res.Charset)
}

func TestCharsetFromContentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"text/html; charset=euc-kr", CharsetEUCKR},
		{"text/html; charset=EUC-KR", CharsetEUCKR},
		{"text/html; charset=ks_c_5601-1987", CharsetEUCKR},
		{"text/html; charset=cp949", CharsetEUCKR},
		{`text/html; charset="utf-8"`, CharsetUTF8},
		{"text/html", ""},
		{"", ""},
		{"text/html; charset=latin-1", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, charsetFromContentType(tt.in), "content type %q", tt.in)
	}
}

package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpListHTML = `<html><body><table>
<tr><td>회사명</td><td>종목코드</td></tr>
<tr><td>삼성전자</td><td>005930</td></tr>
<tr><td>카카오</td><td>035720</td></tr>
<tr><td> 네이버 </td><td>035420</td></tr>
<tr><td></td><td>000000</td></tr>
</table></body></html>`

func TestParse(t *testing.T) {
	set, err := Parse(strings.NewReader(corpListHTML))
	require.NoError(t, err)

	assert.Len(t, set, 3)
	assert.True(t, set.Contains("삼성전자"))
	assert.True(t, set.Contains("카카오"))
	assert.True(t, set.Contains("네이버"))
	assert.False(t, set.Contains("회사명"))
	assert.False(t, set.Contains("케이뱅크"))
}

func TestContainsNormalizes(t *testing.T) {
	set := NameSet{}
	set.Add("엘지 에너지솔루션")

	assert.True(t, set.Contains("엘지  에너지솔루션"))
	assert.True(t, set.Contains(" 엘지 에너지솔루션 "))
}

func TestAddIgnoresEmpty(t *testing.T) {
	set := NameSet{}
	set.Add("   ")
	assert.Empty(t, set)
}

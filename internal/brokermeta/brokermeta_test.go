package brokermeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
케이뱅크:
  brokers: "NH투자증권, KB증권"
  equalMin: "10주"
  note: "중복청약 불가"
엘지 에너지솔루션:
  brokers: "KB증권"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	entry := m.Get("케이뱅크")
	assert.Equal(t, "NH투자증권, KB증권", entry.Brokers)
	assert.Equal(t, "10주", entry.EqualMin)
	assert.Equal(t, "중복청약 불가", entry.Note)

	partial := m.Get("엘지  에너지솔루션")
	assert.Equal(t, "KB증권", partial.Brokers)
	assert.Empty(t, partial.EqualMin)
	assert.Empty(t, partial.Note)
}

func TestGetMissingDefaultsEmpty(t *testing.T) {
	m := Map{}
	entry := m.Get("없는회사")
	assert.Empty(t, entry.Brokers)
	assert.Empty(t, entry.EqualMin)
	assert.Empty(t, entry.Note)
}

func TestLoadMissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoadEmptyPath(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

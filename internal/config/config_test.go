package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabvec/internal/space"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Attrition", cfg.Data.TargetColumn)
	assert.Equal(t, 3, cfg.Reducer.Components)
	assert.Equal(t, "memory", cfg.VectorStore.Type)

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, space.DefaultTable(), table)
}

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
data:
  target_column: label
embedder:
  type: openai
  openai: {}
vector_store:
  type: qdrant
  qdrant: {}
domain:
  - column: Size
    space: number
    min: 0
    max: 10
  - column: Kind
    space: categorical
    categories: [A, B]
`))
	require.NoError(t, err)
	assert.Equal(t, "label", cfg.Data.TargetColumn)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, []string{"tfidf"}, cfg.Embedder.OpenAI.Models)
	assert.Equal(t, 6334, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, "tabvec", cfg.VectorStore.Qdrant.CollectionPrefix)
	assert.Equal(t, 60, cfg.Chart.Width)

	table, err := cfg.Table()
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, space.KindNumber, table[0].Kind)
	assert.Equal(t, 10.0, table[0].Max)
	assert.Equal(t, space.KindCategorical, table[1].Kind)
}

func TestParseRejectsBadDomain(t *testing.T) {
	tests := map[string]string{
		"unknown kind":   "domain:\n  - column: A\n    space: vector\n",
		"bad bounds":     "domain:\n  - column: A\n    space: number\n    min: 3\n    max: 3\n",
		"no categories":  "domain:\n  - column: A\n    space: categorical\n",
		"unknown mode":   "domain:\n  - column: A\n    space: number\n    max: 1\n    mode: recent\n",
		"duplicate cols": "domain:\n  - column: A\n    space: text\n  - column: A\n    space: text\n",
	}
	for name, doc := range tests {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Data.Columns = []string{"OverTime", "YearsAtCompany"}
	require.NoError(t, Save(path, cfg))

	_, err := os.Stat(path)
	require.NoError(t, err)
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data, loaded.Data)
	assert.Equal(t, cfg.Domain, loaded.Domain)
}

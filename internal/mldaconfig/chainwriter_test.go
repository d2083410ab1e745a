package mldaconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropic-labs/mtmlda/internal/mcmctree"
)

func TestJSONFileChainWriterWritesAllSamples(t *testing.T) {
	chain := &mcmctree.Chain{}
	chain.Append(mcmctree.Sample{State: []float64{1, 2}, Level: 0, Accepted: true})
	chain.Append(mcmctree.Sample{State: []float64{2, 3}, Level: 0, Accepted: true})

	path := filepath.Join(t.TempDir(), "chain.json")
	w := JSONFileChainWriter{Path: path}
	require.NoError(t, w.WriteChain(chain))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []chainRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, []float64{2, 3}, records[1].State)
}

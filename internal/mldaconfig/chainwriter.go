package mldaconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/entropic-labs/mtmlda/internal/mcmctree"
)

// ChainWriter persists a finished chain. spec.md §6 describes per-chain
// artifacts as the surrounding runner's responsibility ("<stem>_<i>.npy");
// ChainWriter is the interface boundary a concrete runner implements
// against, with JSONFileChainWriter as the one in-tree implementation.
type ChainWriter interface {
	WriteChain(chain *mcmctree.Chain) error
}

// JSONFileChainWriter writes a chain's samples to a single JSON file. It
// is a stand-in for the real per-chain, per-process .npy/.pkl artifacts
// spec.md §6 assigns to the outer parallel runner, useful for the CLI's
// single-chain mode and for tests.
type JSONFileChainWriter struct {
	Path string
}

type chainRecord struct {
	State    []float64 `json:"state"`
	Level    int       `json:"level"`
	Accepted bool      `json:"accepted"`
}

// WriteChain satisfies ChainWriter.
func (w JSONFileChainWriter) WriteChain(chain *mcmctree.Chain) error {
	samples := chain.Samples()
	records := make([]chainRecord, len(samples))
	for i, s := range samples {
		records[i] = chainRecord{State: s.State, Level: s.Level, Accepted: s.Accepted}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("mldaconfig: marshaling chain: %w", err)
	}
	if err := os.WriteFile(w.Path, data, 0o644); err != nil {
		return fmt.Errorf("mldaconfig: writing %s: %w", w.Path, err)
	}
	return nil
}

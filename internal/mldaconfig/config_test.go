package mldaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
setup:
  num_levels: 2
  subsampling_rates: [-1, 3]
  max_tree_height: 20
  underflow_threshold: -300
  proposal_seed: 1
  expansion_seed: 2
  node_init_seed: 3
  accept_rate_eta: 0.1
  initial_accept_rate: 0.5
  proposal_step_size: 0.3
run:
  num_samples: 100
  initial_state: [0, 0]
  num_threads: 4
  print_interval: 10
  tree_render_interval: 0
logger:
  do_printing: true
  log_file: ""
  debug_file: ""
  write_mode: "w"
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Setup.NumLevels)
	assert.Equal(t, []int{-1, 3}, cfg.Setup.SubsamplingRates)
	assert.Equal(t, 4, cfg.Run.NumThreads)
}

func TestLoadRejectsMismatchedSubsamplingRates(t *testing.T) {
	path := writeConfig(t, `
setup:
  num_levels: 3
  subsampling_rates: [-1, 3]
  max_tree_height: 10
run:
  num_threads: 1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadAcceptsSingleLevelSanityScenario(t *testing.T) {
	path := writeConfig(t, `
setup:
  num_levels: 1
  subsampling_rates: [-1]
  max_tree_height: 10
run:
  num_threads: 1
`)
	_, err := Load(path)
	assert.NoError(t, err)
}

func TestLoadRejectsNonPositiveNumLevels(t *testing.T) {
	path := writeConfig(t, `
setup:
  num_levels: 0
  subsampling_rates: []
  max_tree_height: 10
run:
  num_threads: 1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadAppliesSeedEnvOverride(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("MTMLDA_SEED", "100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cfg.Setup.ProposalSeed)
	assert.Equal(t, uint64(101), cfg.Setup.ExpansionSeed)
	assert.Equal(t, uint64(102), cfg.Setup.NodeInitSeed)
}

func TestLoadAppliesNumSamplesEnvOverride(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("MTMLDA_NUM_SAMPLES", "5000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Run.NumSamples)
}

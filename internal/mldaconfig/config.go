// Package mldaconfig loads sampler configuration from YAML with .env
// overrides, mirroring the teacher's loader shape (gopkg.in/yaml.v3 plus
// github.com/joho/godotenv).
package mldaconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SetupConfig is the sampler's static setup (spec.md §6).
type SetupConfig struct {
	NumLevels         int     `yaml:"num_levels"`
	SubsamplingRates  []int   `yaml:"subsampling_rates"`
	MaxTreeHeight     int     `yaml:"max_tree_height"`
	UnderflowThresh   float64 `yaml:"underflow_threshold"`
	ProposalSeed      uint64  `yaml:"proposal_seed"`
	ExpansionSeed     uint64  `yaml:"expansion_seed"`
	NodeInitSeed      uint64  `yaml:"node_init_seed"`
	AcceptRateEta     float64 `yaml:"accept_rate_eta"`
	InitialAcceptRate float64 `yaml:"initial_accept_rate"`
	ProposalStepSize  float64 `yaml:"proposal_step_size"`
}

// RunConfig is the per-run request (spec.md §6).
type RunConfig struct {
	NumSamples         int       `yaml:"num_samples"`
	InitialState       []float64 `yaml:"initial_state"`
	NumThreads         int       `yaml:"num_threads"`
	PrintInterval      int       `yaml:"print_interval"`
	TreeRenderInterval int       `yaml:"tree_render_interval"`
}

// LoggerConfig is spec.md §6's logger settings block.
type LoggerConfig struct {
	DoPrinting bool   `yaml:"do_printing"`
	LogFile    string `yaml:"log_file"`
	DebugFile  string `yaml:"debug_file"`
	WriteMode  string `yaml:"write_mode"`
}

// Config is the full file: setup, run, and logger sections.
type Config struct {
	Setup  SetupConfig  `yaml:"setup"`
	Run    RunConfig    `yaml:"run"`
	Logger LoggerConfig `yaml:"logger"`
}

// Load reads path as YAML, then applies MTMLDA_-prefixed environment
// variables (including any set via a .env file in the working directory) as overrides for
// the handful of settings operators most often need to tweak without
// editing the file: MTMLDA_NUM_SAMPLES, MTMLDA_NUM_THREADS, MTMLDA_SEED.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mldaconfig: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("mldaconfig: parsing %s: %w", path, err)
	}

	_ = godotenv.Load() // best-effort; absence of a .env file is not an error

	if v, ok := os.LookupEnv("MTMLDA_NUM_SAMPLES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("mldaconfig: MTMLDA_NUM_SAMPLES: %w", err)
		}
		cfg.Run.NumSamples = n
	}
	if v, ok := os.LookupEnv("MTMLDA_NUM_THREADS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("mldaconfig: MTMLDA_NUM_THREADS: %w", err)
		}
		cfg.Run.NumThreads = n
	}
	if v, ok := os.LookupEnv("MTMLDA_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mldaconfig: MTMLDA_SEED: %w", err)
		}
		cfg.Setup.ProposalSeed = seed
		cfg.Setup.ExpansionSeed = seed + 1
		cfg.Setup.NodeInitSeed = seed + 2
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants spec.md §6 states explicitly.
func (c *Config) Validate() error {
	// The single-level sanity scenario runs with num_levels=1, so this
	// only rejects non-positive values despite num_levels normally being
	// >= 2 for an actual multilevel hierarchy.
	if c.Setup.NumLevels < 1 {
		return fmt.Errorf("mldaconfig: num_levels must be >= 1, got %d", c.Setup.NumLevels)
	}
	if len(c.Setup.SubsamplingRates) != c.Setup.NumLevels {
		return fmt.Errorf("mldaconfig: subsampling_rates must have num_levels=%d entries, got %d", c.Setup.NumLevels, len(c.Setup.SubsamplingRates))
	}
	if c.Run.NumThreads < 1 {
		return fmt.Errorf("mldaconfig: num_threads must be >= 1, got %d", c.Run.NumThreads)
	}
	return nil
}

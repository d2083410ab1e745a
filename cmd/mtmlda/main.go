// Command mtmlda runs a single MLDA-MCMC chain to completion against a
// configured model hierarchy and writes the resulting chain to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/entropic-labs/mtmlda/internal/evalclient"
	"github.com/entropic-labs/mtmlda/internal/mcmcmetrics"
	"github.com/entropic-labs/mtmlda/internal/mldaconfig"
	"github.com/entropic-labs/mtmlda/internal/mldalog"
	"github.com/entropic-labs/mtmlda/internal/model"
	"github.com/entropic-labs/mtmlda/internal/proposal"
	"github.com/entropic-labs/mtmlda/internal/sampler"
)

func main() {
	var (
		configPath   string
		endpointsCSV string
		outputPath   string
	)
	flag.StringVar(&configPath, "config", "mtmlda.yaml", "path to the sampler configuration file")
	flag.StringVar(&endpointsCSV, "endpoints", "", "comma-separated model evaluator endpoints, one per level, coarsest first; empty runs an in-process stand-in")
	flag.StringVar(&outputPath, "output", "chain.json", "path the finished chain is written to")
	flag.Parse()

	if err := run(configPath, endpointsCSV, outputPath); err != nil {
		fmt.Fprintln(os.Stderr, "mtmlda:", err)
		os.Exit(1)
	}
}

func run(configPath, endpointsCSV, outputPath string) error {
	cfg, err := mldaconfig.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := mldalog.New(mldalog.Config(cfg.Logger))
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	debugFile, err := mldalog.OpenDebugFile(mldalog.Config(cfg.Logger))
	if err != nil {
		return fmt.Errorf("opening debug file: %w", err)
	}
	if debugFile != nil {
		defer debugFile.Close()
	}

	evaluator, err := buildEvaluator(endpointsCSV, cfg.Setup.NumLevels, logger)
	if err != nil {
		return err
	}

	metrics := mcmcmetrics.New()
	prop := proposal.RandomWalk{StepSize: cfg.Setup.ProposalStepSize}
	var debugWriter io.Writer
	if debugFile != nil {
		debugWriter = debugFile
	}
	driver := sampler.New(cfg.Setup, prop, evaluator, logger, metrics, debugWriter)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chain, runErr := driver.Run(ctx, cfg.Run)

	writer := mldaconfig.JSONFileChainWriter{Path: outputPath}
	if writeErr := writer.WriteChain(chain); writeErr != nil {
		logger.WithError(writeErr).Error("failed writing chain")
		if runErr == nil {
			runErr = writeErr
		}
	}

	logger.WithField("chain_length", chain.Len()).Info("sampler finished")
	return runErr
}

// buildEvaluator wires an evalclient.HTTPEvaluator over one endpoint per
// level when endpointsCSV is non-empty, otherwise falls back to an
// in-process quadratic-bowl stand-in useful for local smoke testing
// without a model server.
func buildEvaluator(endpointsCSV string, numLevels int, logger *logrus.Logger) (model.Evaluator, error) {
	if endpointsCSV == "" {
		levels := make([]func([]float64) float64, numLevels)
		for l := range levels {
			scale := float64(l + 1)
			levels[l] = func(state []float64) float64 {
				sum := 0.0
				for _, x := range state {
					sum += x * x
				}
				return -0.5 * scale * sum
			}
		}
		return model.InProcessEvaluator{Levels: levels}, nil
	}

	endpoints := strings.Split(endpointsCSV, ",")
	if len(endpoints) != numLevels {
		return nil, fmt.Errorf("mtmlda: -endpoints must list num_levels=%d endpoints, got %d", numLevels, len(endpoints))
	}
	return &evalclient.HTTPEvaluator{
		Endpoints:      endpoints,
		Client:         &http.Client{Timeout: 30 * time.Second},
		Logger:         logger,
		MaxElapsedTime: 2 * time.Minute,
	}, nil
}

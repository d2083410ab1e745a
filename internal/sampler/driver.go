// Package sampler is the driver: the four-phase loop that ties the tree,
// the kernel, and the job handler together until the chain reaches its
// target length (spec.md §4.5).
package sampler

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/entropic-labs/mtmlda/internal/jobs"
	"github.com/entropic-labs/mtmlda/internal/mcmckernel"
	"github.com/entropic-labs/mtmlda/internal/mcmcmetrics"
	"github.com/entropic-labs/mtmlda/internal/mcmctree"
	"github.com/entropic-labs/mtmlda/internal/mldaconfig"
	"github.com/entropic-labs/mtmlda/internal/model"
	"github.com/entropic-labs/mtmlda/internal/watchdog"
)

// Driver owns the tree root and the growing chain for one run. Every Run
// call starts a fresh tree and an empty chain from run.InitialState; only
// the RNG state carries over between Run calls on the same Driver.
type Driver struct {
	setup     mldaconfig.SetupConfig
	modifier  *mcmctree.Modifier
	kernel    *mcmckernel.Kernel
	estimator *mcmctree.AcceptRateEstimator
	rngs      mcmctree.RNGTriple
	evaluator model.Evaluator
	logger    *logrus.Logger
	metrics   *mcmcmetrics.Metrics

	// debugWriter, if set, receives the JSON tree export written after a
	// fatal evaluator error (spec.md §7).
	debugWriter io.Writer

	stalls *watchdog.StallDetector
}

// New builds a Driver from its static setup, wiring a fresh RNG triple and
// accept-rate estimator. proposal is the ground-level random-walk move;
// evaluator is the model hierarchy; debugWriter may be nil to suppress
// fatal-error tree exports.
func New(setup mldaconfig.SetupConfig, proposal mcmctree.ProposalSampler, evaluator model.Evaluator, logger *logrus.Logger, metrics *mcmcmetrics.Metrics, debugWriter io.Writer) *Driver {
	guesses := make([]float64, setup.NumLevels)
	for i := range guesses {
		guesses[i] = setup.InitialAcceptRate
	}
	estimator := mcmctree.NewAcceptRateEstimator(guesses, setup.AcceptRateEta)
	rngs := mcmctree.NewRNGTriple(setup.ProposalSeed, setup.ExpansionSeed, setup.NodeInitSeed)
	modifier := mcmctree.NewModifier(mcmctree.ModifierConfig{
		SubsamplingRates: setup.SubsamplingRates,
		MaxTreeHeight:    setup.MaxTreeHeight,
	}, proposal, rngs)
	kernel := mcmckernel.New(setup.UnderflowThresh, estimator)

	return &Driver{
		setup:       setup,
		modifier:    modifier,
		kernel:      kernel,
		estimator:   estimator,
		rngs:        rngs,
		evaluator:   evaluator,
		logger:      logger,
		metrics:     metrics,
		debugWriter: debugWriter,
		stalls:      watchdog.New(2*time.Minute, logger),
	}
}

// GetRNGs returns a snapshot of the driver's RNG state, safe to persist
// and later restore via SetRNGs (spec.md §6, §8 round-trip law).
func (d *Driver) GetRNGs() mcmctree.RNGTriple {
	return d.rngs.Snapshot()
}

// SetRNGs restores RNG state captured by a prior GetRNGs call. Because
// the driver's tree modifier was constructed over the same generators
// (sharing pointers, not copies), restoring here also takes effect for
// every subsequent expansion.
func (d *Driver) SetRNGs(snap mcmctree.RNGTriple) {
	d.rngs.Restore(snap)
}

// Run drives the sampler until the chain reaches run.NumSamples samples,
// or a fatal evaluator error or context cancellation cuts it short — in
// either case Run returns whatever partial chain has accumulated, per
// spec.md §7's "no exceptions leak, always return the accumulated chain."
func (d *Driver) Run(ctx context.Context, run mldaconfig.RunConfig) (*mcmctree.Chain, error) {
	root := mcmctree.NewNode(copyState(run.InitialState), d.setup.NumLevels-1, 0, d.rngs.NodeInit.Float64(), nil)
	chain := &mcmctree.Chain{}

	handler := jobs.NewHandler(ctx, run.NumThreads, d.setup.NumLevels, d.evaluator, d.logger, d.metrics)
	defer handler.Shutdown()

	iteration := 0
	for chain.Len() < run.NumSamples {
		select {
		case <-ctx.Done():
			return chain, ctx.Err()
		default:
		}
		iteration++

		d.extendAndSubmit(root, handler)

		if fatalErr := d.harvest(root, handler); fatalErr != nil {
			d.exportDebugTree(root)
			return chain, fmt.Errorf("sampler: evaluator failure: %w", fatalErr)
		}

		d.decide(root)

		root = d.compressAndAdvance(root, chain, run.NumSamples)

		d.reportProgress(iteration, run, chain, root, handler)
	}
	return chain, nil
}

// extendAndSubmit is phase 1: greedily expand and submit the current
// argmax candidate while workers remain free and the tree height bound
// allows it.
func (d *Driver) extendAndSubmit(root *mcmctree.Node, handler *jobs.Handler) {
	for handler.WorkersAvailable() {
		d.modifier.ExpandTree(root)
		d.modifier.UpdateProbabilityReached(root, d.estimator)

		candidate := mcmctree.FindMaxProbabilityNode(root)
		if candidate == nil {
			return
		}
		if !handler.SubmitJob(candidate) {
			return
		}
	}
}

// harvest is phase 2: drain completions, pruning underflowed nodes and
// filling in logposteriors for the rest. It returns the first fatal
// evaluator error seen, after draining every other completed result.
func (d *Driver) harvest(root *mcmctree.Node, handler *jobs.Handler) error {
	results := handler.GetFinishedJobs()
	var fatalErr error
	for _, r := range results {
		if r.Err != nil {
			if fatalErr == nil {
				fatalErr = r.Err
			}
			continue
		}
		if d.kernel.CheckUnderflow(r.Logposterior) {
			d.metrics.UnderflowsTotal.WithLabelValues(strconv.Itoa(r.Node.Level)).Inc()
			r.Node.Detach()
			continue
		}
		r.Node.SetLogposterior(r.Logposterior)
		mcmctree.UpdateDescendants(r.Node)
	}
	_ = root // harvest touches nodes directly via r.Node; root kept for symmetry with the other phases
	return fatalErr
}

// decide is phase 3: repeatedly resolve any coarse-to-fine promotions
// that just became possible, then scan for a decision-ready node and
// apply the matching kernel rule, until a full pass finds nothing left to
// do.
func (d *Driver) decide(root *mcmctree.Node) {
	for {
		d.modifier.ResolvePromotions(root)
		if !d.decideOnce(root) {
			return
		}
	}
}

func (d *Driver) decideOnce(root *mcmctree.Node) bool {
	var target *mcmctree.Node
	var kind mcmctree.DecisionKind
	mcmctree.Walk(root, func(n *mcmctree.Node) bool {
		if n.Decided {
			return true
		}
		ready, k := mcmctree.CheckIfNodeIsAvailableForDecision(n)
		if ready {
			target, kind = n, k
			return false
		}
		return true
	})
	if target == nil {
		return false
	}
	accepted := d.kernel.Decide(target, kind)
	mcmctree.DiscardRejectedNodes(target, accepted)
	return true
}

// compressAndAdvance is phase 4: collapse resolved subchains, then walk
// the chain forward past every node with a unique accepted successor,
// appending each superseded root's state to chain.
func (d *Driver) compressAndAdvance(root *mcmctree.Node, chain *mcmctree.Chain, target int) *mcmctree.Node {
	resolved := d.modifier.CompressResolvedSubchains(root)
	for root != resolved && chain.Len() < target {
		successor, ok := mcmctree.GetUniqueSameSubchainChild(root)
		if !ok {
			return root
		}
		chain.Append(mcmctree.Sample{State: root.State, Level: root.Level, Accepted: true})
		successor.Parent = nil
		root = successor
	}
	return root
}

func (d *Driver) reportProgress(iteration int, run mldaconfig.RunConfig, chain *mcmctree.Chain, root *mcmctree.Node, handler *jobs.Handler) {
	d.metrics.ChainLength.Set(float64(chain.Len()))
	d.metrics.TreeHeight.Set(float64(root.Height()))
	d.metrics.TreeNodes.Set(float64(mcmctree.CountNodes(root)))
	for level := 0; level < d.setup.NumLevels; level++ {
		d.metrics.AcceptRate.WithLabelValues(strconv.Itoa(level)).Set(d.estimator.Alpha(level))
	}

	var evaluated int64
	for level := 0; level < d.setup.NumLevels; level++ {
		evaluated += handler.NumEvaluations(level)
	}
	d.stalls.Observe(int64(chain.Len()) + evaluated)

	if run.PrintInterval > 0 && iteration%run.PrintInterval == 0 {
		d.logger.WithFields(logrus.Fields{
			"iteration":   iteration,
			"chain_len":   chain.Len(),
			"tree_height": root.Height(),
			"tree_nodes":  mcmctree.CountNodes(root),
		}).Info("sampler progress")
	}
}

func (d *Driver) exportDebugTree(root *mcmctree.Node) {
	if d.debugWriter == nil {
		return
	}
	data, err := mcmctree.DebugExport(root, d.setup.MaxTreeHeight+8)
	if err != nil {
		d.logger.WithError(err).Warn("debug tree export truncated")
		return
	}
	if _, err := d.debugWriter.Write(data); err != nil {
		d.logger.WithError(err).Warn("failed writing debug tree export")
	}
}

func copyState(state []float64) []float64 {
	out := make([]float64, len(state))
	copy(out, state)
	return out
}

// Package jobs is the bounded worker pool that evaluates proposal-tree
// nodes against the model hierarchy: submit/harvest, per-level completion
// counters, and the at-most-once submission invariant (spec.md §4.4).
package jobs

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/entropic-labs/mtmlda/internal/mcmcmetrics"
	"github.com/entropic-labs/mtmlda/internal/mcmctree"
	"github.com/entropic-labs/mtmlda/internal/model"
)

// Result is one completed (or failed) evaluation, paired with the node it
// was computed for.
type Result struct {
	Node         *mcmctree.Node
	Logposterior float64
	Err          error
}

// Handler is the sampler's bounded worker pool. One Handler is created per
// run and torn down on every exit path, including error paths (spec.md
// §5).
type Handler struct {
	// RunID correlates this handler's log lines and debug exports across
	// a single sampler run.
	RunID uuid.UUID

	sem       *semaphore.Weighted
	evaluator model.Evaluator
	logger    *logrus.Logger
	metrics   *mcmcmetrics.Metrics

	results chan Result

	numEvaluations []int64 // one atomic counter per level

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHandler builds a Handler with numWorkers concurrent evaluation slots
// over numLevels model levels. ctx governs the lifetime of every
// in-flight evaluation; canceling it is how Shutdown asks workers to stop
// waiting on a slow evaluator.
func NewHandler(ctx context.Context, numWorkers, numLevels int, evaluator model.Evaluator, logger *logrus.Logger, metrics *mcmcmetrics.Metrics) *Handler {
	runCtx, cancel := context.WithCancel(ctx)
	metrics.WorkersTotal.Set(float64(numWorkers))
	return &Handler{
		RunID:          uuid.New(),
		sem:            semaphore.NewWeighted(int64(numWorkers)),
		evaluator:      evaluator,
		logger:         logger,
		metrics:        metrics,
		results:        make(chan Result, numWorkers*4),
		numEvaluations: make([]int64, numLevels),
		ctx:            runCtx,
		cancel:         cancel,
	}
}

// WorkersAvailable reports whether at least one worker slot is currently
// idle. It is a heuristic snapshot, not a reservation — SubmitJob is what
// actually claims a slot.
func (h *Handler) WorkersAvailable() bool {
	if h.sem.TryAcquire(1) {
		h.sem.Release(1)
		return true
	}
	return false
}

// SubmitJob enqueues an evaluation of node at its own level. It marks node
// Pending and returns true on success; if no worker is free it does
// nothing and returns false, per spec.md's "fails silently" contract. The
// caller (the sampler driver) is the sole submitter, so at-most-once
// submission holds as long as it never resubmits a node already marked
// Pending or decided.
func (h *Handler) SubmitJob(node *mcmctree.Node) bool {
	if !h.sem.TryAcquire(1) {
		return false
	}
	node.Pending = true
	h.metrics.WorkersActive.Inc()
	h.wg.Add(1)
	go h.run(node)
	return true
}

func (h *Handler) run(node *mcmctree.Node) {
	defer h.wg.Done()
	defer h.sem.Release(1)
	defer h.metrics.WorkersActive.Dec()

	logp, err := h.evaluator.Evaluate(h.ctx, node.Level, node.State)
	result := Result{Node: node, Logposterior: logp, Err: err}
	if err != nil {
		h.logger.WithFields(logrus.Fields{"run_id": h.RunID, "level": node.Level, "node_id": node.ID}).WithError(err).Warn("model evaluation failed")
		h.metrics.EvaluatorErrors.WithLabelValues(levelLabel(node.Level)).Inc()
	}
	select {
	case h.results <- result:
	case <-h.ctx.Done():
	}
}

// GetFinishedJobs drains every result that has completed since the last
// call, in completion order, without blocking. Successful completions
// increment num_evaluations for their level.
func (h *Handler) GetFinishedJobs() []Result {
	var out []Result
	for {
		select {
		case r := <-h.results:
			if r.Err == nil {
				atomic.AddInt64(&h.numEvaluations[r.Node.Level], 1)
				h.metrics.EvaluationsTotal.WithLabelValues(levelLabel(r.Node.Level)).Inc()
			}
			out = append(out, r)
		default:
			return out
		}
	}
}

// NumEvaluations returns the monotonic completion counter for level.
func (h *Handler) NumEvaluations(level int) int64 {
	return atomic.LoadInt64(&h.numEvaluations[level])
}

// Shutdown stops accepting new work's context and blocks until every
// in-flight evaluation has returned (or been abandoned via ctx
// cancellation), draining the result channel so no goroutine leaks.
// Results that arrive after Shutdown is called are discarded, per
// spec.md §5's cancellation policy.
func (h *Handler) Shutdown() {
	h.cancel()
	h.wg.Wait()
	for {
		select {
		case <-h.results:
		default:
			return
		}
	}
}

func levelLabel(level int) string {
	return strconv.Itoa(level)
}

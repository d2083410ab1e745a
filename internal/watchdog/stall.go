// Package watchdog detects a sampler run making no forward progress: the
// chain not growing and no worker completing an evaluation for longer
// than a configured threshold. It never intervenes — it only logs and
// records a metric — because the only safe recovery action (abandoning
// in-flight evaluations) already happens through ctx cancellation at
// Shutdown, not through anything the watchdog could trigger itself.
package watchdog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// StallDetector tracks the last time observed progress changed and flags
// a stall once Threshold has elapsed with no change.
type StallDetector struct {
	Threshold time.Duration

	logger *logrus.Logger
	stalls prometheus.Counter

	lastProgress   int64
	lastObservedAt time.Time
}

// New builds a StallDetector that logs through logger and exports a
// mtmlda_sampler_stalls_total counter.
func New(threshold time.Duration, logger *logrus.Logger) *StallDetector {
	return &StallDetector{
		Threshold: threshold,
		logger:    logger,
		stalls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "stalls_total",
			Help:      "Number of times the sampler went Threshold seconds with no chain or evaluation progress.",
		}),
	}
}

// Observe reports the current progress counter (any monotonically
// increasing quantity — chain length plus completed evaluations works
// well since either one alone can plateau during a legitimate long
// rejection run). It logs a warning once Threshold is exceeded since the
// counter last moved, and again after each further Threshold that passes
// with no progress.
func (s *StallDetector) Observe(progress int64) {
	now := time.Now()
	if s.lastObservedAt.IsZero() || progress != s.lastProgress {
		s.lastProgress = progress
		s.lastObservedAt = now
		return
	}
	if now.Sub(s.lastObservedAt) < s.Threshold {
		return
	}
	s.stalls.Inc()
	s.logger.WithFields(logrus.Fields{
		"progress":    progress,
		"stalled_for": now.Sub(s.lastObservedAt).String(),
	}).Warn("sampler made no progress past the stall threshold")
	// Reset so the warning fires at most once per stall window rather
	// than on every remaining iteration of a long stall.
	s.lastObservedAt = now
}

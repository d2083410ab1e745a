package watchdog

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "test_stalls_total"})
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newForTest builds a StallDetector directly rather than through New, so
// each test gets its own counter without re-registering the same
// Prometheus collector name twice in one test binary.
func newForTest(threshold time.Duration) *StallDetector {
	return &StallDetector{Threshold: threshold, logger: testLogger(), stalls: testCounter()}
}

func TestObserveDoesNotFlagFreshProgress(t *testing.T) {
	d := newForTest(50 * time.Millisecond)
	d.Observe(1)
	d.Observe(2)
	d.Observe(3)
	assert.Equal(t, float64(0), testutil.ToFloat64(d.stalls))
}

func TestObserveFlagsStallAfterThreshold(t *testing.T) {
	d := newForTest(10 * time.Millisecond)
	d.Observe(1)
	time.Sleep(20 * time.Millisecond)
	d.Observe(1)
	assert.Equal(t, float64(1), testutil.ToFloat64(d.stalls))
}

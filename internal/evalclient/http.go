// Package evalclient is the HTTP-based model evaluator client: the
// network-backed implementation of model.Evaluator for remote servers,
// with retry-with-backoff at the client boundary (spec.md §7).
package evalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// HTTPEvaluator calls one endpoint per level, POSTing the state vector and
// expecting a JSON body carrying the log-posterior.
type HTTPEvaluator struct {
	// Endpoints holds one base URL per level, indexed by level.
	Endpoints []string
	Client    *http.Client
	Logger    *logrus.Logger
	// MaxElapsedTime bounds how long a single evaluation may spend
	// retrying transient failures before surfacing as fatal.
	MaxElapsedTime time.Duration
}

type evalRequest struct {
	State []float64 `json:"state"`
}

type evalResponse struct {
	Logposterior float64 `json:"logposterior"`
}

// Evaluate satisfies model.Evaluator, retrying transient failures (network
// errors, 5xx responses) with exponential backoff; 4xx responses and
// malformed bodies are treated as permanent.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, level int, state []float64) (float64, error) {
	if level < 0 || level >= len(e.Endpoints) {
		return 0, fmt.Errorf("evalclient: no endpoint configured for level %d", level)
	}
	endpoint := e.Endpoints[level]

	operation := func() (float64, error) {
		body, err := json.Marshal(evalRequest{State: state})
		if err != nil {
			return 0, backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return 0, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.Client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return 0, fmt.Errorf("evalclient: server error %d from %s", resp.StatusCode, endpoint)
		}
		if resp.StatusCode != http.StatusOK {
			return 0, backoff.Permanent(fmt.Errorf("evalclient: unexpected status %d from %s", resp.StatusCode, endpoint))
		}

		var out evalResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return 0, backoff.Permanent(fmt.Errorf("evalclient: decoding response from %s: %w", endpoint, err))
		}
		return out.Logposterior, nil
	}

	value, err := backoff.Retry(ctx, operation, backoff.WithMaxElapsedTime(e.MaxElapsedTime))
	if err != nil {
		e.Logger.WithFields(logrus.Fields{
			"level":    level,
			"endpoint": endpoint,
		}).WithError(err).Error("model evaluation failed after retries")
		return 0, err
	}
	return value, nil
}

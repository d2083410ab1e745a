package evalclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHTTPEvaluatorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req evalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(evalResponse{Logposterior: -3.5})
	}))
	defer srv.Close()

	e := &HTTPEvaluator{
		Endpoints:      []string{srv.URL},
		Client:         srv.Client(),
		Logger:         discardLogger(),
		MaxElapsedTime: time.Second,
	}

	v, err := e.Evaluate(context.Background(), 0, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, -3.5, v)
}

func TestHTTPEvaluatorRetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(evalResponse{Logposterior: -1})
	}))
	defer srv.Close()

	e := &HTTPEvaluator{
		Endpoints:      []string{srv.URL},
		Client:         srv.Client(),
		Logger:         discardLogger(),
		MaxElapsedTime: 5 * time.Second,
	}

	v, err := e.Evaluate(context.Background(), 0, []float64{0})
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestHTTPEvaluatorPermanentOn4xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	e := &HTTPEvaluator{
		Endpoints:      []string{srv.URL},
		Client:         srv.Client(),
		Logger:         discardLogger(),
		MaxElapsedTime: 5 * time.Second,
	}

	_, err := e.Evaluate(context.Background(), 0, []float64{0})
	assert.Error(t, err)
}

func TestHTTPEvaluatorRejectsUnknownLevel(t *testing.T) {
	e := &HTTPEvaluator{Endpoints: []string{"http://example.invalid"}, Client: http.DefaultClient, Logger: discardLogger(), MaxElapsedTime: time.Second}
	_, err := e.Evaluate(context.Background(), 3, []float64{0})
	assert.Error(t, err)
}

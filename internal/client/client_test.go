package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetlabs/doorman/internal/logging"
	"github.com/velvetlabs/doorman/internal/runner"
)

func testClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	return New(Config{
		BaseURL:        srv.URL,
		PlayerID:       "p-123",
		Scenario:       1,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     retries,
	}, logging.NewTestLogger())
}

func TestNewGameParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/new-game", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("scenario"))
		assert.Equal(t, "p-123", r.URL.Query().Get("playerId"))
		w.Write([]byte(`{
			"gameId": "g-42",
			"constraints": [{"attribute": "local", "minCount": 600}],
			"attributeStatistics": {
				"relativeFrequencies": {"local": 0.425},
				"correlations": {"local": {"local": 1.0}}
			}
		}`))
	}))
	defer srv.Close()

	game, err := testClient(t, srv, 0).NewGame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "g-42", game.ID)
	require.Len(t, game.Constraints, 1)
	assert.Equal(t, 600, game.Constraints[0].MinCount)
	assert.Equal(t, 0.425, game.Statistics.Frequency("local"))
}

func TestDecideAndNextRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/decide-and-next", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("accept"))
		w.Write([]byte(`{
			"status": "running",
			"admittedCount": 12,
			"rejectedCount": 30,
			"nextPerson": {"personIndex": 43, "attributes": {"local": true}}
		}`))
	}))
	defer srv.Close()

	accept := true
	arrival, err := testClient(t, srv, 0).DecideAndNext(context.Background(), 42, &accept)
	require.NoError(t, err)

	assert.Equal(t, runner.StatusRunning, arrival.Status)
	assert.Equal(t, 12, arrival.AdmittedCount)
	assert.Equal(t, 30, arrival.RejectedCount)
	require.NotNil(t, arrival.Next)
	assert.Equal(t, 43, arrival.Next.Index)
	assert.True(t, arrival.Next.Attributes["local"])
}

func TestDecideAndNextOmitsAcceptOnFirstCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("accept"))
		w.Write([]byte(`{"status": "running", "nextPerson": {"personIndex": 0, "attributes": {}}}`))
	}))
	defer srv.Close()

	arrival, err := testClient(t, srv, 0).DecideAndNext(context.Background(), 0, nil)
	require.NoError(t, err)
	// Counts absent from the payload are reported as unknown.
	assert.Equal(t, -1, arrival.AdmittedCount)
	assert.Equal(t, -1, arrival.RejectedCount)
}

func TestRetriesTransientServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status": "completed", "admittedCount": 1000, "rejectedCount": 900}`))
	}))
	defer srv.Close()

	arrival, err := testClient(t, srv, 5).DecideAndNext(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, runner.StatusCompleted, arrival.Status)
	assert.Nil(t, arrival.Next)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestGameOverIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "game already finished"}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv, 5).DecideAndNext(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrGameOver)
	assert.Equal(t, int32(1), calls.Load(), "client errors must not be retried")
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "running"}`)) // running but no nextPerson
	}))
	defer srv.Close()

	_, err := testClient(t, srv, 0).DecideAndNext(context.Background(), 0, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrGameOver))
}

func TestUnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "paused"}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv, 0).DecideAndNext(context.Background(), 0, nil)
	assert.Error(t, err)
}

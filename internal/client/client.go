/*
Copyright 2026 The doorman Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package client implements the HTTP game-protocol source. Transient
// network failures and server errors are retried with bounded
// exponential backoff; terminal conditions are surfaced to the decision
// loop, never swallowed.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"

	"github.com/velvetlabs/doorman/internal/logging"
	"github.com/velvetlabs/doorman/internal/runner"
	"github.com/velvetlabs/doorman/pkg/core"
)

// ErrGameOver is returned when the server reports that the game has
// already finished and no further decisions are accepted.
var ErrGameOver = errors.New("game already finished")

// Config holds the client parameters.
type Config struct {
	BaseURL        string
	PlayerID       string
	Scenario       int
	RequestTimeout time.Duration
	MaxRetries     int
}

// Client talks to a game server. It implements runner.Source and is
// bound to one game after NewGame succeeds.
type Client struct {
	cfg    Config
	http   *http.Client
	logger logr.Logger

	gameID string
}

// New creates a client for the configured game server.
func New(cfg Config, logger logr.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// NewGame opens a game on the server and records its ID for subsequent
// calls.
func (c *Client) NewGame(ctx context.Context) (*runner.Game, error) {
	q := url.Values{}
	q.Set("scenario", strconv.Itoa(c.cfg.Scenario))
	q.Set("playerId", c.cfg.PlayerID)

	var payload newGameResponse
	if err := c.getJSON(ctx, "/new-game", q, &payload); err != nil {
		return nil, fmt.Errorf("new-game: %w", err)
	}
	if payload.GameID == "" {
		return nil, fmt.Errorf("new-game: malformed response: missing gameId")
	}
	c.gameID = payload.GameID

	return &runner.Game{
		ID:          payload.GameID,
		Constraints: payload.Constraints,
		Statistics: core.AttributeStatistics{
			RelativeFrequencies: payload.AttributeStatistics.RelativeFrequencies,
			Correlations:        payload.AttributeStatistics.Correlations,
		},
	}, nil
}

// DecideAndNext submits the decision for personIndex and fetches the
// next arrival. A nil accept means no decision is owed (first call).
func (c *Client) DecideAndNext(ctx context.Context, personIndex int, accept *bool) (*runner.Arrival, error) {
	q := url.Values{}
	q.Set("gameId", c.gameID)
	q.Set("personIndex", strconv.Itoa(personIndex))
	if accept != nil {
		q.Set("accept", strconv.FormatBool(*accept))
	}

	var payload decideResponse
	if err := c.getJSON(ctx, "/decide-and-next", q, &payload); err != nil {
		return nil, fmt.Errorf("decide-and-next: %w", err)
	}

	arrival := &runner.Arrival{
		Reason:        payload.Reason,
		AdmittedCount: -1,
		RejectedCount: -1,
	}
	if payload.AdmittedCount != nil {
		arrival.AdmittedCount = *payload.AdmittedCount
	}
	if payload.RejectedCount != nil {
		arrival.RejectedCount = *payload.RejectedCount
	}

	switch payload.Status {
	case "running":
		arrival.Status = runner.StatusRunning
		if payload.NextPerson == nil {
			return nil, fmt.Errorf("decide-and-next: malformed response: running without nextPerson")
		}
		arrival.Next = &core.Person{
			Index:      payload.NextPerson.PersonIndex,
			Attributes: payload.NextPerson.Attributes,
		}
	case "completed":
		arrival.Status = runner.StatusCompleted
	case "failed":
		arrival.Status = runner.StatusFailed
	default:
		return nil, fmt.Errorf("decide-and-next: malformed response: unknown status %q", payload.Status)
	}
	return arrival, nil
}

// getJSON performs one GET with retries. Network errors and 5xx are
// retried; 4xx are permanent, with the server's "game finished" message
// mapped to ErrGameOver.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.cfg.BaseURL + path + "?" + q.Encode()

	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.V(logging.DEBUG).Info("request failed, will retry", "path", path, "error", err.Error())
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode >= 500:
			c.logger.V(logging.DEBUG).Info("server error, will retry", "path", path, "code", resp.StatusCode)
			return nil, fmt.Errorf("server error: %s", resp.Status)
		case resp.StatusCode >= 400:
			if isGameOver(body) {
				return nil, backoff.Permanent(ErrGameOver)
			}
			return nil, backoff.Permanent(fmt.Errorf("request rejected: %s: %s", resp.Status, string(body)))
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
	)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}

// isGameOver sniffs the error payload for the server's terminal signal.
func isGameOver(body []byte) bool {
	var payload struct {
		Error  string `json:"error"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Status == "finished" || payload.Error == "game already finished"
}

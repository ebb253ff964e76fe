package runner

import (
	"context"

	"github.com/velvetlabs/doorman/pkg/core"
)

// Status is the upstream lifecycle of a game.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Game describes a freshly opened game: its constraints and the
// attribute statistics that hold for the whole run.
type Game struct {
	ID          string
	Constraints []core.Constraint
	Statistics  core.AttributeStatistics
}

// Arrival is one step of the game protocol: the authoritative counts
// after the previous decision, plus the next candidate when the game is
// still running.
type Arrival struct {
	Status Status

	// Reason is the server's explanation for a failed game, empty
	// otherwise.
	Reason string

	// AdmittedCount and RejectedCount are authoritative; the runner
	// folds them into the local state. Negative means not reported.
	AdmittedCount int
	RejectedCount int

	// Next is nil once the game reaches a terminal status.
	Next *core.Person
}

// Source produces arrivals and consumes decisions. Both the live HTTP
// client and the offline simulator implement it, so the runner is
// transport-agnostic.
type Source interface {
	// NewGame opens a game and returns its constraints and statistics.
	NewGame(ctx context.Context) (*Game, error)

	// DecideAndNext submits the decision for personIndex and returns the
	// resulting arrival. The first call of a game passes accept == nil:
	// no decision is owed yet.
	DecideAndNext(ctx context.Context, personIndex int, accept *bool) (*Arrival, error)
}

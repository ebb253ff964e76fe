package client

import (
	"github.com/velvetlabs/doorman/pkg/core"
)

// Wire payloads of the game protocol. Counts are pointers so a missing
// field is distinguishable from zero.

type newGameResponse struct {
	GameID              string            `json:"gameId"`
	Constraints         []core.Constraint `json:"constraints"`
	AttributeStatistics struct {
		RelativeFrequencies map[string]float64            `json:"relativeFrequencies"`
		Correlations        map[string]map[string]float64 `json:"correlations"`
	} `json:"attributeStatistics"`
}

type personPayload struct {
	PersonIndex int             `json:"personIndex"`
	Attributes  map[string]bool `json:"attributes"`
}

type decideResponse struct {
	Status        string         `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	AdmittedCount *int           `json:"admittedCount,omitempty"`
	RejectedCount *int           `json:"rejectedCount,omitempty"`
	NextPerson    *personPayload `json:"nextPerson,omitempty"`
}

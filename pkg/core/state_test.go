package core

import (
	"errors"
	"reflect"
	"testing"
)

func testState() *GameState {
	return NewGameState(
		[]Constraint{
			{Attribute: "local", MinCount: 600},
			{Attribute: "well_dressed", MinCount: 400},
		},
		AttributeStatistics{
			RelativeFrequencies: map[string]float64{"local": 0.4, "well_dressed": 0.3},
		},
	)
}

func TestDeficits(t *testing.T) {
	s := testState()

	if got := s.Deficits(); !reflect.DeepEqual(got, map[string]int{"local": 600, "well_dressed": 400}) {
		t.Errorf("initial deficits = %v", got)
	}

	s.Apply(Person{Index: 0, Attributes: map[string]bool{"local": true, "well_dressed": true}}, true)
	s.Apply(Person{Index: 1, Attributes: map[string]bool{"local": true}}, true)
	s.Apply(Person{Index: 2, Attributes: map[string]bool{"local": true}}, false)

	if s.AdmittedCount != 2 || s.RejectedCount != 1 {
		t.Fatalf("counts = %d admitted, %d rejected", s.AdmittedCount, s.RejectedCount)
	}
	if got := s.Deficits(); !reflect.DeepEqual(got, map[string]int{"local": 598, "well_dressed": 399}) {
		t.Errorf("deficits after three decisions = %v", got)
	}
}

func TestDeficitFloorsAtZero(t *testing.T) {
	s := testState()
	s.AdmittedAttributes["well_dressed"] = 450

	d, err := s.Deficit("well_dressed")
	if err != nil {
		t.Fatal(err)
	}
	if d != 0 {
		t.Errorf("overfilled constraint deficit = %d, want 0", d)
	}
}

func TestDeficitUnknownConstraint(t *testing.T) {
	s := testState()
	_, err := s.Deficit("underground")
	if !errors.Is(err, ErrUnknownConstraint) {
		t.Errorf("err = %v, want ErrUnknownConstraint", err)
	}
}

func TestAllMinimaMet(t *testing.T) {
	s := testState()
	if s.AllMinimaMet() {
		t.Error("fresh state should not have minima met")
	}
	s.AdmittedAttributes["local"] = 600
	s.AdmittedAttributes["well_dressed"] = 400
	if !s.AllMinimaMet() {
		t.Error("expected all minima met")
	}
}

func TestHelpsSkipsSatisfiedConstraints(t *testing.T) {
	s := testState()
	s.AdmittedAttributes["well_dressed"] = 400

	p := Person{Attributes: map[string]bool{"local": true, "well_dressed": true}}
	if got := s.Helps(p); !reflect.DeepEqual(got, []string{"local"}) {
		t.Errorf("Helps = %v, want [local]", got)
	}
}

func TestSyncCountsOverridesLocalTally(t *testing.T) {
	s := testState()
	s.Apply(Person{Attributes: map[string]bool{"local": true}}, true)
	s.SyncCounts(5, 7)
	if s.AdmittedCount != 5 || s.RejectedCount != 7 {
		t.Errorf("counts after sync = %d/%d", s.AdmittedCount, s.RejectedCount)
	}
	// Attribute tallies are local bookkeeping and survive the sync.
	if s.AdmittedAttributes["local"] != 1 {
		t.Errorf("local tally = %d, want 1", s.AdmittedAttributes["local"])
	}
}

func TestFrequencyClamping(t *testing.T) {
	stats := AttributeStatistics{RelativeFrequencies: map[string]float64{
		"a": 0.5, "b": 1.7, "c": -0.2,
	}}
	tests := []struct {
		attribute string
		want      float64
	}{
		{"a", 0.5},
		{"b", 1},
		{"c", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := stats.Frequency(tt.attribute); got != tt.want {
			t.Errorf("Frequency(%q) = %v, want %v", tt.attribute, got, tt.want)
		}
	}
}

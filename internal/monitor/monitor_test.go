package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/velvetlabs/doorman/internal/engines/policy"
	"github.com/velvetlabs/doorman/pkg/core"
)

func monitorState() *core.GameState {
	s := core.NewGameState(
		[]core.Constraint{{Attribute: "local", MinCount: 100}},
		core.AttributeStatistics{RelativeFrequencies: map[string]float64{"local": 0.4}},
	)
	s.AdmittedCount = 40
	s.RejectedCount = 60
	s.AdmittedAttributes["local"] = 25
	return s
}

func TestConsoleThrottlesByClock(t *testing.T) {
	var buf strings.Builder
	fake := testingclock.NewFakePassiveClock(time.Now())
	c := NewConsole(&buf, fake, 5*time.Second)

	state := monitorState()
	c.OnStateUpdate(state)
	c.OnStateUpdate(state) // within the interval, suppressed

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "admitted=40")
	assert.Contains(t, buf.String(), "local:75")

	fake.SetTime(fake.Now().Add(6 * time.Second))
	c.OnStateUpdate(state)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestConsoleSummary(t *testing.T) {
	var buf strings.Builder
	c := NewConsole(&buf, testingclock.NewFakePassiveClock(time.Now()), time.Second)

	c.OnGameEnd("completed", 1000, 1432, true)
	assert.Contains(t, buf.String(), "game completed")
	assert.Contains(t, buf.String(), "constraints_met=true")
}

func TestPrometheusCountsDecisions(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	p := NewPrometheus(reg)

	state := monitorState()
	accept := policy.Decision{Accept: true, Scoring: &policy.Scoring{Helper: true}}
	reject := policy.Decision{Accept: false, Scoring: &policy.Scoring{}}

	p.OnDecision(state, core.Person{}, accept)
	p.OnDecision(state, core.Person{}, reject)
	p.OnDecision(state, core.Person{}, reject)
	p.OnStateUpdate(state)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.decisions.WithLabelValues("accept", "helper")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.decisions.WithLabelValues("reject", "filler")))
	assert.Equal(t, 960.0, testutil.ToFloat64(p.seatsRemaining))
	assert.Equal(t, 75.0, testutil.ToFloat64(p.deficit.WithLabelValues("local")))
}

func TestMultiFansOut(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	var buf strings.Builder

	sink := Multi{
		Noop{},
		NewConsole(&buf, testingclock.NewFakePassiveClock(time.Now()), time.Second),
		NewPrometheus(reg),
	}

	state := monitorState()
	sink.OnDecision(state, core.Person{}, policy.Decision{Accept: true, Scoring: &policy.Scoring{}})
	sink.OnStateUpdate(state)
	sink.OnGameEnd("failed", 40, 20000, false)

	assert.Contains(t, buf.String(), "game failed")
}

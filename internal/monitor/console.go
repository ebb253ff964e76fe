package monitor

import (
	"fmt"
	"io"
	"sort"
	"time"

	"k8s.io/utils/clock"

	"github.com/velvetlabs/doorman/internal/engines/policy"
	"github.com/velvetlabs/doorman/pkg/core"
)

// Console prints periodic progress lines and a final summary. Output is
// throttled to one line per interval; the clock is injected so tests can
// drive it.
type Console struct {
	w        io.Writer
	clock    clock.PassiveClock
	interval time.Duration

	lastPrint time.Time
	decisions int
	accepts   int
}

// NewConsole creates a console reporter writing to w every interval.
func NewConsole(w io.Writer, c clock.PassiveClock, interval time.Duration) *Console {
	return &Console{w: w, clock: c, interval: interval}
}

func (c *Console) OnDecision(state *core.GameState, person core.Person, decision policy.Decision) {
	c.decisions++
	if decision.Accept {
		c.accepts++
	}
}

func (c *Console) OnStateUpdate(state *core.GameState) {
	now := c.clock.Now()
	if !c.lastPrint.IsZero() && now.Sub(c.lastPrint) < c.interval {
		return
	}
	c.lastPrint = now

	fmt.Fprintf(c.w, "admitted=%d rejected=%d seats=%d accept_rate=%.3f deficits=%s\n",
		state.AdmittedCount, state.RejectedCount, state.SeatsRemaining(),
		c.acceptRate(), formatDeficits(state.Deficits()))
}

func (c *Console) OnGameEnd(status string, admitted, rejected int, constraintsMet bool) {
	fmt.Fprintf(c.w, "game %s: admitted=%d rejected=%d constraints_met=%t\n",
		status, admitted, rejected, constraintsMet)
}

func (c *Console) acceptRate() float64 {
	if c.decisions == 0 {
		return 0
	}
	return float64(c.accepts) / float64(c.decisions)
}

func formatDeficits(deficits map[string]int) string {
	keys := make([]string, 0, len(deficits))
	for k := range deficits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%s:%d", k, deficits[k])
	}
	return out
}

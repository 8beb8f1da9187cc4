package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type probe struct {
	phase Phase
	name  string
	trace *[]Phase
	names *[]string
}

func (p *probe) Phase() Phase { return p.phase }
func (p *probe) Update(time.Duration) {
	*p.trace = append(*p.trace, p.phase)
	if p.names != nil {
		*p.names = append(*p.names, p.name)
	}
}

func TestTickRunsSystemsInPhaseOrder(t *testing.T) {
	r := NewRunner()
	var trace []Phase

	// Registered deliberately out of order.
	r.Register(&probe{phase: PhaseCleanup, trace: &trace})
	r.Register(&probe{phase: PhaseInput, trace: &trace})
	r.Register(&probe{phase: PhaseCombat, trace: &trace})
	r.Register(&probe{phase: PhaseMovement, trace: &trace})

	r.Tick(16 * time.Millisecond)
	assert.Equal(t, []Phase{PhaseInput, PhaseMovement, PhaseCombat, PhaseCleanup}, trace)
}

func TestRegistrationOrderBreaksPhaseTies(t *testing.T) {
	r := NewRunner()
	var trace []Phase
	var names []string

	// Stable sort: within a phase, the first registered runs first. The
	// input phase relies on this (network drain before ability triggers).
	r.Register(&probe{phase: PhaseInput, name: "net", trace: &trace, names: &names})
	r.Register(&probe{phase: PhaseInput, name: "ability", trace: &trace, names: &names})

	r.Tick(16 * time.Millisecond)
	assert.Equal(t, []string{"net", "ability"}, names)
}

func TestLateRegistrationResorts(t *testing.T) {
	r := NewRunner()
	var trace []Phase
	r.Register(&probe{phase: PhaseOutput, trace: &trace})
	r.Tick(time.Millisecond)

	r.Register(&probe{phase: PhaseInput, trace: &trace})
	trace = trace[:0]
	r.Tick(time.Millisecond)
	assert.Equal(t, []Phase{PhaseInput, PhaseOutput}, trace)
}

func TestClockAdvancesOnlyWhenTold(t *testing.T) {
	start := time.Unix(1_000_000, 0)
	c := NewClock(start)
	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now(), "reads never move the clock")

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, start.Add(250*time.Millisecond), c.Now())
}

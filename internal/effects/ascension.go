package effects

import (
	"errors"

	"github.com/talgya/chaosmode/internal/game"
)

// ErrSuspended rejects interaction while the ascension cutscene plays.
var ErrSuspended = errors.New("interaction suspended during ascension")

// Phase is a state of the omega machine.
type Phase string

const (
	PhaseNormal    Phase = "normal"
	PhaseAscending Phase = "ascending"
	PhaseOmega     Phase = "omega"
)

// Ascension is the normal → ascending → omega machine. There is no way
// back to normal except Reset.
type Ascension struct {
	phase Phase
}

// NewAscension resumes the machine from persisted state.
func NewAscension(s *game.State) *Ascension {
	if s.OmegaMode {
		return &Ascension{phase: PhaseOmega}
	}
	return &Ascension{phase: PhaseNormal}
}

// Phase returns the current phase.
func (a *Ascension) Phase() Phase { return a.phase }

// Suspended reports whether interaction is paused.
func (a *Ascension) Suspended() bool { return a.phase == PhaseAscending }

// Begin moves normal → ascending when level has reached omegaLevel.
// Reports whether the transition happened.
func (a *Ascension) Begin(s *game.State, omegaLevel uint32) bool {
	if a.phase != PhaseNormal || s.OmegaMode || s.Level < omegaLevel {
		return false
	}
	a.phase = PhaseAscending
	return true
}

// Complete moves ascending → omega and sets omegaMode. Reports whether
// the transition happened; it can only happen once.
func (a *Ascension) Complete(s *game.State) bool {
	if a.phase != PhaseAscending || s.OmegaMode {
		return false
	}
	a.phase = PhaseOmega
	s.OmegaMode = true
	return true
}

// Reset returns to normal for a freshly reset state.
func (a *Ascension) Reset() {
	a.phase = PhaseNormal
}

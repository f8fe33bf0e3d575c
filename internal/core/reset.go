package core

import "fmt"

// ResetPhase is a step of the two-step reset confirmation.
type ResetPhase string

const (
	ResetIdle                  ResetPhase = "idle"
	ResetConfirmRequested      ResetPhase = "confirm_requested"
	ResetFinalConfirmRequested ResetPhase = "final_confirm_requested"
)

// ResetFlow gates the destructive reset behind two confirmations.
//
//	Idle -> ConfirmRequested -> FinalConfirmRequested -> (reset) Idle
//
// Cancel returns to Idle from any phase.
type ResetFlow struct {
	phase ResetPhase
}

// Phase returns the current phase.
func (f *ResetFlow) Phase() ResetPhase {
	if f.phase == "" {
		return ResetIdle
	}
	return f.phase
}

// Request opens the first confirmation.
func (f *ResetFlow) Request() error {
	return f.advance(ResetIdle, ResetConfirmRequested)
}

// Confirm accepts the first confirmation and opens the final one.
func (f *ResetFlow) Confirm() error {
	return f.advance(ResetConfirmRequested, ResetFinalConfirmRequested)
}

// Finalize accepts the final confirmation. The caller performs the reset
// only when this returns nil.
func (f *ResetFlow) Finalize() error {
	return f.advance(ResetFinalConfirmRequested, ResetIdle)
}

// Cancel abandons the flow without side effects.
func (f *ResetFlow) Cancel() {
	f.phase = ResetIdle
}

func (f *ResetFlow) advance(from, to ResetPhase) error {
	if f.Phase() != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidResetTransition, from, to, f.Phase())
	}
	f.phase = to
	return nil
}

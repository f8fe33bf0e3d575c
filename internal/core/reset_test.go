package core

import (
	"errors"
	"testing"
)

func TestResetFlow_HappyPath(t *testing.T) {
	var f ResetFlow
	if f.Phase() != ResetIdle {
		t.Fatalf("zero value phase = %s, want idle", f.Phase())
	}

	steps := []struct {
		name string
		step func() error
		want ResetPhase
	}{
		{"request", f.Request, ResetConfirmRequested},
		{"confirm", f.Confirm, ResetFinalConfirmRequested},
		{"finalize", f.Finalize, ResetIdle},
	}
	for _, s := range steps {
		if err := s.step(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if f.Phase() != s.want {
			t.Fatalf("%s: phase = %s, want %s", s.name, f.Phase(), s.want)
		}
	}
}

func TestResetFlow_OutOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*ResetFlow)
		step  func(*ResetFlow) error
		want  ResetPhase
	}{
		{"confirm from idle", func(*ResetFlow) {}, (*ResetFlow).Confirm, ResetIdle},
		{"finalize from idle", func(*ResetFlow) {}, (*ResetFlow).Finalize, ResetIdle},
		{"request twice", func(f *ResetFlow) { f.Request() }, (*ResetFlow).Request, ResetConfirmRequested},
		{"finalize before confirm", func(f *ResetFlow) { f.Request() }, (*ResetFlow).Finalize, ResetConfirmRequested},
		{"confirm twice", func(f *ResetFlow) { f.Request(); f.Confirm() }, (*ResetFlow).Confirm, ResetFinalConfirmRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f ResetFlow
			tt.setup(&f)
			if err := tt.step(&f); !errors.Is(err, ErrInvalidResetTransition) {
				t.Fatalf("err = %v, want ErrInvalidResetTransition", err)
			}
			if f.Phase() != tt.want {
				t.Errorf("phase = %s, want unchanged %s", f.Phase(), tt.want)
			}
		})
	}
}

func TestResetFlow_Cancel(t *testing.T) {
	for _, steps := range [][]func(*ResetFlow) error{
		nil,
		{(*ResetFlow).Request},
		{(*ResetFlow).Request, (*ResetFlow).Confirm},
	} {
		var f ResetFlow
		for _, s := range steps {
			if err := s(&f); err != nil {
				t.Fatal(err)
			}
		}
		f.Cancel()
		if f.Phase() != ResetIdle {
			t.Errorf("after %d steps, cancel left phase %s", len(steps), f.Phase())
		}
	}
}

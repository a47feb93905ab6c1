package rosedb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/looplab/fsm"
)

const (
	StateUninitialized = "uninitialized"
	StateInitialized   = "initialized"

	eventInit = "init"
)

// lifecycle is the uninitialized -> initialized state machine. There is no
// way back.
type lifecycle struct {
	fsm *fsm.FSM
}

func newLifecycle(logger *slog.Logger) *lifecycle {
	return &lifecycle{
		fsm: fsm.NewFSM(
			StateUninitialized,
			fsm.Events{
				{Name: eventInit, Src: []string{StateUninitialized}, Dst: StateInitialized},
			},
			fsm.Callbacks{
				"enter_" + StateInitialized: func(_ context.Context, e *fsm.Event) {
					logger.Debug("store initialized", "from", e.Src)
				},
			},
		),
	}
}

func (l *lifecycle) current() string { return l.fsm.Current() }

func (l *lifecycle) requireInitialized() error {
	if !l.fsm.Is(StateInitialized) {
		return ErrNotInitialized
	}
	return nil
}

func (l *lifecycle) requireUninitialized() error {
	if l.fsm.Is(StateInitialized) {
		return ErrAlreadyInitialized
	}
	return nil
}

func (l *lifecycle) initialize(ctx context.Context) error {
	err := l.fsm.Event(ctx, eventInit)
	if err == nil {
		return nil
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return ErrAlreadyInitialized
	}
	return err
}

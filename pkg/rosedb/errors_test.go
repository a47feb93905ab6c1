package rosedb

import (
	"errors"
	"io"
	"testing"
)

func TestStageErrorIs(t *testing.T) {
	err := stageError(StageLoad, io.ErrUnexpectedEOF)
	if !errors.Is(err, ErrLoad) {
		t.Fatal("expected ErrLoad")
	}
	if errors.Is(err, ErrSave) {
		t.Fatal("must not match another stage")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("cause should be reachable")
	}
	if stageError(StageLoad, nil) != nil {
		t.Fatal("nil error should stay nil")
	}
}

func TestStageErrorNotDoubleWrapped(t *testing.T) {
	inner := stageError(StageSave, io.EOF)
	if got := stageError(StageSave, inner); got != inner {
		t.Fatalf("same-stage error rewrapped: %v", got)
	}
}

func TestGuard(t *testing.T) {
	if err := guard(StageEncrypt, func() error { return nil }); err != nil {
		t.Fatal(err)
	}

	err := guard(StageEncrypt, func() error { panic(42) })
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StageError, got %T", err)
	}
	if !se.Unknown || se.Stage != StageEncrypt || se.Err.Error() != "42" {
		t.Fatalf("unexpected %#v", se)
	}
	if err.Error() != "rosedb: unknown encrypt error: 42" {
		t.Fatalf("Error() = %q", err.Error())
	}

	err = guard(StageDecrypt, func() error { panic(io.EOF) })
	if !errors.Is(err, ErrDecrypt) || !errors.Is(err, io.EOF) {
		t.Fatalf("error panic not wrapped: %v", err)
	}
}

func TestEmptyKeyIsKeyed(t *testing.T) {
	s, _ := newMemStore(t)
	var ev KeyChangeEvent
	var fired bool
	s.OnKeyChange("", func(e KeyChangeEvent) { fired = true; ev = e })
	if err := s.Set("", "blank"); err != nil {
		t.Fatal(err)
	}
	if !fired || ev.NewValue != "blank" {
		t.Fatalf("empty key event: fired=%v %#v", fired, ev)
	}
}

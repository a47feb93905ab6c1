package rosedb

import (
	"errors"
	"fmt"
)

// Lifecycle errors.
var (
	ErrInvalidState       = errors.New("rosedb: invalid state")
	ErrNotInitialized     = fmt.Errorf("%w: not initialized", ErrInvalidState)
	ErrAlreadyInitialized = fmt.Errorf("%w: already initialized", ErrInvalidState)
)

// Pipeline stage errors. A *StageError matches the sentinel of its stage
// under errors.Is.
var (
	ErrSerialize   = errors.New("rosedb: serialize failed")
	ErrDeserialize = errors.New("rosedb: deserialize failed")
	ErrEncrypt     = errors.New("rosedb: encrypt failed")
	ErrDecrypt     = errors.New("rosedb: decrypt failed")
	ErrLoad        = errors.New("rosedb: load failed")
	ErrSave        = errors.New("rosedb: save failed")
)

// Stage identifies one leg of the codec/cipher/backend pipeline.
type Stage string

const (
	StageSerialize   Stage = "serialize"
	StageDeserialize Stage = "deserialize"
	StageEncrypt     Stage = "encrypt"
	StageDecrypt     Stage = "decrypt"
	StageLoad        Stage = "load"
	StageSave        Stage = "save"
)

func (s Stage) sentinel() error {
	switch s {
	case StageSerialize:
		return ErrSerialize
	case StageDeserialize:
		return ErrDeserialize
	case StageEncrypt:
		return ErrEncrypt
	case StageDecrypt:
		return ErrDecrypt
	case StageLoad:
		return ErrLoad
	case StageSave:
		return ErrSave
	}
	return nil
}

// StageError wraps a failure raised by one pipeline stage.
// Unknown is set when the stage panicked with a value that is not an error;
// Err then carries a description of that value.
type StageError struct {
	Stage   Stage
	Err     error
	Unknown bool
}

func (e *StageError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("rosedb: unknown %s error: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("rosedb: %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is matches the stage sentinel, e.g. errors.Is(err, ErrSave).
func (e *StageError) Is(target error) bool {
	return target != nil && target == e.Stage.sentinel()
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) && se.Stage == stage {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// guard runs fn and turns both returned errors and panics into a StageError.
func guard(stage Stage, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = &StageError{Stage: stage, Err: rerr}
				return
			}
			err = &StageError{Stage: stage, Err: fmt.Errorf("%v", r), Unknown: true}
		}
	}()
	return stageError(stage, fn())
}

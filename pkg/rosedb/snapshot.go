package rosedb

import (
	"github.com/tiendc/go-deepcopy"
)

// snapshot returns a deep copy of d that shares no maps or slices with it.
// A nil mapping yields an empty one.
func snapshot(d Data) (Data, error) {
	if len(d) == 0 {
		return Data{}, nil
	}
	var out Data
	if err := deepcopy.Copy(&out, d); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeEvent carries full before/after snapshots of one mutation.
type ChangeEvent struct {
	NewData Data
	OldData Data
}

// KeyChangeEvent describes a single-key mutation. NewExists is false when
// the key was deleted, OldExists is false when it was created.
type KeyChangeEvent struct {
	Key       string
	NewValue  any
	NewExists bool
	OldValue  any
	OldExists bool
}

// change is what the tracker records around one mutation.
type change struct {
	keyed bool
	key   KeyChangeEvent
	whole ChangeEvent
}

// track applies mutate to a working copy of data and returns it with the
// before/after views of the change. On error data is returned untouched.
// keyed is false for bulk changes, which replace the mapping outright: their
// mutate ignores its input and a failed copy of the old mapping only leaves
// OldData nil.
func track(data Data, key string, keyed bool, mutate func(Data) Data) (Data, change, error) {
	before, err := snapshot(data)
	if err != nil && keyed {
		return data, change{}, err
	}

	var next Data
	if keyed {
		if next, err = snapshot(before); err != nil {
			return data, change{}, err
		}
	}
	next = mutate(next)
	after, err := snapshot(next)
	if err != nil {
		return data, change{}, err
	}

	c := change{whole: ChangeEvent{NewData: after, OldData: before}}
	if keyed {
		c.keyed = true
		c.key.Key = key
		c.key.OldValue, c.key.OldExists = before[key]
		c.key.NewValue, c.key.NewExists = after[key]
	}
	return next, c, nil
}

// copyValue deep-copies a single value so the store never shares it with
// the caller.
func copyValue(v any) (any, error) {
	m, err := snapshot(Data{"": v})
	if err != nil {
		return nil, err
	}
	return m[""], nil
}

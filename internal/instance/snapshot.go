package instance

import "github.com/fmi4go/fmi2/internal/cabi"

// Snapshot is an opaque captured FMU state plus a Restore method, so callers
// that want a save/restore point around a batch of steps don't have to
// hand-roll the getFMUstate/setFMUstate/freeFMUstate protocol themselves.
// This is additive sugar over Instance.GetFMUstate/SetFMUstate — both
// remain exported for callers that want the raw calls.
type Snapshot struct {
	state   cabi.FMUstate
	owner   *Instance
	freed   bool
}

// Restore applies the captured state back onto the Instance it was taken
// from.
func (s *Snapshot) Restore() error {
	return s.owner.SetFMUstate(s.state)
}

// Release frees the underlying FMUstate handle. Safe to call more than
// once.
func (s *Snapshot) Release() error {
	if s.freed {
		return nil
	}
	s.freed = true
	return s.owner.FreeFMUstate(s.state)
}

// Serialize returns a portable byte encoding of the snapshot, for callers
// that want to persist it outside process lifetime (testable property 5:
// serializeFMUstate ∘ deSerializeFMUstate round-trips observable reads).
func (s *Snapshot) Serialize() ([]byte, error) {
	return s.owner.SerializeFMUstate(s.state)
}

// Snapshotter is implemented by Instance (and its CoSimInstance/MEInstance
// embedders): Snapshot captures the current FMU state, DeSerialize
// reconstructs one from bytes produced by Snapshot().Serialize().
type Snapshotter interface {
	Snapshot() (*Snapshot, error)
	DeSerializeSnapshot(data []byte) (*Snapshot, error)
}

// Snapshot captures the Instance's current FMU state.
func (i *Instance) Snapshot() (*Snapshot, error) {
	s, err := i.GetFMUstate()
	if err != nil {
		return nil, err
	}
	return &Snapshot{state: s, owner: i}, nil
}

// DeSerializeSnapshot reconstructs a Snapshot from bytes produced by an
// earlier Snapshot().Serialize() call, possibly in a different process.
func (i *Instance) DeSerializeSnapshot(data []byte) (*Snapshot, error) {
	s, err := i.DeSerializeFMUstate(data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{state: s, owner: i}, nil
}

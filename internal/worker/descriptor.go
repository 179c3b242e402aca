package worker

import (
	"github.com/pkg/errors"
	"github.com/windnow/keytoggle/internal/state"
)

type Kind string

const (
	// Simple workers increment and print their own shared counter.
	Simple Kind = "simple"
	// Composite workers count their ticks locally and print the count next
	// to the sum of the shared counters they read.
	Composite Kind = "composite"
)

var ErrInvalidDescriptor = errors.New("invalid worker descriptor")

// Descriptor says what a worker does on every tick.
type Descriptor struct {
	ID     state.WorkerID
	Kind   Kind
	Reads  []state.WorkerID
	Format string
}

// Defaults returns the three-worker demo: two simple workers and one
// composite reading both of them.
func Defaults() []Descriptor {
	return []Descriptor{
		{ID: state.One, Kind: Simple, Format: "<<--%d-->>"},
		{ID: state.Two, Kind: Simple, Format: "<<oo%doo>>"},
		{ID: state.Three, Kind: Composite, Reads: []state.WorkerID{state.One, state.Two}, Format: "<<==%d::%d==>>"},
	}
}

// IDs lists the ids of descs in order.
func IDs(descs []Descriptor) []state.WorkerID {
	ids := make([]state.WorkerID, 0, len(descs))
	for _, d := range descs {
		ids = append(ids, d.ID)
	}
	return ids
}

// ValidateSet checks a whole worker set before anything is started: ids
// are unique and positive, formats are present, and composite workers read
// only simple workers of the same set.
func ValidateSet(descs []Descriptor) error {
	if len(descs) == 0 {
		return errors.Wrap(ErrInvalidDescriptor, "empty worker set")
	}

	kinds := make(map[state.WorkerID]Kind, len(descs))
	for _, d := range descs {
		if d.ID <= 0 {
			return errors.Wrapf(ErrInvalidDescriptor, "worker id %d", int(d.ID))
		}
		if _, ok := kinds[d.ID]; ok {
			return errors.Wrapf(ErrInvalidDescriptor, "worker %s defined twice", d.ID)
		}
		if d.Format == "" {
			return errors.Wrapf(ErrInvalidDescriptor, "worker %s has no format", d.ID)
		}
		switch d.Kind {
		case Simple:
			if len(d.Reads) > 0 {
				return errors.Wrapf(ErrInvalidDescriptor, "simple worker %s cannot read peers", d.ID)
			}
		case Composite:
			if len(d.Reads) == 0 {
				return errors.Wrapf(ErrInvalidDescriptor, "composite worker %s reads nothing", d.ID)
			}
		default:
			return errors.Wrapf(ErrInvalidDescriptor, "worker %s: unknown kind %q", d.ID, d.Kind)
		}
		kinds[d.ID] = d.Kind
	}

	for _, d := range descs {
		for _, r := range d.Reads {
			kind, ok := kinds[r]
			if !ok {
				return errors.Wrapf(ErrInvalidDescriptor, "worker %s reads unknown worker %s", d.ID, r)
			}
			if kind != Simple {
				return errors.Wrapf(ErrInvalidDescriptor, "worker %s reads non-simple worker %s", d.ID, r)
			}
		}
	}
	return nil
}

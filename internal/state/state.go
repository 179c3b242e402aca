// Package state holds the enablement flags, tick counters and the shutdown
// flag shared by the controller and the workers.
//
// Everything lives behind one mutex. Each worker owns a sync.Cond bound to
// that mutex; the controller raises it in the same critical section that
// changes the flag the worker waits on, so a wakeup can never fall between
// the worker's check and its Wait.
package state

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownWorker = errors.New("unknown worker")
	ErrNoWorkers     = errors.New("no workers")
	ErrDuplicateID   = errors.New("duplicate worker id")
)

type SharedState struct {
	mu           sync.Mutex
	ids          []WorkerID
	enabled      map[WorkerID]bool
	counter      map[WorkerID]uint64
	wakeup       map[WorkerID]*sync.Cond
	shuttingDown bool
}

// Snapshot is a copy of the shared state taken under the lock.
type Snapshot struct {
	ShuttingDown bool
	Enabled      map[WorkerID]bool
	Counters     map[WorkerID]uint64
}

// New creates the state for the given worker set. All flags start false and
// all counters at zero.
func New(ids []WorkerID) (*SharedState, error) {
	if len(ids) == 0 {
		return nil, ErrNoWorkers
	}

	s := &SharedState{
		ids:     make([]WorkerID, 0, len(ids)),
		enabled: make(map[WorkerID]bool, len(ids)),
		counter: make(map[WorkerID]uint64, len(ids)),
		wakeup:  make(map[WorkerID]*sync.Cond, len(ids)),
	}
	for _, id := range ids {
		if _, ok := s.wakeup[id]; ok {
			return nil, errors.Wrapf(ErrDuplicateID, "worker %s", id)
		}
		s.ids = append(s.ids, id)
		s.enabled[id] = false
		s.counter[id] = 0
		s.wakeup[id] = sync.NewCond(&s.mu)
	}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })

	return s, nil
}

// IDs returns the worker ids in ascending order.
func (s *SharedState) IDs() []WorkerID {
	result := make([]WorkerID, len(s.ids))
	copy(result, s.ids)
	return result
}

// Toggle flips the enabled flag of id and returns the new value. Enabling
// signals the worker's cond; disabling needs no signal since the worker
// re-checks its flag before every tick.
func (s *SharedState) Toggle(id WorkerID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cond, ok := s.wakeup[id]
	if !ok {
		return false, errors.Wrapf(ErrUnknownWorker, "toggle %s", id)
	}

	s.enabled[id] = !s.enabled[id]
	if s.enabled[id] {
		cond.Signal()
	}
	return s.enabled[id], nil
}

// RequestShutdown sets the shutdown flag and wakes every worker. It reports
// whether this call made the transition.
func (s *SharedState) RequestShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown {
		return false
	}
	s.shuttingDown = true
	for _, id := range s.ids {
		s.wakeup[id].Broadcast()
	}
	return true
}

func (s *SharedState) IsEnabled(id WorkerID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wakeup[id]; !ok {
		return false, errors.Wrapf(ErrUnknownWorker, "enabled %s", id)
	}
	return s.enabled[id], nil
}

func (s *SharedState) IsShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shuttingDown
}

func (s *SharedState) IncrementAndGet(id WorkerID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counter[id]; !ok {
		return 0, errors.Wrapf(ErrUnknownWorker, "increment %s", id)
	}
	s.counter[id]++
	return s.counter[id], nil
}

func (s *SharedState) Peek(id WorkerID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.counter[id]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownWorker, "peek %s", id)
	}
	return v, nil
}

// Sum returns the total of the given counters read in one critical section.
func (s *SharedState) Sum(ids ...WorkerID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return (&Tx{s: s}).Sum(ids...)
}

func (s *SharedState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ShuttingDown: s.shuttingDown,
		Enabled:      make(map[WorkerID]bool, len(s.ids)),
		Counters:     make(map[WorkerID]uint64, len(s.ids)),
	}
	for _, id := range s.ids {
		snap.Enabled[id] = s.enabled[id]
		snap.Counters[id] = s.counter[id]
	}
	return snap
}

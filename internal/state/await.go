package state

import "github.com/pkg/errors"

// Tx gives access to the counters while the state lock is already held. It
// is only valid inside the commit callback of Await.
type Tx struct {
	s *SharedState
}

// Await blocks the calling worker until id is enabled or shutdown has been
// requested. Shutdown is checked first, so a worker woken by RequestShutdown
// never runs another tick even if its flag is still set.
//
// When the worker may proceed, commit runs in the same critical section and
// Await returns true. On shutdown it returns false without calling commit.
// This is the only call in the package that blocks while owning the lock;
// sync.Cond.Wait releases it for the duration of the wait.
func (s *SharedState) Await(id WorkerID, commit func(*Tx) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cond, ok := s.wakeup[id]
	if !ok {
		return false, errors.Wrapf(ErrUnknownWorker, "await %s", id)
	}

	for {
		if s.shuttingDown {
			return false, nil
		}
		if s.enabled[id] {
			break
		}
		cond.Wait()
	}

	if commit == nil {
		return true, nil
	}
	if err := commit(&Tx{s: s}); err != nil {
		return false, err
	}
	return true, nil
}

func (tx *Tx) IncrementAndGet(id WorkerID) (uint64, error) {
	if _, ok := tx.s.counter[id]; !ok {
		return 0, errors.Wrapf(ErrUnknownWorker, "increment %s", id)
	}
	tx.s.counter[id]++
	return tx.s.counter[id], nil
}

func (tx *Tx) Peek(id WorkerID) (uint64, error) {
	v, ok := tx.s.counter[id]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownWorker, "peek %s", id)
	}
	return v, nil
}

func (tx *Tx) Sum(ids ...WorkerID) (uint64, error) {
	var total uint64
	for _, id := range ids {
		v, err := tx.Peek(id)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

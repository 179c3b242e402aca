// Package worker runs the tick loop of a single toggleable task.
package worker

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/windnow/keytoggle/internal/output"
	"github.com/windnow/keytoggle/internal/state"
)

type Worker struct {
	desc  Descriptor
	state *state.SharedState
	sink  output.Sink
	tick  time.Duration
	log   logrus.FieldLogger

	// local is the composite worker's own tick count. Only the worker
	// goroutine touches it.
	local uint64
}

func New(desc Descriptor, st *state.SharedState, sink output.Sink, tick time.Duration, log logrus.FieldLogger) (*Worker, error) {
	if desc.ID <= 0 || desc.Format == "" {
		return nil, errors.Wrapf(ErrInvalidDescriptor, "worker %s", desc.ID)
	}
	if desc.Kind != Simple && desc.Kind != Composite {
		return nil, errors.Wrapf(ErrInvalidDescriptor, "worker %s: unknown kind %q", desc.ID, desc.Kind)
	}
	if tick <= 0 {
		return nil, errors.Errorf("worker %s: tick must be positive, got %s", desc.ID, tick)
	}
	if st == nil || sink == nil {
		return nil, errors.Errorf("worker %s: state and sink are required", desc.ID)
	}
	return &Worker{
		desc:  desc,
		state: st,
		sink:  sink,
		tick:  tick,
		log:   log,
	}, nil
}

func (w *Worker) ID() state.WorkerID {
	return w.desc.ID
}

// Run blocks while the worker is disabled, emits one line per tick while it
// is enabled and returns once shutdown is observed. The result is the number
// of ticks the worker ran.
func (w *Worker) Run() (uint64, error) {
	w.log.Debugf("Воркер %s запущен (%s)", w.desc.ID, w.desc.Kind)

	var ticks uint64
	for {
		var line string
		ok, err := w.state.Await(w.desc.ID, func(tx *state.Tx) error {
			var err error
			line, err = w.commit(tx)
			return err
		})
		if err != nil {
			return ticks, errors.Wrapf(err, "worker %s", w.desc.ID)
		}
		if !ok {
			break
		}

		ticks++
		if err := w.sink.WriteLine(line); err != nil {
			w.log.Errorf("Воркер %s: ошибка вывода: %s", w.desc.ID, err.Error())
		}

		time.Sleep(w.tick)
	}

	w.log.Debugf("Воркер %s завершен, тактов: %d", w.desc.ID, ticks)
	return ticks, nil
}

// commit runs under the state lock: it advances the counters and renders the
// line for this tick from one consistent view.
func (w *Worker) commit(tx *state.Tx) (string, error) {
	switch w.desc.Kind {
	case Composite:
		sum, err := tx.Sum(w.desc.Reads...)
		if err != nil {
			return "", err
		}
		w.local++
		return fmt.Sprintf(w.desc.Format, w.local, sum), nil
	default:
		n, err := tx.IncrementAndGet(w.desc.ID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(w.desc.Format, n), nil
	}
}

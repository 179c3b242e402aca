// Package supervisor starts the controller and the workers around one
// shared state and waits for all of them.
package supervisor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/windnow/keytoggle/internal/controller"
	"github.com/windnow/keytoggle/internal/output"
	"github.com/windnow/keytoggle/internal/state"
	"github.com/windnow/keytoggle/internal/worker"
)

type Supervisor struct {
	descs  []worker.Descriptor
	tick   time.Duration
	enable []state.WorkerID
	sink   output.Sink
	log    logrus.FieldLogger
}

// Report is what the run left behind once every task has terminated.
type Report struct {
	Ticks    map[state.WorkerID]uint64
	Counters map[state.WorkerID]uint64
	Elapsed  time.Duration
}

// New validates the worker set. Nothing is started here: a set that fails
// validation never gets a partially running process.
func New(descs []worker.Descriptor, tick time.Duration, sink output.Sink, log logrus.FieldLogger) (*Supervisor, error) {
	if err := worker.ValidateSet(descs); err != nil {
		return nil, errors.Wrap(err, "supervisor")
	}
	if tick <= 0 {
		return nil, errors.Errorf("supervisor: tick must be positive, got %s", tick)
	}
	return &Supervisor{
		descs: descs,
		tick:  tick,
		sink:  sink,
		log:   log,
	}, nil
}

// Enable marks workers that are switched on before any task starts.
func (s *Supervisor) Enable(ids ...state.WorkerID) {
	s.enable = append(s.enable, ids...)
}

// Run blocks until the controller has consumed a quit (or events is closed,
// or ctx is done) and every worker has terminated.
func (s *Supervisor) Run(ctx context.Context, events <-chan controller.Event) (*Report, error) {
	st, err := state.New(worker.IDs(s.descs))
	if err != nil {
		return nil, errors.Wrap(err, "init state")
	}

	workers := make([]*worker.Worker, 0, len(s.descs))
	for _, d := range s.descs {
		w, err := worker.New(d, st, s.sink, s.tick, s.log)
		if err != nil {
			return nil, errors.Wrapf(err, "init worker %s", d.ID)
		}
		workers = append(workers, w)
	}

	enabled := make(map[state.WorkerID]bool, len(s.enable))
	for _, id := range s.enable {
		if enabled[id] {
			continue
		}
		if _, err := st.Toggle(id); err != nil {
			return nil, errors.Wrap(err, "enable at start")
		}
		enabled[id] = true
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	var mutex sync.Mutex
	var runErr error
	ticks := make(map[state.WorkerID]uint64, len(workers))

	ctrl := controller.New(st, s.log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.Run(ctx, events)
	}()

	for _, w := range workers {
		wg.Add(1)
		go func(w *worker.Worker) {
			defer wg.Done()
			n, err := w.Run()

			mutex.Lock()
			defer mutex.Unlock()
			ticks[w.ID()] = n
			if err != nil {
				s.log.Errorf("Воркер %s остановлен с ошибкой: %s", w.ID(), err.Error())
				if runErr == nil {
					runErr = err
				}
				// release the controller and the other workers
				cancel()
				st.RequestShutdown()
			}
		}(w)
	}

	s.log.Infof("Запущено воркеров: %d, такт %s", len(workers), s.tick)
	wg.Wait()
	s.log.Info("Все процессы завершены")

	report := &Report{
		Ticks:    ticks,
		Counters: st.Snapshot().Counters,
		Elapsed:  time.Since(start),
	}
	if err := s.sink.WriteLine(report.String()); err != nil {
		s.log.Errorf("Ошибка вывода итога: %s", err.Error())
	}
	for _, id := range st.IDs() {
		s.log.Infof("Воркер %s: тактов %d", id, ticks[id])
	}

	return report, runErr
}

func (r *Report) String() string {
	ids := make([]state.WorkerID, 0, len(r.Ticks))
	for id := range r.Ticks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%d", id, r.Ticks[id]))
	}
	return fmt.Sprintf("ticks: %s (%s)", strings.Join(parts, " "), r.Elapsed.Round(time.Millisecond))
}

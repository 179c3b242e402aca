package supervisor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/windnow/keytoggle/internal/controller"
	"github.com/windnow/keytoggle/internal/state"
	"github.com/windnow/keytoggle/internal/worker"
)

const tick = 50 * time.Millisecond

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) WriteLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// byPrefix counts worker lines by their default format prefix.
func byPrefix(lines []string) map[string][]string {
	result := make(map[string][]string)
	for _, l := range lines {
		for _, p := range []string{"<<--", "<<oo", "<<=="} {
			if strings.HasPrefix(l, p) {
				result[p] = append(result[p], l)
			}
		}
	}
	return result
}

type outcome struct {
	report *Report
	err    error
}

func launch(t *testing.T, sink *recorder, enable ...state.WorkerID) (chan<- controller.Event, <-chan outcome) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := New(worker.Defaults(), tick, sink, logger)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	s.Enable(enable...)

	events := make(chan controller.Event, 8)
	done := make(chan outcome, 1)
	go func() {
		r, err := s.Run(context.Background(), events)
		done <- outcome{r, err}
	}()
	return events, done
}

func finish(t *testing.T, done <-chan outcome) *Report {
	t.Helper()
	select {
	case o := <-done:
		if o.err != nil {
			t.Fatalf("Run() failed: %v", o.err)
		}
		return o.report
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not return")
	}
	return nil
}

func TestOnlyWorkerOneRuns(t *testing.T) {
	sink := &recorder{}
	events, done := launch(t, sink)

	events <- controller.Toggle(state.One)
	time.Sleep(4 * tick)
	events <- controller.QuitEvent()
	report := finish(t, done)

	got := byPrefix(sink.Lines())
	if len(got["<<--"]) < 2 {
		t.Errorf("worker one wrote %d lines, want >= 2", len(got["<<--"]))
	}
	if len(got["<<oo"]) != 0 || len(got["<<=="]) != 0 {
		t.Errorf("disabled workers wrote output: %v", got)
	}
	for i, l := range got["<<--"] {
		if want := fmt.Sprintf("<<--%d-->>", i+1); l != want {
			t.Errorf("line %d = %q, want %q", i, l, want)
		}
	}
	if report.Ticks[state.Two] != 0 || report.Ticks[state.Three] != 0 {
		t.Errorf("report ticks = %v", report.Ticks)
	}
	if report.Counters[state.One] != report.Ticks[state.One] {
		t.Errorf("counter one = %d, ticks = %d", report.Counters[state.One], report.Ticks[state.One])
	}
}

func TestCompositeSeesOnlyWorkerOne(t *testing.T) {
	sink := &recorder{}
	events, done := launch(t, sink, state.One, state.Three)

	time.Sleep(4 * tick)
	events <- controller.QuitEvent()
	report := finish(t, done)

	composite := byPrefix(sink.Lines())["<<=="]
	if len(composite) == 0 {
		t.Fatal("composite worker wrote nothing")
	}

	var prevSum uint64
	for i, l := range composite {
		var n, sum uint64
		if _, err := fmt.Sscanf(l, "<<==%d::%d==>>", &n, &sum); err != nil {
			t.Fatalf("line %q: %v", l, err)
		}
		if n != uint64(i+1) {
			t.Errorf("composite count = %d, want %d", n, i+1)
		}
		if sum < prevSum || sum > report.Counters[state.One] {
			t.Errorf("sum %d out of range [%d, %d]", sum, prevSum, report.Counters[state.One])
		}
		prevSum = sum
	}
	if report.Counters[state.Two] != 0 {
		t.Errorf("worker two counted %d", report.Counters[state.Two])
	}
}

func TestAllWorkersThreeTicksThenQuit(t *testing.T) {
	sink := &recorder{}
	events, done := launch(t, sink, state.One, state.Two, state.Three)

	time.Sleep(3*tick - tick/2)
	events <- controller.QuitEvent()
	quitAt := len(sink.Lines())
	finish(t, done)

	lines := sink.Lines()
	got := byPrefix(lines)
	for _, p := range []string{"<<--", "<<oo", "<<=="} {
		if n := len(got[p]); n < 2 || n > 4 {
			t.Errorf("%s wrote %d lines, want 2..4", p, n)
		}
	}

	// At most one tick per worker may have been committed right before quit.
	if extra := len(lines) - 1 - quitAt; extra > 3 {
		t.Errorf("%d worker lines written after quit", extra)
	}
	if !strings.HasPrefix(lines[len(lines)-1], "ticks: ") {
		t.Errorf("last line = %q, want the report", lines[len(lines)-1])
	}
}

func TestQuickToggleThenLaterQuit(t *testing.T) {
	sink := &recorder{}
	events, done := launch(t, sink)

	events <- controller.Toggle(state.Two)
	events <- controller.Toggle(state.Two)
	time.Sleep(3 * tick)
	events <- controller.QuitEvent()
	report := finish(t, done)

	if n := report.Ticks[state.Two]; n > 1 {
		t.Errorf("worker two ran %d ticks, want 0 or 1", n)
	}
}

func TestClosedEventsStopEverything(t *testing.T) {
	sink := &recorder{}
	events, done := launch(t, sink, state.One)

	time.Sleep(tick)
	close(events)
	finish(t, done)
}

func TestInvalidSetStartsNothing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	descs := []worker.Descriptor{
		{ID: state.One, Kind: worker.Simple, Format: "%d"},
		{ID: state.Three, Kind: worker.Composite, Reads: []state.WorkerID{state.Two}, Format: "%d %d"},
	}

	if _, err := New(descs, tick, &recorder{}, logger); !errors.Is(err, worker.ErrInvalidDescriptor) {
		t.Errorf("New() = %v, want ErrInvalidDescriptor", err)
	}
	if _, err := New(worker.Defaults(), 0, &recorder{}, logger); err == nil {
		t.Error("zero tick accepted")
	}
}

func TestEnableUnknownWorkerFails(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sink := &recorder{}
	s, err := New(worker.Defaults(), tick, sink, logger)
	if err != nil {
		t.Fatal(err)
	}
	s.Enable(state.WorkerID(7))

	if _, err := s.Run(context.Background(), make(chan controller.Event)); !errors.Is(err, state.ErrUnknownWorker) {
		t.Errorf("Run() = %v, want ErrUnknownWorker", err)
	}
	if len(sink.Lines()) != 0 {
		t.Error("output written by a run that never started")
	}
}

func TestReportString(t *testing.T) {
	r := &Report{
		Ticks:   map[state.WorkerID]uint64{state.Three: 1, state.One: 4, state.Two: 0},
		Elapsed: 1500 * time.Millisecond,
	}
	if got, want := r.String(), "ticks: one=4 two=0 three=1 (1.5s)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDuplicateEnableKeepsWorkerOn(t *testing.T) {
	sink := &recorder{}
	events, done := launch(t, sink, state.One, state.One)

	time.Sleep(2 * tick)
	events <- controller.QuitEvent()
	report := finish(t, done)

	if report.Ticks[state.One] == 0 {
		t.Error("worker one was switched off by a repeated enable")
	}
}

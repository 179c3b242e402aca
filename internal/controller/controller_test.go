package controller

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/windnow/keytoggle/internal/state"
)

func setup(t *testing.T) (*Controller, *state.SharedState, *test.Hook) {
	t.Helper()
	st, err := state.New([]state.WorkerID{state.One, state.Two, state.Three})
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return New(st, logger), st, hook
}

func runAsync(c *Controller, ctx context.Context, events <-chan Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		c.Run(ctx, events)
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("controller did not stop")
	}
}

func TestToggleDispatch(t *testing.T) {
	c, st, _ := setup(t)

	c.OnToggleRequested(state.One)
	c.OnToggleRequested(state.Three)
	c.OnToggleRequested(state.Three)

	snap := st.Snapshot()
	if !snap.Enabled[state.One] || snap.Enabled[state.Two] || snap.Enabled[state.Three] {
		t.Errorf("enabled = %v", snap.Enabled)
	}
}

func TestUnknownWorkerIsIgnored(t *testing.T) {
	c, st, hook := setup(t)

	c.OnToggleRequested(state.WorkerID(9))

	if st.IsShuttingDown() {
		t.Error("unknown toggle triggered shutdown")
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Errorf("expected a warning, got %v", e)
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	c, st, _ := setup(t)
	events := make(chan Event, 4)
	events <- Toggle(state.Two)
	events <- QuitEvent()
	events <- Toggle(state.One)

	done := runAsync(c, context.Background(), events)
	waitDone(t, done)

	snap := st.Snapshot()
	if !snap.ShuttingDown {
		t.Error("quit did not request shutdown")
	}
	if !snap.Enabled[state.Two] {
		t.Error("event before quit was not applied")
	}
	if snap.Enabled[state.One] {
		t.Error("event after quit was consumed")
	}
	if len(events) != 1 {
		t.Errorf("%d events left in queue, want 1", len(events))
	}
}

func TestRunTreatsClosedSourceAsQuit(t *testing.T) {
	c, st, _ := setup(t)
	events := make(chan Event)
	done := runAsync(c, context.Background(), events)

	close(events)
	waitDone(t, done)

	if !st.IsShuttingDown() {
		t.Error("closed source did not request shutdown")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	c, st, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(c, ctx, make(chan Event))

	cancel()
	waitDone(t, done)

	if !st.IsShuttingDown() {
		t.Error("cancel did not request shutdown")
	}
}

func TestEventString(t *testing.T) {
	if s := Toggle(state.Two).String(); s != "toggle(two)" {
		t.Errorf("String() = %q", s)
	}
	if s := QuitEvent().String(); s != "quit" {
		t.Errorf("String() = %q", s)
	}
}

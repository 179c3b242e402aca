package controller

import (
	"fmt"

	"github.com/windnow/keytoggle/internal/state"
)

type EventKind int

const (
	ToggleWorker EventKind = iota
	Quit
)

// Event is a decoded user request.
type Event struct {
	Kind   EventKind
	Worker state.WorkerID
}

func Toggle(id state.WorkerID) Event {
	return Event{Kind: ToggleWorker, Worker: id}
}

func QuitEvent() Event {
	return Event{Kind: Quit}
}

func (e Event) String() string {
	switch e.Kind {
	case ToggleWorker:
		return fmt.Sprintf("toggle(%s)", e.Worker)
	case Quit:
		return "quit"
	}
	return fmt.Sprintf("event(%d)", int(e.Kind))
}

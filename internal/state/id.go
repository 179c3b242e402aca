package state

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WorkerID identifies the flag, counter and wakeup cond a worker owns.
type WorkerID int

const (
	One WorkerID = iota + 1
	Two
	Three
)

var idNames = map[WorkerID]string{
	One:   "one",
	Two:   "two",
	Three: "three",
}

func (id WorkerID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return "worker-" + strconv.Itoa(int(id))
}

// ParseWorkerID accepts either the numeric id or one of the names of the
// default workers ("one", "two", "three").
func ParseWorkerID(s string) (WorkerID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for id, name := range idNames {
		if s == name {
			return id, nil
		}
	}
	s = strings.TrimPrefix(s, "worker-")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrUnknownWorker, "parse %q", s)
	}
	if n <= 0 {
		return 0, errors.Wrapf(ErrUnknownWorker, "parse %q: id must be positive", s)
	}
	return WorkerID(n), nil
}

// UnmarshalText lets config files refer to workers by number or by name.
func (id *WorkerID) UnmarshalText(text []byte) error {
	v, err := ParseWorkerID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id WorkerID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

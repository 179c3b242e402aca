// Package input reads raw keypresses from a terminal and decodes them into
// controller events.
package input

import (
	"bufio"
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/windnow/keytoggle/internal/controller"
)

type Source struct {
	reader io.Reader
	keys   KeyMap
	log    logrus.FieldLogger
}

func NewSource(r io.Reader, keys KeyMap, log logrus.FieldLogger) *Source {
	return &Source{
		reader: r,
		keys:   keys,
		log:    log,
	}
}

// Run reads one byte at a time and sends the bound events to events. It
// returns after forwarding a quit event, at EOF, or when ctx is done, and
// closes events in every case.
func (s *Source) Run(ctx context.Context, events chan<- controller.Event) error {
	defer close(events)

	br := bufio.NewReader(s.reader)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			s.log.Debug("Ввод завершен (EOF)")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read key")
		}

		ev, ok := s.keys[b]
		if !ok {
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
		if ev.Kind == controller.Quit {
			return nil
		}
	}
}

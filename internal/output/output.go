// Package output serializes the lines produced by the workers.
package output

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Sink consumes one text line per call. Implementations must be safe for
// concurrent use.
type Sink interface {
	WriteLine(line string) error
}

type Writer struct {
	mutex sync.Mutex
	w     io.Writer
	sep   string
	lines uint64
}

// New returns a Sink writing to w. Every line is terminated with sep; an
// empty sep means "\n".
func New(w io.Writer, sep string) *Writer {
	if sep == "" {
		sep = "\n"
	}
	return &Writer{w: w, sep: sep}
}

func (o *Writer) WriteLine(line string) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, err := io.WriteString(o.w, line+o.sep); err != nil {
		return errors.Wrap(err, "write line")
	}
	o.lines++
	return nil
}

// Lines returns how many lines were written successfully.
func (o *Writer) Lines() uint64 {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	return o.lines
}

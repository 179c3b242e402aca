//go:build linux || darwin || freebsd || netbsd || openbsd

package input

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Terminal remembers the original mode of a tty so it can be restored.
type Terminal struct {
	fd    int
	saved unix.Termios
}

// MakeRaw switches fd to non-canonical mode without echo. Signals (Ctrl-C)
// keep working. Returns ErrNotTerminal when fd is not a tty.
func MakeRaw(fd int) (*Terminal, error) {
	current, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, errors.Wrap(ErrNotTerminal, err.Error())
	}

	t := &Terminal{fd: fd, saved: *current}

	raw := *current
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, errors.Wrap(err, "set raw mode")
	}
	return t, nil
}

func (t *Terminal) Restore() error {
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.saved); err != nil {
		return errors.Wrap(err, "restore terminal")
	}
	return nil
}

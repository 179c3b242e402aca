//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package input

type Terminal struct{}

func MakeRaw(fd int) (*Terminal, error) {
	return nil, ErrNotTerminal
}

func (t *Terminal) Restore() error {
	return nil
}

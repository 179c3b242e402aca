package input

import "github.com/pkg/errors"

var ErrNotTerminal = errors.New("not a terminal")

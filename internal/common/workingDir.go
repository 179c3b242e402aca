package common

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WorkingDir stores the directory of the running executable in wd.
func WorkingDir(wd *string) error {

	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "executable path")
	}
	workDir := filepath.Dir(exe)
	*wd, err = filepath.Abs(workDir)
	if err != nil {
		return errors.Wrap(err, "working dir")
	}

	return nil
}

package input

import (
	"github.com/pkg/errors"
	"github.com/windnow/keytoggle/internal/controller"
	"github.com/windnow/keytoggle/internal/state"
)

// KeyMap binds single key bytes to events. Keys not in the map are ignored.
type KeyMap map[byte]controller.Event

// DefaultKeyMap binds '1'..'3' to the default workers and '0' to quit.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		'1': controller.Toggle(state.One),
		'2': controller.Toggle(state.Two),
		'3': controller.Toggle(state.Three),
		'0': controller.QuitEvent(),
	}
}

// Bind adds a key for ev, refusing keys that are already taken.
func (k KeyMap) Bind(key string, ev controller.Event) error {
	if len(key) != 1 {
		return errors.Errorf("key %q must be a single character", key)
	}
	if prev, ok := k[key[0]]; ok {
		return errors.Errorf("key %q already bound to %s", key, prev)
	}
	k[key[0]] = ev
	return nil
}

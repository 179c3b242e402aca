package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/windnow/keytoggle/internal/controller"
	"github.com/windnow/keytoggle/internal/input"
	"github.com/windnow/keytoggle/internal/state"
	"github.com/windnow/keytoggle/internal/worker"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Tick      Duration         `toml:"tick" yaml:"tick"`
	LogLevel  string           `toml:"log_level" yaml:"log_level"`
	LogFile   string           `toml:"log_file" yaml:"log_file"`
	QuitKey   string           `toml:"quit_key" yaml:"quit_key"`
	Separator string           `toml:"separator" yaml:"separator"`
	Enable    []state.WorkerID `toml:"enable" yaml:"enable"`
	Workers   []Worker         `toml:"workers" yaml:"workers"`
}

type Worker struct {
	ID     state.WorkerID   `toml:"id" yaml:"id"`
	Key    string           `toml:"key" yaml:"key"`
	Kind   string           `toml:"kind" yaml:"kind"`
	Reads  []state.WorkerID `toml:"reads" yaml:"reads"`
	Format string           `toml:"format" yaml:"format"`
}

// Duration reads "1s", "250ms" and the like from config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return errors.Wrapf(err, "duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// New returns the three-worker demo: keys 1, 2, 3 toggle the workers, 0 quits,
// one tick per second.
func New() *Config {
	keys := []string{"1", "2", "3"}
	workers := make([]Worker, 0, 3)
	for i, d := range worker.Defaults() {
		workers = append(workers, Worker{
			ID:     d.ID,
			Key:    keys[i],
			Kind:   string(d.Kind),
			Reads:  d.Reads,
			Format: d.Format,
		})
	}

	return &Config{
		Tick:      Duration{time.Second},
		LogLevel:  "info",
		QuitKey:   "0",
		Separator: "\n",
		Workers:   workers,
	}
}

// Load overlays the file at path on top of the defaults. Files ending in
// .yaml or .yml are read as YAML, everything else as TOML. A file that lists
// workers replaces the default set instead of merging into it.
func Load(path string) (*Config, error) {
	conf := New()
	defaults := conf.Workers
	conf.Workers = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	default:
		if _, err := toml.DecodeFile(path, conf); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if len(conf.Workers) == 0 {
		conf.Workers = defaults
	}
	return conf, conf.Validate()
}

// Descriptors converts the worker section into worker descriptors.
func (c *Config) Descriptors() []worker.Descriptor {
	result := make([]worker.Descriptor, 0, len(c.Workers))
	for _, w := range c.Workers {
		result = append(result, worker.Descriptor{
			ID:     w.ID,
			Kind:   worker.Kind(w.Kind),
			Reads:  w.Reads,
			Format: w.Format,
		})
	}
	return result
}

// KeyMap binds every worker key and the quit key.
func (c *Config) KeyMap() (input.KeyMap, error) {
	keys := input.KeyMap{}
	for _, w := range c.Workers {
		if err := keys.Bind(w.Key, controller.Toggle(w.ID)); err != nil {
			return nil, errors.Wrapf(err, "worker %s", w.ID)
		}
	}
	if err := keys.Bind(c.QuitKey, controller.QuitEvent()); err != nil {
		return nil, errors.Wrap(err, "quit key")
	}
	return keys, nil
}

func (c *Config) Validate() error {
	if c.Tick.Duration <= 0 {
		return errors.Errorf("tick must be positive, got %s", c.Tick.Duration)
	}
	if err := worker.ValidateSet(c.Descriptors()); err != nil {
		return err
	}
	if _, err := c.KeyMap(); err != nil {
		return err
	}

	known := make(map[state.WorkerID]bool, len(c.Workers))
	for _, w := range c.Workers {
		known[w.ID] = true
	}
	for _, id := range c.Enable {
		if !known[id] {
			return errors.Wrapf(state.ErrUnknownWorker, "enable %s", id)
		}
	}
	return nil
}

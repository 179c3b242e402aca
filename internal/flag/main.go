package flag

import (
	"flag"
	"strings"
	"time"
)

func Parse() {
	flag.Parse()
}

type stringSlice []string

func (s stringSlice) String() string {
	return strings.Join(s, ", ")
}
func (s *stringSlice) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}
func (s stringSlice) Get() any { return []string(s) }

func StringVar(p *string, name, value, usage string) {
	flag.StringVar(p, name, value, usage)
}
func DurationVar(p *time.Duration, name string, value time.Duration, usage string) {
	flag.DurationVar(p, name, value, usage)
}

// StringSliceVar accepts the flag several times and comma separated lists.
func StringSliceVar(slice *[]string, name, usage string) {
	flag.Var((*stringSlice)(slice), name, usage)
}

// Passed reports whether the flag was given on the command line.
func Passed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

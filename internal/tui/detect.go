package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode is how vtree talks to the user: full-screen views and styled
// output, or plain text for scripts and pipelines.
type Mode int

const (
	ModeNonInteractive Mode = iota
	ModeInteractive
)

// EnvNonInteractive forces ModeNonInteractive when set to 1.
const EnvNonInteractive = "VTREE_NON_INTERACTIVE"

// envOverrides are checked in order; the first match wins.
var envOverrides = []struct {
	name  string
	match func(string) bool
}{
	{EnvNonInteractive, func(v string) bool { return v == "1" }},
	{"CI", func(v string) bool { return v != "" }},
	{"NO_COLOR", func(v string) bool { return v != "" }},
}

// detector holds the environment lookups so tests can swap them.
type detector struct {
	getenv     func(string) string
	isTerminal func(*os.File) bool
}

var system = detector{
	getenv:     os.Getenv,
	isTerminal: func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) },
}

// reason is empty when both ends are terminals and no override is set.
func (d detector) reason() string {
	for _, o := range envOverrides {
		if o.match(d.getenv(o.name)) {
			return o.name + " is set"
		}
	}
	for _, s := range []struct {
		name string
		f    *os.File
	}{{"stdin", os.Stdin}, {"stdout", os.Stdout}} {
		if !d.isTerminal(s.f) {
			return s.name + " is not a terminal"
		}
	}
	return ""
}

func (d detector) mode() Mode {
	if d.reason() != "" {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// DetectMode reports ModeNonInteractive when VTREE_NON_INTERACTIVE=1, CI
// or NO_COLOR is set, or when stdin or stdout is not a terminal.
func DetectMode() Mode {
	return system.mode()
}

// NonInteractiveReason names the first condition that forces
// ModeNonInteractive, or returns "" in interactive mode.
func NonInteractiveReason() string {
	return system.reason()
}

func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}

package errprop

import (
	"encoding"
	"flag"
	"fmt"
)

// Options tune how a Program resolves and classifies calls.
type Options struct {
	// Entry is the fully qualified name of the root function,
	// e.g. "example.com/app.main" or "(*example.com/app.Server).Run".
	// Empty means the main function of the main package.
	Entry string

	Dispatch   Dispatch
	Classifier Classifier

	// IgnorePackages lists package paths whose functions never become nodes.
	IgnorePackages []string
}

// Dispatch selects how call sites without a static callee are treated.
type Dispatch int

var (
	_ flag.Getter              = (*Dispatch)(nil)
	_ encoding.TextUnmarshaler = (*Dispatch)(nil)
)

const (
	// DispatchStatic skips every dynamically dispatched call.
	//
	// This is the default.
	DispatchStatic Dispatch = iota

	// DispatchVTA resolves dynamic call sites that the VTA call graph
	// narrows down to exactly one callee.
	DispatchVTA
)

func (d Dispatch) String() string {
	switch d {
	case DispatchStatic:
		return "static"
	case DispatchVTA:
		return "vta"
	default:
		return fmt.Sprintf("dispatch-invalid(%d)", int(d))
	}
}

func (d *Dispatch) Get() interface{} {
	return *d
}

func (d *Dispatch) Set(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d *Dispatch) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "static":
		*d = DispatchStatic
	case "vta":
		*d = DispatchVTA
	default:
		return fmt.Errorf("unknown dispatch %q: want static or vta", b)
	}
	return nil
}

func (d Dispatch) MarshalText() ([]byte, error) {
	switch d {
	case DispatchStatic, DispatchVTA:
		return []byte(d.String()), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid Dispatch(%d)", int(d))
	}
}

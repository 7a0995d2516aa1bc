package errprop

import (
	"go/types"
	"strings"
)

// UnknownType labels edges whose callee signature could not be determined.
const UnknownType = "unknown"

var errorType = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

// IsErrorType reports whether t implements the error interface.
func IsErrorType(t types.Type) bool {
	if t == nil {
		return false
	}
	return types.Implements(t, errorType)
}

// TypeRef names a generic type and the index of one of its type arguments.
//
// As a result type, Arg selects the error argument (Result[T, E] has Arg 1).
// As a future type, Arg selects the value produced on completion.
type TypeRef struct {
	Path string `yaml:"type" json:"type"` // e.g. example.com/x/result.Result
	Arg  int    `yaml:"arg" json:"arg"`
}

// Classifier decides whether a callee's return type carries an error.
type Classifier struct {
	ResultTypes []TypeRef
	FutureTypes []TypeRef
}

// Classification is the printable form of a return type.
type Classification struct {
	Label   string
	IsError bool
	// Unwrapped is set when the error was found behind a channel, thunk or future type.
	Unwrapped bool
}

// Classify inspects a callee's result type. For error-carrying types the label
// is the error type itself, otherwise the printed result type.
func (c *Classifier) Classify(t types.Type) Classification {
	if t == nil {
		return Classification{Label: UnknownType}
	}
	if e, ok := c.errorOf(t); ok {
		return Classification{Label: typeLabel(e), IsError: true}
	}
	if inner, ok := c.unwrapFuture(t); ok {
		if e, ok := c.errorOf(inner); ok {
			return Classification{Label: typeLabel(e), IsError: true, Unwrapped: true}
		}
	}
	return Classification{Label: typeLabel(t)}
}

func (c *Classifier) errorOf(t types.Type) (types.Type, bool) {
	if tup, ok := types.Unalias(t).(*types.Tuple); ok {
		if tup.Len() == 0 {
			return nil, false
		}
		for i := 0; i < tup.Len(); i++ {
			if e, ok := matchRef(c.ResultTypes, tup.At(i).Type()); ok {
				return e, true
			}
		}
		if last := tup.At(tup.Len() - 1).Type(); IsErrorType(last) {
			return last, true
		}
		return nil, false
	}
	if e, ok := matchRef(c.ResultTypes, t); ok {
		return e, true
	}
	if IsErrorType(t) {
		return t, true
	}
	return nil, false
}

// unwrapFuture removes one level of deferred computation from t.
func (c *Classifier) unwrapFuture(t types.Type) (types.Type, bool) {
	t = types.Unalias(t)
	if tup, ok := t.(*types.Tuple); ok {
		if tup.Len() != 1 {
			return nil, false
		}
		t = types.Unalias(tup.At(0).Type())
	}
	if inner, ok := matchRef(c.FutureTypes, t); ok {
		return inner, true
	}
	switch u := t.Underlying().(type) {
	case *types.Chan:
		return u.Elem(), true
	case *types.Signature:
		if u.Params().Len() == 0 && u.Results().Len() > 0 {
			return u.Results(), true
		}
	}
	return nil, false
}

// matchRef returns the selected type argument of t if t instantiates one of refs.
func matchRef(refs []TypeRef, t types.Type) (types.Type, bool) {
	if len(refs) == 0 {
		return nil, false
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil, false
	}
	obj := named.Origin().Obj()
	if obj.Pkg() == nil {
		return nil, false
	}
	name := obj.Pkg().Path() + "." + obj.Name()
	args := named.TypeArgs()
	for _, ref := range refs {
		if ref.Path != name || args == nil || ref.Arg < 0 || ref.Arg >= args.Len() {
			continue
		}
		return args.At(ref.Arg), true
	}
	return nil, false
}

func typeLabel(t types.Type) string {
	qualify := func(p *types.Package) string { return p.Name() }
	tup, ok := t.(*types.Tuple)
	if !ok {
		return types.TypeString(t, qualify)
	}
	if tup.Len() == 1 {
		return types.TypeString(tup.At(0).Type(), qualify)
	}
	parts := make([]string, tup.Len())
	for i := range parts {
		parts[i] = types.TypeString(tup.At(i).Type(), qualify)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

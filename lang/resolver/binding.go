package resolver

import "fmt"

// Scope indicates what kind of binding a name resolved to.
type Scope uint8

const (
	Undefined Scope = iota // name is not defined anywhere visible
	Local                  // name is an INT32 local, addressed at bp+Index
	Param                  // name is a parameter, addressed relative to bp and N
	Ignored                // name is a declared non-INT32 local: valid, but carries no slot
)

var scopeNames = [...]string{
	Undefined: "undefined",
	Local:     "local",
	Param:     "param",
	Ignored:   "ignored",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid Scope %d>", s)
	}
	return scopeNames[s]
}

// Binding records how a single VARIABLE_DECLARATION/parameter resolves.
type Binding struct {
	Scope Scope

	// Index is the local slot offset (0-based, Scope==Local) or the
	// parameter index (0-based, Scope==Param). Unused otherwise.
	Index int
}

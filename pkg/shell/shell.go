// Package shell defines the Interpreter service the core depends on but
// cannot inline: something able to source an ebuild and report back its
// shell-scope variable and function state, per spec.md §6. All real sourcing
// happens in worker subprocesses so ebuild-defined globals never leak into
// the parent process; TreeSitterReader is the default, non-executing
// implementation used when no real shell is wired in.
package shell

import "pkgcraft/pkg/perr"

// Value is a shell variable's decoded value after sourcing: either a plain
// scalar or an indexed bash array, per spec.md §6's "Option<String |
// Vec<String>>".
type Value struct {
	Scalar  string
	Array   []string
	IsArray bool
}

// Status is the outcome of invoking a named function (an ebuild phase) in
// interpreter scope.
type Status struct {
	Success bool
	Message string
}

// Interpreter is the shell-sourcing collaborator. Implementations execute
// (or, for a static reader, structurally approximate) an ebuild's top-level
// assignments and function definitions.
type Interpreter interface {
	// SourceFile executes path in a fresh scope.
	SourceFile(path string) error
	// SourceString executes text in a fresh scope.
	SourceString(text string) error
	// Variable reads a scope variable set by the most recent Source call.
	Variable(name string) (Value, bool)
	// FunctionExists reports whether name was defined by the most recent
	// Source call.
	FunctionExists(name string) bool
	// CallFunction invokes a defined function (an ebuild phase). Not used
	// by the metadata cache path.
	CallFunction(name string, args []string) (Status, error)
}

// ErrNotExecutable is returned by CallFunction on non-executing readers:
// TreeSitterReader extracts structure but never runs shell code.
var ErrNotExecutable = perr.NewBail("interpreter does not support execution")

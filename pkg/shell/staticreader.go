package shell

import (
	"context"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/perr"
)

// TreeSitterReader is a non-executing Interpreter: it walks a bash parse
// tree for top-level "KEY=value" assignments and function definitions
// instead of running the shell, the default implementation used when no
// real interpreter is wired in. Grounded on the teacher's own
// internal/world/ast_treesitter.go, which drives the same library's
// per-language grammars for structural extraction rather than execution.
type TreeSitterReader struct {
	parser    *sitter.Parser
	variables map[string]Value
	functions map[string]bool
}

// NewTreeSitterReader constructs a reader ready for repeated Source calls;
// each Source call resets scope.
func NewTreeSitterReader() *TreeSitterReader {
	p := sitter.NewParser()
	p.SetLanguage(bash.GetLanguage())
	return &TreeSitterReader{parser: p}
}

// Close releases the underlying tree-sitter parser.
func (r *TreeSitterReader) Close() { r.parser.Close() }

func (r *TreeSitterReader) SourceFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return perr.WrapIO(err, "reading %s", path)
	}
	return r.SourceString(string(data))
}

func (r *TreeSitterReader) SourceString(text string) error {
	content := []byte(text)
	tree, err := r.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return perr.WrapBase(err, "parsing shell source")
	}
	defer tree.Close()

	r.variables = make(map[string]Value)
	r.functions = make(map[string]bool)

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		r.visitTopLevel(root.NamedChild(i), content)
	}
	return nil
}

func (r *TreeSitterReader) visitTopLevel(n *sitter.Node, content []byte) {
	switch n.Type() {
	case "variable_assignment":
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name == nil {
			return
		}
		r.variables[name.Content(content)] = decodeValue(value, content)
	case "function_definition":
		name := n.ChildByFieldName("name")
		if name != nil {
			r.functions[name.Content(content)] = true
		}
	case "declaration_command":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			r.visitTopLevel(n.NamedChild(i), content)
		}
	}
}

func decodeValue(n *sitter.Node, content []byte) Value {
	if n == nil {
		return Value{}
	}
	if n.Type() == "array" {
		var elems []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			elems = append(elems, unquote(n.NamedChild(i).Content(content)))
		}
		return Value{Array: elems, IsArray: true}
	}
	return Value{Scalar: unquote(n.Content(content))}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func (r *TreeSitterReader) Variable(name string) (Value, bool) {
	v, ok := r.variables[name]
	return v, ok
}

func (r *TreeSitterReader) FunctionExists(name string) bool {
	return r.functions[name]
}

// CallFunction always fails: a static reader never executes shell code.
func (r *TreeSitterReader) CallFunction(name string, args []string) (Status, error) {
	logging.Get(logging.Shell).Sugar().Debugf("static reader cannot call function %q", name)
	return Status{}, ErrNotExecutable
}

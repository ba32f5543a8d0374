package lifecycle

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hannajonsd/leakscan/finding"
	"github.com/hannajonsd/leakscan/parser"
)

// pythonTable maps (module, member) callee signatures to resource kinds.
// A bare call resolves against the empty module.
var pythonTable = map[[2]string]finding.Category{
	{"", "open"}:                       finding.FileHandle,
	{"io", "open"}:                     finding.FileHandle,
	{"tempfile", "NamedTemporaryFile"}: finding.FileHandle,
	{"tempfile", "TemporaryFile"}:      finding.FileHandle,
	{"sqlite3", "connect"}:             finding.DBHandle,
}

func (d *detector) walkPython(root *sitter.Node) {
	// Calls claimed by an assignment or guarded by a with-statement are
	// keyed by start byte; node pointers are not stable across visits.
	claimed := make(map[uint32]bool)

	parser.WalkAST(root, func(n *sitter.Node) {
		switch n.Type() {
		case "with_statement":
			d.markContextManaged(n, claimed)
		case "assignment":
			d.handlePythonAssign(n, claimed)
		case "call":
			d.handlePythonCall(n, claimed)
		}
	})
}

// markContextManaged exempts every call under a with-clause: the context
// manager owns the release.
func (d *detector) markContextManaged(with *sitter.Node, claimed map[uint32]bool) {
	for i := 0; i < int(with.NamedChildCount()); i++ {
		child := with.NamedChild(i)
		if child.Type() != "with_clause" {
			continue
		}
		parser.WalkAST(child, func(n *sitter.Node) {
			if n.Type() == "call" {
				claimed[n.StartByte()] = true
			}
		})
	}
}

func (d *detector) handlePythonAssign(assign *sitter.Node, claimed map[uint32]bool) {
	right := assign.ChildByFieldName("right")
	if right == nil || right.Type() != "call" {
		return
	}
	kind := d.classifyPythonCall(right)
	if kind == "" || claimed[right.StartByte()] {
		return
	}
	claimed[right.StartByte()] = true

	names := d.collectPythonNames(assign.ChildByFieldName("left"))
	line, _ := parser.Position(assign)
	if len(names) == 0 || names[0] == "" || names[0] == "_" {
		d.add("", kind, line)
		return
	}
	d.add(names[0], kind, line)
}

func (d *detector) handlePythonCall(call *sitter.Node, claimed map[uint32]bool) {
	if !claimed[call.StartByte()] {
		if kind := d.classifyPythonCall(call); kind != "" {
			// Acquisition whose result is dropped on the floor.
			line, _ := parser.Position(call)
			d.add("", kind, line)
		}
	}

	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return
	}
	base := d.pythonName(fn.ChildByFieldName("object"))
	member := ""
	if attr := fn.ChildByFieldName("attribute"); attr != nil {
		member = parser.NodeText(attr, d.source)
	}

	switch member {
	case "acquire":
		if base != "" {
			line, _ := parser.Position(call)
			d.add(base, finding.MutexLock, line)
		}
	case "close":
		d.markReleased(base, finding.FileHandle, finding.DBHandle)
	case "release":
		d.markReleased(base, finding.MutexLock)
	}
}

// classifyPythonCall resolves the callee through import aliases and matches
// it against the acquisition table.
func (d *detector) classifyPythonCall(call *sitter.Node) finding.Category {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}

	switch fn.Type() {
	case "identifier":
		name := parser.NodeText(fn, d.source)
		if imp, ok := d.aliases[name]; ok {
			if imp.Symbol != "" {
				return pythonTable[[2]string{imp.Module, imp.Symbol}]
			}
			return pythonTable[[2]string{imp.Module, ""}]
		}
		return pythonTable[[2]string{"", name}]
	case "attribute":
		object := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if object == nil || attr == nil || object.Type() != "identifier" {
			return ""
		}
		module := parser.NodeText(object, d.source)
		if imp, ok := d.aliases[module]; ok {
			module = imp.Module
		}
		return pythonTable[[2]string{module, parser.NodeText(attr, d.source)}]
	default:
		return ""
	}
}

// pythonName renders an identifier or dotted attribute chain.
func (d *detector) pythonName(expr *sitter.Node) string {
	if expr == nil {
		return ""
	}
	switch expr.Type() {
	case "identifier":
		return parser.NodeText(expr, d.source)
	case "attribute":
		base := d.pythonName(expr.ChildByFieldName("object"))
		attr := expr.ChildByFieldName("attribute")
		if attr == nil {
			return base
		}
		if base == "" {
			return parser.NodeText(attr, d.source)
		}
		return base + "." + parser.NodeText(attr, d.source)
	default:
		return ""
	}
}

// collectPythonNames flattens assignment targets: a bare identifier or a
// pattern list from tuple unpacking.
func (d *detector) collectPythonNames(left *sitter.Node) []string {
	if left == nil {
		return nil
	}
	switch left.Type() {
	case "identifier":
		return []string{parser.NodeText(left, d.source)}
	case "pattern_list", "tuple_pattern":
		var names []string
		for i := 0; i < int(left.NamedChildCount()); i++ {
			child := left.NamedChild(i)
			if child.Type() == "identifier" {
				names = append(names, parser.NodeText(child, d.source))
			} else {
				names = append(names, "")
			}
		}
		return names
	default:
		return nil
	}
}

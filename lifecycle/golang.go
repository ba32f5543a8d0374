package lifecycle

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hannajonsd/leakscan/finding"
	"github.com/hannajonsd/leakscan/parser"
)

// walkGo performs a single pre-order pass; record creation order follows
// source order, which the nearest-match release semantics depend on.
func (d *detector) walkGo(root *sitter.Node) {
	parser.WalkAST(root, func(n *sitter.Node) {
		switch n.Type() {
		case "short_var_declaration", "assignment_statement":
			d.handleGoAssign(n)
		case "call_expression":
			d.handleGoCall(n)
		}
	})
}

func (d *detector) handleGoAssign(assign *sitter.Node) {
	right := assign.ChildByFieldName("right")
	if right == nil || right.NamedChildCount() == 0 {
		return
	}
	call := right.NamedChild(0)
	if call.Type() != "call_expression" {
		return
	}

	kind := d.classifyGoCall(call)
	if kind == "" {
		return
	}

	names := d.collectGoNames(assign.ChildByFieldName("left"))
	line, _ := parser.Position(assign)

	if kind == finding.ContextCancel {
		// The cancel func is the last assigned name. A discarded cancel is
		// still recorded, unnamed: it can never be invoked later.
		if len(names) >= 2 {
			name := names[len(names)-1]
			if name == "_" {
				name = ""
			}
			d.add(name, kind, line)
		} else {
			d.add("", kind, line)
		}
		return
	}

	// Other kinds bind to the first assigned name; extra names from
	// multi-assignment (err results) are ignored.
	if len(names) > 0 && names[0] != "" && names[0] != "_" {
		d.add(names[0], kind, line)
	}
}

// classifyGoCall matches the callee against the acquisition table, resolving
// the package qualifier through import aliases.
func (d *detector) classifyGoCall(call *sitter.Node) finding.Category {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "selector_expression" {
		return ""
	}

	pkg := d.exprName(fn.ChildByFieldName("operand"))
	member := ""
	if field := fn.ChildByFieldName("field"); field != nil {
		member = parser.NodeText(field, d.source)
	}
	if imp, ok := d.aliases[pkg]; ok {
		parts := strings.Split(imp.Module, "/")
		pkg = parts[len(parts)-1]
	}

	switch {
	case pkg == "context" && (member == "WithCancel" || member == "WithTimeout" || member == "WithDeadline"):
		return finding.ContextCancel
	case pkg == "time" && member == "NewTicker":
		return finding.TickerStop
	case pkg == "time" && member == "NewTimer":
		return finding.TimerStop
	case pkg == "os" && (member == "Open" || member == "OpenFile"):
		return finding.FileHandle
	case pkg == "sql" && (member == "Open" || member == "OpenDB"):
		return finding.DBHandle
	default:
		return ""
	}
}

func (d *detector) handleGoCall(call *sitter.Node) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Type() {
	case "selector_expression":
		base := d.exprName(fn.ChildByFieldName("operand"))
		member := ""
		if field := fn.ChildByFieldName("field"); field != nil {
			member = parser.NodeText(field, d.source)
		}
		switch member {
		case "Lock":
			if base != "" {
				line, _ := parser.Position(call)
				d.add(base, finding.MutexLock, line)
			}
		case "Stop":
			d.markReleased(base, finding.TickerStop, finding.TimerStop)
		case "Close":
			d.markReleased(base, finding.FileHandle, finding.DBHandle)
		case "Unlock":
			d.markReleased(base, finding.MutexLock)
		}
	case "identifier":
		// Direct invocation of a recorded cancel function.
		d.markReleased(parser.NodeText(fn, d.source), finding.ContextCancel)
	}
}

// exprName renders an identifier or dotted selector chain; anything else
// yields an empty name.
func (d *detector) exprName(expr *sitter.Node) string {
	if expr == nil {
		return ""
	}
	switch expr.Type() {
	case "identifier":
		return parser.NodeText(expr, d.source)
	case "selector_expression":
		base := d.exprName(expr.ChildByFieldName("operand"))
		field := expr.ChildByFieldName("field")
		if field == nil {
			return base
		}
		if base == "" {
			return parser.NodeText(field, d.source)
		}
		return base + "." + parser.NodeText(field, d.source)
	default:
		return ""
	}
}

// collectGoNames flattens an expression_list of assignment targets.
func (d *detector) collectGoNames(left *sitter.Node) []string {
	if left == nil {
		return nil
	}
	names := make([]string, 0, left.NamedChildCount())
	for i := 0; i < int(left.NamedChildCount()); i++ {
		child := left.NamedChild(i)
		switch child.Type() {
		case "identifier", "selector_expression":
			names = append(names, d.exprName(child))
		case "blank_identifier":
			names = append(names, "_")
		default:
			names = append(names, "")
		}
	}
	return names
}

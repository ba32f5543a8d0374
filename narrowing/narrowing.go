// Package narrowing flags leaky guard clauses: a conditional check for a
// nullable value that neither exits the enclosing block nor reassigns the
// value, followed later by an unguarded use of that same value.
package narrowing

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hannajonsd/leakscan/finding"
	"github.com/hannajonsd/leakscan/parser"
)

type detector struct {
	source []byte
	file   string
}

// Detect runs the narrowing analysis over one parsed file. The detector
// understands the JavaScript/TypeScript node vocabulary; other trees yield
// nothing.
func Detect(result *parser.ParseResult) []finding.Finding {
	if result.Language != "javascript" && result.Language != "typescript" {
		return nil
	}

	d := &detector{source: result.Source, file: result.FilePath}

	var findings []finding.Finding
	parser.WalkAST(result.Tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != "program" && n.Type() != "statement_block" {
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "if_statement" {
				continue
			}
			if f := d.checkConditional(n, child, i); f != nil {
				findings = append(findings, *f)
			}
		}
	})

	return findings
}

// checkConditional analyzes one guard conditional and the sibling statements
// that follow it. At most one violation is reported per conditional.
func (d *detector) checkConditional(block, ifStmt *sitter.Node, index int) *finding.Finding {
	name := d.guardedIdentifier(ifStmt.ChildByFieldName("condition"))
	if name == "" {
		return nil
	}

	// Conditionals with an else branch handle both outcomes themselves.
	if ifStmt.ChildByFieldName("alternative") != nil {
		return nil
	}

	then := ifStmt.ChildByFieldName("consequence")
	if then == nil || d.branchExits(then) {
		return nil
	}
	if d.reassigns(then, name) {
		// Fallback assignment, not an exit guard.
		return nil
	}

	for j := index + 1; j < int(block.NamedChildCount()); j++ {
		sibling := block.NamedChild(j)
		if d.reassigns(sibling, name) {
			return nil
		}
		if use := d.firstUse(sibling, name); use != nil {
			line, column := parser.Position(use)
			return &finding.Finding{
				File:     d.file,
				Line:     line,
				Column:   column,
				Category: finding.NarrowingViolation,
				Message:  fmt.Sprintf("%s used without narrowing after non-exiting guard", name),
			}
		}
	}

	return nil
}

// guardedIdentifier extracts at most one guarded identifier from a guard
// condition. Anything the detector cannot reason about precisely returns an
// empty name, never a guess.
func (d *detector) guardedIdentifier(cond *sitter.Node) string {
	cond = unwrapParens(cond)
	if cond == nil {
		return ""
	}

	switch cond.Type() {
	case "binary_expression":
		op := cond.ChildByFieldName("operator")
		if op == nil {
			return ""
		}
		switch parser.NodeText(op, d.source) {
		case "==", "===", "!=", "!==":
		default:
			return ""
		}
		left := cond.ChildByFieldName("left")
		right := cond.ChildByFieldName("right")
		if d.isNullish(right) {
			return d.rootIdentifier(left)
		}
		if d.isNullish(left) {
			return d.rootIdentifier(right)
		}
		return ""
	case "unary_expression":
		op := cond.ChildByFieldName("operator")
		if op == nil || parser.NodeText(op, d.source) != "!" {
			return ""
		}
		// Only a bare identifier: negated member or index access is
		// deliberately not tracked.
		arg := unwrapParens(cond.ChildByFieldName("argument"))
		if arg != nil && arg.Type() == "identifier" {
			return parser.NodeText(arg, d.source)
		}
		return ""
	default:
		return ""
	}
}

func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" {
		n = n.NamedChild(0)
	}
	return n
}

func (d *detector) isNullish(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	text := parser.NodeText(n, d.source)
	return text == "null" || text == "undefined"
}

// rootIdentifier reduces a member or index chain to its root identifier, so
// `profile?.email` guards `profile`.
func (d *detector) rootIdentifier(n *sitter.Node) string {
	for n != nil {
		switch n.Type() {
		case "identifier":
			return parser.NodeText(n, d.source)
		case "member_expression", "subscript_expression":
			n = n.ChildByFieldName("object")
		case "parenthesized_expression":
			n = n.NamedChild(0)
		default:
			return ""
		}
	}
	return ""
}

// branchExits reports whether a branch is, or recursively reduces to, a
// return or throw. An if/else exits only when both arms exit. Loop control
// statements are not treated as exits.
func (d *detector) branchExits(n *sitter.Node) bool {
	if n == nil {
		return false
	}

	switch n.Type() {
	case "return_statement", "throw_statement":
		return true
	case "statement_block":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if d.branchExits(n.NamedChild(i)) {
				return true
			}
		}
		return false
	case "if_statement":
		alt := n.ChildByFieldName("alternative")
		if alt == nil {
			return false
		}
		return d.branchExits(n.ChildByFieldName("consequence")) && d.branchExits(alt)
	case "else_clause":
		return d.branchExits(n.NamedChild(0))
	default:
		return false
	}
}

// reassigns reports whether the statement redefines or reassigns the name.
func (d *detector) reassigns(n *sitter.Node, name string) bool {
	found := false
	parser.WalkAST(n, func(node *sitter.Node) {
		if found {
			return
		}
		switch node.Type() {
		case "assignment_expression", "augmented_assignment_expression":
			left := node.ChildByFieldName("left")
			if left != nil && left.Type() == "identifier" && parser.NodeText(left, d.source) == name {
				found = true
			}
		case "variable_declarator":
			target := node.ChildByFieldName("name")
			if target != nil && target.Type() == "identifier" && parser.NodeText(target, d.source) == name {
				found = true
			}
		}
	})
	return found
}

// firstUse returns the first node in the statement that uses the identifier
// as the subject of a call, property access, or index expression.
func (d *detector) firstUse(n *sitter.Node, name string) *sitter.Node {
	var use *sitter.Node
	parser.WalkAST(n, func(node *sitter.Node) {
		if use != nil {
			return
		}
		switch node.Type() {
		case "call_expression":
			fn := node.ChildByFieldName("function")
			if fn != nil && fn.Type() == "identifier" && parser.NodeText(fn, d.source) == name {
				use = node
			}
		case "member_expression", "subscript_expression":
			object := node.ChildByFieldName("object")
			if object != nil && object.Type() == "identifier" && parser.NodeText(object, d.source) == name {
				use = node
			}
		}
	})
	return use
}

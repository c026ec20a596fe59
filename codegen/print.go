// Package codegen renders a simplified ir.Block back into Python-like
// source text. It is deliberately thin: component I's job is to print
// whatever tree packages lift/control/simplify already built, not to do
// any further analysis of its own (4.I, Non-goals).
package codegen

import (
	"fmt"
	"strings"

	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/pyc"
)

const indentUnit = "    "

// Function renders one top-level code object as a `def name(...):` block.
func Function(co *pyc.CodeObject, body *ir.Block) string {
	var b strings.Builder
	fmt.Fprintf(&b, "def %s(%s):\n", co.Name, strings.Join(co.Varnames[:min(co.ArgCount, len(co.Varnames))], ", "))
	text := Block(body, 1)
	if text == "" {
		text = indentUnit + "pass\n"
	}
	b.WriteString(text)
	return b.String()
}

// Block renders every statement in b at the given indent depth, one per
// line.
func Block(b *ir.Block, depth int) string {
	if b == nil || len(b.Stmts) == 0 {
		return ""
	}
	var out strings.Builder
	for _, stmt := range b.Stmts {
		out.WriteString(Stmt(stmt, depth))
	}
	return out.String()
}

func indent(depth int) string { return strings.Repeat(indentUnit, depth) }

// Stmt renders one statement node, including the control-structure forms
// (If, Loop) by recursing into their nested blocks, and falls back to a
// raw Opcode dump for anything no pass reconstructed (6 supplement).
func Stmt(n ir.Node, depth int) string {
	pad := indent(depth)
	switch t := n.(type) {
	case *ir.Assign:
		return fmt.Sprintf("%s%s = %s\n", pad, Expr(t.Target), Expr(t.Expr))
	case *ir.ExprStmt:
		return fmt.Sprintf("%s%s\n", pad, Expr(t.Expr))
	case *ir.Return:
		if t.Value == nil {
			return fmt.Sprintf("%sreturn\n", pad)
		}
		return fmt.Sprintf("%sreturn %s\n", pad, Expr(t.Value))
	case *ir.Print:
		parts := make([]string, len(t.Values))
		for i, v := range t.Values {
			parts[i] = Expr(v)
		}
		return fmt.Sprintf("%sprint %s\n", pad, strings.Join(parts, ", "))
	case *ir.Break:
		return fmt.Sprintf("%sbreak\n", pad)
	case *ir.Continue:
		return fmt.Sprintf("%scontinue\n", pad)
	case *ir.GlobalDecl:
		return fmt.Sprintf("%sglobal %s\n", pad, strings.Join(t.Names, ", "))
	case *ir.If:
		var out strings.Builder
		fmt.Fprintf(&out, "%sif %s:\n", pad, Expr(t.Cond))
		thenText := Block(t.Then, depth+1)
		if thenText == "" {
			thenText = indent(depth+1) + "pass\n"
		}
		out.WriteString(thenText)
		if t.Else != nil {
			fmt.Fprintf(&out, "%selse:\n", pad)
			elseText := Block(t.Else, depth+1)
			if elseText == "" {
				elseText = indent(depth+1) + "pass\n"
			}
			out.WriteString(elseText)
		}
		return out.String()
	case *ir.Loop:
		var out strings.Builder
		cond := "True"
		if t.Cond != nil {
			cond = Expr(t.Cond)
		}
		fmt.Fprintf(&out, "%swhile %s:\n", pad, cond)
		bodyText := Block(t.Body, depth+1)
		if bodyText == "" {
			bodyText = indent(depth+1) + "pass\n"
		}
		out.WriteString(bodyText)
		return out.String()
	case *ir.Opcode:
		return fmt.Sprintf("%s# %s (unreconstructed, offset %d)\n", pad, t.Name, t.Offset)
	default:
		return fmt.Sprintf("%s# <unknown node>\n", pad)
	}
}

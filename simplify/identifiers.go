package simplify

import (
	"fmt"

	"github.com/evanw/unwind-go/ir"
)

// goKeywords is Go's reserved-word set: MakeIdentifiersValid suffixes a
// decompiled name that collides with one of them ("type" becomes "type_").
// Names outside this set, such as "print" or Python-only keywords, are
// left as they are.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// isLegalChars reports whether ident is made up only of characters valid
// in a Go (and Python) identifier, with no leading digit. It says nothing
// about keyword collisions; goKeywords is checked separately.
func isLegalChars(ident string) bool {
	if ident == "" {
		return false
	}
	for i, r := range ident {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isValidIdent(ident string) bool {
	return isLegalChars(ident) && !goKeywords[ident]
}

// nameSequence yields candidate replacement identifiers in the order
// a, b, ..., z, var1, var2, ..., skipping anything already taken.
type nameSequence struct {
	next int
}

func (s *nameSequence) take(used map[string]bool) string {
	for {
		var candidate string
		if s.next < 26 {
			candidate = string(rune('a' + s.next))
		} else {
			candidate = fmt.Sprintf("var%d", s.next-25)
		}
		s.next++
		if !used[candidate] {
			return candidate
		}
	}
}

// MakeIdentifiersValid rewrites every ir.Name whose Ident is not already a
// legal, collision-free identifier. Per 4.H rule 5, an invalid name (one
// with characters outside the original implementation's NAME_CHARS, or a
// leading digit) is replaced by allocating the next unused name from the
// sequence a, b, ..., z, var1, var2, ..., skipping any name already
// present in the function; repeated occurrences of the same invalid name
// always map to the same replacement, and a name that is legal but
// collides with a Go keyword is suffixed instead, since it does not need
// a wholly fresh name to become legal.
func MakeIdentifiersValid(root ir.Node) ir.Node {
	used := map[string]bool{}
	ir.Walk(root, func(n ir.Node) bool {
		if name, ok := n.(*ir.Name); ok && isValidIdent(name.Ident) {
			used[name.Ident] = true
		}
		return true
	})

	replacements := map[string]string{}
	seq := &nameSequence{}

	return ir.Replace(root, func(n ir.Node) ir.Node {
		name, ok := n.(*ir.Name)
		if !ok {
			return nil
		}
		if isValidIdent(name.Ident) {
			return nil
		}
		if repl, ok := replacements[name.Ident]; ok {
			return &ir.Name{Ident: repl}
		}

		var repl string
		if isLegalChars(name.Ident) {
			// Only a keyword collision, not an invalid-character or
			// leading-digit case: suffixing keeps the name recognizable
			// instead of discarding it for an unrelated fresh one.
			repl = name.Ident + "_"
			for used[repl] {
				repl += "_"
			}
		} else {
			repl = seq.take(used)
		}
		replacements[name.Ident] = repl
		used[repl] = true
		return &ir.Name{Ident: repl}
	})
}

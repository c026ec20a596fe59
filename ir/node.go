// Package ir defines the tree-shaped intermediate representation that the
// lowering, control-structure reconstruction and lifting passes build up
// and progressively rewrite, and the simplification passes (package
// simplify) consume.
package ir

import "fmt"

// Node is the common interface implemented by every IR tree element. It
// exists so Walk and Replace can traverse a tree without a type switch at
// every call site; the type switch still happens, just once, inside Walk.
type Node interface {
	irNode()
}

// Block is an ordered sequence of statements: the body of a function, an
// if/else branch, or a loop body.
type Block struct {
	Stmts []Node
}

// Opcode is a single not-yet-lifted bytecode instruction, carried verbatim
// from pyc.Opcode. Lifting (package lift) replaces runs of these with
// Assign/Expr/Return/etc nodes; whatever Opcode nodes survive lifting are
// left in the tree as-is, since no component reconstructs every statement
// form (6 supplement).
type Opcode struct {
	Offset int
	Name   string
	Arg    interface{}
}

// Temp names a value produced by the symbolic stack executor: the operand
// at some depth of the simulated stack, before InlineVariables (4.H) either
// inlines its single use or leaves it as a named local.
type Temp struct {
	ID int
}

// Const is a literal value lifted directly from a LOAD_CONST argument.
type Const struct {
	Value interface{}
}

// Name is an identifier: a global, local, attribute, or cell/free variable
// reference, resolved to source-level text by MakeIdentifiersValid (4.H).
type Name struct {
	Ident string
}

// Assign binds the value of Expr to Target. Produced by the lifter for
// every STORE_* instruction. InlineVariables removes an Assign only when
// its Target is a Temp with exactly one use, in the statement right after
// it.
type Assign struct {
	Target Node
	Expr   Node
}

// BinOp is a two-operand expression (BINARY_ADD, COMPARE_OP, and so on).
type BinOp struct {
	Op          string
	Left, Right Node
}

// UnaryOp is a one-operand expression (UNARY_NOT, UNARY_NEGATIVE, ...).
type UnaryOp struct {
	Op   string
	Expr Node
}

// Call is a function call, built by the lifter from a CALL_FUNCTION family
// instruction and the operands it pops. CALL_FUNCTION's argument packs
// kwcount into the high byte and argcount into the low byte; Kwargs holds
// the kwcount (key, value) pairs the lifter pops ahead of the Args
// positionals, in the order the keyword arguments were pushed.
type Call struct {
	Func   Node
	Args   []Node
	Kwargs []DictEntry
}

// Attr is attribute access (LOAD_ATTR/STORE_ATTR), Subscr is item access
// (BINARY_SUBSCR/STORE_SUBSCR).
type Attr struct {
	Value Node
	Name  string
}
type Subscr struct {
	Value, Index Node
}

// TupleExpr, ListExpr and SetExpr are the literal forms the lifter
// reconstructs from BUILD_TUPLE/BUILD_LIST/BUILD_SET and their operands.
type TupleExpr struct{ Elems []Node }
type ListExpr struct{ Elems []Node }
type SetExpr struct{ Elems []Node }

// DictEntry and DictExpr represent a dict literal. The lifter produces one
// DictExpr per BUILD_MAP and appends each following STORE_MAP's entry to
// it directly; ReconstructDictLiterals (4.H) folds a DictExpr assigned to
// a Temp plus the subscript stores into that Temp that follow it into the
// same shape — see simplify/dictliteral.go.
type DictEntry struct{ Key, Value Node }
type DictExpr struct{ Entries []DictEntry }

// ExprStmt wraps an expression evaluated for its side effect, its result
// discarded (POP_TOP after something that wasn't an Assign).
type ExprStmt struct {
	Expr Node
}

// Return is a RETURN_VALUE. The lifter always sets Value to the popped
// operand, a Const None both for an explicit `return None` and for the
// implicit return at the end of a body (it cannot tell those apart, so it
// never omits a trailing Return); a nil Value renders as a bare `return`.
type Return struct {
	Value Node
}

// Print models PRINT_ITEM/PRINT_NEWLINE before CombinePrintStatements
// (4.H) merges a run of them into one statement with multiple Values.
type Print struct {
	Values  []Node
	Newline bool
}

// If is a reconstructed two-way branch (4.F): Then always runs when Cond is
// truthy, Else runs otherwise and is nil if there was no else clause.
type If struct {
	Cond Node
	Then *Block
	Else *Block
}

// Loop is a reconstructed while-loop (4.F, promoted from optional to
// required). Cond is nil for an unconditional `while True:` loop whose
// exit is controlled entirely by a break inside Body.
type Loop struct {
	Cond Node
	Body *Block
}

// Break and Continue correspond to BREAK_LOOP and CONTINUE_LOOP; the lifter
// emits them directly, before control-structure reconstruction runs.
type Break struct{}
type Continue struct{}

// GlobalDecl is a synthetic `global x, y` declaration, prepended to a
// function body by simplify.PrependGlobals for every name the function
// stores to with STORE_GLOBAL (4.H).
type GlobalDecl struct {
	Names []string
}

func (*Block) irNode()     {}
func (*Opcode) irNode()    {}
func (*Temp) irNode()      {}
func (*Const) irNode()     {}
func (*Name) irNode()      {}
func (*Assign) irNode()    {}
func (*BinOp) irNode()     {}
func (*UnaryOp) irNode()   {}
func (*Call) irNode()      {}
func (*Attr) irNode()      {}
func (*Subscr) irNode()    {}
func (*TupleExpr) irNode() {}
func (*ListExpr) irNode()  {}
func (*SetExpr) irNode()   {}
func (*DictExpr) irNode()  {}
func (*ExprStmt) irNode()  {}
func (*Return) irNode()    {}
func (*Print) irNode()     {}
func (*If) irNode()        {}
func (*Loop) irNode()      {}
func (*Break) irNode()     {}
func (*Continue) irNode()  {}
func (*GlobalDecl) irNode() {}

func (t *Temp) String() string { return fmt.Sprintf("t%d", t.ID) }

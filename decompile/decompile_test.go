package decompile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evanw/unwind-go/decompile"
	"github.com/evanw/unwind-go/pyc"
)

// TestFunctionAssignAndReturn drives the full pipeline — cfg, lift, control,
// simplify, codegen — over a single straight-line block: `a = 1; return
// None`, the first row of 8's scenario table.
func TestFunctionAssignAndReturn(t *testing.T) {
	co := &pyc.CodeObject{
		Name:     "f",
		ArgCount: 0,
		Varnames: []string{"a"},
		Opcodes: []pyc.Opcode{
			{Offset: 0, Size: 3, Name: pyc.OpLoadConst, Arg: int64(1)},
			{Offset: 3, Size: 3, Name: pyc.OpStoreFast, Arg: "a"},
			{Offset: 6, Size: 3, Name: pyc.OpLoadConst, Arg: nil},
			{Offset: 9, Size: 1, Name: pyc.OpReturnValue},
		},
	}

	src, err := decompile.Function(co)
	require.NoError(t, err)
	require.Equal(t, "def f():\n    a = 1\n    return None\n", src)
}

// TestFunctionIfWithoutElse exercises the if/else reconstruction scenario
// (8) end to end: a POP_JUMP_IF_FALSE over a one-statement then-branch,
// falling straight into the final return with no else clause.
func TestFunctionIfWithoutElse(t *testing.T) {
	co := &pyc.CodeObject{
		Name:     "g",
		ArgCount: 1,
		Varnames: []string{"a", "b"},
		Opcodes: []pyc.Opcode{
			{Offset: 0, Size: 3, Name: pyc.OpLoadFast, Arg: "a"},
			{Offset: 3, Size: 3, Name: pyc.OpPopJumpIfFalse, Arg: int64(12)},
			{Offset: 6, Size: 3, Name: pyc.OpLoadConst, Arg: int64(1)},
			{Offset: 9, Size: 3, Name: pyc.OpStoreFast, Arg: "b"},
			{Offset: 12, Size: 3, Name: pyc.OpLoadConst, Arg: int64(0)},
			{Offset: 15, Size: 1, Name: pyc.OpReturnValue},
		},
	}

	src, err := decompile.Function(co)
	require.NoError(t, err)
	require.Equal(t, "def g(a):\n    if a:\n        b = 1\n    return 0\n", src)
}

// TestFunctionReportsPartialLiftOnUnderflow confirms a malformed opcode
// stream (RETURN_VALUE with nothing on the stack) surfaces as a
// lift.LiftError from Function rather than panicking or silently
// fabricating a value, while still returning whatever source it could
// render.
func TestFunctionReportsPartialLiftOnUnderflow(t *testing.T) {
	co := &pyc.CodeObject{
		Name: "broken",
		Opcodes: []pyc.Opcode{
			{Offset: 0, Size: 1, Name: pyc.OpReturnValue},
		},
	}

	_, err := decompile.Function(co)
	require.Error(t, err)
}

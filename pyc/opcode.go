// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pyc implements the binary container format produced by the
// CPython marshal module: a small header, a tree of typed constant values,
// and inside that tree exactly one code object whose compiled bytecode is
// decoded into a normalized, revision-independent opcode stream.
package pyc

import "sort"

// Opcode name constants for the mnemonics referenced by name elsewhere in
// the pipeline (control-flow classification, the symbolic executor, the
// name/const/fast-local argument families below). Using constants instead
// of bare string literals means a typo is a compile error instead of a
// silently-wrong comparison, mirroring the intent of the original
// implementation's "op.LOAD_NAME" global-per-opcode trick.
const (
	OpPopTop      = "POP_TOP"
	OpRotTwo      = "ROT_TWO"
	OpRotThree    = "ROT_THREE"
	OpDupTop      = "DUP_TOP"
	OpDupTopX     = "DUP_TOPX"
	OpRotFour     = "ROT_FOUR"
	OpNop         = "NOP"
	OpUnaryNot    = "UNARY_NOT"
	OpUnaryNeg    = "UNARY_NEGATIVE"
	OpUnaryPos    = "UNARY_POSITIVE"
	OpUnaryInvert = "UNARY_INVERT"
	OpUnaryConvert = "UNARY_CONVERT"

	OpBinaryPower   = "BINARY_POWER"
	OpBinaryMultiply = "BINARY_MULTIPLY"
	OpBinaryDivide   = "BINARY_DIVIDE"
	OpBinaryModulo   = "BINARY_MODULO"
	OpBinaryAdd      = "BINARY_ADD"
	OpBinarySubtract = "BINARY_SUBTRACT"
	OpBinarySubscr   = "BINARY_SUBSCR"
	OpBinaryFloorDivide = "BINARY_FLOOR_DIVIDE"
	OpBinaryTrueDivide  = "BINARY_TRUE_DIVIDE"
	OpBinaryLshift = "BINARY_LSHIFT"
	OpBinaryRshift = "BINARY_RSHIFT"
	OpBinaryAnd    = "BINARY_AND"
	OpBinaryXor    = "BINARY_XOR"
	OpBinaryOr     = "BINARY_OR"

	OpInplaceAdd      = "INPLACE_ADD"
	OpInplaceSubtract = "INPLACE_SUBTRACT"
	OpInplaceMultiply = "INPLACE_MULTIPLY"
	OpInplaceDivide   = "INPLACE_DIVIDE"
	OpInplaceModulo   = "INPLACE_MODULO"
	OpInplacePower    = "INPLACE_POWER"
	OpInplaceLshift   = "INPLACE_LSHIFT"
	OpInplaceRshift   = "INPLACE_RSHIFT"
	OpInplaceAnd      = "INPLACE_AND"
	OpInplaceXor      = "INPLACE_XOR"
	OpInplaceOr       = "INPLACE_OR"
	OpInplaceFloorDivide = "INPLACE_FLOOR_DIVIDE"
	OpInplaceTrueDivide  = "INPLACE_TRUE_DIVIDE"

	OpSliceN       = "SLICE"
	OpStoreSliceN  = "STORE_SLICE"
	OpDeleteSliceN = "DELETE_SLICE"

	OpStoreMap    = "STORE_MAP"
	OpStoreSubscr = "STORE_SUBSCR"
	OpDeleteSubscr = "DELETE_SUBSCR"
	OpGetIter     = "GET_ITER"

	OpPrintExpr    = "PRINT_EXPR"
	OpPrintItem    = "PRINT_ITEM"
	OpPrintNewline = "PRINT_NEWLINE"

	OpBreakLoop   = "BREAK_LOOP"
	OpLoadLocals  = "LOAD_LOCALS"
	OpReturnValue = "RETURN_VALUE"
	OpImportStar  = "IMPORT_STAR"
	OpExecStmt    = "EXEC_STMT"
	OpYieldValue  = "YIELD_VALUE"
	OpPopBlock    = "POP_BLOCK"
	OpEndFinally  = "END_FINALLY"
	OpBuildClass  = "BUILD_CLASS"
	OpSetLineno   = "SET_LINENO"
	OpWithCleanup = "WITH_CLEANUP"

	OpStoreName  = "STORE_NAME"
	OpDeleteName = "DELETE_NAME"
	OpUnpackSequence = "UNPACK_SEQUENCE"
	OpForIter    = "FOR_ITER"
	OpListAppend = "LIST_APPEND"
	OpSetAdd     = "SET_ADD"
	OpMapAdd     = "MAP_ADD"
	OpStoreAttr  = "STORE_ATTR"
	OpDeleteAttr = "DELETE_ATTR"
	OpStoreGlobal  = "STORE_GLOBAL"
	OpDeleteGlobal = "DELETE_GLOBAL"
	OpLoadConst  = "LOAD_CONST"
	OpLoadName   = "LOAD_NAME"
	OpBuildTuple = "BUILD_TUPLE"
	OpBuildList  = "BUILD_LIST"
	OpBuildSet   = "BUILD_SET"
	OpBuildMap   = "BUILD_MAP"
	OpLoadAttr   = "LOAD_ATTR"
	OpCompareOp  = "COMPARE_OP"
	OpImportName = "IMPORT_NAME"
	OpImportFrom = "IMPORT_FROM"

	OpJumpForward      = "JUMP_FORWARD"
	OpJumpIfFalseOrPop = "JUMP_IF_FALSE_OR_POP"
	OpJumpIfTrueOrPop  = "JUMP_IF_TRUE_OR_POP"
	OpJumpAbsolute     = "JUMP_ABSOLUTE"
	OpPopJumpIfFalse   = "POP_JUMP_IF_FALSE"
	OpPopJumpIfTrue    = "POP_JUMP_IF_TRUE"
	OpJumpIfFalse      = "JUMP_IF_FALSE"
	OpJumpIfTrue       = "JUMP_IF_TRUE"
	OpLoadGlobal       = "LOAD_GLOBAL"

	OpContinueLoop  = "CONTINUE_LOOP"
	OpSetupLoop     = "SETUP_LOOP"
	OpSetupExcept   = "SETUP_EXCEPT"
	OpSetupFinally  = "SETUP_FINALLY"
	OpSetupWith     = "SETUP_WITH"
	OpLoadFast  = "LOAD_FAST"
	OpStoreFast = "STORE_FAST"
	OpDeleteFast = "DELETE_FAST"
	OpRaiseVarargs = "RAISE_VARARGS"
	OpCallFunction = "CALL_FUNCTION"
	OpMakeFunction = "MAKE_FUNCTION"
	OpMakeClosure  = "MAKE_CLOSURE"
	OpBuildSlice   = "BUILD_SLICE"
	OpLoadClosure  = "LOAD_CLOSURE"
	OpLoadDeref    = "LOAD_DEREF"
	OpStoreDeref   = "STORE_DEREF"
	OpCallFunctionVar   = "CALL_FUNCTION_VAR"
	OpCallFunctionKw    = "CALL_FUNCTION_KW"
	OpCallFunctionVarKw = "CALL_FUNCTION_VAR_KW"
	OpExtendedArg  = "EXTENDED_ARG"

	// Pseudo-markers: never appear in a decoded opcode stream. Dropped by
	// the normalizer per 4.A rule 1.
	OpStopCode      = "STOP_CODE"
	OpHaveArgument  = "HAVE_ARGUMENT"
	OpExceptHandler = "EXCEPT_HANDLER"
)

// nameFamily and fastLocalFamily classify which table an opcode's decoded
// argument is resolved against in marshal.go, per 4.B; LOAD_CONST, the one
// opcode resolved against the constants table, is matched there by name.
var nameFamily = map[string]bool{
	OpLoadName: true, OpStoreName: true, OpDeleteName: true,
	OpLoadAttr: true, OpStoreAttr: true, OpDeleteAttr: true,
	OpLoadGlobal: true, OpStoreGlobal: true, OpDeleteGlobal: true,
	OpImportName: true, OpImportFrom: true,
}

var fastLocalFamily = map[string]bool{
	OpLoadFast: true, OpStoreFast: true, OpDeleteFast: true,
}

// IsNameOpcode reports whether the decoded argument of name should be
// resolved against a CodeObject's Names table.
func IsNameOpcode(name string) bool { return nameFamily[name] }

// IsFastLocalOpcode reports whether the decoded argument of name should be
// resolved against a CodeObject's Varnames table.
func IsFastLocalOpcode(name string) bool { return fastLocalFamily[name] }

// Revision describes one supported interpreter revision's normalized
// opcode table, after the rewriting rules in 4.A have been applied to the
// raw per-revision data (see revisions_data.go).
type Revision struct {
	Magic             uint32
	PythonVersion     string
	HasKwOnlyArgCount bool

	byteToName map[byte]string
}

// revisions holds every supported revision, sorted by ascending magic. It
// is built once in init() from the raw literal data in revisions_data.go —
// the static table that replaces the build-time scraper described in the
// design notes.
var revisions []*Revision

// hasArgument is the union, across every revision, of normalized opcode
// names that carry a 2-byte argument in the revision(s) where they appear.
var hasArgument = map[string]bool{}

func init() {
	argSplit := splitNamesByArgument(rawRevisions)

	built := make([]*Revision, 0, len(rawRevisions))
	for _, raw := range rawRevisions {
		rev, argNames := raw.normalize(argSplit)
		built = append(built, rev)
		for _, name := range argNames {
			hasArgument[name] = true
		}
	}
	sort.Slice(built, func(i, j int) bool { return built[i].Magic < built[j].Magic })
	revisions = built
}

// revisionForMagic implements the lookup contract of 4.A: the revision
// whose magic equals magic, or failing that the revision with the smallest
// magic >= magic. Returns nil if magic exceeds every known revision.
func revisionForMagic(magic uint32) *Revision {
	for _, rev := range revisions {
		if rev.Magic == magic {
			return rev
		}
	}
	for _, rev := range revisions {
		if rev.Magic >= magic {
			return rev
		}
	}
	return nil
}

// Decode maps a (magic, raw byte) pair to a normalized opcode name, per the
// lookup contract in 4.A.
func Decode(magic uint32, b byte) (string, bool) {
	rev := revisionForMagic(magic)
	if rev == nil {
		return "", false
	}
	name, ok := rev.byteToName[b]
	return name, ok
}

// HasArgument reports whether the normalized opcode name carries a 2-byte
// little-endian argument, consistently across every revision that defines
// it (after the _ARG renaming in 4.A has made that status revision-
// independent).
func HasArgument(name string) bool { return hasArgument[name] }

// HasKwOnlyArgCount reports whether code objects produced by the
// interpreter revision identified by magic carry a co_kwonlyargcount field.
func HasKwOnlyArgCount(magic uint32) bool {
	rev := revisionForMagic(magic)
	return rev != nil && rev.HasKwOnlyArgCount
}

// PythonVersionFromMagic returns a human-readable interpreter version
// string for magic, or ok=false if magic matches no known revision.
func PythonVersionFromMagic(magic uint32) (string, bool) {
	rev := revisionForMagic(magic)
	if rev == nil {
		return "", false
	}
	return rev.PythonVersion, true
}

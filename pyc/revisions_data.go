// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

// This file is the static table that the design notes call for: in a
// previous life it would have been produced by a script that cloned the
// CPython source tree, ran `hg log`/`hg cat` over Include/opcode.h for
// every revision, and compiled small throwaway C programs to extract the
// MAGIC and PY_VERSION macros. None of that belongs in a decompiler
// binary, so the result is committed here as a literal instead, and a new
// interpreter revision is added by appending a rawRevision value rather
// than by touching any code below.
//
// Three revisions are carried, enough to exercise the SLICE-family
// expansion and the _ARG renaming of 4.A (none of them lists a
// pseudo-marker): an early revision that still uses the four SLICE/
// STORE_SLICE/DELETE_SLICE opcodes and SET_LINENO, a 2.x revision at the
// point where LIST_APPEND had just grown an argument, and an early 3.x
// revision that carries co_kwonlyargcount.

// rawRevision is the pre-normalization record for one interpreter
// revision.
type rawRevision struct {
	magic             uint32
	version           string
	hasKwOnlyArgCount bool
	haveArgument      int // byte value of the HAVE_ARGUMENT marker for this revision
	opcodes           map[string]int
}

var rawRevisions = []rawRevision{
	rev1Early,
	rev2Classic,
	rev3KwOnly,
}

// rev1Early is modeled on the interpreter line that still had SET_LINENO
// trace opcodes and the four-way SLICE family, and used separate relative
// JUMP_IF_TRUE/JUMP_IF_FALSE opcodes instead of the later *_OR_POP forms.
var rev1Early = rawRevision{
	magic:        60202,
	version:      "2.1",
	haveArgument: 90,
	opcodes: map[string]int{
		OpPopTop: 1, OpRotTwo: 2, OpRotThree: 3, OpDupTop: 4, OpRotFour: 5,
		OpNop: 9, OpUnaryPos: 10, OpUnaryNeg: 11, OpUnaryNot: 12, OpUnaryConvert: 13, OpUnaryInvert: 15,
		OpBinaryPower: 18, OpBinaryMultiply: 19, OpBinaryDivide: 20, OpBinaryModulo: 21,
		OpBinaryAdd: 22, OpBinarySubtract: 23, OpBinarySubscr: 24,
		OpSliceN: 30, OpStoreSliceN: 40, OpDeleteSliceN: 50,
		OpStoreMap: 54,
		OpInplaceAdd: 55, OpInplaceSubtract: 56, OpInplaceMultiply: 57, OpInplaceDivide: 58, OpInplaceModulo: 59,
		OpStoreSubscr: 60, OpDeleteSubscr: 61,
		OpBinaryLshift: 62, OpBinaryRshift: 63, OpBinaryAnd: 64, OpBinaryXor: 65, OpBinaryOr: 66,
		OpInplacePower: 67, OpGetIter: 68,
		OpPrintExpr: 70, OpPrintItem: 71, OpPrintNewline: 72,
		OpInplaceLshift: 75, OpInplaceRshift: 76, OpInplaceAnd: 77, OpInplaceXor: 78, OpInplaceOr: 79,
		OpBreakLoop: 80, OpLoadLocals: 82, OpReturnValue: 83, OpImportStar: 84, OpExecStmt: 85,
		OpPopBlock: 87, OpEndFinally: 88, OpBuildClass: 89,
		OpListAppend: 17, // no argument yet in this revision: below HAVE_ARGUMENT

		OpStoreName: 90, OpDeleteName: 91, OpUnpackSequence: 92, OpForIter: 93,
		OpStoreAttr: 95, OpDeleteAttr: 96, OpStoreGlobal: 97, OpDeleteGlobal: 98, OpDupTopX: 99,
		OpLoadConst: 100, OpLoadName: 101, OpBuildTuple: 102, OpBuildList: 103, OpBuildMap: 104,
		OpLoadAttr: 105, OpCompareOp: 106, OpImportName: 107, OpImportFrom: 108,
		OpJumpForward: 109, OpJumpIfFalse: 110, OpJumpIfTrue: 111, OpJumpAbsolute: 112,
		OpLoadGlobal: 116,
		OpContinueLoop: 119, OpSetupLoop: 120, OpSetupExcept: 121, OpSetupFinally: 122,
		OpLoadFast: 124, OpStoreFast: 125, OpDeleteFast: 126,
		OpSetLineno: 127,
		OpRaiseVarargs: 130, OpCallFunction: 131, OpMakeFunction: 132, OpBuildSlice: 133,
		OpExtendedArg: 143,
	},
}

// rev2Classic is modeled on the 2.7 line: SLICE opcodes are gone (subscript
// + BUILD_SLICE handle it), SET_LINENO is gone (lnotab instead), and
// LIST_APPEND has just grown an argument naming the stack depth of the
// collection being appended to — the canonical case the _ARG renaming rule
// exists for. SET_ADD is still argument-less here.
var rev2Classic = rawRevision{
	magic:        62211,
	version:      "2.7",
	haveArgument: 90,
	opcodes: map[string]int{
		OpPopTop: 1, OpRotTwo: 2, OpRotThree: 3, OpDupTop: 4, OpRotFour: 5,
		OpNop: 9, OpUnaryPos: 10, OpUnaryNeg: 11, OpUnaryNot: 12, OpUnaryInvert: 15,
		OpBinaryPower: 18, OpBinaryMultiply: 19, OpBinaryDivide: 20, OpBinaryModulo: 21,
		OpBinaryAdd: 22, OpBinarySubtract: 23, OpBinarySubscr: 24,
		OpBinaryFloorDivide: 25, OpBinaryTrueDivide: 26, OpInplaceFloorDivide: 27, OpInplaceTrueDivide: 28,
		OpStoreMap: 54,
		OpInplaceAdd: 55, OpInplaceSubtract: 56, OpInplaceMultiply: 57, OpInplaceDivide: 58, OpInplaceModulo: 59,
		OpStoreSubscr: 60, OpDeleteSubscr: 61,
		OpBinaryLshift: 62, OpBinaryRshift: 63, OpBinaryAnd: 64, OpBinaryXor: 65, OpBinaryOr: 66,
		OpInplacePower: 67, OpGetIter: 68,
		OpPrintExpr: 70, OpPrintItem: 71, OpPrintNewline: 72,
		OpInplaceLshift: 75, OpInplaceRshift: 76, OpInplaceAnd: 77, OpInplaceXor: 78, OpInplaceOr: 79,
		OpBreakLoop: 80, OpWithCleanup: 81, OpLoadLocals: 82, OpReturnValue: 83, OpImportStar: 84, OpExecStmt: 85,
		OpYieldValue: 86, OpPopBlock: 87, OpEndFinally: 88, OpBuildClass: 89,
		OpSetAdd: 16, // no argument yet in this revision: below HAVE_ARGUMENT

		OpStoreName: 90, OpDeleteName: 91, OpUnpackSequence: 92, OpForIter: 93,
		OpListAppend: 94, OpStoreAttr: 95, OpDeleteAttr: 96, OpStoreGlobal: 97, OpDeleteGlobal: 98, OpDupTopX: 99,
		OpLoadConst: 100, OpLoadName: 101, OpBuildTuple: 102, OpBuildList: 103, OpBuildSet: 104,
		OpBuildMap: 105, OpLoadAttr: 106, OpCompareOp: 107, OpImportName: 108, OpImportFrom: 109,
		OpJumpForward: 110, OpJumpIfFalseOrPop: 111, OpJumpIfTrueOrPop: 112, OpJumpAbsolute: 113,
		OpPopJumpIfFalse: 114, OpPopJumpIfTrue: 115, OpLoadGlobal: 116,
		OpContinueLoop: 119, OpSetupLoop: 120, OpSetupExcept: 121, OpSetupFinally: 122, OpSetupWith: 143,
		OpLoadFast: 124, OpStoreFast: 125, OpDeleteFast: 126,
		OpRaiseVarargs: 130, OpCallFunction: 131, OpMakeFunction: 132, OpBuildSlice: 133,
		OpMakeClosure: 134, OpLoadClosure: 135, OpLoadDeref: 136, OpStoreDeref: 137,
		OpCallFunctionVar: 140, OpCallFunctionKw: 141, OpCallFunctionVarKw: 142,
		OpExtendedArg: 145,
	},
}

// rev3KwOnly is modeled on an early 3.x line: co_kwonlyargcount is present,
// the print/exec statement opcodes and STORE_MAP are gone (print and exec
// became ordinary calls/statements handled elsewhere), and SET_ADD has
// become argument-carrying like LIST_APPEND did before it; MAP_ADD appears
// for dict comprehensions with no competing no-argument form, so it is not
// subject to the _ARG rename.
var rev3KwOnly = rawRevision{
	magic:             3180,
	version:           "3.2",
	hasKwOnlyArgCount: true,
	haveArgument:      90,
	opcodes: map[string]int{
		OpPopTop: 1, OpRotTwo: 2, OpRotThree: 3, OpDupTop: 4, OpRotFour: 5,
		OpNop: 9, OpUnaryPos: 10, OpUnaryNeg: 11, OpUnaryNot: 12, OpUnaryInvert: 15,
		OpBinaryPower: 19, OpBinaryMultiply: 20, OpBinaryModulo: 22,
		OpBinaryAdd: 23, OpBinarySubtract: 24, OpBinarySubscr: 25,
		OpBinaryFloorDivide: 26, OpBinaryTrueDivide: 27, OpInplaceFloorDivide: 28, OpInplaceTrueDivide: 29,
		OpInplaceAdd: 55, OpInplaceSubtract: 56, OpInplaceMultiply: 57, OpInplaceModulo: 59,
		OpStoreSubscr: 60, OpDeleteSubscr: 61,
		OpBinaryLshift: 62, OpBinaryRshift: 63, OpBinaryAnd: 64, OpBinaryXor: 65, OpBinaryOr: 66,
		OpInplacePower: 67, OpGetIter: 68,
		OpInplaceLshift: 75, OpInplaceRshift: 76, OpInplaceAnd: 77, OpInplaceXor: 78, OpInplaceOr: 79,
		OpBreakLoop: 80, OpWithCleanup: 81, OpReturnValue: 83, OpImportStar: 84,
		OpYieldValue: 86, OpPopBlock: 87, OpEndFinally: 88, OpBuildClass: 89,

		OpStoreName: 90, OpDeleteName: 91, OpUnpackSequence: 92, OpForIter: 93,
		OpListAppend: 94, OpStoreAttr: 95, OpDeleteAttr: 96, OpStoreGlobal: 97, OpDeleteGlobal: 98, OpDupTopX: 99,
		OpLoadConst: 100, OpLoadName: 101, OpBuildTuple: 102, OpBuildList: 103, OpBuildSet: 104,
		OpBuildMap: 105, OpLoadAttr: 106, OpCompareOp: 107, OpImportName: 108, OpImportFrom: 109,
		OpJumpForward: 110, OpJumpIfFalseOrPop: 111, OpJumpIfTrueOrPop: 112, OpJumpAbsolute: 113,
		OpPopJumpIfFalse: 114, OpPopJumpIfTrue: 115, OpLoadGlobal: 116,
		OpContinueLoop: 119, OpSetupLoop: 120, OpSetupExcept: 121, OpSetupFinally: 122, OpSetupWith: 143,
		OpLoadFast: 124, OpStoreFast: 125, OpDeleteFast: 126,
		OpRaiseVarargs: 130, OpCallFunction: 131, OpMakeFunction: 132, OpBuildSlice: 133,
		OpMakeClosure: 134, OpLoadClosure: 135, OpLoadDeref: 136, OpStoreDeref: 137,
		OpCallFunctionVar: 140, OpCallFunctionKw: 141, OpCallFunctionVarKw: 142,
		OpExtendedArg: 145, OpSetAdd: 146, OpMapAdd: 147,
	},
}

// splitNamesByArgument implements 4.A rule 3: for every opcode name that
// appears in more than one revision with inconsistent argument-carrying
// status, the revisions in which it carries an argument should decode to
// name+"_ARG" instead of name. It returns the set of such names.
func splitNamesByArgument(raws []rawRevision) map[string]bool {
	sawArg := map[string]bool{}
	sawNoArg := map[string]bool{}
	for _, raw := range raws {
		for name, byteVal := range raw.opcodes {
			if byteVal >= raw.haveArgument {
				sawArg[name] = true
			} else {
				sawNoArg[name] = true
			}
		}
	}
	split := map[string]bool{}
	for name := range sawArg {
		if sawNoArg[name] {
			split[name] = true
		}
	}
	return split
}

// sliceFamily lists the pre-3-byte-opcode slice mnemonics that 4.A rule 2
// expands into four consecutive _0.._3 entries.
var sliceFamily = []string{OpSliceN, OpStoreSliceN, OpDeleteSliceN}

// normalize builds the Revision's byte→name table from the raw per-
// revision data, applying the SLICE-family expansion and the _ARG renaming
// decided by argSplit. It returns the Revision plus the list of normalized
// names that carry an argument in this revision, for the caller to fold
// into the global hasArgument set.
func (raw rawRevision) normalize(argSplit map[string]bool) (*Revision, []string) {
	byteToName := map[byte]string{}
	var argNames []string

	emit := func(name string, byteVal int) {
		final := name
		if argSplit[name] && byteVal >= raw.haveArgument {
			final = name + "_ARG"
		}
		byteToName[byte(byteVal)] = final
		if byteVal >= raw.haveArgument {
			argNames = append(argNames, final)
		}
	}

sliceLoop:
	for name, byteVal := range raw.opcodes {
		if name == OpStopCode || name == OpHaveArgument || name == OpExceptHandler {
			continue
		}
		for _, sliceName := range sliceFamily {
			if name == sliceName {
				for i := 0; i < 4; i++ {
					emit(sliceName+suffixDigit(i), byteVal+i)
				}
				continue sliceLoop
			}
		}
		emit(name, byteVal)
	}

	return &Revision{
		Magic:             raw.magic,
		PythonVersion:     raw.version,
		HasKwOnlyArgCount: raw.hasKwOnlyArgCount,
		byteToName:        byteToName,
	}, argNames
}

func suffixDigit(i int) string {
	return "_" + string(rune('0'+i))
}

package lift

import (
	"fmt"

	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/pyc"
)

var binaryOps = map[string]string{
	pyc.OpBinaryAdd: "+", pyc.OpBinarySubtract: "-", pyc.OpBinaryMultiply: "*",
	pyc.OpBinaryDivide: "/", pyc.OpBinaryTrueDivide: "/", pyc.OpBinaryFloorDivide: "//",
	pyc.OpBinaryModulo: "%", pyc.OpBinaryPower: "**",
	pyc.OpBinaryLshift: "<<", pyc.OpBinaryRshift: ">>",
	pyc.OpBinaryAnd: "&", pyc.OpBinaryOr: "|", pyc.OpBinaryXor: "^",
	pyc.OpInplaceAdd: "+=", pyc.OpInplaceSubtract: "-=", pyc.OpInplaceMultiply: "*=",
	pyc.OpInplaceDivide: "/=", pyc.OpInplaceTrueDivide: "/=", pyc.OpInplaceFloorDivide: "//=",
	pyc.OpInplaceModulo: "%=", pyc.OpInplacePower: "**=",
	pyc.OpInplaceLshift: "<<=", pyc.OpInplaceRshift: ">>=",
	pyc.OpInplaceAnd: "&=", pyc.OpInplaceOr: "|=", pyc.OpInplaceXor: "^=",
}

var unaryOps = map[string]string{
	pyc.OpUnaryNot: "not ", pyc.OpUnaryNeg: "-", pyc.OpUnaryPos: "+", pyc.OpUnaryInvert: "~",
}

// compareOps mirrors CPython's COMPARE_OP argument table, in the order
// cmp_op lists them; "in" (index 6) and "is" (index 8) are each followed
// by their negated form.
var compareOps = []string{"<", "<=", "==", "!=", ">", ">=", "in", "not in", "is", "is not"}

// Result is everything Exec derives from one basic block's opcode stream:
// the lifted statements, any name a STORE_GLOBAL targeted, and — if the
// block ends in a conditional branch — the condition expression that
// branch tests. Depth is the number of values still live on the simulated
// stack when the block's statements ran out (nonzero only for blocks that
// fall through into a FOR_ITER/JUMP_IF_*_OR_POP value rather than consume
// it), used by package control to detect a branch-depth mismatch at an
// if-merge.
type Result struct {
	Block   *ir.Block
	Globals []string
	Cond    ir.Node
	NextTmp int
	Depth   int
}

// Exec symbolically executes block's linear Opcode stream against a
// simulated operand stack, rewriting stack-machine instructions into
// expression-tree nodes (component G). It is called once per basic block,
// each with its own fresh (empty) stack: CPython's compiler leaves the
// stack empty at every statement boundary, and jump targets only ever land
// on statement boundaries, so a block never begins mid-expression. startTmp
// threads a single, function-wide Temp ID counter across those per-block
// calls, so IDs stay unique across the whole function for FindUses.
func Exec(block *ir.Block, startTmp int) (Result, error) {
	ctx := newContext(startTmp)
	out := &ir.Block{}

	for _, stmt := range block.Stmts {
		op, ok := stmt.(*ir.Opcode)
		if !ok {
			out.Stmts = append(out.Stmts, stmt)
			continue
		}
		ctx.offset = op.Offset
		debugf("exec %s at offset %d, stack depth %d", op.Name, op.Offset, len(ctx.stack))
		execOne(ctx, op, out)
		if ctx.err != nil {
			// Abort the lifting pass for this block, but keep whatever
			// statements were already appended to out.
			break
		}
	}

	globals := make([]string, 0, len(ctx.globals))
	for name := range ctx.globals {
		globals = append(globals, name)
	}
	result := Result{Block: out, Globals: globals, Cond: ctx.lastCond, NextTmp: ctx.nextTmp, Depth: len(ctx.stack)}
	return result, ctx.err
}

func execOne(ctx *Context, op *ir.Opcode, out *ir.Block) {
	switch {
	case op.Name == pyc.OpLoadConst:
		ctx.push(&ir.Const{Value: op.Arg})
		return

	case op.Name == pyc.OpLoadName, op.Name == pyc.OpLoadGlobal, op.Name == pyc.OpLoadFast:
		ctx.push(&ir.Name{Ident: argString(op.Arg)})
		return
	case op.Name == pyc.OpLoadDeref, op.Name == pyc.OpLoadClosure:
		ctx.push(&ir.Name{Ident: argString(op.Arg)})
		return

	case op.Name == pyc.OpStoreGlobal:
		ident := argString(op.Arg)
		ctx.globals[ident] = true
		value := ctx.pop()
		out.Stmts = append(out.Stmts, &ir.Assign{Target: &ir.Name{Ident: ident}, Expr: value})
		return

	case op.Name == pyc.OpStoreName, op.Name == pyc.OpStoreFast, op.Name == pyc.OpStoreDeref:
		value := ctx.pop()
		out.Stmts = append(out.Stmts, &ir.Assign{Target: &ir.Name{Ident: argString(op.Arg)}, Expr: value})
		return

	case op.Name == pyc.OpLoadAttr:
		value := ctx.pop()
		ctx.push(&ir.Attr{Value: value, Name: argString(op.Arg)})
		return
	case op.Name == pyc.OpStoreAttr:
		obj := ctx.pop()
		value := ctx.pop()
		out.Stmts = append(out.Stmts, &ir.Assign{Target: &ir.Attr{Value: obj, Name: argString(op.Arg)}, Expr: value})
		return

	case op.Name == pyc.OpBinarySubscr:
		index := ctx.pop()
		value := ctx.pop()
		ctx.push(&ir.Subscr{Value: value, Index: index})
		return
	case op.Name == pyc.OpStoreSubscr:
		index := ctx.pop()
		obj := ctx.pop()
		value := ctx.pop()
		out.Stmts = append(out.Stmts, &ir.Assign{Target: &ir.Subscr{Value: obj, Index: index}, Expr: value})
		return

	case binaryOps[op.Name] != "":
		right := ctx.pop()
		left := ctx.pop()
		ctx.push(&ir.BinOp{Op: binaryOps[op.Name], Left: left, Right: right})
		return

	case unaryOps[op.Name] != "":
		expr := ctx.pop()
		ctx.push(&ir.UnaryOp{Op: unaryOps[op.Name], Expr: expr})
		return

	case op.Name == pyc.OpCompareOp:
		right := ctx.pop()
		left := ctx.pop()
		symbol := "?"
		if idx, ok := op.Arg.(int64); ok && int(idx) < len(compareOps) {
			symbol = compareOps[idx]
		}
		ctx.push(&ir.BinOp{Op: symbol, Left: left, Right: right})
		return

	case op.Name == pyc.OpBuildTuple:
		ctx.push(&ir.TupleExpr{Elems: ctx.popN(argInt(op.Arg))})
		return
	case op.Name == pyc.OpBuildList:
		ctx.push(&ir.ListExpr{Elems: ctx.popN(argInt(op.Arg))})
		return
	case op.Name == pyc.OpBuildSet:
		ctx.push(&ir.SetExpr{Elems: ctx.popN(argInt(op.Arg))})
		return
	case op.Name == pyc.OpBuildMap:
		// BUILD_MAP's argument is only a size hint pre-3.5; the dict is
		// actually populated by one STORE_MAP per entry immediately
		// afterward, and the STORE_MAP case below appends each entry to
		// this DictExpr in place. A STORE_SUBSCR is lifted as an ordinary
		// subscript Assign.
		ctx.push(&ir.DictExpr{})
		return
	case op.Name == pyc.OpStoreMap:
		value := ctx.pop()
		key := ctx.pop()
		dict := ctx.top()
		if d, ok := dict.(*ir.DictExpr); ok {
			d.Entries = append(d.Entries, ir.DictEntry{Key: key, Value: value})
		}
		return

	case op.Name == pyc.OpCallFunction:
		// CALL_FUNCTION's argument packs kwcount into the high byte and
		// argcount into the low byte; the stack (bottom to top) holds
		// func, then argcount positionals, then kwcount (key, value)
		// pairs.
		raw := argInt(op.Arg)
		kwcount, argcount := raw>>8, raw&0xFF
		kwItems := ctx.popN(kwcount * 2)
		kwargs := make([]ir.DictEntry, kwcount)
		for i := range kwargs {
			kwargs[i] = ir.DictEntry{Key: kwItems[i*2], Value: kwItems[i*2+1]}
		}
		args := ctx.popN(argcount)
		fn := ctx.pop()
		ctx.push(&ir.Call{Func: fn, Args: args, Kwargs: kwargs})
		return

	case op.Name == pyc.OpPrintItem:
		out.Stmts = append(out.Stmts, &ir.Print{Values: []ir.Node{ctx.pop()}})
		return
	case op.Name == pyc.OpPrintNewline:
		out.Stmts = append(out.Stmts, &ir.Print{Newline: true})
		return

	case op.Name == pyc.OpReturnValue:
		out.Stmts = append(out.Stmts, &ir.Return{Value: ctx.pop()})
		return

	case op.Name == pyc.OpPopTop:
		out.Stmts = append(out.Stmts, &ir.ExprStmt{Expr: ctx.pop()})
		return

	case op.Name == pyc.OpDupTop:
		v := ctx.top()
		ctx.push(v)
		return
	case op.Name == pyc.OpRotTwo:
		a := ctx.pop()
		b := ctx.pop()
		ctx.push(a)
		ctx.push(b)
		return

	case op.Name == pyc.OpPopJumpIfFalse, op.Name == pyc.OpPopJumpIfTrue,
		op.Name == pyc.OpJumpIfFalse, op.Name == pyc.OpJumpIfTrue:
		// The condition is consumed here; the branch itself is encoded in
		// the cfg.Graph this block belongs to, not as a statement. The
		// fallthrough block is the If's Then, so a jump-if-true records
		// the negated condition.
		ctx.lastCond = ctx.pop()
		if op.Name == pyc.OpPopJumpIfTrue || op.Name == pyc.OpJumpIfTrue {
			ctx.lastCond = &ir.UnaryOp{Op: unaryOps[pyc.OpUnaryNot], Expr: ctx.lastCond}
		}
		return

	case op.Name == pyc.OpJumpIfFalseOrPop, op.Name == pyc.OpJumpIfTrueOrPop, op.Name == pyc.OpForIter:
		// These leave their operand on the stack in the fallthrough case
		// (the "or pop" and "iterate" forms); the condition value itself
		// is still what the branch tests, negated for JUMP_IF_TRUE_OR_POP
		// as above.
		ctx.lastCond = ctx.top()
		if op.Name == pyc.OpJumpIfTrueOrPop {
			ctx.lastCond = &ir.UnaryOp{Op: unaryOps[pyc.OpUnaryNot], Expr: ctx.lastCond}
		}
		return

	case op.Name == pyc.OpBreakLoop:
		out.Stmts = append(out.Stmts, &ir.Break{})
		return
	case op.Name == pyc.OpContinueLoop:
		out.Stmts = append(out.Stmts, &ir.Continue{})
		return

	case op.Name == pyc.OpJumpForward, op.Name == pyc.OpJumpAbsolute,
		op.Name == pyc.OpSetupLoop, op.Name == pyc.OpPopBlock:
		// Pure control-flow bookkeeping: the target block is already
		// reachable through cfg.Graph's successor edges, so nothing needs
		// to be emitted as a statement.
		return

	default:
		// Anything this pass does not know how to lift (exception and
		// with-block setup, imports, RAISE_VARARGS, ...) survives as a
		// bare Opcode node (6 supplement: not every statement form is
		// reconstructed).
		out.Stmts = append(out.Stmts, op)
	}
}

func argString(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case int64:
		// LOAD_CLOSURE/LOAD_DEREF/STORE_DEREF resolve to a raw cell/free
		// slot index rather than a name (4.B's catch-all case; closures
		// are out of scope), so fall back to a synthetic but still legal
		// identifier instead of an empty one.
		return fmt.Sprintf("cell%d", v)
	default:
		return ""
	}
}

func argInt(arg interface{}) int {
	if n, ok := arg.(int64); ok {
		return int(n)
	}
	return 0
}

package codegen

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/pyc"
)

// Expr renders one expression node to Python-like text. Unlike Stmt, Expr
// never returns an empty string or multiple lines.
func Expr(n ir.Node) string {
	switch t := n.(type) {
	case *ir.Const:
		return constLiteral(t.Value)
	case *ir.Name:
		return t.Ident
	case *ir.Temp:
		return t.String()
	case *ir.BinOp:
		return fmt.Sprintf("(%s %s %s)", Expr(t.Left), t.Op, Expr(t.Right))
	case *ir.UnaryOp:
		return fmt.Sprintf("(%s%s)", t.Op, Expr(t.Expr))
	case *ir.Call:
		parts := make([]string, 0, len(t.Args)+len(t.Kwargs))
		for _, a := range t.Args {
			parts = append(parts, Expr(a))
		}
		for _, kw := range t.Kwargs {
			// A keyword's name arrives as a LOAD_CONST string, not a Name;
			// render it bare (foo(x=1)) rather than quoted (foo("x"=1)).
			name := Expr(kw.Key)
			if c, ok := kw.Key.(*ir.Const); ok {
				if s, ok := c.Value.(string); ok {
					name = s
				}
			}
			parts = append(parts, fmt.Sprintf("%s=%s", name, Expr(kw.Value)))
		}
		return fmt.Sprintf("%s(%s)", Expr(t.Func), strings.Join(parts, ", "))
	case *ir.Attr:
		return fmt.Sprintf("%s.%s", Expr(t.Value), t.Name)
	case *ir.Subscr:
		return fmt.Sprintf("%s[%s]", Expr(t.Value), Expr(t.Index))
	case *ir.TupleExpr:
		return fmt.Sprintf("(%s)", exprList(t.Elems))
	case *ir.ListExpr:
		return fmt.Sprintf("[%s]", exprList(t.Elems))
	case *ir.SetExpr:
		return fmt.Sprintf("{%s}", exprList(t.Elems))
	case *ir.DictExpr:
		parts := make([]string, len(t.Entries))
		for i, e := range t.Entries {
			parts[i] = fmt.Sprintf("%s: %s", Expr(e.Key), Expr(e.Value))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case nil:
		return "None"
	default:
		return "<?>"
	}
}

func constList(items []interface{}) string {
	parts := make([]string, len(items))
	for i, e := range items {
		parts[i] = constLiteral(e)
	}
	return strings.Join(parts, ", ")
}

func exprList(nodes []ir.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = Expr(n)
	}
	return strings.Join(parts, ", ")
}

// constLiteral renders a decoded marshal constant as a Python-like literal,
// for every value shape pyc.unmarshalNode can produce. Strings use Go's
// double-quoted escaping and floats Go's shortest formatting, so the text
// does not always match Python's repr (the float 1.0 renders as 1).
func constLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(val, 10)
	case *big.Int:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case complex128:
		return fmt.Sprintf("(%s+%sj)", strconv.FormatFloat(real(val), 'g', -1, 64), strconv.FormatFloat(imag(val), 'g', -1, 64))
	case string:
		return strconv.Quote(val)
	case []interface{}: // list constant
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = constLiteral(e)
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
	case pyc.Tuple:
		return fmt.Sprintf("(%s)", constList(val))
	case pyc.Set:
		if len(val) == 0 {
			return "set()"
		}
		return fmt.Sprintf("{%s}", constList(val))
	case pyc.FrozenSet:
		return fmt.Sprintf("frozenset({%s})", constList(val))
	case pyc.Dict:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = fmt.Sprintf("%s: %s", constLiteral(e.Key), constLiteral(e.Value))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case pyc.Ellipsis:
		return "..."
	case pyc.StopIteration:
		return "StopIteration"
	case *pyc.CodeObject:
		return fmt.Sprintf("<code %s>", val.Name)
	default:
		return fmt.Sprintf("%v", val)
	}
}

package pyc

import (
	"math"
	"math/big"
	"strconv"

	"github.com/evanw/unwind-go/pyc/internal/offsetreader"
)

// Tuple, Set and FrozenSet distinguish Python's three immutable/mutable
// sequence-ish container tags ('(', '<', '>') once decoded into Go, since a
// plain []interface{} would lose which one a constant originally was.
type Tuple []interface{}
type Set []interface{}
type FrozenSet []interface{}

// Ellipsis and StopIteration stand in for Python's two singleton marshal
// tags ('.' and 'S') that carry no payload of their own.
type Ellipsis struct{}
type StopIteration struct{}

// DictEntry is one key/value pair of a decoded dict constant. Dict is kept
// as an ordered slice, rather than a Go map, because marshalled keys are
// not guaranteed comparable (a dict key may itself be a tuple or a nested
// dict) and because codegen renders a dict constant's entries in their
// original insertion order.
type DictEntry struct {
	Key   interface{}
	Value interface{}
}
type Dict []DictEntry

// decoder holds the state threaded through one recursive top-to-bottom walk
// of a marshal value tree: the interpreter revision (needed to decode every
// code object's bytecode) and the interned-string table built up by
// 't' tags and consumed by 'R' tags.
type decoder struct {
	magic   uint32
	r       *offsetreader.Reader
	strings []string
}

// unmarshalNode reads one tagged value, recursing for every container tag.
// This is the decoder for component B (4.B): the tag switch mirrors the
// CPython marshal format byte for byte.
func (d *decoder) unmarshalNode() (interface{}, error) {
	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}
	debugf("unmarshal tag %q at offset %d", tag, d.r.Offset-1)

	switch tag {
	case 'N': // None
		return nil, nil
	case 'T': // True
		return true, nil
	case 'F': // False
		return false, nil
	case 'S': // StopIteration singleton
		return StopIteration{}, nil
	case '.': // Ellipsis singleton
		return Ellipsis{}, nil
	case '0': // NULL: "no value", used as dict terminator and a few padding slots
		return nil, nil

	case 'i':
		v, err := readI32(d.r)
		return int64(v), err
	case 'I':
		v, err := readI64(d.r)
		return v, err

	case 'f':
		return d.readShortFloatStr()
	case 'g':
		bits, err := readU64(d.r)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(bits), nil

	case 'x':
		re, err := d.readShortFloatStr()
		if err != nil {
			return nil, err
		}
		im, err := d.readShortFloatStr()
		if err != nil {
			return nil, err
		}
		return complex(re, im), nil
	case 'y':
		reBits, err := readU64(d.r)
		if err != nil {
			return nil, err
		}
		imBits, err := readU64(d.r)
		if err != nil {
			return nil, err
		}
		return complex(math.Float64frombits(reBits), math.Float64frombits(imBits)), nil

	case 'l':
		return d.readLong()

	case 's', 'u':
		b, err := d.readLengthPrefixedBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case 't':
		b, err := d.readLengthPrefixedBytes()
		if err != nil {
			return nil, err
		}
		s := string(b)
		d.strings = append(d.strings, s)
		return s, nil
	case 'R':
		idx, err := readI32(d.r)
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(d.strings) {
			return nil, DecodeError{Kind: ErrStringRefOutOfRange, Offset: d.r.Offset, Value: int64(idx)}
		}
		return d.strings[idx], nil

	case '(':
		return d.readSequence(func(items []interface{}) interface{} { return Tuple(items) })
	case '[':
		return d.readSequence(func(items []interface{}) interface{} { return items })
	case '<':
		return d.readSequence(func(items []interface{}) interface{} { return Set(items) })
	case '>':
		return d.readSequence(func(items []interface{}) interface{} { return FrozenSet(items) })
	case '{':
		return d.readDict()

	case 'c':
		return d.readCodeObject()

	default:
		return nil, DecodeError{Kind: ErrUnexpectedTag, Offset: d.r.Offset - 1, Value: int64(tag)}
	}
}

func (d *decoder) readTag() (byte, error) {
	b, err := readBytes(d.r, 1)
	if err != nil {
		return 0, DecodeError{Kind: ErrTruncated, Offset: d.r.Offset, Value: 0}
	}
	return b[0], nil
}

// readLengthPrefixedBytes reads a 4-byte little-endian length followed by
// that many raw bytes, the encoding shared by string, unicode and interned
// string tags.
func (d *decoder) readLengthPrefixedBytes() ([]byte, error) {
	n, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, DecodeError{Kind: ErrTruncated, Offset: d.r.Offset, Value: int64(n)}
	}
	return readBytes(d.r, int(n))
}

// readShortFloatStr reads the 'f' encoding: a one-byte length followed by
// that many ASCII bytes of a repr-style float literal.
func (d *decoder) readShortFloatStr() (float64, error) {
	n, err := readI8(d.r)
	if err != nil {
		return 0, err
	}
	b, err := readBytes(d.r, int(n))
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, DecodeError{Kind: ErrTruncated, Offset: d.r.Offset, Value: 0}
	}
	return f, nil
}

// readLong decodes the 'l' tag: a signed digit count followed by that many
// 15-bit digits, little-endian by digit, base 2^15. Values that overflow
// int64 are kept as *big.Int rather than silently truncated, per the
// unbounded-integer behaviour supplemented from the original sources (4.B,
// 6 supplement).
func (d *decoder) readLong() (interface{}, error) {
	n, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	negative := n < 0
	count := int(n)
	if negative {
		count = -count
	}
	if count == 0 {
		return int64(0), nil
	}

	acc := new(big.Int)
	shift := new(big.Int)
	for i := 0; i < count; i++ {
		digit, err := readI16(d.r)
		if err != nil {
			return nil, err
		}
		word := big.NewInt(int64(uint16(digit)))
		shift.Lsh(big.NewInt(1), uint(15*i))
		word.Mul(word, shift)
		acc.Add(acc, word)
	}
	if negative {
		acc.Neg(acc)
	}
	if acc.IsInt64() {
		return acc.Int64(), nil
	}
	return acc, nil
}

func (d *decoder) readSequence(wrap func([]interface{}) interface{}) (interface{}, error) {
	n, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, DecodeError{Kind: ErrTruncated, Offset: d.r.Offset, Value: int64(n)}
	}
	items := make([]interface{}, n)
	for i := range items {
		v, err := d.unmarshalNode()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return wrap(items), nil
}

// readDict decodes the '{' tag: alternating key/value nodes terminated by a
// NULL ('0') key, rather than a length prefix.
func (d *decoder) readDict() (interface{}, error) {
	var dict Dict
	for {
		key, err := d.unmarshalNode()
		if err != nil {
			return nil, err
		}
		if key == nil {
			return dict, nil
		}
		value, err := d.unmarshalNode()
		if err != nil {
			return nil, err
		}
		dict = append(dict, DictEntry{Key: key, Value: value})
	}
}

func (d *decoder) readStringTuple() ([]string, error) {
	v, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	tuple, ok := v.(Tuple)
	if !ok {
		return nil, nil
	}
	out := make([]string, len(tuple))
	for i, item := range tuple {
		s, _ := item.(string)
		out[i] = s
	}
	return out, nil
}

// readCodeObject decodes the 'c' tag and then immediately lowers its raw
// bytecode field into a normalized []Opcode stream, since nothing
// downstream ever wants the flat bytes again.
func (d *decoder) readCodeObject() (interface{}, error) {
	co := &CodeObject{}

	argCount, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	co.ArgCount = int(argCount)

	if HasKwOnlyArgCount(d.magic) {
		kwOnly, err := readI32(d.r)
		if err != nil {
			return nil, err
		}
		co.KwOnlyArgCount = int(kwOnly)
	}

	nlocals, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	co.NLocals = int(nlocals)

	stackSize, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	co.StackSize = int(stackSize)

	flags, err := readU32(d.r)
	if err != nil {
		return nil, err
	}
	co.Flags = flags

	codeVal, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	codeStr, ok := codeVal.(string)
	if !ok {
		return nil, DecodeError{Kind: ErrBadCodeHeader, Offset: d.r.Offset, Value: 0}
	}
	co.Code = []byte(codeStr)

	constsVal, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	if tuple, ok := constsVal.(Tuple); ok {
		co.Consts = []interface{}(tuple)
	}

	if co.Names, err = d.readStringTuple(); err != nil {
		return nil, err
	}
	if co.Varnames, err = d.readStringTuple(); err != nil {
		return nil, err
	}
	if co.Freevars, err = d.readStringTuple(); err != nil {
		return nil, err
	}
	if co.Cellvars, err = d.readStringTuple(); err != nil {
		return nil, err
	}

	filenameVal, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	co.Filename, _ = filenameVal.(string)

	nameVal, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	co.Name, _ = nameVal.(string)

	firstLine, err := readI32(d.r)
	if err != nil {
		return nil, err
	}
	co.FirstLineNo = int(firstLine)

	lnotabVal, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	if s, ok := lnotabVal.(string); ok {
		co.Lnotab = []byte(s)
	}

	opcodes, err := decodeBytecode(co.Code, d.magic, co)
	if err != nil {
		return nil, err
	}
	co.Opcodes = opcodes

	return co, nil
}

// decodeBytecode rewrites a code object's flat byte string into a
// normalized opcode stream, folding EXTENDED_ARG prefixes into the
// instruction they modify and resolving each argument against the
// appropriate constants/names/varnames/freevars table (4.B).
//
// The accumulator is load-bearing: it must reset to zero after every
// instruction that is not itself EXTENDED_ARG, and it must left-shift by 16
// bits on every additional EXTENDED_ARG seen before that instruction, so
// that a chain of N EXTENDED_ARG opcodes correctly builds a 16*(N+1)-bit
// argument out of N+1 two-byte words.
func decodeBytecode(code []byte, magic uint32, co *CodeObject) ([]Opcode, error) {
	var opcodes []Opcode
	pos := 0
	extendedArg := 0

	for pos < len(code) {
		start := pos
		name, raw, newPos, err := readOneInstruction(code, pos, magic, &extendedArg)
		if err != nil {
			return nil, err
		}
		pos = newPos

		var argVal interface{}
		if HasArgument(name) {
			argVal, err = resolveArg(name, raw, co)
			if err != nil {
				return nil, err
			}
		}

		debugf("decode %s at offset %d, arg=%v", name, start, argVal)
		opcodes = append(opcodes, Opcode{
			Offset: start,
			Size:   pos - start,
			Name:   name,
			Arg:    argVal,
		})
		extendedArg = 0
	}
	return opcodes, nil
}

// readOneInstruction consumes one logical instruction starting at pos,
// transparently absorbing any EXTENDED_ARG opcodes that precede it into
// *extendedArg. It returns the final (non-EXTENDED_ARG) opcode's name, its
// raw combined argument (0 if it takes none), and the position just past
// it.
func readOneInstruction(code []byte, pos int, magic uint32, extendedArg *int) (string, int, int, error) {
	for {
		if pos >= len(code) {
			return "", 0, 0, DecodeError{Kind: ErrTruncated, Offset: int64(pos), Value: 0}
		}
		b := code[pos]
		pos++
		name, ok := Decode(magic, b)
		if !ok {
			return "", 0, 0, DecodeError{Kind: ErrUnknownBytecode, Offset: int64(pos - 1), Value: int64(b)}
		}

		if name != OpExtendedArg {
			raw := 0
			if HasArgument(name) {
				if pos+2 > len(code) {
					return "", 0, 0, DecodeError{Kind: ErrTruncated, Offset: int64(pos), Value: 0}
				}
				raw = int(code[pos]) | int(code[pos+1])<<8
				pos += 2
				raw |= *extendedArg << 16
			}
			return name, raw, pos, nil
		}

		if pos+2 > len(code) {
			return "", 0, 0, DecodeError{Kind: ErrTruncated, Offset: int64(pos), Value: 0}
		}
		arg := int(code[pos]) | int(code[pos+1])<<8
		pos += 2
		*extendedArg = (*extendedArg << 16) | arg
	}
}

// resolveArg maps a raw two-byte instruction argument to the value it
// actually denotes: a constant, an interned name, a fast-local slot name,
// or (for everything else — jump targets, counts, comparison codes,
// cell/free variable slots) the raw integer itself, per 4.B's three-family
// enumeration.
func resolveArg(name string, raw int, co *CodeObject) (interface{}, error) {
	switch {
	case name == OpLoadConst:
		if raw < 0 || raw >= len(co.Consts) {
			return nil, DecodeError{Kind: ErrInvalidArgument, Offset: 0, Value: int64(raw)}
		}
		return co.Consts[raw], nil

	case IsNameOpcode(name):
		if raw < 0 || raw >= len(co.Names) {
			return nil, DecodeError{Kind: ErrInvalidArgument, Offset: 0, Value: int64(raw)}
		}
		return co.Names[raw], nil

	case IsFastLocalOpcode(name):
		if raw < 0 || raw >= len(co.Varnames) {
			return nil, DecodeError{Kind: ErrInvalidArgument, Offset: 0, Value: int64(raw)}
		}
		return co.Varnames[raw], nil

	default:
		return int64(raw), nil
	}
}

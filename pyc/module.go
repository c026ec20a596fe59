package pyc

import (
	"fmt"
	"io"
	"strings"

	"github.com/evanw/unwind-go/pyc/internal/offsetreader"
)

// Module represents one decoded marshal file: the header plus the single
// top-level code object every .pyc-style artifact contains.
type Module struct {
	Magic         uint32
	Timestamp     uint32
	PythonVersion string
	Body          *CodeObject
}

// CodeObject represents one decoded Python code object. Constants may
// themselves be *CodeObject values (nested function/class bodies), decoded
// recursively.
type CodeObject struct {
	ArgCount       int
	KwOnlyArgCount int
	NLocals        int
	StackSize      int
	Flags          uint32

	Code []byte // raw bytecode, prior to opcode decoding

	Consts   []interface{}
	Names    []string
	Varnames []string
	Freevars []string
	Cellvars []string

	Filename    string
	Name        string
	FirstLineNo int
	Lnotab      []byte

	Opcodes []Opcode
}

// Opcode represents one decoded instruction within a CodeObject's bytecode.
type Opcode struct {
	Offset int
	Size   int
	Name   string
	// Arg is nil for argument-less opcodes, or one of: a constant value
	// (for LOAD_CONST), a string (for the name/fast-local families), or
	// an int64 raw argument (jump target, count, index).
	Arg interface{}
}

func (o Opcode) String() string {
	return fmt.Sprintf("Opcode(offset=%d, size=%d, name=%s, arg=%#v)", o.Offset, o.Size, o.Name, o.Arg)
}

// ReadModule reads and decodes a single marshal file from r. This is the
// top-level entry point for component B.
func ReadModule(r io.Reader) (*Module, error) {
	src := &offsetreader.Reader{R: r}

	magic, err := readU32(src)
	if err != nil {
		return nil, err
	}
	timestamp, err := readU32(src)
	if err != nil {
		return nil, err
	}

	version, ok := PythonVersionFromMagic(magic)
	if !ok {
		return nil, DecodeError{Kind: ErrUnknownMagic, Offset: 0, Value: int64(magic)}
	}

	d := &decoder{magic: magic, r: src}
	value, err := d.unmarshalNode()
	if err != nil {
		return nil, err
	}
	body, ok := value.(*CodeObject)
	if !ok {
		return nil, DecodeError{Kind: ErrUnexpectedTag, Offset: src.Offset, Value: 0}
	}

	return &Module{
		Magic:         magic,
		Timestamp:     timestamp,
		PythonVersion: "Python " + version,
		Body:          body,
	}, nil
}

// String renders an indented, nested dump of the module, in the spirit of
// the original implementation's __repr__ methods (4.B supplement).
func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module(\n")
	fmt.Fprintf(&b, "    magic = %d,\n", m.Magic)
	fmt.Fprintf(&b, "    timestamp = %d,\n", m.Timestamp)
	fmt.Fprintf(&b, "    python_version = %q,\n", m.PythonVersion)
	fmt.Fprintf(&b, "    body = %s\n", indentLines(m.Body.String(), "    "))
	b.WriteString(")")
	return b.String()
}

// String renders an indented dump of the code object and its decoded
// opcodes.
func (c *CodeObject) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CodeObject(\n")
	fmt.Fprintf(&b, "    argcount = %d,\n", c.ArgCount)
	fmt.Fprintf(&b, "    kwonlyargcount = %d,\n", c.KwOnlyArgCount)
	fmt.Fprintf(&b, "    nlocals = %d,\n", c.NLocals)
	fmt.Fprintf(&b, "    stacksize = %d,\n", c.StackSize)
	fmt.Fprintf(&b, "    flags = %#x,\n", c.Flags)
	fmt.Fprintf(&b, "    filename = %q,\n", c.Filename)
	fmt.Fprintf(&b, "    name = %q,\n", c.Name)
	fmt.Fprintf(&b, "    firstlineno = %d,\n", c.FirstLineNo)
	b.WriteString("    opcodes = [\n")
	for _, o := range c.Opcodes {
		fmt.Fprintf(&b, "        %s,\n", o.String())
	}
	b.WriteString("    ]\n)")
	return b.String()
}

func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evanw/unwind-go/pyc/internal/offsetreader"
)

// builder assembles a marshal byte stream tag by tag, for tests that need
// a specific, hand-crafted value tree rather than a real .pyc file.
type builder struct {
	buf bytes.Buffer
}

func (b *builder) u32(v uint32) *builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) i32(v int32) *builder { return b.u32(uint32(v)) }

func (b *builder) tag(t byte) *builder {
	b.buf.WriteByte(t)
	return b
}

func (b *builder) int(v int32) *builder {
	b.tag('i')
	b.i32(v)
	return b
}

func (b *builder) str(s string) *builder {
	b.tag('s')
	b.i32(int32(len(s)))
	b.buf.WriteString(s)
	return b
}

func (b *builder) tuple(n int32, elems func(*builder)) *builder {
	b.tag('(')
	b.i32(n)
	elems(b)
	return b
}

func (b *builder) bytecode(bc []byte) *builder {
	b.tag('s')
	b.i32(int32(len(bc)))
	b.buf.Write(bc)
	return b
}

// rev2Classic code bytes: LOAD_CONST 0 (byte 100, arg 0); RETURN_VALUE
// (byte 83).
func buildRev2Module(t *testing.T) []byte {
	t.Helper()
	var b builder
	b.u32(62211) // rev2Classic magic
	b.u32(0)     // timestamp

	b.tag('c')
	b.i32(0) // argcount
	// rev2Classic has no co_kwonlyargcount
	b.i32(0) // nlocals
	b.i32(1) // stacksize
	b.u32(0) // flags
	b.bytecode([]byte{100, 0, 0, 83})
	b.tuple(1, func(b *builder) { b.int(42) }) // consts
	b.tuple(0, func(*builder) {})              // names
	b.tuple(0, func(*builder) {})              // varnames
	b.tuple(0, func(*builder) {})              // freevars
	b.tuple(0, func(*builder) {})              // cellvars
	b.str("t.py")                              // filename
	b.str("f")                                 // name
	b.i32(1)                                   // firstlineno
	b.str("")                                  // lnotab

	return b.buf.Bytes()
}

func TestReadModuleRev2(t *testing.T) {
	data := buildRev2Module(t)
	m, err := ReadModule(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, uint32(62211), m.Magic)
	require.Equal(t, "Python 2.7", m.PythonVersion)

	require.Len(t, m.Body.Opcodes, 2)
	require.Equal(t, OpLoadConst, m.Body.Opcodes[0].Name)
	require.Equal(t, int64(42), m.Body.Opcodes[0].Arg)
	require.Equal(t, OpReturnValue, m.Body.Opcodes[1].Name)
	require.Nil(t, m.Body.Opcodes[1].Arg)
}

func TestReadModuleUnknownMagic(t *testing.T) {
	var b builder
	b.u32(0xdeadbeef)
	b.u32(0)
	_, err := ReadModule(bytes.NewReader(b.buf.Bytes()))
	require.Error(t, err)
	var decodeErr DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, ErrUnknownMagic, decodeErr.Kind)
}

func TestDecodeListAppendAcrossRevisions(t *testing.T) {
	// 4.A's canonical example: LIST_APPEND carries no argument in rev1Early
	// but does in rev2Classic, so the normalizer must rename the
	// argument-carrying form to LIST_APPEND_ARG while leaving rev1Early's
	// alone.
	name, ok := Decode(60202, 17)
	require.True(t, ok)
	require.Equal(t, OpListAppend, name)

	name, ok = Decode(62211, 94)
	require.True(t, ok)
	require.Equal(t, OpListAppend+"_ARG", name)
	require.True(t, HasArgument(name))
}

func TestDecodeSliceFamilyExpansion(t *testing.T) {
	for i := byte(0); i < 4; i++ {
		name, ok := Decode(60202, 30+i)
		require.True(t, ok)
		require.Equal(t, OpSliceN+"_"+string(rune('0'+i)), name)
	}
}

func TestReadLongMultiDigit(t *testing.T) {
	d := &decoder{magic: 62211}
	// Three 15-bit digits, little-endian (1, 0, 1): the third digit lands
	// at bit 30, exercising the multi-digit accumulation path; the value
	// stays inside int64 range, so readLong returns a plain int64.
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(3))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	d.r = &offsetreader.Reader{R: bytes.NewReader(buf.Bytes())}

	v, err := d.readLong()
	require.NoError(t, err)
	require.Equal(t, int64(1)+int64(1)<<30, v)
}

// Package unwind is the public entry point: read a compiled Python marshal
// file and either return its decoded Module tree (Disassemble) or a
// reconstructed Python-like source rendering of it (Decompile).
package unwind

import (
	"fmt"
	"os"

	"github.com/evanw/unwind-go/decompile"
	"github.com/evanw/unwind-go/pyc"
)

// Disassemble reads and decodes the marshal file at path, returning its
// Module tree (header, nested constants, and the decoded, normalized
// opcode stream of every code object it contains).
func Disassemble(path string) (*pyc.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unwind: %w", err)
	}
	defer f.Close()

	module, err := pyc.ReadModule(f)
	if err != nil {
		return nil, fmt.Errorf("unwind: %w", err)
	}
	return module, nil
}

// Decompile reads the marshal file at path and renders its top-level code
// object (and any nested code objects reachable from its constants) as
// Python-like source text.
func Decompile(path string) (string, error) {
	module, err := Disassemble(path)
	if err != nil {
		return "", err
	}
	return decompileCode(module.Body)
}

// decompileCode recursively renders co and every nested code object among
// its constants, each as its own `def`, in the order they were declared.
// It keeps rendering siblings after a lift.LiftError (the source for the
// failing function still comes back, just with residual opcodes where
// lifting gave up) but reports the first error it saw.
func decompileCode(co *pyc.CodeObject) (string, error) {
	var out string
	var firstErr error
	for _, c := range co.Consts {
		if nested, ok := c.(*pyc.CodeObject); ok {
			src, err := decompileCode(nested)
			out += src
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	src, err := decompile.Function(co)
	out += src
	if err != nil && firstErr == nil {
		firstErr = err
	}
	return out, firstErr
}

// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/evanw/unwind-go/pyc"
	"github.com/evanw/unwind-go/unwind"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pycdis [options] file1.pyc [file2.pyc [...]]

ex:
 $> pycdis -h ./file1.pyc

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.Bool("v", false, "enable/disable verbose mode")
	flagHeaders = flag.Bool("h", false, "print the marshal header")
	flagDis     = flag.Bool("d", false, "disassemble bytecode")
	flagDetails = flag.Bool("x", false, "show code object details (header fields and opcodes; the names, varnames and consts tables are not printed)")
	flagNoColor = flag.Bool("no-color", false, "disable colorized mnemonic output")
)

var mnemonicStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))

func main() {
	log.SetPrefix("pycdis: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
	}
	if !*flagHeaders && !*flagDis && !*flagDetails {
		flag.Usage()
		log.Printf("At least one of -d, -h or -x must be given")
		os.Exit(1)
	}

	pyc.SetDebugMode(*flagVerbose)

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Printf("\n")
		}
		process(fname)
	}
}

func process(fname string) {
	module, err := unwind.Disassemble(fname)
	if err != nil {
		log.Fatalf("could not read %q: %v", fname, err)
	}

	if *flagHeaders {
		printHeaders(fname, module)
	}
	if *flagDis {
		printDis(module.Body, 0)
	}
	if *flagDetails {
		printDetails(module.Body, 0)
	}
}

func printHeaders(fname string, m *pyc.Module) {
	fmt.Printf("%s:\n", fname)
	fmt.Printf("  magic:      %#x\n", m.Magic)
	fmt.Printf("  timestamp:  %d\n", m.Timestamp)
	fmt.Printf("  version:    %s\n", m.PythonVersion)
}

func printDis(co *pyc.CodeObject, depth int) {
	pad := indent(depth)
	fmt.Printf("%s%s:\n", pad, co.Name)
	for _, op := range co.Opcodes {
		mnemonic := op.Name
		if !*flagNoColor {
			mnemonic = mnemonicStyle.Render(mnemonic)
		}
		if op.Arg != nil {
			fmt.Printf("%s  %6d %s %v\n", pad, op.Offset, mnemonic, op.Arg)
		} else {
			fmt.Printf("%s  %6d %s\n", pad, op.Offset, mnemonic)
		}
	}
	for _, c := range co.Consts {
		if nested, ok := c.(*pyc.CodeObject); ok {
			printDis(nested, depth+1)
		}
	}
}

func printDetails(co *pyc.CodeObject, depth int) {
	pad := indent(depth)
	fmt.Printf("%s%s\n", pad, co.String())
	for _, c := range co.Consts {
		if nested, ok := c.(*pyc.CodeObject); ok {
			printDetails(nested, depth+1)
		}
	}
}

func indent(depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	return out
}

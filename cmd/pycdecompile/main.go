// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/evanw/unwind-go/lift"
	"github.com/evanw/unwind-go/pyc"
	"github.com/evanw/unwind-go/unwind"
)

func main() {
	log.SetPrefix("pycdecompile: ")
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "enable/disable verbose mode")
	quiet := flag.Bool("q", false, "suppress the unreconstructed-opcode comments even when stdout is not a tty")

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	pyc.SetDebugMode(*verbose)
	lift.SetDebugMode(*verbose)

	run(os.Stdout, flag.Arg(0), *quiet)
}

func run(w io.Writer, fname string, quiet bool) {
	src, err := unwind.Decompile(fname)
	var liftErr lift.LiftError
	if errors.As(err, &liftErr) {
		// The pipeline still produced a partial rendering; report the
		// failure but print what it managed to reconstruct rather than
		// discarding it.
		log.Printf("partial decompile of %q: %v", fname, liftErr)
	} else if err != nil {
		log.Fatalf("could not decompile %q: %v", fname, err)
	}

	// Residual "# OPCODE (unreconstructed, ...)" comment lines clutter an
	// interactive terminal session more than they help; when stdout isn't
	// a tty (piped to a file, grep, etc.) keep them, since a reader
	// post-processing the output likely wants every line.
	if quiet || term.IsTerminal(int(os.Stdout.Fd())) {
		src = stripResidualComments(src)
	}

	fmt.Fprint(w, src)
}

func stripResidualComments(src string) string {
	lines := strings.Split(src, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "(unreconstructed, offset") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

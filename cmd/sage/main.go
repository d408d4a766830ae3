// Command sage is a thin driver over the public github.com/sagelang/sage
// package: inline evaluation, AST/IR dumps, and a REPL. It carries no
// pipeline logic of its own — every flag below is a few lines of glue
// around Lex/Parse/Analyze/Evaluate/Generate, the way the teacher's
// cmd/pars is a few hundred lines of flag/mode dispatch around
// pkg/parsley.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sagelang/sage"
)

// Version is set at compile time via -ldflags, matching cmd/pars.
var Version = "0.1.0"

func main() {
	evalFlag := flag.String("e", "", "evaluate a Sage program given inline and exit")
	astFlag := flag.Bool("ast", false, "dump the parsed AST instead of evaluating")
	irFlag := flag.Bool("ir", false, "dump the analyzer's typed IR instead of evaluating")
	generateFlag := flag.Bool("java", false, "transpile to the generator's host-language source instead of evaluating")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("sage version %s\n", Version)
		return
	}

	source, hasSource, err := inputSource(*evalFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sage:", err)
		os.Exit(1)
	}

	if !hasSource {
		runREPL()
		return
	}

	switch {
	case *astFlag:
		dumpAST(source)
	case *irFlag:
		dumpIR(source)
	case *generateFlag:
		dumpGenerate(source)
	default:
		runSource(source)
	}
}

// inputSource resolves the program text: -e wins, else the first
// positional argument is read as a file path, else there is none (and
// the REPL starts).
func inputSource(evalFlag string) (string, bool, error) {
	if evalFlag != "" {
		return evalFlag, true, nil
	}
	if args := flag.Args(); len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	}
	return "", false, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sage - Sage language toolchain

Usage:
  sage                  Start the interactive REPL
  sage [file]           Evaluate a Sage source file
  sage -e "code"        Evaluate inline code
  sage -ast [file]      Dump the parsed AST
  sage -ir [file]       Dump the analyzer's typed IR
  sage -java [file]     Transpile to host-language source

Options:
`)
	flag.PrintDefaults()
}

func runSource(source string) {
	value, err := sage.Run(source, sage.StdoutLogger())
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	if value != nil {
		fmt.Println(value.Print())
	}
}

func dumpAST(source string) {
	tokens, err := sage.Lex(source)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	tree, err := sage.Parse(tokens)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	fmt.Print(tree.String())
}

func dumpIR(source string) {
	tokens, err := sage.Lex(source)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	tree, err := sage.Parse(tokens)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	typed, err := sage.Analyze(tree, sage.NewTypeScope())
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	fmt.Print(typed.String())
}

func dumpGenerate(source string) {
	out, err := sage.Transpile(source)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func reportError(err *sage.Error) {
	fmt.Fprintln(os.Stderr, err.Error())
}

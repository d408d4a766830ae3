// Package sage provides a public API for embedding the Sage language
// toolchain — lexer, parser, analyzer, evaluator, and generator — behind
// the five entry points described in spec.md §6, the way the teacher's
// pkg/parsley/parsley package wraps pkg/parsley/{lexer,parser,evaluator}
// for its own CLI and for other embedders.
package sage

import (
	"fmt"
	"io"

	"github.com/sagelang/sage/pkg/sage/analyzer"
	"github.com/sagelang/sage/pkg/sage/ast"
	"github.com/sagelang/sage/pkg/sage/evaluator"
	"github.com/sagelang/sage/pkg/sage/generator"
	"github.com/sagelang/sage/pkg/sage/ir"
	"github.com/sagelang/sage/pkg/sage/lexer"
	"github.com/sagelang/sage/pkg/sage/object"
	"github.com/sagelang/sage/pkg/sage/parser"
	"github.com/sagelang/sage/pkg/sage/sageerr"
	"github.com/sagelang/sage/pkg/sage/types"
)

// Re-exported stage types, so embedders need only import this package
// for the common case.
type (
	Token      = lexer.Token
	Source     = ast.Source
	IrSource   = ir.Source
	Value      = object.Value
	TypeScope  = types.Scope[*types.Type]
	ValueScope = object.Scope
	Error      = sageerr.Error
)

// Logger receives output from the debug/print/log natives during
// Evaluate. It is an alias for evaluator.Logger so callers never need
// to import pkg/sage/evaluator directly just to pass one in.
type Logger = evaluator.Logger

// StdoutLogger is the default Logger: debug/print/log write to stdout.
func StdoutLogger() Logger { return evaluator.DefaultLogger }

// NullLogger discards all debug/print/log output.
func NullLogger() Logger { return evaluator.NullLogger() }

// WriterLogger writes debug/print/log output to w.
func WriterLogger(w io.Writer) Logger { return &writerLogger{w: w} }

// BufferedLogger captures debug/print/log output for later retrieval —
// the shape a test harness or a web embedder collecting a program's
// output for display wants, grounded on evaluator.BufferedLogger.
type BufferedLogger = evaluator.BufferedLogger

// NewBufferedLogger creates an empty BufferedLogger.
func NewBufferedLogger() *BufferedLogger { return evaluator.NewBufferedLogger() }

type writerLogger struct{ w io.Writer }

func (l *writerLogger) Log(values ...any)     { fmt.Fprint(l.w, formatValues(values...)) }
func (l *writerLogger) LogLine(values ...any) { fmt.Fprintln(l.w, formatValues(values...)) }

func formatValues(values ...any) string {
	if len(values) == 0 {
		return ""
	}
	out := fmt.Sprint(values[0])
	for _, v := range values[1:] {
		out += " " + fmt.Sprint(v)
	}
	return out
}

// Lex scans source into a token sequence, §4.1's entry point.
func Lex(source string) ([]Token, *Error) {
	return lexer.Lex(source)
}

// Parse turns a token sequence into an untyped AST, §4.2's entry point.
func Parse(tokens []Token) (*Source, *Error) {
	return parser.Parse(tokens)
}

// NewTypeScope builds the analyzer's root Scope[*Type]: the native
// primitive types, the stdlib function signatures (debug/print/log/
// list/range/markdown/localize), and the variable/function/object
// testing fixtures — everything Analyze needs to check a program
// against.
func NewTypeScope() *TypeScope {
	return analyzer.NativeScope()
}

// Analyze produces typed IR for source against root, enforcing scope
// and subtype rules, §4.3's entry point. Pass NewTypeScope() for root
// unless the embedder needs a restricted or extended environment.
func Analyze(source *Source, root *TypeScope) (*IrSource, *Error) {
	return analyzer.Analyze(source, root)
}

// NewValueScope builds the evaluator's root Scope[Value]: the native
// functions and testing fixtures Evaluate needs, with debug/print/log
// writing through logger (StdoutLogger() if nil).
func NewValueScope(logger Logger) *ValueScope {
	return evaluator.NativeScope(logger)
}

// Evaluate tree-walks source to a RuntimeValue against root, §4.4's
// entry point. Pass NewValueScope(logger) for root unless the embedder
// needs a restricted or extended environment.
func Evaluate(source *Source, root *ValueScope, logger Logger) (Value, *Error) {
	return evaluator.Evaluate(source, root, logger)
}

// Generate renders ir as a complete host-language program, §4.5's entry
// point.
func Generate(src *IrSource) string {
	return generator.Generate(src)
}

// Run is a convenience that lexes, parses, and evaluates source in one
// call against a fresh native value scope, for callers that don't need
// the intermediate stages — the common case for a one-shot `-e` flag or
// an embedder that only wants a result.
func Run(source string, logger Logger) (Value, *Error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(tokens)
	if err != nil {
		return nil, err
	}
	return Evaluate(tree, NewValueScope(logger), logger)
}

// Transpile is a convenience that lexes, parses, type-checks, and
// generates host-language source from source text in one call, for
// callers that don't need the intermediate stages.
func Transpile(source string) (string, *Error) {
	tokens, err := Lex(source)
	if err != nil {
		return "", err
	}
	tree, err := Parse(tokens)
	if err != nil {
		return "", err
	}
	typed, err := Analyze(tree, NewTypeScope())
	if err != nil {
		return "", err
	}
	return Generate(typed), nil
}

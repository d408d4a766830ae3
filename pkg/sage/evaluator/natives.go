package evaluator

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/sagelang/sage/pkg/sage/numeric"
	"github.com/sagelang/sage/pkg/sage/object"
	"github.com/sagelang/sage/pkg/sage/sageerr"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

func evalArityErr(name string, want, got int) error {
	return sageerr.Newf(sageerr.StageEvaluate, sageerr.CodeEvalArity, "%s expects %d argument(s), got %d", name, want, got)
}

func evalOperandErr(format string, args ...any) error {
	return sageerr.Newf(sageerr.StageEvaluate, sageerr.CodeWrongOperandKind, format, args...)
}

// NativeScope builds the evaluator's root Scope[Value]: debug, print,
// log, list, range, markdown, localize, plus the testing fixtures
// variable, function, object that NativeScope in the analyzer gives
// matching static types.
func NativeScope(logger Logger) *object.Scope {
	if logger == nil {
		logger = DefaultLogger
	}
	scope := object.NewScope(nil)

	_ = scope.Define("debug", object.NewFunction("debug", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, evalArityErr("debug", 1, len(args))
		}
		logger.LogLine(args[0].Debug())
		return object.Nil, nil
	}))

	_ = scope.Define("print", object.NewFunction("print", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, evalArityErr("print", 1, len(args))
		}
		logger.LogLine(args[0].Print())
		return object.Nil, nil
	}))

	_ = scope.Define("log", object.NewFunction("log", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, evalArityErr("log", 1, len(args))
		}
		logger.LogLine("log:", args[0].Print())
		return args[0], nil
	}))

	_ = scope.Define("list", object.NewFunction("list", func(args []object.Value) (object.Value, error) {
		elems := make([]object.Value, len(args))
		copy(elems, args)
		return object.NewPrimitive(elems), nil
	}))

	_ = scope.Define("range", object.NewFunction("range", rangeNative))
	_ = scope.Define("markdown", object.NewFunction("markdown", markdownNative))
	_ = scope.Define("localize", object.NewFunction("localize", localizeNative))

	_ = scope.Define("variable", object.NewPrimitive("variable"))
	_ = scope.Define("function", object.NewFunction("function", func(args []object.Value) (object.Value, error) {
		elems := make([]object.Value, len(args))
		copy(elems, args)
		return object.NewPrimitive(elems), nil
	}))

	objectScope := object.NewScope(nil)
	objectName := "Object"
	objectValue := object.NewObjectValue(&objectName, objectScope)
	_ = objectScope.Define("property", object.NewPrimitive("property"))
	_ = objectScope.Define("method", object.NewFunction("method", func(args []object.Value) (object.Value, error) {
		elems := make([]object.Value, len(args))
		copy(elems, args)
		return object.NewPrimitive(elems), nil
	}))
	_ = scope.Define("object", objectValue)

	return scope
}

// rangeNative returns a list of the big integers in [start, end).
func rangeNative(args []object.Value) (object.Value, error) {
	if len(args) != 2 {
		return nil, evalArityErr("range", 2, len(args))
	}
	start, ok := asBigInt(args[0])
	if !ok {
		return nil, evalOperandErr("range arguments must be integers")
	}
	end, ok := asBigInt(args[1])
	if !ok {
		return nil, evalOperandErr("range arguments must be integers")
	}
	if start.Cmp(end) > 0 {
		return nil, evalOperandErr("range start must be less than or equal to end")
	}
	var elems []object.Value
	for cur := new(big.Int).Set(start); cur.Cmp(end) < 0; cur.Add(cur, big.NewInt(1)) {
		elems = append(elems, object.NewPrimitive(new(big.Int).Set(cur)))
	}
	return object.NewPrimitive(elems), nil
}

func asBigInt(v object.Value) (*big.Int, bool) {
	p, ok := v.(*object.Primitive)
	if !ok {
		return nil, false
	}
	i, ok := p.Raw.(*big.Int)
	return i, ok
}

func asString(v object.Value) (string, bool) {
	p, ok := v.(*object.Primitive)
	if !ok {
		return "", false
	}
	s, ok := p.Raw.(string)
	return s, ok
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// markdownNative renders a String of Markdown source to a String of HTML.
func markdownNative(args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return nil, evalArityErr("markdown", 1, len(args))
	}
	source, ok := asString(args[0])
	if !ok {
		return nil, evalOperandErr("markdown argument must be a string")
	}
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	return object.NewPrimitive(buf.String()), nil
}

// localizeNative renders an Integer or Decimal as a locale-formatted
// number String, e.g. localize(1234.5, "de") -> "1.234,5".
func localizeNative(args []object.Value) (object.Value, error) {
	if len(args) != 2 {
		return nil, evalArityErr("localize", 2, len(args))
	}
	locale, ok := asString(args[1])
	if !ok {
		return nil, evalOperandErr("localize's second argument must be a string")
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, evalOperandErr("localize: unknown locale %q", locale)
	}

	p := message.NewPrinter(tag)
	value, ok := args[0].(*object.Primitive)
	if !ok {
		return nil, evalOperandErr("localize's first argument must be an Integer or Decimal")
	}
	switch raw := value.Raw.(type) {
	case *big.Int:
		f := new(big.Float).SetInt(raw)
		fv, _ := f.Float64()
		return object.NewPrimitive(p.Sprintf("%v", number.Decimal(fv))), nil
	case *numeric.Decimal:
		return object.NewPrimitive(p.Sprintf("%v", number.Decimal(numeric.ToFloat64(raw)))), nil
	default:
		return nil, evalOperandErr("localize's first argument must be an Integer or Decimal")
	}
}

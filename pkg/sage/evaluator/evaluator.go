// Package evaluator tree-walks the untyped AST to a RuntimeValue,
// strictly and left-to-right. It is a single-pass visitor written as a
// type switch over ast.Expr/ast.Stmt concrete types, mirroring the
// analyzer's shape — but the two are independent sinks of the AST: the
// evaluator never imports pkg/sage/analyzer or pkg/sage/ir, and a
// program that was never analyzed evaluates exactly the same as one
// that was.
package evaluator

import (
	"fmt"
	"math/big"

	"github.com/sagelang/sage/pkg/sage/ast"
	"github.com/sagelang/sage/pkg/sage/numeric"
	"github.com/sagelang/sage/pkg/sage/object"
	"github.com/sagelang/sage/pkg/sage/sageerr"
)

// Evaluator holds the single mutable field the pipeline needs: the
// current scope cell, saved and restored around every scope transition
// (function call, if-branch, for-iteration, method call).
type Evaluator struct {
	scope  *object.Scope
	logger Logger
}

// returnSignal propagates a RETURN statement's value up through nested
// block evaluation. It is never exposed as a RuntimeValue or an error;
// evalStmts stops walking a statement list as soon as one appears, and
// applyFunction unwraps it at the call boundary.
type returnSignal struct {
	value object.Value
}

// Evaluate runs source against root and returns the value of the last
// top-level expression statement, or Nil if the program produced none.
// source is the parser's raw AST — Evaluate never consults type
// annotations, since it has no analyzer-resolved types to consult.
func Evaluate(source *ast.Source, root *object.Scope, logger Logger) (object.Value, *sageerr.Error) {
	if logger == nil {
		logger = DefaultLogger
	}
	e := &Evaluator{scope: root, logger: logger}
	var last object.Value = object.Nil
	for _, stmt := range source.Statements {
		result, sig, err := e.evalStmt(stmt)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			// A RETURN outside any function body: the analyzer would
			// reject this, but the evaluator doesn't depend on the
			// analyzer having run, so treat it as the program's result.
			return sig.value, nil
		}
		if result != nil {
			last = result
		}
	}
	return last, nil
}

func (e *Evaluator) errf(code sageerr.Code, format string, args ...any) *sageerr.Error {
	return sageerr.Newf(sageerr.StageEvaluate, code, format, args...)
}

// evalStmts runs stmts in order, stopping early (and propagating) the
// first RETURN signal encountered.
func (e *Evaluator) evalStmts(stmts []ast.Stmt) (*returnSignal, *sageerr.Error) {
	for _, stmt := range stmts {
		_, sig, err := e.evalStmt(stmt)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

// evalStmt evaluates one statement. The returned object.Value is only
// meaningful for ExpressionStmt (used by Evaluate's top-level result);
// every other statement form yields nil unless it's propagating a
// return signal.
func (e *Evaluator) evalStmt(stmt ast.Stmt) (object.Value, *returnSignal, *sageerr.Error) {
	switch n := stmt.(type) {
	case *ast.Let:
		return nil, nil, e.evalLet(n)
	case *ast.Def:
		return nil, nil, e.evalDef(n)
	case *ast.If:
		sig, err := e.evalIf(n)
		return nil, sig, err
	case *ast.For:
		sig, err := e.evalFor(n)
		return nil, sig, err
	case *ast.Return:
		val, err := e.evalOptional(n.Value)
		if err != nil {
			return nil, nil, err
		}
		return nil, &returnSignal{value: val}, nil
	case *ast.ExpressionStmt:
		val, err := e.evalExpr(n.Expr)
		return val, nil, err
	case *ast.Assignment:
		return nil, nil, e.evalAssignment(n)
	default:
		return nil, nil, sageerr.Assertion(fmt.Sprintf("unsupported statement node %T reached the evaluator", n))
	}
}

// evalOptional evaluates expr, or returns object.Nil when expr is nil
// (an absent RETURN/LET value).
func (e *Evaluator) evalOptional(expr ast.Expr) (object.Value, *sageerr.Error) {
	if expr == nil {
		return object.Nil, nil
	}
	return e.evalExpr(expr)
}

func (e *Evaluator) evalLet(n *ast.Let) *sageerr.Error {
	value, err := e.evalOptional(n.Value)
	if err != nil {
		return err
	}
	if defErr := e.scope.Define(n.Name, value); defErr != nil {
		return e.errf(sageerr.CodeEvalDuplicateDef, "%s", defErr.Error())
	}
	return nil
}

// evalDef constructs a user Function whose closure captures the
// defining scope, and binds it in the current frame. Parameter and
// return type annotations are the analyzer's concern; the evaluator
// only needs parameter names to bind call arguments.
func (e *Evaluator) evalDef(n *ast.Def) *sageerr.Error {
	defScope := e.scope
	fn := object.NewFunction(n.Name, func(args []object.Value) (object.Value, error) {
		if len(args) != len(n.Parameters) {
			return nil, e.errf(sageerr.CodeEvalArity, "%s expects %d argument(s), got %d", n.Name, len(n.Parameters), len(args))
		}
		child := object.NewScope(defScope)
		for i, name := range n.Parameters {
			_ = child.Define(name, args[i])
		}
		callee := &Evaluator{scope: child, logger: e.logger}
		sig, err := callee.evalStmts(n.Body)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig.value, nil
		}
		return object.Nil, nil
	})
	if defErr := e.scope.Define(n.Name, fn); defErr != nil {
		return e.errf(sageerr.CodeEvalDuplicateDef, "%s", defErr.Error())
	}
	return nil
}

func (e *Evaluator) evalIf(n *ast.If) (*returnSignal, *sageerr.Error) {
	cond, err := e.evalExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	truthy, err := asBoolean(cond, e)
	if err != nil {
		return nil, err
	}
	branch := n.Else
	if truthy {
		branch = n.Then
	}
	return e.evalInChildScope(branch)
}

func (e *Evaluator) evalInChildScope(stmts []ast.Stmt) (*returnSignal, *sageerr.Error) {
	prev := e.scope
	e.scope = object.NewScope(prev)
	sig, err := e.evalStmts(stmts)
	e.scope = prev
	return sig, err
}

func asBoolean(v object.Value, e *Evaluator) (bool, *sageerr.Error) {
	p, ok := v.(*object.Primitive)
	if !ok {
		return false, e.errf(sageerr.CodeWrongOperandKind, "expected a boolean, got %s", v.Debug())
	}
	b, ok := p.Raw.(bool)
	if !ok {
		return false, e.errf(sageerr.CodeWrongOperandKind, "expected a boolean, got %s", v.Debug())
	}
	return b, nil
}

func (e *Evaluator) evalFor(n *ast.For) (*returnSignal, *sageerr.Error) {
	iterable, err := e.evalExpr(n.Iterable)
	if err != nil {
		return nil, err
	}
	elements, ierr := asList(iterable, e)
	if ierr != nil {
		return nil, ierr
	}
	for _, elem := range elements {
		prev := e.scope
		e.scope = object.NewScope(prev)
		_ = e.scope.Define(n.Name, elem)
		sig, berr := e.evalStmts(n.Body)
		e.scope = prev
		if berr != nil {
			return nil, berr
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func asList(v object.Value, e *Evaluator) ([]object.Value, *sageerr.Error) {
	p, ok := v.(*object.Primitive)
	if !ok {
		return nil, e.errf(sageerr.CodeNotIterable, "value is not iterable: %s", v.Debug())
	}
	list, ok := p.Raw.([]object.Value)
	if !ok {
		return nil, e.errf(sageerr.CodeNotIterable, "value is not iterable: %s", v.Debug())
	}
	return list, nil
}

// evalAssignment dispatches on the AST's Target expression, since the
// untyped AST — unlike the analyzer's IR — never pre-splits Assignment
// into variable/property forms.
func (e *Evaluator) evalAssignment(n *ast.Assignment) *sageerr.Error {
	switch target := n.Target.(type) {
	case *ast.Variable:
		return e.evalAssignmentVariable(target, n.Value)
	case *ast.Property:
		return e.evalAssignmentProperty(target, n.Value)
	default:
		return e.errf(sageerr.CodeEvalInvalidTarget, "cannot assign to %s", n.Target.String())
	}
}

func (e *Evaluator) evalAssignmentVariable(target *ast.Variable, valueExpr ast.Expr) *sageerr.Error {
	value, err := e.evalExpr(valueExpr)
	if err != nil {
		return err
	}
	if !e.scope.Set(target.Name, value) {
		return e.errf(sageerr.CodeEvalUnresolvedName, "undefined variable %q", target.Name)
	}
	return nil
}

func (e *Evaluator) evalAssignmentProperty(target *ast.Property, valueExpr ast.Expr) *sageerr.Error {
	receiver, err := e.evalExpr(target.Receiver)
	if err != nil {
		return err
	}
	obj, ok := receiver.(*object.ObjectValue)
	if !ok {
		return e.errf(sageerr.CodeEvalNotAnObject, "cannot assign to a property of a non-object value")
	}
	value, verr := e.evalExpr(valueExpr)
	if verr != nil {
		return verr
	}
	if !obj.Scope.Set(target.Name, value) {
		return e.errf(sageerr.CodeEvalUnresolvedName, "undefined member %q", target.Name)
	}
	return nil
}

func (e *Evaluator) evalExpr(expr ast.Expr) (object.Value, *sageerr.Error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(n)
	case *ast.Group:
		return e.evalExpr(n.Expr)
	case *ast.Binary:
		return e.evalBinary(n)
	case *ast.Variable:
		v, ok := e.scope.Get(n.Name, false)
		if !ok {
			return nil, e.errf(sageerr.CodeEvalUnresolvedName, "undefined variable %q", n.Name)
		}
		return v, nil
	case *ast.Property:
		return e.evalProperty(n)
	case *ast.Function:
		return e.evalFunctionCall(n)
	case *ast.Method:
		return e.evalMethodCall(n)
	case *ast.ObjectExpr:
		return e.evalObjectExpr(n)
	default:
		return nil, sageerr.Assertion(fmt.Sprintf("unsupported expression node %T reached the evaluator", n))
	}
}

func (e *Evaluator) evalLiteral(n *ast.Literal) (object.Value, *sageerr.Error) {
	return object.NewPrimitive(n.Value), nil
}

// evalBinary implements the arithmetic/comparison rules: string
// concatenation when either side is a string (the other side coerced
// via its printable form), otherwise both operands must be numeric and
// of the same numeric kind, == / != compare by value, AND/OR
// short-circuit.
func (e *Evaluator) evalBinary(n *ast.Binary) (object.Value, *sageerr.Error) {
	if n.Op == "AND" || n.Op == "OR" {
		return e.evalShortCircuit(n)
	}

	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		if isString(left) || isString(right) {
			return object.NewPrimitive(printable(left) + printable(right)), nil
		}
		return e.evalNumeric(n.Op, left, right)
	case "-", "*", "/", "%":
		return e.evalNumeric(n.Op, left, right)
	case "<", "<=", ">", ">=":
		return e.evalRelational(n.Op, left, right)
	case "==":
		return object.NewPrimitive(object.Equal(left, right)), nil
	case "!=":
		return object.NewPrimitive(!object.Equal(left, right)), nil
	default:
		return nil, sageerr.Assertion(fmt.Sprintf("unsupported operator %q reached the evaluator", n.Op))
	}
}

func (e *Evaluator) evalShortCircuit(n *ast.Binary) (object.Value, *sageerr.Error) {
	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, err
	}
	lb, err := asBoolean(left, e)
	if err != nil {
		return nil, err
	}
	if n.Op == "AND" && !lb {
		return object.NewPrimitive(false), nil
	}
	if n.Op == "OR" && lb {
		return object.NewPrimitive(true), nil
	}
	right, err := e.evalExpr(n.Right)
	if err != nil {
		return nil, err
	}
	rb, err := asBoolean(right, e)
	if err != nil {
		return nil, err
	}
	return object.NewPrimitive(rb), nil
}

func isString(v object.Value) bool {
	p, ok := v.(*object.Primitive)
	if !ok {
		return false
	}
	_, ok = p.Raw.(string)
	return ok
}

func printable(v object.Value) string {
	return v.Print()
}

func (e *Evaluator) evalNumeric(op string, left, right object.Value) (object.Value, *sageerr.Error) {
	lp, lok := left.(*object.Primitive)
	rp, rok := right.(*object.Primitive)
	if !lok || !rok {
		return nil, e.errf(sageerr.CodeWrongOperandKind, "%s: operands must be numeric", op)
	}
	if li, ok := lp.Raw.(*big.Int); ok {
		ri, ok := rp.Raw.(*big.Int)
		if !ok {
			return nil, e.errf(sageerr.CodeWrongOperandKind, "%s: operands must be the same numeric kind", op)
		}
		return e.evalIntegerOp(op, li, ri)
	}
	if ld, ok := lp.Raw.(*numeric.Decimal); ok {
		rd, ok := rp.Raw.(*numeric.Decimal)
		if !ok {
			return nil, e.errf(sageerr.CodeWrongOperandKind, "%s: operands must be the same numeric kind", op)
		}
		return e.evalDecimalOp(op, ld, rd)
	}
	return nil, e.errf(sageerr.CodeWrongOperandKind, "%s: operands must be numeric", op)
}

func (e *Evaluator) evalIntegerOp(op string, l, r *big.Int) (object.Value, *sageerr.Error) {
	switch op {
	case "+":
		return object.NewPrimitive(new(big.Int).Add(l, r)), nil
	case "-":
		return object.NewPrimitive(new(big.Int).Sub(l, r)), nil
	case "*":
		return object.NewPrimitive(new(big.Int).Mul(l, r)), nil
	case "/":
		if r.Sign() == 0 {
			return nil, e.errf(sageerr.CodeDivisionByZero, "division by zero")
		}
		return object.NewPrimitive(new(big.Int).Quo(l, r)), nil
	case "%":
		if r.Sign() == 0 {
			return nil, e.errf(sageerr.CodeDivisionByZero, "division by zero")
		}
		return object.NewPrimitive(new(big.Int).Rem(l, r)), nil
	default:
		return nil, sageerr.Assertion(fmt.Sprintf("unsupported integer operator %q reached the evaluator", op))
	}
}

func (e *Evaluator) evalDecimalOp(op string, l, r *numeric.Decimal) (object.Value, *sageerr.Error) {
	switch op {
	case "+":
		return object.NewPrimitive(numeric.Add(l, r)), nil
	case "-":
		return object.NewPrimitive(numeric.Sub(l, r)), nil
	case "*":
		return object.NewPrimitive(numeric.Mul(l, r)), nil
	case "/":
		q, err := numeric.Div(l, r)
		if err != nil {
			return nil, e.errf(sageerr.CodeDivisionByZero, "%s", err.Error())
		}
		return object.NewPrimitive(q), nil
	case "%":
		return nil, e.errf(sageerr.CodeWrongOperandKind, "%%: not defined for Decimal operands")
	default:
		return nil, sageerr.Assertion(fmt.Sprintf("unsupported decimal operator %q reached the evaluator", op))
	}
}

func (e *Evaluator) evalRelational(op string, left, right object.Value) (object.Value, *sageerr.Error) {
	lp, lok := left.(*object.Primitive)
	rp, rok := right.(*object.Primitive)
	if !lok || !rok {
		return nil, e.errf(sageerr.CodeWrongOperandKind, "%s: operands must be comparable", op)
	}
	cmp, cerr := compareRaw(lp.Raw, rp.Raw)
	if cerr != nil {
		return nil, e.errf(sageerr.CodeWrongOperandKind, "%s: %s", op, cerr.Error())
	}
	var result bool
	switch op {
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return object.NewPrimitive(result), nil
}

func compareRaw(l, r any) (int, error) {
	switch lv := l.(type) {
	case *big.Int:
		rv, ok := r.(*big.Int)
		if !ok {
			return 0, fmt.Errorf("operands must be the same numeric kind")
		}
		return lv.Cmp(rv), nil
	case *numeric.Decimal:
		rv, ok := r.(*numeric.Decimal)
		if !ok {
			return 0, fmt.Errorf("operands must be the same numeric kind")
		}
		return numeric.Cmp(lv, rv), nil
	case string:
		rv, ok := r.(string)
		if !ok {
			return 0, fmt.Errorf("operands must both be strings")
		}
		switch {
		case lv < rv:
			return -1, nil
		case lv > rv:
			return 1, nil
		default:
			return 0, nil
		}
	case bool:
		rv, ok := r.(bool)
		if !ok {
			return 0, fmt.Errorf("operands must both be booleans")
		}
		if lv == rv {
			return 0, nil
		}
		if !lv && rv {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("operand is not comparable")
	}
}

func (e *Evaluator) evalProperty(n *ast.Property) (object.Value, *sageerr.Error) {
	receiver, err := e.evalExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	obj, ok := receiver.(*object.ObjectValue)
	if !ok {
		return nil, e.errf(sageerr.CodeEvalNotAnObject, "cannot access a property of a non-object value")
	}
	v, found := obj.Scope.Get(n.Name, true)
	if !found {
		return nil, e.errf(sageerr.CodeEvalUnresolvedName, "undefined member %q", n.Name)
	}
	return v, nil
}

func (e *Evaluator) evalArgs(args []ast.Expr) ([]object.Value, *sageerr.Error) {
	out := make([]object.Value, len(args))
	for i, a := range args {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) invoke(v object.Value, args []object.Value) (object.Value, *sageerr.Error) {
	fn, ok := v.(*object.Function)
	if !ok {
		return nil, e.errf(sageerr.CodeEvalNotAFunction, "value is not callable: %s", v.Debug())
	}
	result, err := fn.Definition(args)
	if err != nil {
		if serr, ok := err.(*sageerr.Error); ok {
			return nil, serr
		}
		return nil, sageerr.Assertion(err.Error())
	}
	return result, nil
}

func (e *Evaluator) evalFunctionCall(n *ast.Function) (object.Value, *sageerr.Error) {
	v, ok := e.scope.Get(n.Name, false)
	if !ok {
		return nil, e.errf(sageerr.CodeEvalUnresolvedName, "undefined function %q", n.Name)
	}
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	return e.invoke(v, args)
}

func (e *Evaluator) evalMethodCall(n *ast.Method) (object.Value, *sageerr.Error) {
	receiver, err := e.evalExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	obj, ok := receiver.(*object.ObjectValue)
	if !ok {
		return nil, e.errf(sageerr.CodeEvalNotAnObject, "cannot call a method on a non-object value")
	}
	member, found := obj.Scope.Get(n.Name, true)
	if !found {
		return nil, e.errf(sageerr.CodeEvalUnresolvedName, "undefined member %q", n.Name)
	}
	args, aerr := e.evalArgs(n.Args)
	if aerr != nil {
		return nil, aerr
	}
	return e.invoke(member, args)
}

// evalObjectExpr builds an object scope whose parent is the current
// scope, evaluates fields in order (each field's initializer sees
// earlier fields), and installs each method as a closure over the
// object scope with `this` bound to the object itself.
func (e *Evaluator) evalObjectExpr(n *ast.ObjectExpr) (object.Value, *sageerr.Error) {
	memberScope := object.NewScope(e.scope)
	obj := object.NewObjectValue(n.Name, memberScope)

	fieldEval := &Evaluator{scope: memberScope, logger: e.logger}
	for _, f := range n.Fields {
		value, err := fieldEval.evalOptional(f.Value)
		if err != nil {
			return nil, err
		}
		_ = memberScope.Define(f.Name, value)
	}

	for _, m := range n.Methods {
		method := m
		fn := object.NewFunction(method.Name, func(args []object.Value) (object.Value, error) {
			if len(args) != len(method.Parameters) {
				return nil, e.errf(sageerr.CodeEvalArity, "%s expects %d argument(s), got %d", method.Name, len(method.Parameters), len(args))
			}
			child := object.NewScope(memberScope)
			_ = child.Define("this", obj)
			for i, p := range method.Parameters {
				_ = child.Define(p, args[i])
			}
			callee := &Evaluator{scope: child, logger: e.logger}
			sig, err := callee.evalStmts(method.Body)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				return sig.value, nil
			}
			return object.Nil, nil
		})
		_ = memberScope.Define(m.Name, fn)
	}

	return obj, nil
}

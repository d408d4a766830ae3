// Package analyzer turns an AST into typed IR, enforcing scope and
// subtype rules. It is a single-pass visitor written as a type switch
// over ast.Expr/ast.Stmt concrete types, a tagged-struct style rather
// than a dispatcher-per-variant visitor.
package analyzer

import (
	"fmt"

	"github.com/sagelang/sage/pkg/sage/ast"
	"github.com/sagelang/sage/pkg/sage/ir"
	"github.com/sagelang/sage/pkg/sage/lexer"
	"github.com/sagelang/sage/pkg/sage/sageerr"
	"github.com/sagelang/sage/pkg/sage/types"
)

const returnsSentinel = "$RETURNS"

// Analyzer holds the single mutable field the pipeline needs: the
// current scope cell, saved and restored around every scope transition.
type Analyzer struct {
	scope *types.Scope[*types.Type]
}

// Analyze produces typed IR for source against root, or the first
// analyze error encountered; there is no error recovery.
func Analyze(source *ast.Source, root *types.Scope[*types.Type]) (*ir.Source, *sageerr.Error) {
	a := &Analyzer{scope: root}
	stmts, err := a.analyzeStmts(source.Statements)
	if err != nil {
		return nil, err
	}
	return &ir.Source{Statements: stmts}, nil
}

func (a *Analyzer) errAt(tok lexer.Token, code sageerr.Code, format string, args ...any) *sageerr.Error {
	return sageerr.Newf(sageerr.StageAnalyze, code, format, args...).At(tok.Line, tok.Column)
}

// requireSubtype is the analyzer's central rule: it must succeed at
// every implicit coercion point.
func (a *Analyzer) requireSubtype(actual, expected *types.Type, tok lexer.Token, context string) *sageerr.Error {
	if types.IsSubtype(actual, expected) {
		return nil
	}
	return a.errAt(tok, sageerr.CodeSubtypeViolation, "%s: %s is not a subtype of %s", context, actual, expected)
}

func (a *Analyzer) resolveAnnotation(name *string, tok lexer.Token) (*types.Type, *sageerr.Error) {
	if name == nil {
		return types.Any, nil
	}
	t, ok := types.Lookup(*name)
	if !ok {
		return nil, a.errAt(tok, sageerr.CodeUnknownType, "unknown type %q", *name)
	}
	return t, nil
}

func (a *Analyzer) analyzeStmts(stmts []ast.Stmt) ([]ir.Stmt, *sageerr.Error) {
	out := make([]ir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		n, err := a.analyzeStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) (ir.Stmt, *sageerr.Error) {
	switch n := stmt.(type) {
	case *ast.Let:
		return a.analyzeLet(n)
	case *ast.Def:
		return a.analyzeDef(n)
	case *ast.If:
		return a.analyzeIf(n)
	case *ast.For:
		return a.analyzeFor(n)
	case *ast.Return:
		return a.analyzeReturn(n)
	case *ast.ExpressionStmt:
		e, err := a.analyzeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &ir.ExpressionStmt{Expr: e}, nil
	case *ast.Assignment:
		return a.analyzeAssignment(n)
	default:
		return nil, sageerr.Assertion(fmt.Sprintf("unsupported statement node %T reached the analyzer", n))
	}
}

func (a *Analyzer) analyzeLet(n *ast.Let) (*ir.Let, *sageerr.Error) {
	if _, ok := a.scope.Get(n.Name, true); ok {
		return nil, a.errAt(n.Token, sageerr.CodeDuplicateDef, "%q is already defined in this scope", n.Name)
	}

	declared, err := resolveOptionalAnnotation(n.Type)
	if err != nil {
		return nil, a.errAt(n.Token, sageerr.CodeUnknownType, "%s", err.Error())
	}

	var valueIR ir.Expr
	var valueType *types.Type
	if n.Value != nil {
		v, err := a.analyzeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		valueIR = v
		valueType = v.ExprType()
	}

	var resolved *types.Type
	switch {
	case declared != nil && valueType != nil:
		if err := a.requireSubtype(valueType, declared, n.Token, "let initializer"); err != nil {
			return nil, err
		}
		resolved = declared
	case declared != nil:
		resolved = declared
	case valueType != nil:
		resolved = valueType
	default:
		resolved = types.Any
	}

	_ = a.scope.Define(n.Name, resolved)
	return &ir.Let{Name: n.Name, Type: resolved, Value: valueIR}, nil
}

// resolveOptionalAnnotation is a free function (not a method) since Let
// fields don't carry a Token of their own for the annotation text.
func resolveOptionalAnnotation(name *string) (*types.Type, error) {
	if name == nil {
		return nil, nil
	}
	t, ok := types.Lookup(*name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", *name)
	}
	return t, nil
}

func (a *Analyzer) analyzeDef(n *ast.Def) (*ir.Def, *sageerr.Error) {
	if _, ok := a.scope.Get(n.Name, true); ok {
		return nil, a.errAt(n.Token, sageerr.CodeDuplicateDef, "%q is already defined in this scope", n.Name)
	}

	seen := make(map[string]bool, len(n.Parameters))
	paramTypes := make([]*types.Type, len(n.Parameters))
	for i, p := range n.Parameters {
		if seen[p] {
			return nil, a.errAt(n.Token, sageerr.CodeDuplicateDef, "duplicate parameter name %q", p)
		}
		seen[p] = true
		t, err := a.resolveAnnotation(n.ParameterTypes[i], n.Token)
		if err != nil {
			return nil, err
		}
		paramTypes[i] = t
	}

	returnType, err := a.resolveAnnotation(n.ReturnType, n.Token)
	if err != nil {
		return nil, err
	}

	funcType := types.NewFunction(paramTypes, returnType)
	// Bound before analyzing the body so the function can recurse.
	_ = a.scope.Define(n.Name, funcType)

	child := types.NewScope(a.scope)
	for i, p := range n.Parameters {
		_ = child.Define(p, paramTypes[i])
	}
	_ = child.Define(returnsSentinel, returnType)

	prev := a.scope
	a.scope = child
	body, berr := a.analyzeStmts(n.Body)
	a.scope = prev
	if berr != nil {
		return nil, berr
	}

	params := make([]ir.Param, len(n.Parameters))
	for i, p := range n.Parameters {
		params[i] = ir.Param{Name: p, Type: paramTypes[i]}
	}

	return &ir.Def{Name: n.Name, Parameters: params, ReturnType: returnType, FuncType: funcType, Body: body}, nil
}

func (a *Analyzer) analyzeIf(n *ast.If) (*ir.If, *sageerr.Error) {
	cond, err := a.analyzeExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	if err := a.requireSubtype(cond.ExprType(), types.Boolean, n.Token, "if condition"); err != nil {
		return nil, err
	}

	then, err := a.analyzeInChildScope(n.Then)
	if err != nil {
		return nil, err
	}
	var elseStmts []ir.Stmt
	if n.Else != nil {
		elseStmts, err = a.analyzeInChildScope(n.Else)
		if err != nil {
			return nil, err
		}
	}
	return &ir.If{Cond: cond, Then: then, Else: elseStmts}, nil
}

func (a *Analyzer) analyzeInChildScope(stmts []ast.Stmt) ([]ir.Stmt, *sageerr.Error) {
	prev := a.scope
	a.scope = types.NewScope(prev)
	out, err := a.analyzeStmts(stmts)
	a.scope = prev
	return out, err
}

func (a *Analyzer) analyzeFor(n *ast.For) (*ir.For, *sageerr.Error) {
	iterable, err := a.analyzeExpr(n.Iterable)
	if err != nil {
		return nil, err
	}
	if err := a.requireSubtype(iterable.ExprType(), types.Iterable, n.Token, "for iterable"); err != nil {
		return nil, err
	}

	prev := a.scope
	a.scope = types.NewScope(prev)
	_ = a.scope.Define(n.Name, types.Integer)
	body, berr := a.analyzeStmts(n.Body)
	a.scope = prev
	if berr != nil {
		return nil, berr
	}

	return &ir.For{Name: n.Name, Iterable: iterable, Body: body}, nil
}

func (a *Analyzer) analyzeReturn(n *ast.Return) (*ir.Return, *sageerr.Error) {
	returnsAny, ok := a.scope.Get(returnsSentinel, false)
	if !ok {
		return nil, a.errAt(n.Token, sageerr.CodeReturnOutsideFunc, "RETURN is not valid outside a function body")
	}

	var valueIR ir.Expr
	valueType := types.Nil
	if n.Value != nil {
		v, err := a.analyzeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		valueIR = v
		valueType = v.ExprType()
	}

	if err := a.requireSubtype(valueType, returnsAny, n.Token, "return value"); err != nil {
		return nil, err
	}
	return &ir.Return{Value: valueIR}, nil
}

func (a *Analyzer) analyzeAssignment(n *ast.Assignment) (ir.Stmt, *sageerr.Error) {
	switch target := n.Target.(type) {
	case *ast.Variable:
		varType, ok := a.scope.Get(target.Name, false)
		if !ok {
			return nil, a.errAt(target.Token, sageerr.CodeUnresolvedName, "undefined variable %q", target.Name)
		}
		value, err := a.analyzeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		if err := a.requireSubtype(value.ExprType(), varType, n.Token, "assignment"); err != nil {
			return nil, err
		}
		return &ir.AssignmentVariable{Name: target.Name, Value: value}, nil

	case *ast.Property:
		receiver, err := a.analyzeExpr(target.Receiver)
		if err != nil {
			return nil, err
		}
		if receiver.ExprType().Kind != types.KindObject {
			return nil, a.errAt(target.Token, sageerr.CodeNotAnObject, "cannot assign to a property of a non-object value")
		}
		memberType, ok := receiver.ExprType().Scope.Get(target.Name, true)
		if !ok {
			return nil, a.errAt(target.Token, sageerr.CodeNoSuchMember, "undefined member %q", target.Name)
		}
		value, verr := a.analyzeExpr(n.Value)
		if verr != nil {
			return nil, verr
		}
		if err := a.requireSubtype(value.ExprType(), memberType, n.Token, "property assignment"); err != nil {
			return nil, err
		}
		return &ir.AssignmentProperty{Receiver: receiver, Name: target.Name, Value: value}, nil

	default:
		return nil, a.errAt(n.Token, sageerr.CodeInvalidAssignment, "assignment target must be a variable or object property")
	}
}

func (a *Analyzer) analyzeExpr(expr ast.Expr) (ir.Expr, *sageerr.Error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return a.analyzeLiteral(n)
	case *ast.Group:
		inner, err := a.analyzeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return ir.NewGroup(inner.ExprType(), inner), nil
	case *ast.Binary:
		return a.analyzeBinary(n)
	case *ast.Variable:
		t, ok := a.scope.Get(n.Name, false)
		if !ok {
			return nil, a.errAt(n.Token, sageerr.CodeUnresolvedName, "undefined variable %q", n.Name)
		}
		return ir.NewVariable(t, n.Name), nil
	case *ast.Property:
		return a.analyzeProperty(n)
	case *ast.Function:
		return a.analyzeFunctionCall(n)
	case *ast.Method:
		return a.analyzeMethodCall(n)
	case *ast.ObjectExpr:
		return a.analyzeObjectExpr(n)
	default:
		return nil, sageerr.Assertion(fmt.Sprintf("unsupported expression node %T reached the analyzer", n))
	}
}

func (a *Analyzer) analyzeLiteral(n *ast.Literal) (*ir.Literal, *sageerr.Error) {
	var kind ir.LiteralKind
	var t *types.Type
	switch n.Kind {
	case ast.LitNil:
		kind, t = ir.LitNil, types.Nil
	case ast.LitBoolean:
		kind, t = ir.LitBoolean, types.Boolean
	case ast.LitInteger:
		kind, t = ir.LitInteger, types.Integer
	case ast.LitDecimal:
		kind, t = ir.LitDecimal, types.Decimal
	case ast.LitString:
		kind, t = ir.LitString, types.String
	case ast.LitCharacter:
		kind, t = ir.LitCharacter, types.Character
	default:
		return nil, a.errAt(n.Token, sageerr.CodeUnexpectedToken, "unsupported literal kind")
	}
	return ir.NewLiteral(t, kind, n.Value), nil
}

func (a *Analyzer) analyzeBinary(n *ast.Binary) (*ir.Binary, *sageerr.Error) {
	left, err := a.analyzeExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := a.analyzeExpr(n.Right)
	if err != nil {
		return nil, err
	}
	lt, rt := left.ExprType(), right.ExprType()

	var result *types.Type
	switch n.Op {
	case "+":
		if lt.Kind == types.KindString || rt.Kind == types.KindString {
			if err := a.requireSubtype(lt, types.Equatable, n.Token, "'+' left operand"); err != nil {
				return nil, err
			}
			if err := a.requireSubtype(rt, types.Equatable, n.Token, "'+' right operand"); err != nil {
				return nil, err
			}
			result = types.String
		} else {
			if err := a.requireComparableSameType(lt, rt, n.Token, "+"); err != nil {
				return nil, err
			}
			result = lt
		}
	case "-", "*", "/", "%":
		if err := a.requireComparableSameType(lt, rt, n.Token, n.Op); err != nil {
			return nil, err
		}
		result = lt
	case "<", "<=", ">", ">=":
		if err := a.requireComparableSameType(lt, rt, n.Token, n.Op); err != nil {
			return nil, err
		}
		result = types.Boolean
	case "==", "!=":
		if err := a.requireSubtype(lt, types.Equatable, n.Token, n.Op+" left operand"); err != nil {
			return nil, err
		}
		if err := a.requireSubtype(rt, types.Equatable, n.Token, n.Op+" right operand"); err != nil {
			return nil, err
		}
		if !types.Equal(lt, rt) {
			return nil, a.errAt(n.Token, sageerr.CodeSubtypeViolation, "%s: %s and %s are not the same type", n.Op, lt, rt)
		}
		result = types.Boolean
	case "AND", "OR":
		if err := a.requireSubtype(lt, types.Boolean, n.Token, n.Op+" left operand"); err != nil {
			return nil, err
		}
		if err := a.requireSubtype(rt, types.Boolean, n.Token, n.Op+" right operand"); err != nil {
			return nil, err
		}
		result = types.Boolean
	default:
		return nil, a.errAt(n.Token, sageerr.CodeUnexpectedToken, "unknown operator %q", n.Op)
	}

	return ir.NewBinary(result, n.Op, left, right), nil
}

func (a *Analyzer) requireComparableSameType(lt, rt *types.Type, tok lexer.Token, op string) *sageerr.Error {
	if err := a.requireSubtype(lt, types.Comparable, tok, op+" left operand"); err != nil {
		return err
	}
	if err := a.requireSubtype(rt, types.Comparable, tok, op+" right operand"); err != nil {
		return err
	}
	if !types.Equal(lt, rt) {
		return a.errAt(tok, sageerr.CodeSubtypeViolation, "%s: %s and %s are not the same type", op, lt, rt)
	}
	return nil
}

func (a *Analyzer) analyzeProperty(n *ast.Property) (*ir.Property, *sageerr.Error) {
	receiver, err := a.analyzeExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	if receiver.ExprType().Kind != types.KindObject {
		return nil, a.errAt(n.Token, sageerr.CodeNotAnObject, "cannot access a property of a non-object value")
	}
	memberType, ok := receiver.ExprType().Scope.Get(n.Name, true)
	if !ok {
		return nil, a.errAt(n.Token, sageerr.CodeNoSuchMember, "undefined member %q", n.Name)
	}
	// Resolved to the member's own type, not unconditionally String.
	return ir.NewProperty(memberType, receiver, n.Name), nil
}

func (a *Analyzer) analyzeArgs(args []ast.Expr) ([]ir.Expr, *sageerr.Error) {
	out := make([]ir.Expr, len(args))
	for i, arg := range args {
		e, err := a.analyzeExpr(arg)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (a *Analyzer) checkCall(fn *types.Type, args []ir.Expr, tok lexer.Token) *sageerr.Error {
	if fn.Variadic {
		elem := types.Any
		if len(fn.Params) > 0 {
			elem = fn.Params[0]
		}
		for i, arg := range args {
			if err := a.requireSubtype(arg.ExprType(), elem, tok, fmt.Sprintf("argument %d", i+1)); err != nil {
				return err
			}
		}
		return nil
	}
	if len(args) != len(fn.Params) {
		return a.errAt(tok, sageerr.CodeArityMismatch, "expected %d argument(s), got %d", len(fn.Params), len(args))
	}
	for i, arg := range args {
		if err := a.requireSubtype(arg.ExprType(), fn.Params[i], tok, fmt.Sprintf("argument %d", i+1)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeFunctionCall(n *ast.Function) (*ir.Function, *sageerr.Error) {
	t, ok := a.scope.Get(n.Name, false)
	if !ok {
		return nil, a.errAt(n.Token, sageerr.CodeUnresolvedName, "undefined function %q", n.Name)
	}
	if t.Kind != types.KindFunction {
		return nil, a.errAt(n.Token, sageerr.CodeNotAFunction, "%q is not a function", n.Name)
	}
	args, err := a.analyzeArgs(n.Args)
	if err != nil {
		return nil, err
	}
	if err := a.checkCall(t, args, n.Token); err != nil {
		return nil, err
	}
	return ir.NewFunctionCall(t.Returns, n.Name, args), nil
}

func (a *Analyzer) analyzeMethodCall(n *ast.Method) (*ir.Method, *sageerr.Error) {
	receiver, err := a.analyzeExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	if receiver.ExprType().Kind != types.KindObject {
		return nil, a.errAt(n.Token, sageerr.CodeNotAnObject, "cannot call a method on a non-object value")
	}
	member, ok := receiver.ExprType().Scope.Get(n.Name, true)
	if !ok {
		return nil, a.errAt(n.Token, sageerr.CodeNoSuchMember, "undefined member %q", n.Name)
	}
	if member.Kind != types.KindFunction {
		return nil, a.errAt(n.Token, sageerr.CodeNotAFunction, "%q is not a method", n.Name)
	}
	args, aerr := a.analyzeArgs(n.Args)
	if aerr != nil {
		return nil, aerr
	}
	if err := a.checkCall(member, args, n.Token); err != nil {
		return nil, err
	}
	return ir.NewMethodCall(member.Returns, receiver, n.Name, args), nil
}

func (a *Analyzer) analyzeObjectExpr(n *ast.ObjectExpr) (*ir.ObjectExpr, *sageerr.Error) {
	if n.Name != nil && types.IsPrimitiveName(*n.Name) {
		return nil, a.errAt(n.Token, sageerr.CodeDuplicateDef, "object name %q collides with a primitive type", *n.Name)
	}

	// Object scopes are independent roots: parent = none, per the member
	// set being closed. A method body resolves fields/methods and its
	// own parameters/this through methodScope -> memberScope, never
	// through the scope OBJECT was written in.
	memberScope := types.NewScope[*types.Type](nil)
	objType := types.NewObject(n.Name, memberScope)

	seen := make(map[string]bool)
	fields := make([]*ir.Let, 0, len(n.Fields))

	prev := a.scope
	a.scope = memberScope
	for _, f := range n.Fields {
		if seen[f.Name] {
			a.scope = prev
			return nil, a.errAt(f.Token, sageerr.CodeDuplicateDef, "duplicate member %q", f.Name)
		}
		seen[f.Name] = true

		var valueIR ir.Expr
		var fieldType *types.Type
		if f.Value != nil {
			v, err := a.analyzeExpr(f.Value)
			if err != nil {
				a.scope = prev
				return nil, err
			}
			valueIR = v
			if f.Type != nil {
				declared, derr := a.resolveAnnotation(f.Type, f.Token)
				if derr != nil {
					a.scope = prev
					return nil, derr
				}
				if err := a.requireSubtype(v.ExprType(), declared, f.Token, "field initializer"); err != nil {
					a.scope = prev
					return nil, err
				}
				fieldType = declared
			} else {
				fieldType = v.ExprType()
			}
		} else if f.Type != nil {
			declared, derr := a.resolveAnnotation(f.Type, f.Token)
			if derr != nil {
				a.scope = prev
				return nil, derr
			}
			fieldType = declared
		} else {
			a.scope = prev
			return nil, a.errAt(f.Token, sageerr.CodeUnknownType, "field %q has neither a type nor a value", f.Name)
		}

		_ = memberScope.Define(f.Name, fieldType)
		fields = append(fields, &ir.Let{Name: f.Name, Type: fieldType, Value: valueIR})
	}

	methods := make([]*ir.Def, 0, len(n.Methods))
	for _, m := range n.Methods {
		if seen[m.Name] {
			a.scope = prev
			return nil, a.errAt(m.Token, sageerr.CodeDuplicateDef, "duplicate member %q", m.Name)
		}
		seen[m.Name] = true

		paramTypes := make([]*types.Type, len(m.Parameters))
		for i := range m.Parameters {
			if m.ParameterTypes[i] == nil {
				a.scope = prev
				return nil, a.errAt(m.Token, sageerr.CodeUnknownType, "method %q parameter %q requires an explicit type", m.Name, m.Parameters[i])
			}
			t, derr := a.resolveAnnotation(m.ParameterTypes[i], m.Token)
			if derr != nil {
				a.scope = prev
				return nil, derr
			}
			paramTypes[i] = t
		}
		returnType, derr := a.resolveAnnotation(m.ReturnType, m.Token)
		if derr != nil {
			a.scope = prev
			return nil, derr
		}

		funcType := types.NewFunction(paramTypes, returnType)
		_ = memberScope.Define(m.Name, funcType)

		methodScope := types.NewScope(memberScope)
		_ = methodScope.Define("this", objType)
		for i, p := range m.Parameters {
			_ = methodScope.Define(p, paramTypes[i])
		}
		_ = methodScope.Define(returnsSentinel, returnType)

		a.scope = methodScope
		body, berr := a.analyzeStmts(m.Body)
		a.scope = memberScope
		if berr != nil {
			a.scope = prev
			return nil, berr
		}

		params := make([]ir.Param, len(m.Parameters))
		for i, p := range m.Parameters {
			params[i] = ir.Param{Name: p, Type: paramTypes[i]}
		}
		methods = append(methods, &ir.Def{Name: m.Name, Parameters: params, ReturnType: returnType, FuncType: funcType, Body: body})
	}
	a.scope = prev

	return ir.NewObjectExpr(objType, n.Name, fields, methods), nil
}

package analyzer

import "github.com/sagelang/sage/pkg/sage/types"

// NativeScope builds the analyzer's root Scope[*Type]: the primitive
// types plus a Function type entry for each native the evaluator binds,
// and the testing fixtures `variable`, `function`, `object`, so programs
// that probe them type-check consistently with how they evaluate.
func NativeScope() *types.Scope[*types.Type] {
	scope := types.RootScope()

	_ = scope.Define("debug", types.NewFunction([]*types.Type{types.Any}, types.Nil))
	_ = scope.Define("print", types.NewFunction([]*types.Type{types.Any}, types.Nil))
	_ = scope.Define("log", types.NewFunction([]*types.Type{types.Any}, types.Any))
	_ = scope.Define("list", types.NewVariadicFunction(types.Any, types.Iterable))
	_ = scope.Define("range", types.NewFunction([]*types.Type{types.Integer, types.Integer}, types.Iterable))
	_ = scope.Define("markdown", types.NewFunction([]*types.Type{types.String}, types.String))
	_ = scope.Define("localize", types.NewFunction([]*types.Type{types.Any, types.String}, types.String))

	_ = scope.Define("variable", types.Any)
	_ = scope.Define("function", types.NewVariadicFunction(types.Any, types.Iterable))

	objectScope := types.NewScope[*types.Type](nil)
	objectName := "Object"
	objectType := types.NewObject(&objectName, objectScope)
	_ = objectScope.Define("property", types.Any)
	_ = objectScope.Define("method", types.NewVariadicFunction(types.Any, types.Iterable))
	_ = scope.Define("object", objectType)

	return scope
}

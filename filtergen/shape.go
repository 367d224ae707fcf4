package filtergen

import "go/ast"

// OptionalWrapper 可选字段包装类型的名字
const OptionalWrapper = "Optional"

// MatchWrapper 判断 ty 是否为 wrapperName[Inner] 形式，匹配时返回 Inner
//
// 只按语法判断：wrapper 必须是单个标识符且恰好有一个类型参数。
// pkg.Optional[T]、Optional[K, V]、*Optional[T]、(Optional[T]) 都不匹配。
func MatchWrapper(wrapperName string, ty ast.Expr) (ast.Expr, bool) {
	index, ok := ty.(*ast.IndexExpr)
	if !ok {
		return nil, false
	}
	ident, ok := index.X.(*ast.Ident)
	if !ok || ident.Name != wrapperName {
		return nil, false
	}
	if !isTypeExpr(index.Index) {
		return nil, false
	}
	return index.Index, true
}

// isTypeExpr 表达式在语法上能否作为类型
// Optional[3]、Optional[a+b] 这类下标表达式不是类型参数
func isTypeExpr(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := t.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(t.X)
	case *ast.ParenExpr:
		return isTypeExpr(t.X)
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType,
		*ast.StructType, *ast.InterfaceType:
		return true
	case *ast.IndexExpr:
		return isTypeExpr(t.X) && isTypeExpr(t.Index)
	case *ast.IndexListExpr:
		if !isTypeExpr(t.X) {
			return false
		}
		for _, idx := range t.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	}
	return false
}

package structparse

import (
	"go/ast"
	"slices"
	"strconv"

	"github.com/samber/lo"
)

// NameResolver 把导入路径解析为真实包名
type NameResolver interface {
	PackageName(importPath string) string
}

// ExtractImports 提取文件的导入信息，键为源码中引用该包的名字
// resolver 为空时使用路径最后一段作为包名
// 空白导入和点导入不会出现在结果中
func ExtractImports(file *ast.File, resolver NameResolver) map[string]*ImportInfo {
	imports := make(map[string]*ImportInfo, len(file.Imports))
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		info := &ImportInfo{ImportPath: importPath}
		switch {
		case imp.Name != nil:
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			info.Name = imp.Name.Name
			info.Explicit = true
		case resolver != nil:
			info.Name = resolver.PackageName(importPath)
		default:
			info.Name = lastElem(importPath)
		}
		imports[info.Name] = info
	}
	return imports
}

// ReferencedPackages 返回类型表达式中以 pkg.Name 形式引用的包名，去重并排序
func ReferencedPackages(expr ast.Expr) []string {
	var names []string
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok {
			names = append(names, ident.Name)
		}
		return false
	})
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

func lastElem(importPath string) string {
	for i := len(importPath) - 1; i >= 0; i-- {
		if importPath[i] == '/' {
			return importPath[i+1:]
		}
	}
	return importPath
}

package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
)

// ParseStruct 解析指定文件中的结构体
func ParseStruct(filename, structName string) (*StructInfo, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}
	info, ok := FromFile(file, filename, structName)
	if !ok {
		return nil, fmt.Errorf("未找到结构体 %s", structName)
	}
	return info, nil
}

// FromFile 从已解析的文件中提取结构体，找不到或不是结构体时返回 false
func FromFile(file *ast.File, filename, structName string) (*StructInfo, bool) {
	ts := FindTypeSpec(file, structName)
	if ts == nil {
		return nil, false
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok || ts.Assign.IsValid() {
		return nil, false
	}
	info := FromStructType(structName, file.Name.Name, filename, st)
	info.Imports = ExtractImports(file, nil)
	if ts.TypeParams != nil {
		info.TypeParams = ts.TypeParams.NumFields()
	}
	return info, true
}

// FindTypeSpec 在文件顶层查找类型声明
func FindTypeSpec(file *ast.File, name string) *ast.TypeSpec {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == name {
				return ts
			}
		}
	}
	return nil
}

// FromStructType 从结构体类型节点构造 StructInfo，不解析导入
func FromStructType(name, packageName, filePath string, st *ast.StructType) *StructInfo {
	return &StructInfo{
		Name:        name,
		PackageName: packageName,
		FilePath:    filePath,
		Fields:      ParseFields(st.Fields),
	}
}

// ParseFields 展开字段列表，`A, B int` 产生两个字段
func ParseFields(list *ast.FieldList) []FieldInfo {
	if list == nil {
		return nil
	}
	var fields []FieldInfo
	for _, field := range list.List {
		typ := types.ExprString(field.Type)
		tag := unquoteTag(field.Tag)

		if len(field.Names) == 0 {
			fields = append(fields, FieldInfo{
				Name:     embeddedName(field.Type),
				Type:     typ,
				TypeExpr: field.Type,
				Tag:      tag,
				Embedded: true,
				Pos:      field.Type.Pos(),
			})
			continue
		}
		for _, name := range field.Names {
			fields = append(fields, FieldInfo{
				Name:     name.Name,
				Type:     typ,
				TypeExpr: field.Type,
				Tag:      tag,
				Pos:      name.Pos(),
			})
		}
	}
	return fields
}

// embeddedName 嵌入字段的隐式字段名
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return types.ExprString(expr)
}

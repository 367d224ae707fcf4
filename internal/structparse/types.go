package structparse

import (
	"go/ast"
	"go/token"
	"reflect"
	"strconv"
)

// ImportInfo 导入信息
type ImportInfo struct {
	Name       string // 源码中引用该包使用的名字（别名或真实包名）
	ImportPath string // 完整导入路径
	Explicit   bool   // 是否显式声明了别名
}

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name     string    // 字段名，嵌入字段为类型名
	Type     string    // 字段类型的源码形式
	TypeExpr ast.Expr  // 字段类型表达式
	Tag      string    // 字段标签（已去掉反引号）
	Embedded bool      // 是否为匿名嵌入字段
	Pos      token.Pos // 字段名（或嵌入类型）的位置
}

// TagValue 返回标签中 key 对应的值
func (f FieldInfo) TagValue(key string) string {
	return reflect.StructTag(f.Tag).Get(key)
}

// StructInfo 表示结构体信息
type StructInfo struct {
	Name        string                 // 结构体名称
	PackageName string                 // 包名
	FilePath    string                 // 结构体所在文件路径
	Fields      []FieldInfo            // 字段列表，按声明顺序
	Imports     map[string]*ImportInfo // 所在文件的导入，键为源码中的引用名
	TypeParams  int                    // 类型参数个数
}

// HasEmbedded 是否包含匿名嵌入字段
func (s *StructInfo) HasEmbedded() bool {
	for _, f := range s.Fields {
		if f.Embedded {
			return true
		}
	}
	return false
}

// Field 按名称查找字段
func (s *StructInfo) Field(name string) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// unquoteTag 去掉标签字面量的引号，非法时原样返回
func unquoteTag(lit *ast.BasicLit) string {
	if lit == nil {
		return ""
	}
	if s, err := strconv.Unquote(lit.Value); err == nil {
		return s
	}
	return lit.Value
}

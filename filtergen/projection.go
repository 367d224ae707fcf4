package filtergen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
	"path/filepath"
	"strings"

	"github.com/donutnomad/fieldfilter/internal/gormparse"
	"github.com/donutnomad/fieldfilter/internal/structparse"
	"github.com/donutnomad/fieldfilter/internal/utils"
	"github.com/donutnomad/fieldfilter/plugin"
)

const (
	// AnnotationFilterable 触发生成的注解
	AnnotationFilterable = "FieldFilterable"
	// AnnotationSource 指定源类型的注解
	AnnotationSource = "field_filterable_on"
)

var (
	// ErrUnsupportedShape 投影类型不是具名字段的结构体
	ErrUnsupportedShape = errors.New("unimplemented: @FieldFilterable 只支持具名字段的结构体")
	// ErrMissingSource 缺少源类型注解或注解参数不是类型名
	ErrMissingSource = fmt.Errorf("缺少源类型，请添加 @%s(<TYPE>)", AnnotationSource)
)

// Strategy 字段的复制策略
type Strategy int

const (
	StrategyCopy     Strategy = iota // 无条件复制
	StrategyOptional                 // 被请求时包装为 Some，否则为 None
)

func (s Strategy) String() string {
	if s == StrategyOptional {
		return "optional"
	}
	return "copy"
}

// KeyMode 可选字段的选择键
type KeyMode string

const (
	KeyField KeyMode = "field" // 字段名原样
	KeyJSON  KeyMode = "json"  // json 标签名
	KeySnake KeyMode = "snake" // 蛇形命名
	KeyCamel KeyMode = "camel" // 小驼峰
	// KeyColumn 数据库列名：gorm:"column:xxx"，否则按 GORM 默认命名
	KeyColumn KeyMode = "column"
)

// ParseKeyMode 解析 key 参数，空字符串视为 field
func ParseKeyMode(s string) (KeyMode, error) {
	switch mode := KeyMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return KeyField, nil
	case KeyField, KeyJSON, KeySnake, KeyCamel, KeyColumn:
		return mode, nil
	}
	return "", fmt.Errorf("不支持的 key=%s，可选值: field|json|snake|camel|column", s)
}

// Declaration 投影类型的声明
type Declaration struct {
	Name        string
	PackageName string
	FilePath    string
	Location    string // file:line:col
	Spec        *ast.TypeSpec
	File        *ast.File // 所在文件，用于解析源类型的导入
	Annotations []*plugin.Annotation
}

// NewDeclaration 从扫描目标构造声明
func NewDeclaration(at *plugin.AnnotatedTarget) *Declaration {
	return &Declaration{
		Name:        at.Target.Name,
		PackageName: at.Target.PackageName,
		FilePath:    at.Target.FilePath,
		Location:    at.Target.Location(),
		Spec:        at.Target.TypeSpec(),
		File:        at.Target.File,
		Annotations: at.Annotations,
	}
}

// Field 投影字段
type Field struct {
	Name     string
	Key      string // 选择键，仅 StrategyOptional 使用
	Type     string // 声明类型
	Inner    string // Optional 的内部类型
	Strategy Strategy
}

// Projection 一个投影类型的生成计划
type Projection struct {
	Name        string
	PackageName string
	FilePath    string
	Source      string                  // 生成代码中引用源类型的写法，如 User 或 models.User
	SourceName  string                  // 源类型名
	SourceDir   string                  // 源类型所在目录，未知时为空
	SourceAlias *structparse.ImportInfo // 源类型来自其他包时的导入
	KeyMode     KeyMode
	Fields      []Field
}

// BuildOptions 构造选项
type BuildOptions struct {
	KeyMode  KeyMode
	Resolver structparse.NameResolver // 解析未加别名导入的包名，可为空
	Dirs     DirResolver              // 定位其他包的目录，可为空
}

// DirResolver 把导入路径解析为目录
type DirResolver interface {
	Dir(importPath string) (string, error)
}

// BuildProjection 校验声明并生成投影计划
func BuildProjection(decl *Declaration, opts BuildOptions) (*Projection, error) {
	st, err := structOf(decl)
	if err != nil {
		return nil, err
	}

	source, err := sourceExpr(decl.Annotations)
	if err != nil {
		return nil, err
	}

	keyMode := opts.KeyMode
	if keyMode == "" {
		keyMode = KeyField
	}

	p := &Projection{
		Name:        decl.Name,
		PackageName: decl.PackageName,
		FilePath:    decl.FilePath,
		KeyMode:     keyMode,
	}
	if err := p.bindSource(source, decl, opts); err != nil {
		return nil, err
	}

	for _, f := range structparse.ParseFields(st.Fields) {
		field := Field{Name: f.Name, Type: f.Type}
		if inner, ok := MatchWrapper(OptionalWrapper, f.TypeExpr); ok {
			field.Strategy = StrategyOptional
			field.Inner = types.ExprString(inner)
			field.Key = selectionKey(keyMode, f)
		}
		p.Fields = append(p.Fields, field)
	}
	return p, nil
}

// structOf 校验声明形状：非泛型、非别名、至少一个具名字段、没有嵌入或空白字段
func structOf(decl *Declaration) (*ast.StructType, error) {
	spec := decl.Spec
	if spec == nil {
		return nil, fmt.Errorf("%w: %s 不是类型声明", ErrUnsupportedShape, decl.Name)
	}
	if spec.Assign.IsValid() {
		return nil, fmt.Errorf("%w: %s 是类型别名", ErrUnsupportedShape, decl.Name)
	}
	if spec.TypeParams != nil && spec.TypeParams.NumFields() > 0 {
		return nil, fmt.Errorf("%w: %s 带有类型参数", ErrUnsupportedShape, decl.Name)
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%w: %s 不是结构体", ErrUnsupportedShape, decl.Name)
	}
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return nil, fmt.Errorf("%w: %s 没有字段", ErrUnsupportedShape, decl.Name)
	}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, fmt.Errorf("%w: %s 含有嵌入字段 %s", ErrUnsupportedShape, decl.Name, types.ExprString(f.Type))
		}
		for _, name := range f.Names {
			if name.Name == "_" {
				return nil, fmt.Errorf("%w: %s 含有空白字段 _", ErrUnsupportedShape, decl.Name)
			}
		}
	}
	return st, nil
}

// sourceExpr 取第一个 @field_filterable_on 注解中第一个类型名参数
func sourceExpr(annotations []*plugin.Annotation) (ast.Expr, error) {
	for _, ann := range annotations {
		if ann.Name != AnnotationSource {
			continue
		}
		for _, arg := range ann.Args {
			if expr, ok := parseTypePath(arg); ok {
				return expr, nil
			}
		}
		return nil, ErrMissingSource
	}
	return nil, ErrMissingSource
}

// parseTypePath 只接受 Ident 或 pkg.Ident
func parseTypePath(s string) (ast.Expr, bool) {
	expr, err := parser.ParseExpr(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t, true
	case *ast.SelectorExpr:
		if _, ok := t.X.(*ast.Ident); ok {
			return t, true
		}
	}
	return nil, false
}

// bindSource 确定源类型在生成代码中的写法，以及它的导入和目录
func (p *Projection) bindSource(source ast.Expr, decl *Declaration, opts BuildOptions) error {
	switch t := source.(type) {
	case *ast.Ident:
		p.Source = t.Name
		p.SourceName = t.Name
		p.SourceDir = filepath.Dir(decl.FilePath)
		return nil
	case *ast.SelectorExpr:
		pkgName := structparse.ReferencedPackages(t)[0]
		p.SourceName = t.Sel.Name
		p.Source = pkgName + "." + t.Sel.Name
		if decl.File == nil {
			return fmt.Errorf("无法解析源类型 %s 的导入", p.Source)
		}
		imp, ok := structparse.ExtractImports(decl.File, opts.Resolver)[pkgName]
		if !ok {
			return fmt.Errorf("源类型 %s 的包 %s 未在 %s 中导入", p.Source, pkgName, filepath.Base(decl.FilePath))
		}
		p.SourceAlias = imp
		if opts.Dirs != nil {
			if dir, err := opts.Dirs.Dir(imp.ImportPath); err == nil {
				p.SourceDir = dir
			}
		}
		return nil
	}
	return ErrMissingSource
}

// selectionKey 计算可选字段在 Fields 中的键
func selectionKey(mode KeyMode, f structparse.FieldInfo) string {
	switch mode {
	case KeyJSON:
		name, _, _ := strings.Cut(f.TagValue("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	case KeySnake:
		return utils.ToSnakeCase(f.Name)
	case KeyCamel:
		return utils.ToLowerCamel(f.Name)
	case KeyColumn:
		if gormparse.Ignored(f.Tag) {
			return f.Name
		}
		return gormparse.ColumnName(f.Name, f.Tag)
	}
	return f.Name
}

// CheckSource 对照源结构体检查字段是否存在
// 源结构体找不到或含嵌入字段时不做检查，交给编译器
func (p *Projection) CheckSource() error {
	if p.SourceDir == "" {
		return nil
	}
	src, err := structparse.FindStructInDir(p.SourceDir, p.SourceName)
	if err != nil || src == nil || src.HasEmbedded() || src.TypeParams > 0 {
		return nil
	}
	var missing []string
	for _, f := range p.Fields {
		if _, ok := src.Field(f.Name); !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("源类型 %s 中不存在字段: %s", p.Source, strings.Join(missing, ", "))
	}
	return nil
}

// OptionalCount 可选字段数量
func (p *Projection) OptionalCount() int {
	n := 0
	for _, f := range p.Fields {
		if f.Strategy == StrategyOptional {
			n++
		}
	}
	return n
}

package filtergen

import (
	"fmt"
	"path"
	"strconv"

	"github.com/donutnomad/gg"
)

// FilterablePath 运行时支持包的导入路径
const FilterablePath = "github.com/donutnomad/fieldfilter/filterable"

// generateDefinition 为同一输出文件中的投影生成 gg 定义
func generateDefinition(projections []*Projection) (*gg.Generator, error) {
	if len(projections) == 0 {
		return nil, fmt.Errorf("没有目标需要生成")
	}

	gen := gg.New()
	gen.SetPackage(projections[0].PackageName)
	ffPkg := gen.P(FilterablePath)

	for _, p := range projections {
		if p.PackageName != projections[0].PackageName {
			return nil, fmt.Errorf("%s 与 %s 不在同一个包中", p.Name, projections[0].Name)
		}
		if imp := p.SourceAlias; imp != nil {
			if imp.Explicit || imp.Name != path.Base(imp.ImportPath) {
				gen.PAlias(imp.ImportPath, imp.Name)
			} else {
				gen.P(imp.ImportPath)
			}
		}

		buildAssertion(gen, ffPkg, p)
		buildFieldFilter(gen, ffPkg, p)
		buildNewFunction(gen, ffPkg, p)
	}

	return gen, nil
}

// buildAssertion 编译期检查投影类型实现了 Filterable
// var _ filterable.Filterable[User, FilteredUser] = FilteredUser{}
func buildAssertion(gen *gg.Generator, ffPkg *gg.PackageRef, p *Projection) {
	group := gen.Body()
	group.AddLine()
	group.Append(gg.NewInlineGroup().Append(
		gg.S("var _ "),
		ffPkg.Type("Filterable"),
		gg.S("[%s, %s] = %s{}", p.Source, p.Name, p.Name),
	))
}

// buildFieldFilter 生成投影方法，字段按声明顺序绑定到 v0, v1, ...
//
//	func (_ FilteredUser) FieldFilter(o User, fields filterable.Fields) FilteredUser {
//		v0 := o.ID
//		v1 := filterable.SomeIf(fields.Has("Name"), o.Name)
//		return FilteredUser{ID: v0, Name: v1}
//	}
func buildFieldFilter(gen *gg.Generator, ffPkg *gg.PackageRef, p *Projection) {
	group := gen.Body()

	group.AddLine()
	group.Append(gg.LineComment("FieldFilter 从 %s 投影出 %s，Optional 字段仅在 fields 包含其%s时填充", p.Source, p.Name, keyDescription(p.KeyMode)))

	body := make([]any, 0, len(p.Fields)+1)
	literal := gg.Value(p.Name).MultiLine()
	for i, f := range p.Fields {
		binding := fmt.Sprintf("v%d", i)
		switch f.Strategy {
		case StrategyOptional:
			body = append(body, gg.NewInlineGroup().Append(
				gg.S("%s := ", binding),
				ffPkg.Call("SomeIf", gg.S("fields.Has(%s)", strconv.Quote(f.Key)), gg.S("o.%s", f.Name)),
			))
		default:
			body = append(body, gg.S("%s := o.%s", binding, f.Name))
		}
		literal.AddField(f.Name, gg.S("%s", binding))
	}
	body = append(body, gg.Return(literal))

	group.NewFunction("FieldFilter").
		WithReceiver("_", p.Name).
		AddParameter("o", p.Source).
		AddParameter("fields", ffPkg.Type("Fields")).
		AddResult("", p.Name).
		AddBody(body...)
}

// buildNewFunction 生成构造函数
// func NewFilteredUser(o User, fields filterable.Fields) FilteredUser
func buildNewFunction(gen *gg.Generator, ffPkg *gg.PackageRef, p *Projection) {
	group := gen.Body()

	group.AddLine()
	group.Append(gg.LineComment("New%s 按 fields 从 %s 创建 %s", p.Name, p.Source, p.Name))

	group.NewFunction("New"+p.Name).
		AddParameter("o", p.Source).
		AddParameter("fields", ffPkg.Type("Fields")).
		AddResult("", p.Name).
		AddBody(
			gg.Return(gg.S("%s{}.FieldFilter(o, fields)", p.Name)),
		)
}

func keyDescription(mode KeyMode) string {
	switch mode {
	case KeyJSON:
		return "JSON名"
	case KeySnake:
		return "蛇形名"
	case KeyCamel:
		return "小驼峰名"
	case KeyColumn:
		return "列名"
	}
	return "字段名"
}

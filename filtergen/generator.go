package filtergen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/fieldfilter/internal/pkgresolver"
	"github.com/donutnomad/fieldfilter/plugin"
	"github.com/samber/lo"
)

const generatorName = "filtergen"

// defaultOutput 默认输出文件
const defaultOutput = "$FILE_filter.go"

// FilterParams @FieldFilterable 注解参数
type FilterParams struct {
	Key string `param:"name=key,required=false,default=field,description=可选字段的选择键: field|json|snake|camel|column"`
}

// FilterGenerator 实现 plugin.Generator 接口
// @FieldFilterable 触发生成，@field_filterable_on 为辅助注解
type FilterGenerator struct {
	plugin.BaseGenerator
}

// NewFilterGenerator 创建生成器
func NewFilterGenerator() *FilterGenerator {
	gen := &FilterGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{AnnotationFilterable, AnnotationSource},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType},
			FilterParams{},
		),
	}
	gen.SetPriority(20)
	return gen
}

// planSummary verbose 模式下打印的生成计划
type planSummary struct {
	Target   string
	Source   string
	Output   string
	KeyMode  KeyMode
	Fields   []string
	Optional int
}

// Generate 执行代码生成
func (g *FilterGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	if len(ctx.Targets) == 0 {
		return result, nil
	}

	// 按项目根目录缓存解析器
	resolvers := make(map[string]*pkgresolver.Resolver)
	resolverFor := func(filePath string) *pkgresolver.Resolver {
		root, _ := pkgresolver.FindProjectRoot(filepath.Dir(filePath))
		r, ok := resolvers[root]
		if !ok {
			r = pkgresolver.New(root)
			resolvers[root] = r
			if ctx.Verbose {
				fmt.Printf("[%s] 模块 %q (%s)\n", generatorName, r.ModulePath(), root)
			}
		}
		return r
	}

	fileTargets := make(map[string][]*Projection)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, AnnotationFilterable)
		if ann == nil {
			// 只有 @field_filterable_on 的类型不生成
			result.Skipped++
			continue
		}

		params, ok := at.ParsedParams.(FilterParams)
		if !ok && at.ParsedParams != nil {
			result.AddError(fmt.Errorf("%s: ParsedParams 类型断言失败: %T", at.Target.Location(), at.ParsedParams))
			continue
		}
		keyMode, err := ParseKeyMode(params.Key)
		if err != nil {
			result.AddError(fmt.Errorf("%s: @%s: %w", at.Target.Location(), AnnotationFilterable, err))
			continue
		}

		resolver := resolverFor(at.Target.FilePath)
		p, err := BuildProjection(NewDeclaration(at), BuildOptions{
			KeyMode:  keyMode,
			Resolver: resolver,
			Dirs:     resolver,
		})
		if err != nil {
			result.AddError(fmt.Errorf("%s: %s: %w", at.Target.Location(), at.Target.Name, err))
			continue
		}
		if err := p.CheckSource(); err != nil {
			result.AddError(fmt.Errorf("%s: %s: %w", at.Target.Location(), at.Target.Name, err))
			continue
		}

		pkgConfig := ctx.GetPackageConfig(at.Target.FilePath)
		outputPath := plugin.GetOutputPath(at.Target, ann, defaultOutput, pkgConfig, generatorName, ctx.DefaultOutput)
		fileTargets[outputPath] = append(fileTargets[outputPath], p)

		if ctx.Verbose {
			fmt.Printf("[%s] 处理 %s <- %s (%s)\n", generatorName, p.Name, p.Source, outputPath)
			spew.Dump(planSummary{
				Target:  p.Name,
				Source:  p.Source,
				Output:  outputPath,
				KeyMode: p.KeyMode,
				Fields: lo.Map(p.Fields, func(f Field, _ int) string {
					return f.Name + ":" + f.Strategy.String()
				}),
				Optional: p.OptionalCount(),
			})
		}
	}

	if ctx.Verbose && result.Skipped > 0 {
		fmt.Printf("[%s] 跳过 %d 个只有 @%s 的类型\n", generatorName, result.Skipped, AnnotationSource)
	}

	outputPaths := make([]string, 0, len(fileTargets))
	for outputPath := range fileTargets {
		outputPaths = append(outputPaths, outputPath)
	}
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		projections := fileTargets[outputPath]
		slices.SortFunc(projections, func(a, b *Projection) int {
			return strings.Compare(a.Name, b.Name)
		})

		gen, err := generateDefinition(projections)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddDefinition(outputPath, gen)
	}

	return result, nil
}

package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/fieldfilter/internal/utils"
	"github.com/donutnomad/gg"
	"github.com/pmezard/go-difflib/difflib"
)

// Header 生成文件的头部注释
const Header = "Code generated by fieldfilter. DO NOT EDIT."

// ErrStale check 模式下生成文件与磁盘内容不一致
var ErrStale = errors.New("生成文件已过期")

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否并行执行生成器
	Check    bool   // 只比较生成结果与磁盘文件，不写入
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成（或检查）的文件数量
	StaleCount       int           // check 模式下过期的文件数量
}

// Run 使用指定注册表运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
//
// 任意生成器报告错误时不写入任何文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	_, err := RunWithOptionsAndStats(ctx, &RunOptions{
		Registry: registry,
		Patterns: patterns,
	})
	return err
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerVerbose(opts.Verbose),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	stats.TargetCount = len(result.All())
	if stats.TargetCount == 0 {
		if opts.Verbose {
			fmt.Println("没有找到任何带注解的目标")
		}
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}
	if opts.Verbose {
		fmt.Printf("找到 %d 个带注解的目标 (扫描耗时: %v)\n", stats.TargetCount, stats.ScanDuration)
	}

	generateStart := time.Now()
	files, err := generate(registry, result, opts)
	stats.GenerateDuration = time.Since(generateStart)
	if err != nil {
		stats.TotalDuration = time.Since(totalStart)
		return stats, err
	}

	if opts.Check {
		err = checkFiles(files, stats)
	} else {
		err = writeFiles(files, stats)
	}
	stats.TotalDuration = time.Since(totalStart)
	return stats, err
}

// renderedFile 合并、格式化后的生成文件
type renderedFile struct {
	path    string
	content []byte
}

// generate 执行所有生成器并渲染输出文件，按路径排序
func generate(registry *Registry, result *ScanResult, opts *RunOptions) ([]renderedFile, error) {
	dispatch := registry.DispatchTargets(result)

	// 按优先级排序生成器名称（优先级数字越小越靠前）
	genNames := make([]string, 0, len(dispatch))
	for genName := range dispatch {
		genNames = append(genNames, genName)
	}
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		if d := genA.Priority() - genB.Priority(); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	var allErrors []error

	// 先串行解析所有目标的参数（避免并发修改共享数据）
	for _, genName := range genNames {
		gen, _ := registry.GetByName(genName)
		for _, target := range dispatch[genName] {
			if err := bindParams(gen, target); err != nil {
				allErrors = append(allErrors, fmt.Errorf("%s: %w", target.Target.Location(), err))
			}
		}
	}

	type genResultItem struct {
		genName string
		result  *GenerateResult
		err     error
	}

	executeGenerator := func(genName string) genResultItem {
		targets := dispatch[genName]
		gen, _ := registry.GetByName(genName)

		if opts.Verbose {
			fmt.Printf("执行生成器: %s (开始处理 %d 个目标)\n", genName, len(targets))
		}

		start := time.Now()
		genResult, err := gen.Generate(&GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
		})
		if opts.Verbose {
			fmt.Printf("执行生成器: %s (耗时: %v)\n", genName, time.Since(start))
		}
		return genResultItem{genName: genName, result: genResult, err: err}
	}

	genResults := make(map[string]*GenerateResult, len(genNames))
	collect := func(item genResultItem) {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			return
		}
		if item.result != nil {
			genResults[item.genName] = item.result
		}
	}

	if opts.Async {
		resultChan := make(chan genResultItem, len(genNames))
		var wg sync.WaitGroup
		for _, genName := range genNames {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resultChan <- executeGenerator(genName)
			}()
		}
		wg.Wait()
		close(resultChan)
		for item := range resultChan {
			collect(item)
		}
	} else {
		for _, genName := range genNames {
			collect(executeGenerator(genName))
		}
	}

	// 按优先级顺序收集 gg 定义，按文件分组
	fileDefinitions := make(map[string][]*gg.Generator)
	fileGenNames := make(map[string][]string)
	for _, genName := range genNames {
		genResult, ok := genResults[genName]
		if !ok {
			continue
		}
		allErrors = append(allErrors, genResult.Errors...)

		paths := make([]string, 0, len(genResult.Definitions))
		for path := range genResult.Definitions {
			paths = append(paths, path)
		}
		slices.Sort(paths)
		for _, path := range paths {
			fileDefinitions[path] = append(fileDefinitions[path], genResult.Definitions[path])
			fileGenNames[path] = append(fileGenNames[path], genName)
		}
	}

	// 生成错误是致命的：不产出任何文件
	if len(allErrors) > 0 {
		for _, e := range allErrors {
			fmt.Fprintf(os.Stderr, "错误: %v\n", e)
		}
		return nil, fmt.Errorf("生成过程中出现 %d 个错误: %w", len(allErrors), errors.Join(allErrors...))
	}

	paths := make([]string, 0, len(fileDefinitions))
	for path := range fileDefinitions {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	files := make([]renderedFile, 0, len(paths))
	for _, path := range paths {
		merged, err := mergeDefinitionsWithSeparator(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			return nil, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err)
		}
		content, err := utils.Format(path, merged.Bytes())
		if err != nil {
			return nil, err
		}
		files = append(files, renderedFile{path: path, content: content})
	}
	return files, nil
}

// bindParams 将生成器主注解的参数解析到参数结构体
// 目标同时携带辅助注解时，始终以生成器声明的第一个注解为准
func bindParams(gen Generator, target *AnnotatedTarget) error {
	paramsProto := gen.NewParams()
	if paramsProto == nil {
		return nil
	}

	var targetAnn *Annotation
	for _, name := range gen.Annotations() {
		if targetAnn = GetAnnotation(target.Annotations, name); targetAnn != nil {
			break
		}
	}
	if targetAnn == nil {
		return nil
	}

	val := reflect.ValueOf(paramsProto)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("NewParams() 必须返回指针类型, 得到: %T", paramsProto)
	}
	if err := ParseAnnotationParams(targetAnn, paramsProto, gen.ParamDefs()); err != nil {
		return fmt.Errorf("解析参数失败: %w", err)
	}
	target.ParsedParams = val.Elem().Interface()
	return nil
}

// writeFiles 写入生成文件，内容未变化的文件不重写
func writeFiles(files []renderedFile, stats *RunStats) error {
	var errs []error
	for _, f := range files {
		if old, err := os.ReadFile(f.path); err == nil && bytes.Equal(old, f.content) {
			stats.FileCount++
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			errs = append(errs, fmt.Errorf("创建目录失败: %w", err))
			continue
		}
		if err := os.WriteFile(f.path, f.content, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("写入文件 %s 失败: %w", f.path, err))
			continue
		}
		stats.FileCount++
		fmt.Printf("生成文件: %s\n", f.path)
	}
	return errors.Join(errs...)
}

// checkFiles 比较生成结果与磁盘内容，输出 unified diff
func checkFiles(files []renderedFile, stats *RunStats) error {
	for _, f := range files {
		stats.FileCount++

		old, err := os.ReadFile(f.path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("读取文件 %s 失败: %w", f.path, err)
		}
		if bytes.Equal(old, f.content) {
			continue
		}

		stats.StaleCount++
		diff, err := Diff(f.path, old, f.content)
		if err != nil {
			return err
		}
		fmt.Print(diff)
	}

	if stats.StaleCount > 0 {
		return fmt.Errorf("%w: %d 个文件需要重新生成", ErrStale, stats.StaleCount)
	}
	return nil
}

// Diff 生成磁盘内容到生成内容的 unified diff
func Diff(path string, current, generated []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(generated)),
		FromFile: path + " (磁盘)",
		ToFile:   path + " (生成)",
		Context:  3,
	})
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	merged := gg.New()
	merged.SetHeader(Header)

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 直接使用 Merge，它会正确处理 imports 和别名
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
		merged.Body().AddLine()
		merged.Merge(def)
	}

	return merged, nil
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	output := ann.GetParam("output")

	if output == "" && pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}
	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}

// GetDefaultOutputPath 获取默认输出路径
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "generate.go"
	}
	defaultFileName = replaceTemplateVars(defaultFileName, target)
	return filepath.Join(filepath.Dir(target.FilePath), defaultFileName)
}

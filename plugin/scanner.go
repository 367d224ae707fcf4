package plugin

import (
	"bufio"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Directive 是包级配置指令的前缀，支持 //go:fieldfilter: 和 // go:fieldfilter:
const Directive = "go:fieldfilter:"

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	verbose bool

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解的正则
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(allFiles) == 0 {
		return &ScanResult{}, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles := s.quickMatch(ctx, allFiles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(matchedFiles) == 0 {
		return &ScanResult{}, nil
	}
	if s.verbose {
		fmt.Printf("快速匹配: %d/%d 个文件可能包含注解\n", len(matchedFiles), len(allFiles))
	}

	// ========== 第二阶段：AST 解析 ==========
	return s.parseFiles(ctx, matchedFiles)
}

// forEachFile 使用 worker 池并行处理文件
func forEachFile[R any](ctx context.Context, workers int, files []string, fn func(string) R) []R {
	resultCh := make(chan R, len(files))
	fileCh := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				resultCh <- fn(file)
			}
		}()
	}

	go func() {
		defer close(fileCh)
		for _, file := range files {
			select {
			case <-ctx.Done():
				return
			case fileCh <- file:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// quickMatch 第一阶段：并行读取文件，检查是否包含 @xxx 模式
func (s *Scanner) quickMatch(ctx context.Context, files []string) []string {
	type matchResult struct {
		file    string
		matched bool
	}

	results := forEachFile(ctx, s.workers, files, func(file string) matchResult {
		matched, err := s.QuickMatchFile(file)
		if err != nil && s.verbose {
			fmt.Printf("读取文件失败 %s: %v\n", file, err)
		}
		return matchResult{file: file, matched: matched}
	})

	var matched []string
	for _, r := range results {
		if r.matched {
			matched = append(matched, r.file)
		}
	}
	// 结果顺序与并发调度无关
	slices.Sort(matched)
	return matched
}

// QuickMatchFile 快速检查文件是否包含注解或包级配置指令
// 也用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}
		if strings.Contains(trimmed, Directive) {
			return true, nil
		}
		for _, match := range quickMatchRegex.FindAllStringSubmatch(trimmed, -1) {
			if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, scanner.Err()
}

// fileScan 单个文件的解析结果
type fileScan struct {
	structs   []*AnnotatedTarget
	types     []*AnnotatedTarget
	pkgConfig *PackageConfig
	err       error
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*ScanResult, error) {
	scans := forEachFile(ctx, s.workers, files, s.parseFile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	for _, r := range scans {
		if r.err != nil {
			// 语法错误的文件无法生成，直接报告
			return nil, r.err
		}
		result.Structs = append(result.Structs, r.structs...)
		result.Types = append(result.Types, r.types...)
		if r.pkgConfig != nil {
			mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	sortTargets(result.Structs)
	sortTargets(result.Types)
	return result, nil
}

// sortTargets 按文件与位置排序，保证输出稳定
func sortTargets(targets []*AnnotatedTarget) {
	slices.SortFunc(targets, func(a, b *AnnotatedTarget) int {
		if c := strings.Compare(a.Target.FilePath, b.Target.FilePath); c != 0 {
			return c
		}
		return int(a.Target.Position) - int(b.Target.Position)
	})
}

// mergePackageConfig 合并同一包内多个文件的配置，后发现的配置覆盖先前的
func mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	existing, ok := configs[cfg.PackageDir]
	if !ok {
		configs[cfg.PackageDir] = cfg
		return
	}
	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			fmt.Printf("警告: 包 %s 中存在多个不同的 %s 默认输出配置，使用后发现的配置\n", cfg.PackageDir, Directive)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if old, ok := existing.PluginOutputs[k]; ok && old != v {
			fmt.Printf("警告: 包 %s 中插件 %s 存在多个不同的输出配置，使用后发现的配置\n", cfg.PackageDir, k)
		}
		existing.PluginOutputs[k] = v
	}
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (result fileScan) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = fmt.Errorf("解析文件失败: %w", err)
		return
	}

	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		if d, ok := decl.(*ast.GenDecl); ok && d.Tok == token.TYPE {
			s.parseTypeDecl(fset, file, filePath, d, &result)
		}
	}
	return
}

// parseTypeDecl 解析类型声明
// 分组声明 type ( ... ) 中优先使用各自的文档注释
func (s *Scanner) parseTypeDecl(fset *token.FileSet, file *ast.File, filePath string, decl *ast.GenDecl, result *fileScan) {
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		doc := typeSpec.Doc
		if doc == nil && !decl.Lparen.IsValid() {
			doc = decl.Doc
		}
		if doc == nil {
			continue
		}

		annotations := ParseAnnotations(doc.Text())
		if len(s.annotationFilter) > 0 {
			annotations = FilterByNames(annotations, s.annotationFilter...)
		}
		if len(annotations) == 0 {
			continue
		}

		target := &Target{
			Name:        typeSpec.Name.Name,
			PackageName: file.Name.Name,
			FilePath:    filePath,
			Position:    typeSpec.Pos(),
			Fset:        fset,
			File:        file,
			Node:        typeSpec,
		}
		at := &AnnotatedTarget{Target: target, Annotations: annotations}

		if _, isStruct := typeSpec.Type.(*ast.StructType); isStruct && !typeSpec.Assign.IsValid() {
			target.Kind = TargetStruct
			result.structs = append(result.structs, at)
		} else {
			target.Kind = TargetType
			result.types = append(result.types, at)
		}
	}
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		pattern = strings.TrimSuffix(pattern, "/...")
		if pattern == "" {
			pattern = "."
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != absPath && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				if !recursive && path != absPath {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsSourceFile 判断是否为需要扫描的源文件（排除测试文件与生成文件）
func IsSourceFile(path string) bool {
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!strings.HasSuffix(path, "_filter.go") &&
		!strings.HasSuffix(path, "_gen.go")
}

// packageDir 返回文件所在的包目录
func packageDir(filePath string) string {
	dir := filepath.Dir(filePath)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// 默认扫描器
var defaultScanner = NewScanner()

func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	return NewScanner(WithAnnotationFilter(annotations...)).Scan(ctx, patterns...)
}

// directiveRegex 匹配包级配置指令
var directiveRegex = regexp.MustCompile(regexp.QuoteMeta(Directive) + `\s*(.*)`)

// parsePackageConfig 解析包级配置
// 支持格式:
//
//	//go:fieldfilter: -output `$FILE_filter`
//	// go:fieldfilter: plugin:filtergen -output `projections`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}
	if len(lines) > 1 {
		fmt.Printf("警告: 文件 %s 定义了多个 %s 指令，将被忽略\n", filePath, Directive)
		return nil
	}

	return parseDirectiveLine(lines[0], filePath)
}

// parseDirectiveLine 解析单行配置
// 格式:
//
//	-output `xxx`                                        // 默认输出
//	plugin:filtergen -output `xxx` plugin:other -output `yyy` // 插件特定输出
func parseDirectiveLine(line string, filePath string) *PackageConfig {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	config := &PackageConfig{
		PackageDir:    packageDir(filePath),
		PluginOutputs: make(map[string]string),
	}

	parts := splitDirectiveArgs(line)

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		switch {
		case strings.HasPrefix(part, "plugin:"):
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		case part == "-output" && i+1 < len(parts):
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}
	return config
}

// splitDirectiveArgs 按空格分割指令参数，支持引号内的空格
func splitDirectiveArgs(line string) []string {
	var parts []string
	for _, part := range splitOutsideQuotes(line, ' ') {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// trimQuotes 去除成对的引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

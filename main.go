package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/donutnomad/fieldfilter/filtergen"
	"github.com/donutnomad/fieldfilter/plugin"
	"github.com/samber/lo"
)

func init() {
	plugin.MustRegister(filtergen.NewFilterGenerator())
}

var (
	verbose  = flag.Bool("v", false, "详细输出")
	help     = flag.Bool("h", false, "显示帮助信息")
	output   = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时使用 $FILE_filter.go")
	noOutput = flag.Bool("no-output", false, "忽略 -output，每个目标使用注解或包级配置的输出路径")
	async    = flag.Bool("async", true, "异步执行生成器（默认 true）")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := flag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		runGen([]string{"./..."}, false)
		return
	}

	switch args[0] {
	case "gen":
		runGen(args[1:], false)
	case "check":
		runGen(args[1:], true)
	case "dev":
		runDev(args[1:])
	default:
		// 不是子命令，当作路径参数处理
		runGen(args, false)
	}
}

// defaultPatterns 未指定路径时扫描当前目录
func defaultPatterns(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

// outputPath -no-output 时传空字符串，否则使用 -output 的值
func outputPath() string {
	if *noOutput {
		return ""
	}
	return *output
}

func mustRegistry() *plugin.Registry {
	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}
	return registry
}

func runGen(args []string, check bool) {
	registry := mustRegistry()

	if *verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, _ int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: defaultPatterns(args),
		Verbose:  *verbose,
		Output:   outputPath(),
		Async:    *async,
		Check:    check,
	})
	if err != nil {
		if errors.Is(err, plugin.ErrStale) {
			fmt.Fprintf(os.Stderr, "%v\n请运行 fieldfilter gen 更新生成文件\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}

	if stats == nil || (stats.FileCount == 0 && !*verbose) {
		return
	}
	if check {
		fmt.Printf("检查通过: %d 个文件与生成结果一致\n", stats.FileCount)
		return
	}
	fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件\n", stats.TargetCount, stats.FileCount)
	fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `fieldfilter - 字段投影代码生成工具

用法:
  fieldfilter [选项] [路径...]
  fieldfilter gen [选项] [路径...]
  fieldfilter check [选项] [路径...]
  fieldfilter dev [选项] [路径...]

命令:
  gen     执行代码生成（默认）
  check   只比较生成结果与已有文件，过期时输出 diff 并以状态码 1 退出
  dev     启动开发模式，监听文件变动自动生成

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录
    ./models       只扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  fieldfilter                               扫描当前目录（默认 ./...）
  fieldfilter -v ./models/...               详细模式扫描 models 目录
  fieldfilter -output $PACKAGE_views ./...  所有投影输出到同一文件
  fieldfilter check ./...                   CI 中检查生成文件是否最新
  fieldfilter dev ./...                     开发模式，监听文件变动
`)
}

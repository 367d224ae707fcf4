package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/donutnomad/fieldfilter/internal/utils"
	"github.com/donutnomad/fieldfilter/plugin"
	"github.com/fsnotify/fsnotify"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	ctx      context.Context // 用于响应退出信号

	// generate 执行一次包级生成，默认为 runGenerate
	generate func(pkgDir string)

	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录路径
}

func newDevRunner(ctx context.Context, opts *DevOptions, registry *plugin.Registry, watcher *fsnotify.Watcher) *devRunner {
	r := &devRunner{
		opts:        opts,
		registry:    registry,
		watcher:     watcher,
		scanner:     plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		ctx:         ctx,
		pendingDirs: make(map[string]*time.Timer),
	}
	r.generate = r.runGenerate
	return r
}

// runDev 启动开发模式
func runDev(args []string) {
	registry := mustRegistry()

	opts := &DevOptions{
		Patterns: defaultPatterns(args),
		Verbose:  *verbose,
		Output:   outputPath(),
		Async:    *async,
		Debounce: 2 * time.Second,
	}

	if err := dev(opts, registry); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// dev 启动开发模式，阻塞直到收到退出信号
func dev(opts *DevOptions, registry *plugin.Registry) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	runner := newDevRunner(ctx, opts, registry, watcher)
	defer runner.stop()

	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		if opts.Verbose {
			fmt.Printf("监听目录: %s\n", dir)
		}
	}

	fmt.Printf("开发模式已启动，监听 %d 个目录\n", len(dirs))
	fmt.Println("按 Ctrl+C 退出")
	fmt.Println()

	err = runner.watchLoop(ctx)
	fmt.Println("\n正在退出...")
	return err
}

// stop 停止所有待处理的定时器
func (r *devRunner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for dir, timer := range r.pendingDirs {
		timer.Stop()
		delete(r.pendingDirs, dir)
	}
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			if r.opts.Verbose {
				fmt.Printf("监听错误: %v\n", err)
			}
		}
	}
}

// handleEvent 处理文件事件，返回是否触发了生成
func (r *devRunner) handleEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	filePath := event.Name
	if !plugin.IsSourceFile(filePath) {
		return false
	}

	if r.opts.Verbose {
		fmt.Printf("检测到文件变化: %s\n", filePath)
	}

	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		if r.opts.Verbose {
			fmt.Printf("检查注解失败 %s: %v\n", filePath, err)
		}
		return false
	}
	if !hasAnnotation {
		if r.opts.Verbose {
			fmt.Printf("跳过文件（无注解）: %s\n", filePath)
		}
		return false
	}

	// 编辑过程中的半成品文件不触发生成
	content, err := os.ReadFile(filePath)
	if err != nil {
		return false
	}
	if err := utils.CheckSyntax(filePath, content); err != nil {
		fmt.Printf("语法错误 %s: %v\n", filePath, err)
		return false
	}

	r.scheduleGenerate(filepath.Dir(filePath))
	return true
}

// scheduleGenerate 防抖动调度生成，同一目录在 Debounce 内的多次变动只生成一次
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[pkgDir]; exists {
		timer.Stop()
	}

	r.pendingDirs[pkgDir] = time.AfterFunc(r.opts.Debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.mu.Lock()
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()

		r.generate(pkgDir)
	})
}

// runGenerate 只重新生成变动的包
func (r *devRunner) runGenerate(pkgDir string) {
	if r.opts.Verbose {
		fmt.Printf("触发代码生成: %s\n", pkgDir)
	}

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir},
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
	})
	if err != nil {
		// 错误已逐条输出到 stderr，继续监听
		fmt.Printf("生成失败: %v\n", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		fmt.Printf("生成完成: %d 个文件 (耗时: %v)\n", stats.FileCount, stats.TotalDuration)
	} else if r.opts.Verbose {
		fmt.Printf("生成完成: 无文件生成\n")
	}
}

// collectWatchDirs 收集所有需要监听的目录，跳过规则与扫描器一致
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		baseDir := strings.TrimSuffix(pattern, "/...")
		if baseDir == "" {
			baseDir = "."
		}

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}

		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

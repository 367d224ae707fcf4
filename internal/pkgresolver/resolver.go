// Package pkgresolver 把导入路径解析为真实包名。
//
// 未加别名的导入在源码中以 package 声明的名字出现，不一定等于路径最后一段，
// 例如 "github.com/mattn/go-runewidth" 的包名是 runewidth。
package pkgresolver

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// Resolver 包名解析器，结果按导入路径缓存，可并发使用
type Resolver struct {
	projectRoot string
	modulePath  string
	modCache    string
	cache       sync.Map // importPath -> string
}

// New 创建解析器，projectRoot 为包含 go.mod 的目录，可为空
func New(projectRoot string) *Resolver {
	r := &Resolver{projectRoot: projectRoot, modCache: modCacheDir()}
	if projectRoot != "" {
		if data, err := os.ReadFile(filepath.Join(projectRoot, "go.mod")); err == nil {
			r.modulePath = modfile.ModulePath(data)
		}
	}
	return r
}

// ModulePath 返回项目的模块路径
func (r *Resolver) ModulePath() string {
	return r.modulePath
}

// PackageName 返回导入路径对应的包名
// 无法定位包目录时退化为 GuessName
func (r *Resolver) PackageName(importPath string) string {
	if v, ok := r.cache.Load(importPath); ok {
		return v.(string)
	}
	name := GuessName(importPath)
	if dir, err := r.Dir(importPath); err == nil {
		if pkgName, err := ReadPackageName(dir); err == nil {
			name = pkgName
		}
	}
	r.cache.Store(importPath, name)
	return name
}

// Dir 返回导入路径对应的磁盘目录
func (r *Resolver) Dir(importPath string) (string, error) {
	if IsStdLib(importPath) {
		return filepath.Join(build.Default.GOROOT, "src", filepath.FromSlash(importPath)), nil
	}
	if r.modulePath != "" {
		if importPath == r.modulePath {
			return r.projectRoot, nil
		}
		if rel, ok := strings.CutPrefix(importPath, r.modulePath+"/"); ok {
			return filepath.Join(r.projectRoot, filepath.FromSlash(rel)), nil
		}
	}
	return r.findInModCache(importPath)
}

// findInModCache 在模块缓存中查找，从最长的模块路径前缀开始尝试
func (r *Resolver) findInModCache(importPath string) (string, error) {
	if r.modCache == "" {
		return "", fmt.Errorf("未找到模块缓存目录")
	}
	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1; i-- {
		modPath := strings.Join(parts[:i], "/")
		escaped, err := module.EscapePath(modPath)
		if err != nil {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(r.modCache, filepath.FromSlash(escaped)+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		dir := filepath.Join(latestVersion(matches), filepath.FromSlash(strings.Join(parts[i:], "/")))
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// latestVersion 按语义化版本选出最高版本的目录
func latestVersion(dirs []string) string {
	version := func(dir string) string {
		_, v, _ := strings.Cut(filepath.Base(dir), "@")
		return v
	}
	return slices.MaxFunc(dirs, func(a, b string) int {
		return semver.Compare(version(a), version(b))
	})
}

func modCacheDir() string {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		gopath = build.Default.GOPATH
	}
	if gopath == "" {
		return ""
	}
	return filepath.Join(filepath.SplitList(gopath)[0], "pkg", "mod")
}

// IsStdLib 标准库路径的第一段不含点
func IsStdLib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

// GuessName 按 go 工具链的惯例从路径推断包名
//
//	"net/http"                      → http
//	"github.com/mattn/go-runewidth" → runewidth
//	"gopkg.in/yaml.v3"              → yaml
//	"github.com/jackc/pgx/v5"       → pgx
func GuessName(importPath string) string {
	prefix, _, ok := module.SplitPathVersion(importPath)
	if ok && prefix != "" {
		importPath = prefix
	}
	name := importPath[strings.LastIndex(importPath, "/")+1:]
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	return strings.ReplaceAll(name, "-", "")
}

// FindProjectRoot 从 dir 向上查找包含 go.mod 的目录
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("未找到 go.mod: %s", dir)
		}
		abs = parent
	}
}

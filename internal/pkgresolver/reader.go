package pkgresolver

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// ReadPackageName 读取目录中第一个非测试 Go 文件的 package 声明
func ReadPackageName(pkgDir string) (string, error) {
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", pkgDir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), filepath.Join(pkgDir, name), nil, parser.PackageClauseOnly)
		if err != nil {
			continue
		}
		// 外部测试包和 main 包不是导入目标
		if f.Name.Name == "main" || strings.HasSuffix(f.Name.Name, "_test") {
			continue
		}
		return f.Name.Name, nil
	}

	return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", pkgDir)
}

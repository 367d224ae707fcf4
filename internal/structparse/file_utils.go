package structparse

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// FindGoFiles 查找目录中的 Go 文件（不递归，不包含测试文件）
func FindGoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// ContainsStruct 粗略检查文件是否声明了指定的结构体
func ContainsStruct(filename, structName string) bool {
	content, err := os.ReadFile(filename)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), structName)
}

// FindStructInDir 在目录的所有文件中查找结构体，未找到时返回 nil
// 无法解析的文件会被跳过
func FindStructInDir(dir, structName string) (*StructInfo, error) {
	files, err := FindGoFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, filename := range files {
		if !ContainsStruct(filename, structName) {
			continue
		}
		file, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.SkipObjectResolution)
		if err != nil {
			continue
		}
		if info, ok := FromFile(file, filename, structName); ok {
			return info, nil
		}
	}
	return nil, nil
}

package utils

import (
	"fmt"

	"golang.org/x/tools/imports"
)

// Format 使用 goimports 格式化生成的源码并整理导入分组
// 生成器已显式登记所有导入，这里不再搜索缺失的包
func Format(path string, src []byte) ([]byte, error) {
	out, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w\n%s", path, err, src)
	}
	return out, nil
}

// CheckSyntax 只检查语法，不修改 imports
func CheckSyntax(path string, src []byte) error {
	_, err := imports.Process(path, src, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}

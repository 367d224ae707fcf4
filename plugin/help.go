package plugin

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// paramColumnWidth 参数说明列的对齐宽度（按终端显示宽度计算）
const paramColumnWidth = 28

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder

	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}
		mainAnnotation := annotations[0]

		fmt.Fprintf(&sb, "  @%s - %s\n", mainAnnotation, gen.Name())
		if len(annotations) > 1 {
			fmt.Fprintf(&sb, "    辅助注解: @%s\n", strings.Join(annotations[1:], ", @"))
		}

		sb.WriteString("    参数:\n")
		writeParamLine(&sb, "output", "输出文件路径（支持模板变量）")
		for _, param := range gen.ParamDefs() {
			if param.Name == "output" {
				continue
			}
			name := param.Name
			if param.Required {
				name += " (必填)"
			}
			desc := param.Description
			if param.Default != "" {
				desc += fmt.Sprintf(" [默认: %s]", param.Default)
			}
			writeParamLine(&sb, name, desc)
		}

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", mainAnnotation)
		fmt.Fprintf(&sb, "      @%s(output=$FILE_filter.go)\n", mainAnnotation)
		for i, param := range gen.ParamDefs() {
			if i >= 2 {
				break
			}
			if param.Default != "" {
				fmt.Fprintf(&sb, "      @%s(%s=%s)\n", mainAnnotation, param.Name, param.Default)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeParamLine 写入一行参数说明，名称列按显示宽度对齐（兼容中文）
func writeParamLine(sb *strings.Builder, name, desc string) {
	fmt.Fprintf(sb, "      %s %s\n", runewidth.FillRight(name, paramColumnWidth), desc)
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	parts := []string{param.Name}

	if param.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if param.Default != "" {
		parts = append(parts, fmt.Sprintf("default=%s", param.Default))
	}
	if param.Description != "" {
		parts = append(parts, param.Description)
	}

	return strings.Join(parts, ", ")
}

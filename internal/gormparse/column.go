// Package gormparse 按 GORM 的规则推导结构体字段的数据库列名
package gormparse

import (
	"reflect"
	"strings"

	"gorm.io/gorm/schema"
)

// namer 与 gorm 默认配置一致：不加表前缀，列名转小写蛇形
var namer = schema.NamingStrategy{}

// ColumnName 提取列名
// tag 为完整的结构体标签（不含反引号），优先使用 gorm:"column:xxx"，否则按 GORM 默认命名规则
func ColumnName(fieldName, tag string) string {
	if col := strings.TrimSpace(ParseGormTag(tag)["COLUMN"]); col != "" {
		return col
	}
	return namer.ColumnName("", fieldName)
}

// ParseGormTag 解析 gorm 标签，键统一为大写
func ParseGormTag(tag string) map[string]string {
	value, ok := reflect.StructTag(tag).Lookup("gorm")
	if !ok || strings.TrimSpace(value) == "" {
		return map[string]string{}
	}
	return schema.ParseTagSetting(value, ";")
}

// Ignored 判断字段是否被 gorm:"-" 排除
func Ignored(tag string) bool {
	settings := ParseGormTag(tag)
	_, ok := settings["-"]
	return ok
}

package filterable

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Fields 调用方请求的字段名集合，只关心成员关系
// nil 与空集合等价
type Fields map[string]struct{}

// NewFields 从字段名构造集合，重复项无意义
func NewFields(names ...string) Fields {
	return lo.Keyify(names)
}

// ParseFields 解析逗号分隔的字段列表，如 "name, email"
// 空白项会被忽略，名称区分大小写
func ParseFields(s string) Fields {
	names := lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return NewFields(lo.Compact(names)...)
}

// Has 判断字段是否被请求
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Len 返回集合大小
func (f Fields) Len() int {
	return len(f)
}

// Add 加入字段名，零值集合会先分配
func (f *Fields) Add(names ...string) {
	if *f == nil {
		*f = make(Fields, len(names))
	}
	for _, name := range names {
		(*f)[name] = struct{}{}
	}
}

// Names 返回排序后的字段名
func (f Fields) Names() []string {
	names := lo.Keys(map[string]struct{}(f))
	slices.Sort(names)
	return names
}

// Union 返回两个集合的并集，不修改原集合
func (f Fields) Union(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for name := range f {
		out[name] = struct{}{}
	}
	for name := range other {
		out[name] = struct{}{}
	}
	return out
}

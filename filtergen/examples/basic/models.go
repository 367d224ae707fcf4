// Package basic 演示 @FieldFilterable 的基本用法
package basic

//go:generate go run github.com/donutnomad/fieldfilter

import "github.com/donutnomad/fieldfilter/filterable"

// Optional 让生成器按单标识符识别可选字段
type Optional[T any] = filterable.Optional[T]

// User 完整的用户记录
type User struct {
	ID       uint32
	Name     string
	Email    string
	Password string
}

// FilteredUser 对外暴露的用户视图
//
// @FieldFilterable
// @field_filterable_on(User)
type FilteredUser struct {
	ID    uint32
	Name  Optional[string]
	Email Optional[string]
}

// ReorderedUser 字段顺序与 FilteredUser 不同，结果相同
//
// @FieldFilterable
// @field_filterable_on(User)
type ReorderedUser struct {
	Email Optional[string]
	ID    uint32
	Name  Optional[string]
}

// Profile 源字段本身就是 Optional
type Profile struct {
	ID     uint32
	Status Optional[string]
}

// FilteredProfile 只解开一层 Optional
//
// @FieldFilterable(key=json)
// @field_filterable_on(Profile)
type FilteredProfile struct {
	ID     uint32                     `json:"id"`
	Status Optional[Optional[string]] `json:"status"`
}

// Package filtergen 为投影结构体生成按字段选择的转换代码。
//
// # 概述
//
// filtergen 处理两个注解：
//   - @FieldFilterable: 触发生成
//   - @field_filterable_on(<TYPE>): 指定源类型，必填
//
// # 基本用法
//
//	type Optional[T any] = filterable.Optional[T]
//
//	type User struct {
//	    ID    uint32
//	    Name  string
//	    Email string
//	}
//
//	// @FieldFilterable
//	// @field_filterable_on(User)
//	type FilteredUser struct {
//	    ID    uint32
//	    Name  Optional[string]
//	    Email Optional[string]
//	}
//
// 运行 fieldfilter 后生成 user_filter.go：
//
//	var _ filterable.Filterable[User, FilteredUser] = FilteredUser{}
//
//	func (_ FilteredUser) FieldFilter(o User, fields filterable.Fields) FilteredUser {
//	    v0 := o.ID
//	    v1 := filterable.SomeIf(fields.Has("Name"), o.Name)
//	    v2 := filterable.SomeIf(fields.Has("Email"), o.Email)
//	    return FilteredUser{
//	        ID:    v0,
//	        Name:  v1,
//	        Email: v2,
//	    }
//	}
//
//	func NewFilteredUser(o User, fields filterable.Fields) FilteredUser
//
// # 字段策略
//
// 声明类型为 Optional[T] 的字段只在字段集合包含其选择键时填充，否则为 None；
// 其它字段总是原样复制。Optional[Optional[T]] 只解开一层：
// 请求时得到 Some(源值)，源值本身可能是 None。
//
// Optional 必须是单个标识符，filterable.Optional[T] 这种带包名的写法不会被识别，
// 请使用泛型别名或点导入。
//
// # 注解参数
//
//	key     (可选) 选择键: field(默认，字段名原样) | json | snake | camel | column(GORM 列名)
//	output  (可选) 输出文件，默认 $FILE_filter.go
//
// # 错误
//
// 以下情况生成失败，且整次运行不写入任何文件：
//   - 投影类型不是结构体、是别名、没有字段、含嵌入字段或带类型参数
//   - 缺少 @field_filterable_on，或其参数不是 Ident / pkg.Ident
//   - 源类型可被解析时，投影字段在源类型中不存在
package filtergen

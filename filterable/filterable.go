// Package filterable 是 fieldfilter 生成代码的运行时支持。
//
// 投影结构体通过注解声明与源结构体的关系：
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
// 运行 fieldfilter 后，FilteredUser 实现 Filterable[User, FilteredUser]：
//
//	u := filterable.Filter[FilteredUser](user, filterable.NewFields("Email"))
//	// u.ID == 1, u.Name 无值, u.Email == Some("allen@example.org")
//
// 非 Optional 字段总是原样复制；Optional[T] 字段仅当字段名在集合中时才填充。
// 生成的函数没有错误返回、没有副作用，可并发调用。
package filterable

// Filterable 由生成代码实现：P 可以通过过滤 S 的实例得到
type Filterable[S any, P any] interface {
	FieldFilter(o S, fields Fields) P
}

// Filter 按字段集合把 o 投影为 P
func Filter[P Filterable[S, P], S any](o S, fields Fields) P {
	var p P
	return p.FieldFilter(o, fields)
}

// FilterAll 对切片逐个投影，共享同一个字段集合
func FilterAll[P Filterable[S, P], S any](items []S, fields Fields) []P {
	if items == nil {
		return nil
	}
	out := make([]P, len(items))
	for i, item := range items {
		out[i] = Filter[P](item, fields)
	}
	return out
}

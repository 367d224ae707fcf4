// Package structparse 提供结构体声明的静态分析。
//
// 只读取语法树，不做类型检查，因此可以在代码尚未生成、包无法编译时使用。
//
//	info, err := structparse.ParseStruct("models/user.go", "User")
//	for _, field := range info.Fields {
//	    fmt.Printf("%s %s %q\n", field.Name, field.Type, field.TagValue("json"))
//	}
//
// 字段按声明顺序展开，嵌入字段标记为 Embedded 且不会被递归展开。
// 导入信息以源码中的引用名为键，配合 ReferencedPackages 可以找出
// 某个字段类型依赖的导入路径。
package structparse

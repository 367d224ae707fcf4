package filterable

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/samber/mo"
)

var jsonNull = []byte("null")

// Optional 表示"有值"或"无值"的包装类型
// 零值即为无值，因此投影结构体中未被选中的字段无需额外赋值
//
// 生成器只识别单标识符形式的 Optional[T]，业务包通常这样引入：
//
//	type Optional[T any] = filterable.Optional[T]
type Optional[T any] struct {
	value T
	valid bool
}

// Some 构造有值的 Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

// None 构造无值的 Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// SomeIf ok 为 true 时返回 Some(v)，否则返回 None
// v 总是会被求值
func SomeIf[T any](ok bool, v T) Optional[T] {
	if ok {
		return Some(v)
	}
	return None[T]()
}

// FromOption 从 mo.Option 转换
func FromOption[T any](opt mo.Option[T]) Optional[T] {
	if v, ok := opt.Get(); ok {
		return Some(v)
	}
	return None[T]()
}

// ToOption 转换为 mo.Option
func (o Optional[T]) ToOption() mo.Option[T] {
	if o.valid {
		return mo.Some(o.value)
	}
	return mo.None[T]()
}

// Get 返回值以及是否有值
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

// IsPresent 是否有值
func (o Optional[T]) IsPresent() bool {
	return o.valid
}

// IsAbsent 是否无值
func (o Optional[T]) IsAbsent() bool {
	return !o.valid
}

// MustGet 返回值，无值时 panic
func (o Optional[T]) MustGet() T {
	if !o.valid {
		panic("filterable: Optional 无值")
	}
	return o.value
}

// OrElse 有值时返回值，否则返回 fallback
func (o Optional[T]) OrElse(fallback T) T {
	if o.valid {
		return o.value
	}
	return fallback
}

// OrEmpty 有值时返回值，否则返回零值
func (o Optional[T]) OrEmpty() T {
	return o.value
}

func (o Optional[T]) String() string {
	if !o.valid {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// MarshalJSON 无值编码为 null，有值编码为内部值
// 字段被置空而不是省略，响应结构保持稳定
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return jsonNull, nil
	}
	return sonic.Marshal(o.value)
}

// UnmarshalJSON null 解码为无值
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

package simple

import "time"

// User 简单的用户结构体
type User struct {
	ID         int64
	Name, Nick string `json:"name"`
	Email      string `json:"email,omitempty"`
	CreatedAt  time.Time
}

// Pair 泛型结构体
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Base 用于嵌入
type Base struct {
	ID int64
}

// Account 含嵌入字段
type Account struct {
	Base
	*time.Location
	Name string
}

// UserID 非结构体
type UserID = int64

// Package ginfields 从 gin 请求中读取字段选择并投影响应。
//
//	r.GET("/users/:id", func(c *gin.Context) {
//	    user := loadUser(c.Param("id"))
//	    c.JSON(http.StatusOK, ginfields.Project[FilteredUser](c, "fields", user))
//	})
//
// GET /users/1?fields=Name,Email 与 GET /users/1?fields=Name&fields=Email 等价。
package ginfields

import (
	"strings"

	"github.com/donutnomad/fieldfilter/filterable"
	"github.com/gin-gonic/gin"
)

// DefaultKey 默认的查询参数名
const DefaultKey = "fields"

// FromQuery 读取查询参数 key 中的字段集合
// 同时支持重复参数和逗号分隔，参数缺失时返回空集合
func FromQuery(c *gin.Context, key string) filterable.Fields {
	if key == "" {
		key = DefaultKey
	}
	fields := filterable.Fields{}
	for _, value := range c.QueryArray(key) {
		for name := range strings.SplitSeq(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				fields.Add(name)
			}
		}
	}
	return fields
}

// Project 按请求中的字段集合投影 o
func Project[P filterable.Filterable[S, P], S any](c *gin.Context, key string, o S) P {
	return filterable.Filter[P](o, FromQuery(c, key))
}

// ProjectAll 按请求中的字段集合投影切片
func ProjectAll[P filterable.Filterable[S, P], S any](c *gin.Context, key string, items []S) []P {
	return filterable.FilterAll[P](items, FromQuery(c, key))
}

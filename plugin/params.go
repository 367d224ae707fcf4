package plugin

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// ParseParamsFromStruct 从结构体的 param tag 解析参数定义
// 支持的 tag 键: name, required, default, description
//
// 示例:
//
//	type FilterParams struct {
//	    Key    string `param:"name=key,required=false,default=field,description=可选字段的选择键: field|json|snake"`
//	    Output string `param:"name=output,required=false,default=,description=输出文件"`
//	}
//
//	params := plugin.ParseParamsFromStruct(FilterParams{})
func ParseParamsFromStruct(v any) []ParamDef {
	if v == nil {
		return nil
	}
	typ := reflect.TypeOf(v)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var params []ParamDef
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		if def := parseParamTag(tag); def.Name != "" {
			params = append(params, def)
		}
	}
	return params
}

// parseParamTag 解析 param tag 字符串
// 格式: name=xxx,required=true,default=xxx,description=xxx
func parseParamTag(tag string) ParamDef {
	var param ParamDef
	for key, value := range splitTag(tag) {
		switch key {
		case "name":
			param.Name = value
		case "required":
			param.Required = cast.ToBool(value)
		case "default":
			param.Default = value
		case "description":
			param.Description = value
		}
	}
	return param
}

// splitTag 分割 tag 字符串为键值对，支持 \ 转义
// 格式: key1=value1,key2=value2,...
func splitTag(tag string) map[string]string {
	result := make(map[string]string)

	var key, value strings.Builder
	inKey := true
	escaped := false

	flush := func() {
		if key.Len() > 0 {
			result[key.String()] = value.String()
		}
		key.Reset()
		value.Reset()
		inKey = true
	}

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
			continue
		case ch == '=' && inKey:
			inKey = false
			continue
		case ch == ',':
			flush()
			continue
		}
		if inKey {
			key.WriteByte(ch)
		} else {
			value.WriteByte(ch)
		}
	}
	flush()

	return result
}

// ParseAnnotationParams 将注解的参数解析到目标结构体中
// target 必须是结构体指针；注解中缺失的参数使用 paramDefs 的默认值，
// 缺失的必填参数返回错误
func ParseAnnotationParams(annotation *Annotation, target any, paramDefs []ParamDef) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("参数目标必须是非 nil 指针, 得到: %T", target)
	}
	val = val.Elem()
	typ := val.Type()
	if typ.Kind() != reflect.Struct {
		return fmt.Errorf("参数目标必须是结构体指针, 得到: %T", target)
	}

	defMap := make(map[string]ParamDef, len(paramDefs))
	for _, def := range paramDefs {
		defMap[def.Name] = def
	}

	for i := 0; i < typ.NumField(); i++ {
		fieldVal := val.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		def := parseParamTag(tag)
		if def.Name == "" {
			continue
		}

		value, ok := annotation.Params[strings.ToLower(def.Name)]
		if !ok || value == "" {
			if d, exists := defMap[def.Name]; exists {
				if d.Required && !ok {
					return fmt.Errorf("@%s: 缺少必填参数 %s", annotation.Name, def.Name)
				}
				value = d.Default
			}
		}

		if err := setFieldValue(fieldVal, value); err != nil {
			return fmt.Errorf("@%s: 参数 %s=%q 无效: %w", annotation.Name, def.Name, value, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值，支持 string, int, uint, bool, float
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := cast.ToInt64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := cast.ToUint64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Bool:
		if value == "" {
			field.SetBool(false)
			return nil
		}
		v, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(v)
	case reflect.Float32, reflect.Float64:
		v, err := cast.ToFloat64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetFloat(v)
	}
	return nil
}

func orZero(value string) string {
	if value == "" {
		return "0"
	}
	return value
}

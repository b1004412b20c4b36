package source

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// JSONFileSource JSON 数组文件数据源。
//
// 文件格式：
//
//	[
//	  {"key": "A", "value": "1"},
//	  {"key": "B", "value": 2}
//	]
//
// 缺少 key (或 key 为空) 的条目被跳过；value 中的标量转为文本，
// null 转为空字符串，对象与数组转为紧凑 JSON 文本。
// 同一文件中后出现的 key 覆盖先出现的。
type JSONFileSource struct {
	Path string
}

// Name 返回数据源名称
func (JSONFileSource) Name() string {
	return "json-file"
}

// Location 返回配置的路径
func (s JSONFileSource) Location() string {
	return s.Path
}

// Load 解析 JSON 数组文件
func (s JSONFileSource) Load() (*Layer, error) {
	if err := statRegular(s.Path); err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	vars, err := parseJSONEntries(data)
	if err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	return &Layer{Vars: vars}, nil
}

// parseJSONEntries 解析 [{"key": ..., "value": ...}] 数组
func parseJSONEntries(data []byte) (Vars, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	vars := make(Vars)
	root.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		key := entry.Get("key")
		if !key.Exists() || key.String() == "" {
			return true
		}
		vars[key.String()] = jsonValueString(entry.Get("value"))
		return true
	})

	return vars, nil
}

// jsonValueString 将 JSON 值转为变量文本
func jsonValueString(value gjson.Result) string {
	switch value.Type {
	case gjson.JSON:
		return string(pretty.Ugly([]byte(value.Raw)))
	case gjson.Null:
		return ""
	default:
		return value.String()
	}
}

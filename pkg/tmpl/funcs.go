package tmpl

import (
	"bytes"
	"encoding/json"
	"iter"
	"maps"
	"slices"
	"strings"
	"text/template"
	"unicode"

	yamlv3 "go.yaml.in/yaml/v3"
)

// ═══════════════════════════════════════════════════════════════════════════
// 数据交换过滤器
// ═══════════════════════════════════════════════════════════════════════════

// ToJSON 将任意值序列化为紧凑 JSON，不转义 HTML 字符，去除末尾空白。
//
// 使用方式：
//   - {{ .list | from_json | to_json }}
//   - {{ tojson .value }}
func ToJSON(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", err
	}

	return strings.TrimRightFunc(buf.String(), unicode.IsSpace), nil
}

// FromJSON 解析 JSON 文本，非法 JSON 会使渲染失败。
func FromJSON(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}

	return value, nil
}

// ToYAML 将任意值序列化为块风格 YAML (2 空格缩进，key 排序)，去除末尾空白。
func ToYAML(value any) (string, error) {
	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	return strings.TrimRightFunc(buf.String(), unicode.IsSpace), nil
}

// FromYAML 解析 YAML 文本，非法 YAML 会使渲染失败。
func FromYAML(text string) (any, error) {
	var value any
	if err := yamlv3.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}

	return value, nil
}

// Environment 按 key 字典序遍历 vars 中以 prefix 开头的变量，
// 产出去掉前缀后的 key 和对应的值。
//
// 每次调用都重新排序，返回的序列可以多次遍历。
//
//	{{ range $key, $value := environment "APP_" }}
//	{{ $key }}={{ $value }}
//	{{ end }}
func Environment(vars map[string]string, prefix string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, key := range slices.Sorted(maps.Keys(vars)) {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if !yield(strings.TrimPrefix(key, prefix), vars[key]) {
				return
			}
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 通用辅助函数 (参考: Taskfile 和 Sprig)
// ═══════════════════════════════════════════════════════════════════════════

// defaultFunc 提供默认值（管道友好）。
//
// 参数顺序与 Sprig 一致：default(默认值, 实际值)
//
//	{{ index . "PORT" | default "8080" }}
func defaultFunc(defaultVal, value any) any {
	if value == nil {
		return defaultVal
	}
	if str, ok := value.(string); ok && str == "" {
		return defaultVal
	}

	return value
}

// coalesceFunc 返回第一个非空值。
//
//	{{ coalesce (env "PRIMARY_URL") (env "BACKUP_URL") "http://localhost" }}
func coalesceFunc(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}

		return v
	}

	return nil
}

// envFunc 返回在合并后的变量中查找的函数，未设置或为空时返回可选的默认值。
// 与 {{ .VAR }} 不同，严格模式下查找不存在的变量不会报错。
//
//	{{ env "VAR" }}
//	{{ env "VAR" "default" }}
func envFunc(vars map[string]string) func(key string, defaultVal ...string) string {
	return func(key string, defaultVal ...string) string {
		if val := vars[key]; val != "" {
			return val
		}
		if len(defaultVal) > 0 {
			return defaultVal[0]
		}

		return ""
	}
}

// environmentFunc 绑定 vars 的 environment 模板函数，prefix 可省略。
func environmentFunc(vars map[string]string) func(prefix ...string) iter.Seq2[string, string] {
	return func(prefix ...string) iter.Seq2[string, string] {
		if len(prefix) == 0 {
			return Environment(vars, "")
		}

		return Environment(vars, prefix[0])
	}
}

// filterFuncs 数据交换过滤器，同时注册下划线与连写两种名称
var filterFuncs = template.FuncMap{
	"to_json":   ToJSON,
	"tojson":    ToJSON,
	"from_json": FromJSON,
	"fromjson":  FromJSON,
	"to_yaml":   ToYAML,
	"toyaml":    ToYAML,
	"from_yaml": FromYAML,
	"fromyaml":  FromYAML,
	"default":   defaultFunc,
	"coalesce":  coalesceFunc,
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "go.yaml.in/yaml/v3"
)

// GenerateExampleYAML 将配置结构体序列化为带注释的 YAML。
//
// 注释来自 desc tag：单行注释放在行尾，多行注释与嵌套结构体的注释放在 key 上方。
//
// 使用示例：
//
//	yaml := config.GenerateExampleYAML(DefaultConfig())
//	os.WriteFile("config/config.example.yaml", yaml, 0644)
func GenerateExampleYAML[T any](cfg T) []byte {
	node := structNode(reflect.ValueOf(cfg))
	node.HeadComment = "配置示例文件, 复制此文件为 config.yaml 并根据需要修改"

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	_ = enc.Encode(node)
	_ = enc.Close()

	return buf.Bytes()
}

func isNested(typ reflect.Type) bool {
	return typ.Kind() == reflect.Struct && typ != reflect.TypeFor[time.Time]()
}

// structNode 将结构体转换为带注释的 mapping 节点
func structNode(val reflect.Value) *yamlv3.Node {
	val = reflect.Indirect(val)
	if !val.IsValid() {
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null"}
	}

	node := &yamlv3.Node{Kind: yamlv3.MappingNode}
	typ := val.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)

		key := field.Tag.Get("koanf")
		if key == "" || key == "-" {
			continue
		}
		desc := field.Tag.Get("desc")
		keyNode := &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key}

		var valNode *yamlv3.Node
		if isNested(field.Type) {
			valNode = structNode(val.Field(i))
			keyNode.HeadComment = desc
		} else {
			valNode = valueNode(val.Field(i))
			if strings.Contains(desc, "\n") {
				keyNode.HeadComment = desc
			} else {
				valNode.LineComment = desc
			}
		}

		node.Content = append(node.Content, keyNode, valNode)
	}

	return node
}

// valueNode 将字段值编码为节点，字符串使用双引号，空集合使用 [] / {} 形式
func valueNode(val reflect.Value) *yamlv3.Node {
	node := &yamlv3.Node{}
	if d, ok := val.Interface().(time.Duration); ok {
		node.SetString(d.String())
		return node
	}

	if err := node.Encode(val.Interface()); err != nil {
		node.SetString(fmt.Sprint(val.Interface()))
		return node
	}

	switch {
	case node.Kind == yamlv3.ScalarNode && node.ShortTag() == "!!str":
		node.Style = yamlv3.DoubleQuotedStyle
	case node.Kind == yamlv3.SequenceNode, node.Kind == yamlv3.MappingNode:
		if len(node.Content) == 0 {
			node.Style = yamlv3.FlowStyle
		}
	}

	return node
}

// ConfigTestHelper 配置测试辅助工具
//
// 使用示例：
//
//	var helper = config.ConfigTestHelper[Config]{
//	    ExamplePath: "config/config.example.yaml",
//	    ConfigPath:  "config/config.yaml",
//	}
//
//	func TestWriteExample(t *testing.T) { helper.WriteExampleFile(t, DefaultConfig()) }
//	func TestConfigKeysValid(t *testing.T) { helper.ValidateKeys(t, DefaultConfig()) }
type ConfigTestHelper[T any] struct {
	ExamplePath string // 示例文件相对路径（相对于 go.mod 所在目录）
	ConfigPath  string // 配置文件相对路径（相对于 go.mod 所在目录）
}

// WriteExampleFile 将示例配置写入文件
func (h *ConfigTestHelper[T]) WriteExampleFile(t *testing.T, defaultConfig T) {
	t.Helper()

	projectRoot, err := FindProjectRoot(1)
	if err != nil {
		t.Fatalf("无法找到项目根目录: %v", err)
	}

	outputPath := filepath.Join(projectRoot, h.ExamplePath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(outputPath, GenerateExampleYAML(defaultConfig), 0600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	t.Logf("✅ 已生成配置示例文件: %s", outputPath)
}

// ValidateKeys 校验配置文件中的键名是否都由配置结构体定义，配置文件不存在时跳过
func (h *ConfigTestHelper[T]) ValidateKeys(t *testing.T, defaultConfig T) {
	t.Helper()

	projectRoot, err := FindProjectRoot(1)
	if err != nil {
		t.Fatalf("无法找到项目根目录: %v", err)
	}

	configPath := filepath.Join(projectRoot, h.ConfigPath)
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Skipf("%s 不存在，跳过验证", h.ConfigPath)
	}

	validKeys, err := exampleKeys(defaultConfig)
	if err != nil {
		t.Fatalf("无法解析示例配置: %v", err)
	}
	configKeys, err := loadConfigKeys(configPath)
	if err != nil {
		t.Fatalf("无法加载 %s: %v", h.ConfigPath, err)
	}

	var invalidKeys []string
	for _, key := range configKeys {
		if !slices.Contains(validKeys, key) {
			invalidKeys = append(invalidKeys, key)
		}
	}

	if len(invalidKeys) > 0 {
		t.Errorf("%s 包含以下无效配置项:\n", h.ConfigPath)
		for _, key := range invalidKeys {
			t.Errorf("  - %s", key)
		}
	}
}

// FindProjectRoot 通过查找 go.mod 文件定位项目根目录。
//
// skip 指定跳过的调用栈层数，0 表示调用者，1 表示调用者的调用者，以此类推。
func FindProjectRoot(skip int) (string, error) {
	_, filename, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "", errors.New("无法获取当前文件路径")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("未找到 go.mod")
		}
		dir = parent
	}
}

// exampleKeys 解析内存中的示例 YAML 并返回所有配置键
func exampleKeys[T any](cfg T) ([]string, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(GenerateExampleYAML(cfg)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("解析示例失败: %w", err)
	}

	return k.Keys(), nil
}

// loadConfigKeys 加载配置文件并返回所有配置键（支持 YAML 和 JSON）
func loadConfigKeys(path string) ([]string, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserForPath(path)); err != nil {
		return nil, fmt.Errorf("加载文件失败: %w", err)
	}

	return k.Keys(), nil
}

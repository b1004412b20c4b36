// Author: lwmacct (https://github.com/lwmacct)
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Option 配置加载选项
type Option func(*options)

type options struct {
	configPaths []string          // 按顺序搜索，找到第一个即停止
	configFile  string            // 显式指定的配置文件，必须存在
	envPrefix   string            // 环境变量前缀
	envBindings map[string]string // 环境变量名 → koanf key
	cmd         *cli.Command
}

// WithConfigPaths 设置配置文件搜索路径，不存在的文件被跳过
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = append(o.configPaths, paths...)
	}
}

// WithConfigFile 显式指定配置文件，文件不存在时 Load 返回错误。
// 设置后不再搜索 WithConfigPaths 中的路径，path 为空时忽略。
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithEnvPrefix 启用环境变量前缀，为每个 koanf key 自动生成绑定：
// 前缀 + 大写 key，"." 和 "-" 转为 "_"。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnvBinding 将环境变量直接绑定到 koanf key，优先级高于前缀绑定
func WithEnvBinding(envName, key string) Option {
	return func(o *options) {
		o.envBindings[envName] = key
	}
}

// WithCommand 使用 CLI flags 覆盖配置，仅用户明确指定的 flag 生效
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// DefaultPaths 返回默认配置文件搜索路径：
// 用户配置目录、用户主目录、系统配置目录。
func DefaultPaths(appName string) []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, appName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+appName+".yaml"))
	}

	return append(paths, "/etc/"+appName+"/config.yaml")
}

// Load 加载配置，按优先级合并 (从低到高)：
//  1. 默认值 - defaultConfig
//  2. 配置文件 - WithConfigFile 或 WithConfigPaths 中第一个存在的文件
//  3. 环境变量(前缀) - WithEnvPrefix
//  4. 环境变量(绑定) - WithEnvBinding
//  5. CLI flags - WithCommand
//
// 泛型参数 T 为配置结构体类型，必须使用 koanf tag 标记字段。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	o := &options{envBindings: map[string]string{}}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if err := loadConfigFile(k, o); err != nil {
		return nil, err
	}

	if o.envPrefix != "" {
		if err := loadEnv(k, prefixBindings(o.envPrefix, k.Keys())); err != nil {
			return nil, err
		}
	}
	if err := loadEnv(k, o.envBindings); err != nil {
		return nil, err
	}

	if o.cmd != nil {
		overrides := map[string]any{}
		collectCLIFlags(o.cmd, reflect.TypeOf(defaultConfig), "", overrides)
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply CLI flags: %w", err)
		}
	}

	var cfg T
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// loadConfigFile 加载显式指定的配置文件，或搜索路径中第一个存在的文件
func loadConfigFile(k *koanf.Koanf, o *options) error {
	if o.configFile != "" {
		if err := k.Load(file.Provider(o.configFile), parserForPath(o.configFile)); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", o.configFile, err)
		}
		slog.Debug("Loaded config from file", "path", o.configFile)
		return nil
	}

	for _, path := range o.configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserForPath(path)); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		slog.Debug("Loaded config from file", "path", path)
		return nil
	}

	slog.Debug("No config file found, using defaults")
	return nil
}

// parserForPath 根据扩展名选择解析器，默认 YAML
func parserForPath(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Parser()
	}

	return yaml.Parser()
}

// prefixBindings 为所有 koanf key 生成 前缀 + 大写 key 的环境变量绑定
func prefixBindings(prefix string, keys []string) map[string]string {
	bindings := make(map[string]string, len(keys))
	for _, key := range keys {
		bindings[envName(prefix, key)] = key
	}

	return bindings
}

// envName 将 koanf key 转为环境变量名，例如 server.skip-verify → PREFIX_SERVER_SKIP_VERIFY
func envName(prefix, key string) string {
	return prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// loadEnv 将已设置的绑定环境变量写入 koanf
func loadEnv(k *koanf.Koanf, bindings map[string]string) error {
	values := map[string]any{}
	for name, key := range bindings {
		if value, ok := os.LookupEnv(name); ok {
			values[key] = value
		}
	}
	if len(values) == 0 {
		return nil
	}

	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	return nil
}

// flagName 将 koanf key 转为 CLI flag 名称 (kebab-case)，例如 server.skip_verify → server-skip-verify
func flagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

// collectCLIFlags 递归遍历结构体字段，收集用户明确指定的 CLI flags
func collectCLIFlags(cmd *cli.Command, typ reflect.Type, prefix string, out map[string]any) {
	for i := range typ.NumField() {
		field := typ.Field(i)

		key := field.Tag.Get("koanf")
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		if field.Type.Kind() == reflect.Struct &&
			field.Type != reflect.TypeFor[time.Duration]() &&
			field.Type != reflect.TypeFor[time.Time]() {
			collectCLIFlags(cmd, field.Type, key, out)
			continue
		}

		name := flagName(key)
		if !cmd.IsSet(name) {
			continue
		}
		if value, ok := flagValue(cmd, name, field.Type); ok {
			out[key] = value
		}
	}
}

// flagValue 根据字段类型读取 CLI flag 的值
func flagValue(cmd *cli.Command, name string, typ reflect.Type) (any, bool) {
	if typ == reflect.TypeFor[time.Duration]() {
		return cmd.Duration(name), true
	}

	switch typ.Kind() {
	case reflect.String:
		return cmd.String(name), true
	case reflect.Bool:
		return cmd.Bool(name), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmd.Int(name), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmd.Uint(name), true
	case reflect.Float32, reflect.Float64:
		return cmd.Float(name), true
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.String {
			return cmd.StringSlice(name), true
		}
	case reflect.Map:
		if typ.Key().Kind() == reflect.String && typ.Elem().Kind() == reflect.String {
			return cmd.StringMap(name), true
		}
	}

	return nil, false
}

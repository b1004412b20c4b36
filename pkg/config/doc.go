// Package config 提供通用的配置加载功能，可被外部项目复用。
//
// # 特性
//
// 使用泛型支持任意配置结构体类型，配置加载优先级 (从低到高)：
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 WithConfigFile 或 WithConfigPaths 选项设置
//  3. 环境变量(前缀) - 通过 WithEnvPrefix 选项启用
//  4. 环境变量(绑定) - 通过 WithEnvBinding 选项设置
//  5. CLI flags - 通过 WithCommand 选项设置，最高优先级
//
// # 快速开始
//
// 定义配置结构体，使用 koanf 和 desc 标签：
//
//	type Config struct {
//	    Name    string        `koanf:"name"    desc:"应用名称"`
//	    Debug   bool          `koanf:"debug"   desc:"调试模式"`
//	    Timeout time.Duration `koanf:"timeout" desc:"超时时间"`
//	}
//
// 加载配置：
//
//	cfg, err := config.Load(Config{Name: "default", Timeout: 30 * time.Second},
//	    config.WithConfigFile(cmd.String("config")),
//	    config.WithConfigPaths(config.DefaultPaths("myapp")...),
//	    config.WithEnvPrefix("MYAPP_"),
//	    config.WithCommand(cmd),
//	)
//
// # 配置文件
//
// 扩展名为 .json 的文件按 JSON 解析，其余按 YAML 解析。
// WithConfigFile 指定的文件必须存在；WithConfigPaths 中不存在的文件被跳过，
// 使用第一个存在的文件。
//
// # 环境变量
//
// 前缀 + 大写的 koanf key，点号 (.) 与连字符 (-) 转为下划线 (_)。
// 示例 (前缀为 "MYAPP_")：
//   - MYAPP_DEBUG → debug
//   - MYAPP_SERVER_URL → server.url
//   - MYAPP_OUTPUT_FILE → output-file
//
// WithEnvBinding 将任意环境变量绑定到指定 key：
//
//	config.WithEnvBinding("REDIS_URL", "redis.url")
//
// # CLI Flag 映射
//
// koanf key 中的 . 与 _ 转为 -，仅用户明确指定的 flag 覆盖配置：
//   - server.url → --server-url
//   - tls.skip_verify → --tls-skip-verify
//
// # 生成配置示例
//
// 使用 [GenerateExampleYAML] 根据配置结构体生成带注释的 YAML 示例，
// [ConfigTestHelper] 在测试中写出示例文件并校验配置文件中的键。
package config

// Package config 提供 temply 的运行配置。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - --config 指定，或默认搜索路径中第一个存在的文件
//  3. 环境变量 - TEMPLY_ 前缀，例如 TEMPLY_ALLOW_MISSING
//  4. CLI flags - 仅用户明确指定的 flag
package config

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261017-go-temply/pkg/config"
	"github.com/lwmacct/261017-go-temply/pkg/source"
	"github.com/lwmacct/261017-go-temply/pkg/tmpl"
)

// EnvPrefix 配置项环境变量前缀
const EnvPrefix = "TEMPLY_"

// Config 渲染配置
type Config struct {
	AllowMissing bool   `koanf:"allow-missing" desc:"允许引用未定义的变量, 替换为空字符串"`
	KeepTemplate bool   `koanf:"keep-template" desc:"渲染完成后保留模板文件"`
	Envdir       string `koanf:"envdir" desc:"变量目录, 每个文件一个变量 (文件名为变量名)"`
	Dotenv       string `koanf:"dotenv" desc:"dotenv 文件, 每行 KEY=VALUE"`
	JSONFile     string `koanf:"json-file" desc:"JSON 文件, 对象数组中的 key 与 value 字段"`
	OutputFile   string `koanf:"output-file" desc:"输出文件, 为空时写入标准输出"`
}

// DefaultConfig 返回默认配置
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{}
}

// Policy 返回未定义变量策略
func (c *Config) Policy() tmpl.Policy {
	if c.AllowMissing {
		return tmpl.PolicyLenient
	}
	return tmpl.PolicyStrict
}

// Sources 返回按固定顺序排列的变量来源
func (c *Config) Sources() []source.Source {
	return source.FromPaths(c.Envdir, c.Dotenv, c.JSONFile)
}

// Load 加载配置，--config 指定的文件必须存在
func Load(cmd *cli.Command, appName string, opts ...config.Option) (*Config, error) {
	return config.Load(
		DefaultConfig(),
		append([]config.Option{
			config.WithCommand(cmd),
			config.WithConfigFile(cmd.String("config")),
			config.WithConfigPaths(config.DefaultPaths(appName)...),
			config.WithEnvPrefix(EnvPrefix),
		}, opts...)...,
	)
}

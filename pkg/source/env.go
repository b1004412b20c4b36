package source

import (
	"os"
	"strings"
)

// EnvSource 进程环境变量数据源，原样返回所有已设置的变量，不会失败。
type EnvSource struct{}

// Name 返回数据源名称
func (EnvSource) Name() string {
	return "env"
}

// Location 进程环境没有路径
func (EnvSource) Location() string {
	return ""
}

// Load 读取 os.Environ()
func (EnvSource) Load() (*Layer, error) {
	environ := os.Environ()
	vars := make(Vars, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		// Windows 下存在 "=C:=C:\" 形式的条目
		if !ok || key == "" {
			continue
		}
		vars[key] = value
	}

	return &Layer{Vars: vars}, nil
}

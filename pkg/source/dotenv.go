package source

import (
	"fmt"
	"os"
	"strings"
)

// DotenvSource dotenv 文件数据源。
//
// 每行一个 KEY=VALUE，仅按第一个 "=" 分割，之后的内容原样保留
// (不支持注释、引号和变量插值)。空行被跳过。
type DotenvSource struct {
	Path string
}

// Name 返回数据源名称
func (DotenvSource) Name() string {
	return "dotenv"
}

// Location 返回配置的路径
func (s DotenvSource) Location() string {
	return s.Path
}

// Load 解析 dotenv 文件
func (s DotenvSource) Load() (*Layer, error) {
	if err := statRegular(s.Path); err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	vars, err := parseDotenv(string(data))
	if err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	return &Layer{Vars: vars}, nil
}

// parseDotenv 解析 dotenv 内容，同一文件内后出现的 key 覆盖先出现的。
func parseDotenv(content string) (Vars, error) {
	vars := make(Vars)
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d has no '=' separator", ErrMalformed, i+1)
		}
		vars[key] = value
	}

	return vars, nil
}

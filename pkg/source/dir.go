package source

import (
	"os"
	"path/filepath"
	"strings"
)

// DirSource envdir 风格的目录数据源。
//
// 目录中每个普通文件对应一个变量，文件名为 key，文件内容为 value：
//   - 去除首尾的空格、制表符和换行
//   - NUL 字节替换为换行符 (多行值的约定编码)
//   - 处理后为空表示删除该变量
//
// 子目录被忽略，指向普通文件的符号链接会被跟随。
type DirSource struct {
	Path string
}

// Name 返回数据源名称
func (DirSource) Name() string {
	return "envdir"
}

// Location 返回配置的路径
func (s DirSource) Location() string {
	return s.Path
}

// Load 读取目录下的全部变量文件
func (s DirSource) Load() (*Layer, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, newSourceError(s, s.Path, err)
	}
	if !info.IsDir() {
		return nil, newSourceError(s, s.Path, ErrNotDirectory)
	}

	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, newSourceError(s, s.Path, err)
	}

	layer := &Layer{Vars: make(Vars, len(entries))}
	for _, entry := range entries {
		path := filepath.Join(s.Path, entry.Name())
		if statRegular(path) != nil {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, newSourceError(s, path, err)
		}

		value := decodeDirValue(string(data))
		if value == "" {
			layer.Unset = append(layer.Unset, entry.Name())
			continue
		}
		layer.Vars[entry.Name()] = value
	}

	return layer, nil
}

// decodeDirValue 按 envdir 约定转换文件内容
func decodeDirValue(raw string) string {
	return strings.ReplaceAll(strings.Trim(raw, " \t\n"), "\x00", "\n")
}

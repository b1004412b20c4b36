package source

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotDirectory 路径不是目录
	ErrNotDirectory = errors.New("must be a directory")
	// ErrNotRegularFile 路径不是普通文件
	ErrNotRegularFile = errors.New("must be a regular file")
	// ErrMalformed 文件内容格式错误
	ErrMalformed = errors.New("malformed content")
	// ErrNotArray JSON 顶层不是数组
	ErrNotArray = errors.New("must be a JSON array")
)

// SourceError 数据源加载错误，携带出错的路径。
type SourceError struct {
	Source string // 数据源名称
	Path   string // 出错的路径
	Err    error  // 底层原因
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source %q: %v", e.Source, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// newSourceError 创建 SourceError
func newSourceError(src Source, path string, err error) *SourceError {
	return &SourceError{Source: src.Name(), Path: path, Err: err}
}

// statRegular 确认 path 指向普通文件（跟随符号链接）。
func statRegular(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return ErrNotRegularFile
	}

	return nil
}

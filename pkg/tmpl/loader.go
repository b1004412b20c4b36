package tmpl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StdinTemplateName 从标准输入读取的模板使用的固定名称
const StdinTemplateName = "stdin_template"

var (
	// ErrIncludeUnsupported 模板来源不支持 include (例如标准输入)
	ErrIncludeUnsupported = errors.New("include is not supported for this template source")
	// ErrIncludeOutsideDir include 路径超出模板所在目录
	ErrIncludeOutsideDir = errors.New("include path must stay inside the template directory")
	// ErrNotRegularFile 模板路径不是普通文件
	ErrNotRegularFile = errors.New("must be a regular file")
)

// LoadError 读取模板失败
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load template %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader 模板来源
type Loader interface {
	// Name 模板名称（用于错误信息）
	Name() string

	// Read 读取主模板内容
	Read() (string, error)

	// Include 读取被 include 的模板内容，name 相对于主模板所在目录
	Include(name string) (string, error)
}

// FileLoader 从文件读取模板，include 相对于文件所在目录解析。
type FileLoader struct {
	path string
}

// NewFileLoader 创建文件模板来源
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Name 返回模板文件名
func (l *FileLoader) Name() string {
	return filepath.Base(l.path)
}

// Path 返回模板文件路径
func (l *FileLoader) Path() string {
	return l.path
}

// Read 读取模板文件
func (l *FileLoader) Read() (string, error) {
	return readRegular(l.path)
}

// Include 读取模板目录下的另一个文件
func (l *FileLoader) Include(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", &LoadError{Path: name, Err: ErrIncludeOutsideDir}
	}

	return readRegular(filepath.Join(filepath.Dir(l.path), name))
}

// ReaderLoader 从 io.Reader (通常是标准输入) 读取模板。
//
// 内容在第一次 Read 时全部读入并缓存，之后的 Read 返回相同内容。
type ReaderLoader struct {
	r    io.Reader
	text *string
}

// NewReaderLoader 创建 Reader 模板来源
func NewReaderLoader(r io.Reader) *ReaderLoader {
	return &ReaderLoader{r: r}
}

// Name 返回固定名称 StdinTemplateName
func (l *ReaderLoader) Name() string {
	return StdinTemplateName
}

// Read 读取全部内容
func (l *ReaderLoader) Read() (string, error) {
	if l.text != nil {
		return *l.text, nil
	}

	data, err := io.ReadAll(l.r)
	if err != nil {
		return "", &LoadError{Path: StdinTemplateName, Err: err}
	}
	text := string(data)
	l.text = &text

	return text, nil
}

// Include 始终返回 ErrIncludeUnsupported
func (l *ReaderLoader) Include(name string) (string, error) {
	return "", &LoadError{Path: name, Err: ErrIncludeUnsupported}
}

// readRegular 读取普通文件
func readRegular(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &LoadError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &LoadError{Path: path, Err: ErrNotRegularFile}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &LoadError{Path: path, Err: err}
	}

	return string(data), nil
}

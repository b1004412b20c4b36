package tmpl

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"text/template"
)

// maxIncludeDepth include 嵌套的最大层数
const maxIncludeDepth = 32

// Policy 未定义变量策略
type Policy int

const (
	// PolicyStrict 引用未定义变量时渲染失败 (默认)
	PolicyStrict Policy = iota
	// PolicyLenient 未定义变量替换为空字符串
	PolicyLenient
)

func (p Policy) String() string {
	if p == PolicyLenient {
		return "lenient"
	}

	return "strict"
}

// option 返回对应的 text/template missingkey 选项
func (p Policy) option() string {
	if p == PolicyLenient {
		return "missingkey=zero"
	}

	return "missingkey=error"
}

// RenderError 模板解析或执行失败，包含引擎的原始错误信息。
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Option Renderer 配置选项
type Option func(*Renderer)

// WithPolicy 设置未定义变量策略
func WithPolicy(policy Policy) Option {
	return func(r *Renderer) {
		r.policy = policy
	}
}

// WithFuncs 追加模板函数，不能覆盖内置函数
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		maps.Copy(r.funcs, funcs)
	}
}

// Renderer 模板渲染器
type Renderer struct {
	loader Loader
	policy Policy
	funcs  template.FuncMap
}

// New 创建渲染器，默认使用严格策略。
func New(loader Loader, opts ...Option) *Renderer {
	r := &Renderer{
		loader: loader,
		policy: PolicyStrict,
		funcs:  template.FuncMap{},
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Policy 返回未定义变量策略
func (r *Renderer) Policy() Policy {
	return r.policy
}

// Render 使用 vars 渲染模板。
//
// 读取模板失败返回 *LoadError；解析或执行失败 (严格模式下的未定义变量、
// 过滤器错误等) 返回 *RenderError。失败时不返回任何输出。
func (r *Renderer) Render(vars map[string]string) (string, error) {
	text, err := r.loader.Read()
	if err != nil {
		return "", err
	}

	name := r.loader.Name()
	exec := &execution{renderer: r, vars: vars}
	out, err := exec.render(name, text, vars)
	if err != nil {
		return "", &RenderError{Template: name, Err: err}
	}

	return out, nil
}

// execution 单次渲染的状态
type execution struct {
	renderer *Renderer
	vars     map[string]string
	depth    int
}

// render 解析并执行一段模板文本
func (e *execution) render(name, text string, data any) (string, error) {
	t, err := template.New(name).
		Option(e.renderer.policy.option()).
		Funcs(e.funcMap()).
		Parse(trimBlocks(text))
	if err != nil {
		return "", err
	}
	if e.renderer.policy == PolicyLenient {
		applyLenient(t)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// funcMap 组装模板函数：用户函数在前，内置函数覆盖同名项
func (e *execution) funcMap() template.FuncMap {
	funcs := make(template.FuncMap, len(e.renderer.funcs)+len(filterFuncs)+4)
	maps.Copy(funcs, e.renderer.funcs)
	maps.Copy(funcs, filterFuncs)
	funcs["env"] = envFunc(e.vars)
	funcs["environment"] = environmentFunc(e.vars)
	funcs["include"] = e.include
	if e.renderer.policy == PolicyLenient {
		funcs[lenientFunc] = lenientValue
	}

	return funcs
}

// include 渲染模板目录下的另一个文件
//
//	{{ include "partials/header.tpl" . }}
func (e *execution) include(name string, data any) (string, error) {
	if e.depth >= maxIncludeDepth {
		return "", errors.New("include nested too deeply")
	}

	text, err := e.renderer.loader.Include(name)
	if err != nil {
		return "", err
	}

	e.depth++
	defer func() { e.depth-- }()

	return e.render(name, text, data)
}

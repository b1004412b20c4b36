package source

import "log/slog"

// Resolver 按顺序合并多个数据源
type Resolver struct {
	sources []Source
}

// NewResolver 创建 Resolver，sources 的顺序即优先级 (从低到高)。
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve 依次加载每个数据源并合并为一个映射。
//
// 每个数据源只加载一次；遇到第一个错误立即返回，不返回部分结果。
func (r *Resolver) Resolve() (Vars, error) {
	vars := make(Vars)
	for _, src := range r.sources {
		layer, err := src.Load()
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}

		slog.Debug("Loaded variables",
			"source", src.Name(),
			"path", src.Location(),
			"set", len(layer.Vars),
			"unset", len(layer.Unset),
		)
		vars.Apply(layer)
	}

	return vars, nil
}

// Merge 是 NewResolver(sources...).Resolve() 的简写
func Merge(sources ...Source) (Vars, error) {
	return NewResolver(sources...).Resolve()
}

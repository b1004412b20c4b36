package source

import "maps"

// Vars 变量映射，key 唯一，后写入者覆盖。
type Vars map[string]string

// Apply 将一个数据源的加载结果合并进当前映射：
// 先写入 layer.Vars (覆盖同名 key)，再删除 layer.Unset 中的 key。
// 删除不存在的 key 不会报错。
func (v Vars) Apply(layer *Layer) {
	if layer == nil {
		return
	}
	maps.Copy(v, layer.Vars)
	for _, key := range layer.Unset {
		delete(v, key)
	}
}

// Layer 单个数据源的加载结果
type Layer struct {
	Vars  Vars     // 需要设置的变量
	Unset []string // 需要删除的变量 (仅 DirSource 产生)
}

// Source 变量数据源接口
//
// 每个实现只持有自己的配置 (路径)，加载之间不共享状态。
type Source interface {
	// Name 数据源名称（用于日志和错误信息）
	Name() string

	// Location 数据源的位置 (文件或目录路径)，没有时为空
	Location() string

	// Load 加载变量，失败时返回 *SourceError 且不返回部分结果
	Load() (*Layer, error)
}

// FromPaths 按固定顺序构建数据源列表：
// 环境变量 (始终存在) → envdir → dotenv → JSON 文件。
// 路径为空的数据源被跳过。
func FromPaths(envdir, dotenv, jsonFile string) []Source {
	sources := []Source{EnvSource{}}
	if envdir != "" {
		sources = append(sources, DirSource{Path: envdir})
	}
	if dotenv != "" {
		sources = append(sources, DotenvSource{Path: dotenv})
	}
	if jsonFile != "" {
		sources = append(sources, JSONFileSource{Path: jsonFile})
	}

	return sources
}

// Package source 提供模板变量的数据源与合并功能。
//
// 变量来源按固定顺序合并 (从低到高)：
//  1. 进程环境变量 - [EnvSource]
//  2. envdir 目录 - [DirSource]，每个文件一个变量
//  3. dotenv 文件 - [DotenvSource]，每行 KEY=VALUE
//  4. JSON 文件 - [JSONFileSource]，[{"key": ..., "value": ...}] 数组
//
// 后加载的数据源覆盖先加载的同名变量。[DirSource] 中内容为空的文件表示
// 删除该变量 (tombstone)，即使前面的数据源已经定义过它。
//
// # 快速开始
//
//	vars, err := source.Merge(source.FromPaths("/etc/app/env", ".env", "")...)
//	if err != nil {
//	    return err
//	}
//
// 任一数据源加载失败时立即返回 [*SourceError]，不会返回部分结果。
package source

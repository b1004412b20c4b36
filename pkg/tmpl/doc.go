// Package tmpl 提供模板渲染管线。
//
// 使用 Go text/template 引擎，合并后的变量映射作为模板数据，
// 通过 {{ .VAR }} 访问 (Taskfile 风格)。
//
// # 模板来源
//
//   - [NewFileLoader]: 从文件读取，include 相对于文件所在目录
//   - [NewReaderLoader]: 从标准输入读取，名称固定为 stdin_template，不支持 include
//
// # 未定义变量策略
//
//   - [PolicyStrict] (默认): 引用未定义变量时返回 [*RenderError]
//   - [PolicyLenient]: 替换为空字符串，from_json/from_yaml 结果中缺失的 key 与 null 同样输出为空
//
// 严格模式下可以使用 {{ env "VAR" "default" }} 或 {{ index . "VAR" }} 访问可选变量。
//
// # 空白规则
//
// 控制动作 (if/else/end/range/with/define/block/template/break/continue)、
// 变量声明与赋值 ({{ $x := .a }}、{{ $x = 1 }}) 以及注释吞掉紧随其后的换行，
// 行首到这些动作之间的空白被删除。独占一行的 include 动作同样处理，
// 被 include 的文本自带的换行保留。模板末尾的换行保留。
//
// # 支持的函数
//
//   - to_json / tojson, from_json / fromjson
//   - to_yaml / toyaml, from_yaml / fromyaml
//   - environment: {{ range $k, $v := environment "APP_" }}...{{ end }}
//   - include: {{ include "partial.tpl" . }}
//   - env, default, coalesce
package tmpl

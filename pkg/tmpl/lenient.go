package tmpl

import (
	"text/template"
	"text/template/parse"
)

// lenientFunc 宽松模式下附加在每个输出动作末尾的函数名
const lenientFunc = "lenient_value"

// lenientValue 将 nil 替换为空字符串。
//
// missingkey=zero 对 map[string]any (如 from_json 的结果) 返回 nil 接口，
// text/template 会将其打印为 "<no value>"。
func lenientValue(v any) any {
	if v == nil {
		return ""
	}

	return v
}

// applyLenient 为模板集合中所有输出动作追加 lenient_value 命令，
// 声明或赋值变量的动作不输出，保持不变。
func applyLenient(t *template.Template) {
	for _, tt := range t.Templates() {
		if tt.Tree != nil && tt.Tree.Root != nil {
			lenientList(tt.Tree, tt.Tree.Root)
		}
	}
}

func lenientList(tree *parse.Tree, list *parse.ListNode) {
	if list == nil {
		return
	}

	for _, node := range list.Nodes {
		switch n := node.(type) {
		case *parse.ActionNode:
			if n.Pipe != nil && len(n.Pipe.Decl) == 0 {
				ident := parse.NewIdentifier(lenientFunc).SetTree(tree).SetPos(n.Pos)
				n.Pipe.Cmds = append(n.Pipe.Cmds, &parse.CommandNode{
					NodeType: parse.NodeCommand,
					Pos:      n.Pos,
					Args:     []parse.Node{ident},
				})
			}
		case *parse.IfNode:
			lenientList(tree, n.List)
			lenientList(tree, n.ElseList)
		case *parse.RangeNode:
			lenientList(tree, n.List)
			lenientList(tree, n.ElseList)
		case *parse.WithNode:
			lenientList(tree, n.List)
			lenientList(tree, n.ElseList)
		case *parse.ListNode:
			lenientList(tree, n)
		}
	}
}

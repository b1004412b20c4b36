package tmpl

import (
	"regexp"
	"strings"
)

const (
	leftDelim  = "{{"
	rightDelim = "}}"
)

// controlKeywords 触发空白规则的控制动作
var controlKeywords = map[string]bool{
	"if":       true,
	"else":     true,
	"end":      true,
	"range":    true,
	"with":     true,
	"define":   true,
	"block":    true,
	"template": true,
	"break":    true,
	"continue": true,
}

// declPattern 变量声明或赋值动作，如 {{ $x := .a }}、{{ $x = 1 }}
var declPattern = regexp.MustCompile(`^\$\w*\s*(?:,\s*\$\w*\s*)?:?=`)

// trimBlocks 对模板文本应用空白规则：
//   - 控制动作、变量声明/赋值与注释吞掉紧随其后的一个换行
//   - 这些动作所在行行首到动作之间的空格和制表符被删除
//   - include 动作独占一行时同样处理
//   - 其他文本 (包括末尾换行) 原样保留
//
// 无法识别的动作 (例如未闭合) 原样保留，交给模板解析器报错。
func trimBlocks(text string) string {
	buf := make([]byte, 0, len(text))

	i := 0
	for i < len(text) {
		offset := strings.Index(text[i:], leftDelim)
		if offset < 0 {
			break
		}
		start := i + offset

		end, ok := actionEnd(text, start)
		if !ok {
			break
		}

		buf = append(buf, text[i:start]...)
		action := text[start:end]
		trim := isControlAction(action)
		if !trim && actionWord(action) == "include" {
			trim = standsAlone(text, start, end)
		}
		if !trim {
			buf = append(buf, action...)
			i = end
			continue
		}

		// 行首空白
		if blank := leadingBlank(text, start); blank > 0 {
			buf = buf[:len(buf)-blank]
		}
		buf = append(buf, action...)

		// 紧随的换行
		switch {
		case strings.HasPrefix(text[end:], "\r\n"):
			end += 2
		case strings.HasPrefix(text[end:], "\n"):
			end++
		}
		i = end
	}
	buf = append(buf, text[i:]...)

	return string(buf)
}

// leadingBlank 若 start 之前到行首只有空格或制表符，返回其长度，否则返回 0。
func leadingBlank(text string, start int) int {
	p := start
	for p > 0 && (text[p-1] == ' ' || text[p-1] == '\t') {
		p--
	}
	if p > 0 && text[p-1] != '\n' {
		return 0
	}

	return start - p
}

// standsAlone 动作前只有行首空白，且其后紧跟换行或文本结束
func standsAlone(text string, start, end int) bool {
	if p := start - leadingBlank(text, start); p > 0 && text[p-1] != '\n' {
		return false
	}
	rest := text[end:]

	return rest == "" || strings.HasPrefix(rest, "\n") || strings.HasPrefix(rest, "\r\n")
}

// actionEnd 返回从 start 开始的动作结束位置 (右定界符之后)。
// 动作内的字符串、原始字符串和字符常量中的 "}}" 不视为结束。
func actionEnd(text string, start int) (int, bool) {
	pos := start + len(leftDelim)

	// 注释 {{/* ... */}} 或 {{- /* ... */ -}}
	inner := strings.TrimLeft(strings.TrimPrefix(text[pos:], "-"), " \t\r\n")
	if strings.HasPrefix(inner, "/*") {
		closing := strings.Index(text[pos:], "*/")
		if closing < 0 {
			return 0, false
		}
		rest := pos + closing + 2
		right := strings.Index(text[rest:], rightDelim)
		if right < 0 {
			return 0, false
		}
		return rest + right + len(rightDelim), true
	}

	for pos < len(text) {
		switch c := text[pos]; c {
		case '"', '\'':
			pos = skipQuoted(text, pos, c)
		case '`':
			closing := strings.IndexByte(text[pos+1:], '`')
			if closing < 0 {
				return 0, false
			}
			pos += closing + 2
		default:
			if strings.HasPrefix(text[pos:], rightDelim) {
				return pos + len(rightDelim), true
			}
			pos++
		}
	}

	return 0, false
}

// skipQuoted 跳过以 quote 开头、支持反斜杠转义的字符串，返回其后的位置。
func skipQuoted(text string, pos int, quote byte) int {
	pos++
	for pos < len(text) {
		switch text[pos] {
		case '\\':
			pos += 2
		case quote:
			return pos + 1
		case '\n':
			return pos
		default:
			pos++
		}
	}

	return pos
}

// actionBody 去掉定界符、左侧裁剪标记 (必须跟空白) 与前导空白后的动作内容
func actionBody(action string) string {
	inner := action[len(leftDelim) : len(action)-len(rightDelim)]
	if len(inner) > 1 && inner[0] == '-' && strings.ContainsRune(" \t\r\n", rune(inner[1])) {
		inner = inner[1:]
	}

	return strings.TrimLeft(inner, " \t\r\n")
}

// actionWord 返回动作开头的标识符
func actionWord(action string) string {
	inner := actionBody(action)
	isIdent := func(r rune) bool {
		return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
	}
	if idx := strings.IndexFunc(inner, func(r rune) bool { return !isIdent(r) }); idx >= 0 {
		return inner[:idx]
	}

	return inner
}

// isControlAction 判断动作是否为控制动作、变量声明/赋值或注释
func isControlAction(action string) bool {
	inner := actionBody(action)
	if strings.HasPrefix(inner, "/*") || declPattern.MatchString(inner) {
		return true
	}

	return controlKeywords[actionWord(action)]
}

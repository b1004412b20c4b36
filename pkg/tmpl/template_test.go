package tmpl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261017-go-temply/pkg/tmpl"
)

// renderString 使用 ReaderLoader 渲染模板文本
func renderString(text string, vars map[string]string, opts ...tmpl.Option) (string, error) {
	return tmpl.New(tmpl.NewReaderLoader(strings.NewReader(text)), opts...).Render(vars)
}

func TestRender_Variables(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		policy   tmpl.Policy
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Hello {{ .name }} !",
			vars:     map[string]string{"name": "world"},
			want:     "Hello world !",
		},
		{
			name:     "lenient substitutes empty",
			template: "Hello {{ .name }} !",
			vars:     map[string]string{},
			policy:   tmpl.PolicyLenient,
			want:     "Hello  !",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
		{
			name:     "trailing newline preserved",
			template: "{{ .a }}\n",
			vars:     map[string]string{"a": "1"},
			want:     "1\n",
		},
		{
			name:     "optional variable via env in strict mode",
			template: `{{ env "MISSING" "fallback" }}/{{ env "a" }}`,
			vars:     map[string]string{"a": "1"},
			want:     "fallback/1",
		},
		{
			name:     "optional variable via index in strict mode",
			template: `{{ index . "MISSING" | default "default" }}`,
			want:     "default",
		},
		{
			name:     "coalesce",
			template: `{{ coalesce .primary .backup "none" }}`,
			vars:     map[string]string{"primary": "", "backup": "b"},
			want:     "b",
		},
		{
			name:     "lenient renders missing parsed keys empty",
			template: "[{{ (from_json .doc).missing }}][{{ (from_yaml .doc).x }}][{{ (from_json .null).x }}]",
			vars:     map[string]string{"doc": `{"x": 1}`, "null": `{"x": null}`},
			policy:   tmpl.PolicyLenient,
			want:     "[][1][]",
		},
		{
			name:     "lenient keeps declarations silent",
			template: "{{ $v := (from_json .doc).missing }}[{{ $v }}]{{ range $i, $e := (from_json .list) }}<{{ $e.name }}>{{ end }}",
			vars:     map[string]string{"doc": `{}`, "list": `[{"name": "a"}, {}]`},
			policy:   tmpl.PolicyLenient,
			want:     "[]<a><>",
		},
		{
			name:     "lenient never raises on missing variables",
			template: "{{ if .missing }}yes{{ else }}no{{ end }}{{ .other }}",
			policy:   tmpl.PolicyLenient,
			want:     "no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderString(tt.template, tt.vars, tmpl.WithPolicy(tt.policy))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_StrictUndefined(t *testing.T) {
	got, err := renderString("Hello {{ .name }} !", map[string]string{})
	require.Error(t, err)
	assert.Empty(t, got, "no partial output on failure")

	var renderErr *tmpl.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, tmpl.StdinTemplateName, renderErr.Template)
	assert.Contains(t, err.Error(), `map has no entry for key "name"`)
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		errMsg   string
	}{
		{
			name:     "invalid json",
			template: "{{ .value | from_json }}",
			vars:     map[string]string{"value": "{not json"},
			errMsg:   "error calling from_json",
		},
		{
			name:     "invalid yaml",
			template: "{{ .value | from_yaml }}",
			vars:     map[string]string{"value": "a: [b"},
			errMsg:   "error calling from_yaml",
		},
		{
			name:     "unclosed action",
			template: "{{ .value",
			errMsg:   "unclosed action",
		},
		{
			name:     "undefined function",
			template: "{{ name }}",
			errMsg:   `function "name" not defined`,
		},
		{
			name:     "include from stdin",
			template: `{{ include "other.tpl" . }}`,
			errMsg:   "include is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderString(tt.template, tt.vars)
			require.Error(t, err)

			var renderErr *tmpl.RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRender_Whitespace(t *testing.T) {
	vars := map[string]string{"MY_FOO": "foo", "MY_BAR": "bar", "OTHER": "x", "enabled": "1"}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "block tags consume their newline",
			template: "{{ if .enabled }}\nyes\n{{ end }}\n",
			want:     "yes\n",
		},
		{
			name:     "environment listing",
			template: "{{ range $key, $value := environment \"MY_\" }}\n{{ $key }} = {{ $value }}\n{{ end }}\n",
			want:     "BAR = bar\nFOO = foo\n",
		},
		{
			name:     "indented block tags",
			template: "list:\n  {{ range $key, $value := environment \"MY_\" }}\n  - {{ $key }}\n  {{ end }}\ndone\n",
			want:     "list:\n  - BAR\n  - FOO\ndone\n",
		},
		{
			name:     "comments",
			template: "a\n  {{/* note */}}\nb\n",
			want:     "a\nb\n",
		},
		{
			name:     "variable declarations consume their newline",
			template: "{{ $x := .MY_FOO }}\nvalue={{ $x }}\n",
			want:     "value=foo\n",
		},
		{
			name:     "expressions keep their newline",
			template: "{{ .MY_FOO }}\n{{ .MY_BAR }}\n",
			want:     "foo\nbar\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderString(tt.template, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Filters(t *testing.T) {
	vars := map[string]string{
		"json_var": "[]",
		"object":   `{"b":"<y>","a":1}`,
		"doc":      "name: temply\ntags: [a, b]\n",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "json round trip", template: "{{ .json_var | from_json | to_json }}", want: "[]"},
		{name: "json aliases", template: "{{ tojson (fromjson .json_var) }}", want: "[]"},
		{name: "json keeps html characters", template: "{{ .object | from_json | to_json }}", want: `{"a":1,"b":"<y>"}`},
		{name: "yaml to json", template: "{{ .doc | from_yaml | to_json }}", want: `{"name":"temply","tags":["a","b"]}`},
		{name: "yaml aliases", template: `{{ (fromyaml .doc).name }}`, want: "temply"},
		{name: "json to yaml", template: `{{ .object | from_json | to_yaml }}`, want: "a: 1\nb: <y>"},
		{name: "yaml alias encode", template: `{{ toyaml "plain" }}`, want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderString(tt.template, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	renderer := tmpl.New(tmpl.NewReaderLoader(strings.NewReader("{{ range $k, $v := environment }}{{ $k }}={{ $v }};{{ end }}")))
	vars := map[string]string{"B": "2", "A": "1", "C": "3"}

	first, err := renderer.Render(vars)
	require.NoError(t, err)
	second, err := renderer.Render(vars)
	require.NoError(t, err)

	assert.Equal(t, "A=1;B=2;C=3;", first)
	assert.Equal(t, first, second)
}

func TestRender_WithFuncs(t *testing.T) {
	got, err := renderString(`{{ upper .name }} {{ to_json .name }}`,
		map[string]string{"name": "x"},
		tmpl.WithFuncs(template.FuncMap{
			"upper":   strings.ToUpper,
			"to_json": func(any) string { return "overridden" },
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, `X "x"`, got, "built-in functions cannot be replaced")
}

// =============================================================================
// FileLoader
// =============================================================================

func TestFileLoader_Include(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "partials"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partials", "greeting.tpl"), []byte("Hello {{ .name }}"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tpl"), []byte(`{{ include "partials/greeting.tpl" . }} !`+"\n"), 0600))

	loader := tmpl.NewFileLoader(filepath.Join(dir, "main.tpl"))
	assert.Equal(t, "main.tpl", loader.Name())

	got, err := tmpl.New(loader).Render(map[string]string{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world !\n", got)

	// 被 include 的模板同样遵循严格策略
	_, err = tmpl.New(loader).Render(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `map has no entry for key "name"`)
}

func TestFileLoader_IncludeOwnLine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.tpl"), []byte("Hello world: {{ .a }}\n"), 0600))
	path := filepath.Join(dir, "main.tpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ include "part.tpl" . }}`+"\nend\n"), 0600))

	got, err := tmpl.New(tmpl.NewFileLoader(path)).Render(map[string]string{"a": "1"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world: 1\nend\n", got, "the included text keeps its own newline")
}

func TestFileLoader_IncludeOutsideDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ include "../secret" . }}`), 0600))

	_, err := tmpl.New(tmpl.NewFileLoader(path)).Render(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must stay inside the template directory")
}

func TestFileLoader_IncludeRecursion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loop.tpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ include "loop.tpl" . }}`), 0600))

	_, err := tmpl.New(tmpl.NewFileLoader(path)).Render(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested too deeply")
}

func TestFileLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing", path: filepath.Join(dir, "missing.tpl"), wantErr: os.ErrNotExist},
		{name: "directory", path: dir, wantErr: tmpl.ErrNotRegularFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tmpl.New(tmpl.NewFileLoader(tt.path)).Render(nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var loadErr *tmpl.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.path, loadErr.Path)
		})
	}
}

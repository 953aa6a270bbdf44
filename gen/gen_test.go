// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package gen_test

import (
	"strings"
	"testing"

	"akhil.cc/exodown/ast"
	"akhil.cc/exodown/gen"
	"akhil.cc/exodown/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	d := parser.MustParse(strings.NewReader("intro\n# A\n.. note:: x\n  k: v\n"))
	v := gen.Value(d)
	assert.Equal(t, "document", v["type"])
	assert.NotContains(t, v, "meta")
	require.Len(t, v["preamble"], 1)
	children := v["children"].([]any)
	require.Len(t, children, 1)

	h := children[0].(map[string]any)
	assert.Equal(t, "heading", h["type"])
	assert.Equal(t, 1, h["level"])
	assert.Equal(t, []any{map[string]any{"type": "raw_text", "text": "A"}}, h["label"])

	dir := h["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "directive_block", dir["type"])
	assert.Equal(t, "note", dir["directiveType"])
	assert.Equal(t, "x", dir["directive"])
	assert.Equal(t, []string{"x"}, dir["args"])
	assert.Equal(t, map[string]string{"k": "v"}, dir["options"])
	assert.Equal(t, []any{map[string]any{"type": "directive_option", "option": "k", "value": "v"}}, dir["children"])
}

func TestValueArgs(t *testing.T) {
	v := gen.Value(&ast.Directive{DirectiveType: "run", Directive: `sh -c "echo hi"`})
	assert.Equal(t, []string{"sh", "-c", "echo hi"}, v["args"])

	for _, data := range []string{"", `"open`} {
		v = gen.Value(&ast.Directive{DirectiveType: "run", Directive: data})
		assert.NotContains(t, v, "args", data)
	}
}

func TestValueDefault(t *testing.T) {
	v := gen.Value(&ast.Default{Element: "figure", Attrs: map[string]string{"src": "a.png"}})
	assert.Equal(t, map[string]any{
		"type":     "default_node",
		"element":  "figure",
		"attrs":    map[string]string{"src": "a.png"},
		"children": []any{},
	}, v)
}

func TestValueLeaves(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "blank_line"}, gen.Value(&ast.BlankLine{}))
	assert.Equal(t, map[string]any{"type": "paragraph", "children": []any{}}, gen.Value(&ast.Paragraph{Children: []ast.Node{}}))
	assert.Equal(t, map[string]any{"type": "latex", "display": true, "text": "x"}, gen.Value(&ast.Latex{Display: true, Text: "x"}))
}

func TestElementValue(t *testing.T) {
	el, err := parser.ParseFlat(strings.NewReader("# A\n"))
	require.NoError(t, err)
	v := gen.ElementValue(el)
	assert.Equal(t, "document", v["element"])
	h := v["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "heading", h["element"])
	assert.Equal(t, map[string]string{"level": "1"}, h["attrs"])
	assert.Equal(t, []any{"A"}, h["children"])
	assert.Equal(t, "1:1", h["pos"])
}

func TestPlain(t *testing.T) {
	in := map[string]any{
		"a": map[any]any{1: "x", "k": []any{map[any]any{true: 2}}},
	}
	want := map[string]any{
		"a": map[string]any{"1": "x", "k": []any{map[string]any{"true": 2}}},
	}
	assert.Equal(t, want, gen.Plain(in))
	assert.Equal(t, "s", gen.Plain("s"))
}

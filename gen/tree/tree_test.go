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

package tree_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"akhil.cc/exodown/ast"
	"akhil.cc/exodown/gen/tree"
	"akhil.cc/exodown/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var genSmall = []struct {
	in   string
	want string
}{
	{"", `{"type":"document","preamble":[],"children":[]}` + "\n"},
	{"hi\n", `{"type":"document","preamble":[{"children":[{"text":"hi","type":"raw_text"}],"type":"paragraph"}],"children":[]}` + "\n"},
	{"# A\n## B\n", `{"type":"document","preamble":[],"children":[{"children":[{"children":[],"label":[{"text":"B","type":"raw_text"}],"level":2,"type":"heading"}],"label":[{"text":"A","type":"raw_text"}],"level":1,"type":"heading"}]}` + "\n"},
	{"```go\nx\n```\n", `{"type":"document","preamble":[{"content":"x","format":"go","type":"raw_block"}],"children":[]}` + "\n"},
}

func TestJSON(t *testing.T) {
	for i, test := range genSmall {
		d := parser.MustParse(strings.NewReader(test.in))
		out, err := tree.Gen(d).Output()
		if err != nil {
			t.Errorf("case %d, in %q: %v", i, test.in, err)
			continue
		}
		if got := string(out); got != test.want {
			t.Errorf("case %d, in %q,\nwant %s,\ngot %s", i, test.in, test.want, got)
		}
	}
}

func TestJSONMeta(t *testing.T) {
	d := parser.MustParse(strings.NewReader("---\ntitle: T\n---\n"), parser.WithFrontMatter())
	out, err := tree.Gen(d).Output()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `{"type":"document","meta":{"title":"T"},`), string(out))
}

func TestYAML(t *testing.T) {
	d := parser.MustParse(strings.NewReader("intro\n# A\ntext\n"))
	g := tree.Gen(d)
	g.Format = tree.YAML
	out, err := g.Output()
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, yaml.Unmarshal(out, &v))
	assert.Equal(t, "document", v["type"])
	assert.Len(t, v["preamble"], 1)
	h := v["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "heading", h["type"])
	assert.Equal(t, 1, h["level"])
}

func TestWarnings(t *testing.T) {
	d := &ast.Document{Preamble: []ast.Node{&ast.Default{Element: "figure"}}}
	var stdout, stderr bytes.Buffer
	g := tree.Gen(d)
	g.Stdout = &stdout
	g.Stderr = &stderr
	require.NoError(t, g.Run())
	assert.Contains(t, stderr.String(), `"level":"warn"`)
	assert.Contains(t, stderr.String(), `"element":"figure"`)
	assert.Contains(t, stdout.String(), `"type":"default_node"`)
}

func TestSharedOutput(t *testing.T) {
	d := &ast.Document{Preamble: []ast.Node{&ast.Default{Element: "x"}}}
	var buf bytes.Buffer
	g := tree.Gen(d)
	g.Stdout = &buf
	g.Stderr = &buf
	require.NoError(t, g.Run())
	assert.Contains(t, buf.String(), "opaque element in output")
	assert.Contains(t, buf.String(), `"type":"document"`)
}

func TestCancelled(t *testing.T) {
	d := parser.MustParse(strings.NewReader("# A\n# B\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, f := range []tree.Format{tree.JSON, tree.YAML} {
		g := tree.GenContext(ctx, d)
		g.Format = f
		_, err := g.Output()
		assert.ErrorIs(t, err, context.Canceled, string(f))
	}
}

func TestStdoutPipe(t *testing.T) {
	d := parser.MustParse(strings.NewReader("# A\n"))
	g := tree.Gen(d)
	r, err := g.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, g.Start())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, g.Wait())
	assert.Contains(t, string(out), `"level":1`)
}

func TestLifecycle(t *testing.T) {
	d := &ast.Document{}
	g := tree.Gen(d)
	assert.EqualError(t, g.Wait(), "not started")
	require.NoError(t, g.Start())
	assert.EqualError(t, g.Start(), "already started")
	require.NoError(t, g.Wait())

	g = tree.Gen(d)
	g.Stdout = io.Discard
	_, err := g.Output()
	assert.EqualError(t, err, "Stdout already set")
	_, err = g.StdoutPipe()
	assert.EqualError(t, err, "Stdout already set")

	g = tree.Gen(d)
	g.Format = "xml"
	assert.EqualError(t, g.Run(), `unknown output format "xml"`)

	assert.Panics(t, func() { tree.GenContext(nil, d) })
}

func TestParseFormat(t *testing.T) {
	f, err := tree.ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, tree.YAML, f)
	_, err = tree.ParseFormat("toml")
	assert.Error(t, err)
}

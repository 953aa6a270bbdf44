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

package assemble

import (
	"math/rand"
	"testing"

	"akhil.cc/exodown/ast"
	"github.com/sanity-io/litter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func h(level int) *ast.Heading { return &ast.Heading{Level: level} }

func p() *ast.Paragraph { return &ast.Paragraph{} }

func TestTier(t *testing.T) {
	for level, want := range map[int]int{1: 1, 6: 6, 7: AnyLevel, 8: AnyLevel, 100: AnyLevel} {
		assert.Equal(t, want, Tier(level), "level %d", level)
	}
}

func TestDocument(t *testing.T) {
	pre, h1, body, h2, more := p(), h(1), p(), h(2), p()
	d := &ast.Document{}
	Document(d, []ast.Node{pre, h1, body, h2, more})
	assert.Equal(t, []ast.Node{pre}, d.Preamble)
	assert.Equal(t, []ast.Node{h1}, d.Children)
	assert.Equal(t, []ast.Node{body, h2}, h1.Children)
	assert.Equal(t, []ast.Node{more}, h2.Children)
}

func TestEqualLevelsAreSiblings(t *testing.T) {
	a, b, c := h(2), h(2), h(1)
	d := &ast.Document{}
	Document(d, []ast.Node{a, b, c})
	assert.Equal(t, []ast.Node{a, b, c}, d.Children)
	assert.Empty(t, a.Children)
	assert.Empty(t, b.Children)
}

func TestAnyLevelTier(t *testing.T) {
	a, x, y, z := h(6), h(7), h(12), h(8)
	d := &ast.Document{}
	Document(d, []ast.Node{a, x, y, z})
	assert.Equal(t, []ast.Node{x, y, z}, a.Children)
}

func TestBlock(t *testing.T) {
	inner, body := h(1), p()
	b := &ast.Block{Name: "aside"}
	Block(b, []ast.Node{p(), inner, body})
	require.Len(t, b.Children, 2)
	assert.Same(t, inner, b.Children[1])
	assert.Equal(t, []ast.Node{body}, inner.Children)

	// A block nests locally and is content to the heading around it.
	outer := h(2)
	d := &ast.Document{}
	Document(d, []ast.Node{outer, b, h(2)})
	assert.Equal(t, []ast.Node{b}, outer.Children)
	assert.Len(t, d.Children, 2)
}

// check verifies that every heading directly below a heading has a
// strictly greater tier, and returns the number of nodes under n.
func check(t *testing.T, n ast.Node) int {
	t.Helper()
	count := 0
	for _, c := range ast.Children(n) {
		if ph, ok := n.(*ast.Heading); ok {
			if ch, ok := c.(*ast.Heading); ok && Tier(ch.Level) <= Tier(ph.Level) {
				t.Errorf("level %d heading nested under level %d", ch.Level, ph.Level)
			}
		}
		count += 1 + check(t, c)
	}
	return count
}

func TestNestingInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		var nodes []ast.Node
		for j := r.Intn(30); j > 0; j-- {
			if r.Intn(3) == 0 {
				nodes = append(nodes, p())
			} else {
				nodes = append(nodes, h(1+r.Intn(9)))
			}
		}
		d := &ast.Document{}
		Document(d, nodes)
		if got := check(t, d); got != len(nodes) {
			t.Fatalf("case %d: %d nodes in, %d in tree\n%s", i, len(nodes), got, litter.Sdump(d))
		}
		for _, n := range d.Preamble {
			if _, ok := n.(*ast.Heading); ok {
				t.Fatalf("case %d: heading in preamble", i)
			}
		}
		// Source order is preserved by a pre-order walk.
		var order []ast.Node
		ast.Walk(d, func(n ast.Node) error {
			if n != ast.Node(d) {
				order = append(order, n)
			}
			return nil
		})
		for k := range nodes {
			if order[k] != nodes[k] {
				t.Fatalf("case %d: node %d out of order", i, k)
			}
		}
	}
}

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

// Package assemble nests a flat sequence of loaded nodes by heading level.
//
// The assembler keeps an explicit stack of open sections. The bottom frame
// is the root (a document or an explicit block) at level 0. Content that is
// not a heading goes to the frame on top. A heading closes every open
// section whose level is not lower than its own, then opens a new one.
// A section is attached to the frame below it when it is closed, so every
// node has exactly one owner at all times and children stay in source order.
package assemble // import "akhil.cc/exodown/assemble"

import "akhil.cc/exodown/ast"

// AnyLevel is the depth tier shared by all headings of level 7 and above.
const AnyLevel = 7

// Tier returns the depth used to compare a heading of the given level.
func Tier(level int) int {
	if level > AnyLevel {
		return AnyLevel
	}
	return level
}

type frame struct {
	level int
	node  ast.Node
}

// Document nests nodes into d. Content before the first heading becomes
// the preamble; top-level headings become the document's children.
func Document(d *ast.Document, nodes []ast.Node) {
	run(d, nodes)
}

// Block nests nodes into b. Headings inside a block are nested relative to
// the block and never escape it.
func Block(b *ast.Block, nodes []ast.Node) {
	run(b, nodes)
}

func run(root ast.Node, nodes []ast.Node) {
	stack := []frame{{0, root}}
	pop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		place(stack[len(stack)-1].node, top.node)
	}
	for _, n := range nodes {
		h, ok := n.(*ast.Heading)
		if !ok {
			place(stack[len(stack)-1].node, n)
			continue
		}
		lvl := Tier(h.Level)
		for len(stack) > 1 && stack[len(stack)-1].level >= lvl {
			pop()
		}
		stack = append(stack, frame{lvl, h})
	}
	for len(stack) > 1 {
		pop()
	}
}

// place appends n to the frame node parent.
func place(parent, n ast.Node) {
	switch t := parent.(type) {
	case *ast.Document:
		if _, ok := n.(*ast.Heading); ok {
			t.Children = append(t.Children, n)
		} else {
			t.Preamble = append(t.Preamble, n)
		}
	case *ast.Heading:
		t.Children = append(t.Children, n)
	case *ast.Block:
		t.Children = append(t.Children, n)
	}
}

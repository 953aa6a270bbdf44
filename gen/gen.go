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

// Package gen converts exodown trees into plain values for encoders.
//
// Every node becomes a map carrying its variant tag under "type" and its
// fields under the names listed below. Consumers dispatch on "type" and
// must accept "default_node" for elements they do not know.
//
// 	document          meta, preamble, children
// 	heading           level, label, children
// 	directive_block   directiveType, directive, args, options, children
// 	directive_option  option, value
// 	raw_text          text
// 	raw_block         format, content
// 	code              content
// 	list_item         depth, marker, ordered, children
// 	comment, latex    text, block / display
// 	internal_link     predicate, object, view
// 	explicit_block    name, children
// 	default_node      element, attrs, children
package gen // import "akhil.cc/exodown/gen"

import (
	"fmt"

	"akhil.cc/exodown/ast"
)

// Value returns the plain representation of n.
func Value(n ast.Node) map[string]any {
	v := map[string]any{"type": n.Type()}
	switch t := n.(type) {
	case *ast.Document:
		if len(t.Meta) > 0 {
			v["meta"] = Plain(t.Meta)
		}
		v["preamble"] = Values(t.Preamble)
		v["children"] = Values(t.Children)
	case *ast.Heading:
		v["level"] = t.Level
		v["label"] = Values(t.Label)
		v["children"] = Values(t.Children)
	case *ast.Directive:
		v["directiveType"] = t.DirectiveType
		v["directive"] = t.Directive
		v["options"] = t.Options
		if args, err := t.Args(); err == nil {
			v["args"] = args
		}
		v["children"] = Values(t.Children)
	case *ast.DirectiveOption:
		v["option"] = t.Option
		v["value"] = t.Value
	case *ast.Text:
		v["text"] = t.Value
	case *ast.InternalLink:
		v["predicate"] = t.Predicate
		v["object"] = t.Object
		v["view"] = t.View
	case *ast.Code:
		v["content"] = t.Content
	case *ast.RawBlock:
		v["format"] = t.Format
		v["content"] = t.Content
	case *ast.ListItem:
		v["depth"] = t.Depth
		v["marker"] = t.Marker
		v["ordered"] = t.Ordered
		v["children"] = Values(t.Children)
	case *ast.Comment:
		v["block"] = t.Block
		v["text"] = t.Text
	case *ast.Latex:
		v["display"] = t.Display
		v["text"] = t.Text
	case *ast.Block:
		v["name"] = t.Name
		v["children"] = Values(t.Children)
	case *ast.Default:
		v["element"] = t.Element
		if len(t.Attrs) > 0 {
			v["attrs"] = t.Attrs
		}
		v["children"] = Values(t.Children)
	default:
		if kids := ast.Children(n); kids != nil {
			v["children"] = Values(kids)
		}
	}
	return v
}

// Values maps Value over nodes. It never returns nil.
func Values(nodes []ast.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Value(n))
	}
	return out
}

// ElementValue returns the plain representation of a flat parse element.
// Literal children are kept as strings.
func ElementValue(e *ast.Element) map[string]any {
	v := map[string]any{"element": e.Tag}
	if len(e.Attrs) > 0 {
		v["attrs"] = e.Attrs
	}
	v["pos"] = e.Pos.String()
	kids := make([]any, 0, len(e.Children))
	for _, c := range e.Children {
		switch t := c.(type) {
		case *ast.Element:
			kids = append(kids, ElementValue(t))
		case ast.Literal:
			kids = append(kids, string(t))
		}
	}
	v["children"] = kids
	return v
}

// Plain rewrites the maps decoded from front matter so that every key is a
// string.
func Plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = Plain(x)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[fmt.Sprint(k)] = Plain(x)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = Plain(x)
		}
		return s
	}
	return v
}

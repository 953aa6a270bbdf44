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

// Package load turns flat parse elements into typed ast nodes.
//
// The set of known tags is closed: every tag the parser emits has a case
// below. Any other tag loads as an *ast.Default that keeps the element's
// tag, attributes and loaded children, so that elements from a newer
// grammar survive a round trip through an older loader.
package load // import "akhil.cc/exodown/load"

import (
	"strconv"

	"akhil.cc/exodown/assemble"
	"akhil.cc/exodown/ast"
	"github.com/rs/zerolog"
)

// Loader loads elements. The zero value is ready to use and logs nothing.
type Loader struct {
	Log zerolog.Logger
}

var std Loader

// Node loads e with a silent Loader.
func Node(e *ast.Element) ast.Node {
	return std.Node(e)
}

// Document loads e with a silent Loader.
func Document(e *ast.Element) *ast.Document {
	return std.Document(e)
}

// Document loads the children of e and nests them by heading level.
func (l *Loader) Document(e *ast.Element) *ast.Document {
	d := &ast.Document{}
	assemble.Document(d, l.children(e))
	return d
}

// Node loads e and, bottom-up, all of its children.
func (l *Loader) Node(e *ast.Element) ast.Node {
	switch e.Tag {
	case ast.TypeDocument:
		return l.Document(e)
	case ast.TypeHeading:
		level, err := strconv.Atoi(e.Attr("level"))
		if err != nil || level < 1 {
			level = 1
		}
		return &ast.Heading{Level: level, Label: l.children(e)}
	case ast.TypeParagraph:
		return &ast.Paragraph{Children: l.children(e)}
	case ast.TypeText:
		return &ast.Text{Value: e.Text()}
	case ast.TypeBlankLine:
		return &ast.BlankLine{}
	case ast.TypeDirective:
		kids := l.children(e)
		return &ast.Directive{
			DirectiveType: e.Attr("directive_type"),
			Directive:     e.Attr("directive"),
			Options:       Options(kids),
			Children:      kids,
		}
	case ast.TypeDirectiveOption:
		return &ast.DirectiveOption{Option: e.Attr("option"), Value: e.Attr("value")}
	case ast.TypeInternalLink:
		return &ast.InternalLink{
			Predicate: e.Attr("predicate"),
			Object:    e.Attr("object"),
			View:      e.Attr("view"),
		}
	case ast.TypeEmphasis:
		return &ast.Emphasis{Children: l.children(e)}
	case ast.TypeStrong:
		return &ast.Strong{Children: l.children(e)}
	case ast.TypeLineBreak:
		return &ast.LineBreak{}
	case ast.TypeCode:
		return &ast.Code{Content: e.Text()}
	case ast.TypeRawBlock:
		return &ast.RawBlock{Format: e.Attr("format"), Content: e.Text()}
	case ast.TypeList:
		return &ast.List{Items: l.children(e)}
	case ast.TypeListItem:
		depth, _ := strconv.Atoi(e.Attr("depth"))
		ordered, _ := strconv.ParseBool(e.Attr("ordered"))
		return &ast.ListItem{
			Depth:    depth,
			Marker:   e.Attr("marker"),
			Ordered:  ordered,
			Children: l.children(e),
		}
	case ast.TypeComment:
		return &ast.Comment{Block: e.Attr("style") == "block", Text: e.Text()}
	case ast.TypeLatex:
		display, _ := strconv.ParseBool(e.Attr("display"))
		return &ast.Latex{Display: display, Text: e.Text()}
	case ast.TypeHorizontalRule:
		return &ast.HorizontalRule{}
	case ast.TypeBlock:
		b := &ast.Block{Name: e.Attr("name")}
		assemble.Block(b, l.children(e))
		return b
	}
	l.Log.Debug().
		Str("element", e.Tag).
		Str("pos", e.Pos.String()).
		Msg("unknown element, loading as default node")
	return &ast.Default{Element: e.Tag, Attrs: e.Attrs, Children: l.children(e)}
}

// children loads the children of e in order. Literals become text nodes.
func (l *Loader) children(e *ast.Element) []ast.Node {
	if len(e.Children) == 0 {
		return nil
	}
	out := make([]ast.Node, 0, len(e.Children))
	for _, c := range e.Children {
		switch t := c.(type) {
		case *ast.Element:
			out = append(out, l.Node(t))
		case ast.Literal:
			out = append(out, &ast.Text{Value: string(t)})
		}
	}
	return out
}

// Options collects the directive options among children into a map.
// Other nodes are ignored. A repeated key keeps the value of its last
// occurrence.
func Options(children []ast.Node) map[string]string {
	opts := make(map[string]string)
	for _, c := range children {
		if o, ok := c.(*ast.DirectiveOption); ok {
			opts[o.Option] = o.Value
		}
	}
	return opts
}

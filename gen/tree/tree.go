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

// Package tree writes an exodown document tree as JSON or YAML.
//
// JSON output is streamed one top-level node at a time. A generator built
// with GenContext stops between nodes once its context is done, leaving the
// output truncated. Elements the loader did not recognise are reported as
// warnings on the generator's standard error.
package tree // import "akhil.cc/exodown/gen/tree"

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"akhil.cc/exodown/ast"
	"akhil.cc/exodown/gen"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding written by a Generator.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case JSON, YAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

type syncWriter struct {
	m sync.Mutex
	w io.Writer
}

func (s *syncWriter) Write(p []byte) (n int, err error) {
	s.m.Lock()
	defer s.m.Unlock()
	n, err = s.w.Write(p)
	return
}

type stickyCountWriter struct {
	n   int64
	err error
	w   io.Writer
}

func (c *stickyCountWriter) Write(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err = c.w.Write(p)
	c.err = err
	c.n += int64(n)
	return
}

// Generator represents a non-reusable output generator for an *ast.Document.
type Generator struct {
	// Stdout and Stderr specify the generator's standard output and standard error.
	//
	// The encoded tree is written to standard out. Warnings are written to
	// standard error as log lines.
	//
	// If Stdout == Stderr, at most one goroutine at a time will call Write.
	Stdout io.Writer
	Stderr io.Writer
	// Format defaults to JSON.
	Format Format

	ctx      context.Context
	doc      *ast.Document
	waitdone chan error

	m     sync.Mutex
	pipes []io.Closer
}

// Gen returns the Generator to encode the given document.
func Gen(doc *ast.Document) *Generator {
	return &Generator{ctx: context.TODO(), doc: doc}
}

// GenContext is like Gen but includes a context.
//
// The provided context is used to halt generation after encoding a
// top-level node.
func GenContext(ctx context.Context, doc *ast.Document) *Generator {
	if ctx == nil {
		panic("nil context")
	}
	return &Generator{ctx: ctx, doc: doc}
}

// Start starts the generator but does not wait for it to complete.
func (g *Generator) Start() error {
	if g.waitdone != nil {
		return fmt.Errorf("already started")
	}
	if g.Format == "" {
		g.Format = JSON
	}
	if _, err := ParseFormat(string(g.Format)); err != nil {
		return err
	}
	if g.Stdout == nil {
		g.Stdout = io.Discard
	}
	if g.Stderr == nil {
		g.Stderr = io.Discard
	}
	if g.Stdout == g.Stderr {
		g.Stdout = &syncWriter{w: g.Stdout}
		g.Stderr = g.Stdout
	}
	g.waitdone = make(chan error, 1)
	go func() {
		err := g.gen()
		g.m.Lock()
		for _, p := range g.pipes {
			p.Close()
		}
		g.pipes = nil
		g.m.Unlock()
		g.waitdone <- err
	}()
	return nil
}

// Wait waits for the generator to complete and finish writing to
// Stdout and Stderr. It is an error to call Wait before Start
// has been called.
func (g *Generator) Wait() error {
	if g.waitdone == nil {
		return fmt.Errorf("not started")
	}
	err := <-g.waitdone
	close(g.waitdone)
	return err
}

// Run starts the generator and waits for it to complete, returning
// any errors encountered.
func (g *Generator) Run() error {
	if err := g.Start(); err != nil {
		return err
	}
	return g.Wait()
}

// StdoutPipe returns a pipe that is connected to the generator's
// standard output. The pipe is closed once generation ends, so callers
// read it to EOF before calling Wait.
func (g *Generator) StdoutPipe() (io.Reader, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	pr, pw := io.Pipe()
	g.Stdout = pw
	g.pipes = append(g.pipes, pw)
	return pr, nil
}

// Output runs the generator and returns its standard output.
func (g *Generator) Output() ([]byte, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	var stdout bytes.Buffer
	g.Stdout = &stdout
	err := g.Run()
	return stdout.Bytes(), err
}

func (g *Generator) gen() error {
	cw := &stickyCountWriter{0, nil, g.Stdout}
	g.warn()
	if g.Format == YAML {
		return g.yaml(cw)
	}
	return g.json(cw)
}

// warn logs every opaque node in the document.
func (g *Generator) warn() {
	log := zerolog.New(g.Stderr)
	ast.Walk(g.doc, func(n ast.Node) error {
		if d, ok := n.(*ast.Default); ok {
			log.Warn().Str("element", d.Element).Msg("opaque element in output")
		}
		return nil
	})
}

func (g *Generator) yaml(cw *stickyCountWriter) error {
	if err := g.ctx.Err(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(cw)
	enc.SetIndent(2)
	if err := enc.Encode(gen.Value(g.doc)); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return cw.err
}

func (g *Generator) json(cw *stickyCountWriter) error {
	io.WriteString(cw, `{"type":"document"`)
	if len(g.doc.Meta) > 0 {
		b, err := json.Marshal(gen.Plain(g.doc.Meta))
		if err != nil {
			return err
		}
		io.WriteString(cw, `,"meta":`)
		cw.Write(b)
	}
	if err := g.jsonList(cw, "preamble", g.doc.Preamble); err != nil {
		return err
	}
	if err := g.jsonList(cw, "children", g.doc.Children); err != nil {
		return err
	}
	io.WriteString(cw, "}\n")
	return cw.err
}

func (g *Generator) jsonList(cw *stickyCountWriter, key string, nodes []ast.Node) error {
	fmt.Fprintf(cw, `,%q:[`, key)
	for i, n := range nodes {
		select {
		case <-g.ctx.Done():
			return g.ctx.Err()
		default:
		}
		b, err := json.Marshal(gen.Value(n))
		if err != nil {
			return err
		}
		if i > 0 {
			io.WriteString(cw, ",")
		}
		cw.Write(b)
	}
	io.WriteString(cw, "]")
	return cw.err
}

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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"akhil.cc/exodown/ast"
	"akhil.cc/exodown/gen"
	"akhil.cc/exodown/gen/tree"
	"akhil.cc/exodown/internal/config"
	"akhil.cc/exodown/parser"
	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

// session carries what every command needs once flags are parsed.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	name   string
	src    []byte
	out    io.WriteCloser
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, name: "<stdin>"}
	in := io.Reader(os.Stdin)
	if len(args) != 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in, s.name = f, args[0]
	}
	if s.src, err = io.ReadAll(in); err != nil {
		return nil, err
	}
	s.out = nopCloser{os.Stdout}
	if cfg.Output != "" {
		if s.out, err = os.Create(cfg.Output); err != nil {
			return nil, err
		}
	}
	s.ctx, s.cancel = context.Background(), func() {}
	if cfg.Timeout > 0 {
		s.ctx, s.cancel = context.WithTimeout(s.ctx, cfg.Timeout)
	}
	log.Debug().Str("input", s.name).Int("bytes", len(s.src)).Msg("read source")
	return s, nil
}

func (s *session) Close() error {
	s.cancel()
	return s.out.Close()
}

func (s *session) options() []parser.Option {
	opts := []parser.Option{parser.WithFilename(s.name), parser.WithLogger(s.log)}
	if s.cfg.FrontMatter {
		opts = append(opts, parser.WithFrontMatter())
	}
	return opts
}

func (s *session) parse() (*ast.Document, error) {
	return parser.ParseContext(s.ctx, bytes.NewReader(s.src), s.options()...)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// command wraps run with session setup and the command's error prefix.
func command(run func(*cobra.Command, *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, args)
		if err != nil {
			return errors.Wrap(err, cmd.Name())
		}
		defer s.Close()
		if err := run(cmd, s); err != nil {
			return errors.Wrap(err, cmd.Name())
		}
		return nil
	}
}

func genCmd(f tree.Format) *cobra.Command {
	upper := strings.ToUpper(string(f))
	return &cobra.Command{
		Use:   string(f) + " [input] [-o output]",
		Short: "Write the document tree as " + upper,
		Long: `This command parses the source into a document tree and writes it as ` + upper + `.
Every node carries its variant under "type". Content before the first
heading is listed under "preamble"; headings nest by level under "children".`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: command(func(cmd *cobra.Command, s *session) error {
			doc, err := s.parse()
			if err != nil {
				return err
			}
			g := tree.GenContext(s.ctx, doc)
			g.Format = f
			g.Stdout = s.out
			g.Stderr = os.Stderr
			return g.Run()
		}),
	}
}

func flatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flat [input] [-o output]",
		Short: "Print the flat element sequence as JSON",
		Long: `This command prints the elements produced by the grammar before they
are loaded and nested by heading level, with their source positions.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: command(func(cmd *cobra.Command, s *session) error {
			el, err := parser.ParseFlatContext(s.ctx, bytes.NewReader(s.src), s.options()...)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(s.out)
			enc.SetIndent("", "  ")
			return enc.Encode(gen.ElementValue(el))
		}),
	}
}

func dumpCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:                   "dump [input] [-o output] [--plain]",
		Short:                 "Print the document tree as Go values",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: command(func(cmd *cobra.Command, s *session) error {
			doc, err := s.parse()
			if err != nil {
				return err
			}
			if plain {
				_, err = io.WriteString(s.out, litter.Sdump(doc)+"\n")
				return err
			}
			_, err = pp.Fprintln(s.out, doc)
			return err
		}),
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print without colors")
	return cmd
}

func statCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "stat [input] [-o output]",
		Short:                 "Print statistics about a source file",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: command(func(cmd *cobra.Command, s *session) error {
			doc, err := s.parse()
			if err != nil {
				return err
			}
			st := collect(doc)
			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "source\t%s\t%s\n", s.name, humanize.Bytes(uint64(len(s.src))))
			fmt.Fprintf(tw, "nodes\t%s\t\n", humanize.Comma(int64(st.total)))
			for _, typ := range st.types() {
				fmt.Fprintf(tw, "%s\t%s\t\n", typ, humanize.Comma(int64(st.byType[typ])))
			}
			for lvl := 1; lvl <= len(st.levels); lvl++ {
				if n := st.levels[lvl-1]; n > 0 {
					fmt.Fprintf(tw, "h%d\t%s\t\n", lvl, humanize.Comma(int64(n)))
				}
			}
			for _, pred := range sortedKeys(st.links) {
				fmt.Fprintf(tw, "links %s\t%s\t\n", pred, humanize.Comma(int64(st.links[pred])))
			}
			fmt.Fprintf(tw, "max depth\t%d\t\n", st.depth)
			return tw.Flush()
		}),
	}
}

type stats struct {
	total  int
	byType map[string]int
	levels []int
	links  map[string]int
	depth  int
}

func (st *stats) types() []string {
	return sortedKeys(st.byType)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func collect(doc *ast.Document) *stats {
	st := &stats{byType: make(map[string]int), links: make(map[string]int)}
	ast.WalkBreadthFirst(doc, func(n ast.Node) error {
		st.total++
		st.byType[n.Type()]++
		return nil
	})
	for _, h := range ast.Collect[*ast.Heading](doc) {
		for len(st.levels) < h.Level {
			st.levels = append(st.levels, 0)
		}
		st.levels[h.Level-1]++
	}
	for _, l := range ast.Links(doc) {
		st.links[l.Predicate]++
	}
	// Children are visited first, so a heading's subsections already
	// carry their depth when the heading is reached.
	depth := make(map[ast.Node]int)
	ast.WalkBottomUp(doc, func(n ast.Node) error {
		d := 0
		for _, c := range ast.Children(n) {
			if depth[c] > d {
				d = depth[c]
			}
		}
		if _, ok := n.(*ast.Heading); ok {
			d++
		}
		depth[n] = d
		return nil
	})
	st.depth = depth[doc]
	return st
}

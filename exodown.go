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

// This CLI utility parses an exodown source file and writes its document
// tree in the format selected by the command.
//
// Usage:
//   exodown [command]
//
// Available Commands:
//   dump        Print the document tree as Go values
//   flat        Print the flat element sequence as JSON
//   help        Help about any command
//   json        Write the document tree as JSON
//   stat        Print statistics about a source file
//   yaml        Write the document tree as YAML
//
// Flags:
//       --config         path of the configuration file
//       --front-matter   split YAML front matter off the source
//   -h, --help           help for exodown
//       --log-level      minimum level of log messages
//   -o, --output         name of the output file
//   -t, --timeout        timeout used to halt parsing and output generation
//
// Use "exodown [command] --help" for more information about a command.
package main

import (
	"os"

	"akhil.cc/exodown/gen/tree"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "exodown",
		Short: "document trees for exodown source files",
		Long: `This CLI utility parses an exodown source file and writes its
document tree in the format selected by the command.

If no input file is specified, input is read from
standard input. Similarly, if no output argument is
specified, output is written to standard output.`,
		SilenceUsage: true,
	}
	// pflag includes the argument type when it unquotes its usage.
	// To prevent this behavior we prefix the usage with backquotes ``.
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "``path of the configuration file")
	pf.String("log-level", "warn", "``minimum level of log messages")
	pf.Bool("front-matter", false, "split YAML front matter off the source")
	pf.StringP("output", "o", "", "``name of the output file")
	pf.DurationP("timeout", "t", 0, "``timeout used to halt parsing and output generation")

	rootCmd.AddCommand(
		genCmd(tree.JSON),
		genCmd(tree.YAML),
		flatCmd(),
		dumpCmd(),
		statCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

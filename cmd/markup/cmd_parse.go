package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/markup/dom"
	"github.com/dhamidi/markup/format"
	"github.com/dhamidi/markup/parser"
)

var log = commonlog.GetLogger("markup.cli")

func newParseCmd(c *cli) *cobra.Command {
	var outputFormat string
	var includePositions bool
	var preserveWhitespace bool
	var maxDepth int
	var all bool
	var color bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a markup document and print its tree",
		Long: `Parse a markup document and print the resulting tree.

Without a file, or with "-", the document is read from stdin.
By default a single node is parsed and trailing input is ignored;
use --all to parse every top-level node.

Output formats: ` + strings.Join(format.Names(), ", ") + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("format") {
				outputFormat = c.cfg.Output.Format
			}
			opts := format.Options{Color: c.cfg.Output.Color, Indent: c.cfg.Output.Indent}
			if flags.Changed("color") {
				opts.Color = color
			}
			enc, err := format.NewEncoder(outputFormat, cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}

			parseOpts := append(c.cfg.ParserOptions(), parser.WithFile(name))
			if includePositions {
				parseOpts = append(parseOpts, parser.WithPositions())
			}
			if preserveWhitespace {
				parseOpts = append(parseOpts, parser.WithPreserveWhitespace())
			}
			if flags.Changed("max-depth") {
				parseOpts = append(parseOpts, parser.WithMaxDepth(maxDepth))
			}

			p := parser.New(string(data), parseOpts...)
			var nodes []dom.Node
			if all {
				nodes, err = p.ParseAll()
			} else {
				var node dom.Node
				node, err = p.Parse()
				nodes = []dom.Node{node}
			}
			if err != nil {
				return err
			}
			if rest := strings.TrimSpace(p.Remaining()); rest != "" {
				log.Noticef("%s: ignoring input after %s", name, p.Position())
			}

			if err := enc.Encode(nodes...); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Names(), ", ")+")")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "record source positions on every node")
	cmd.Flags().BoolVar(&preserveWhitespace, "preserve-whitespace", false, "keep whitespace-only text inside elements")
	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum element nesting, 0 for unlimited")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "parse every top-level node")
	cmd.Flags().BoolVar(&color, "color", false, "colorize tree output")

	return cmd
}

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/markup/format"
	"github.com/dhamidi/markup/parser"
)

func newFmtCmd(c *cli) *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file|-]",
		Short: "Rewrite a markup document in canonical form",
		Long: `Parse a markup document and write it back out.

Attribute values are double-quoted unless they contain a double quote,
self-closing elements are written as <tag/>, and whitespace that only
separates tags is dropped.

Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fmtOverwrite && (len(args) == 0 || args[0] == "-") {
				return fmt.Errorf("-w requires a file argument")
			}
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			opts := append(c.cfg.ParserOptions(), parser.WithFile(name))
			nodes, err := parser.ParseAll(string(data), opts...)
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := format.NewMarkupEncoder(&out).Encode(nodes...); err != nil {
				return fmt.Errorf("format: %w", err)
			}
			out.WriteByte('\n')

			if fmtOverwrite {
				return os.WriteFile(name, out.Bytes(), 0644)
			}
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")

	return cmd
}

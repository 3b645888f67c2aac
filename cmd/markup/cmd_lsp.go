package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/markup/lsp"
)

func newLSPCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version,
				lsp.WithWorkspaceScan(),
				lsp.WithCodebaseOptions(c.codebaseOptions()...),
			)
			return server.RunStdio()
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/markup/codebase"
	"github.com/dhamidi/markup/config"
)

const version = "0.1.0"

// cli carries the state shared by all subcommands once the root command
// has loaded the configuration.
type cli struct {
	configPath string
	verbose    int
	cfg        *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:          "markup",
		Short:        "Parse, format and check markup documents",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(c.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.ConfigureLogging(c.verbose)
			c.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $"+config.EnvVar+" or ./markup.toml)")
	rootCmd.PersistentFlags().CountVarP(&c.verbose, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newParseCmd(c))
	rootCmd.AddCommand(newFmtCmd(c))
	rootCmd.AddCommand(newCheckCmd(c))
	rootCmd.AddCommand(newLSPCmd(c))
	rootCmd.AddCommand(newUICmd(c))

	return rootCmd
}

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) (name string, data []byte, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", data, nil
	}
	data, err = os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("read file: %w", err)
	}
	return args[0], data, nil
}

func (c *cli) codebaseOptions() []codebase.Option {
	return []codebase.Option{
		codebase.WithExtensions(c.cfg.Workspace.Extensions...),
		codebase.WithParserOptions(c.cfg.ParserOptions()...),
	}
}

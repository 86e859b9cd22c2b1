package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/philipp01105/fastlogging/logging"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration files",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigConvertCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Validate a configuration file and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := logging.LoadConfig(args[0])
			if err != nil {
				return err
			}
			data, err := logging.EncodeConfig(cfg, "."+format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json, xml")

	return cmd
}

func newConfigConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a configuration file to the format of the output extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := logging.LoadConfig(args[0])
			if err != nil {
				return err
			}
			data, err := logging.EncodeConfig(cfg, filepath.Ext(args[1]))
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to: %s\n", args[1])
			return nil
		},
	}
}

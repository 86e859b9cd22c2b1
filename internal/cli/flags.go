package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// GlobalFlags holds flags shared by all commands
type GlobalFlags struct {
	Verbose bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log connection and rotation events to stderr")
}

// diagnostics returns the logger for the engine's own messages
func diagnostics() (*zap.Logger, error) {
	if !globalFlags.Verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

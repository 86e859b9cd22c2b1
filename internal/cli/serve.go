package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/logging"
	"github.com/philipp01105/fastlogging/netproto"
	"github.com/philipp01105/fastlogging/writer/consolewriter"
	"github.com/philipp01105/fastlogging/writer/filewriter"
	"github.com/philipp01105/fastlogging/writer/serverwriter"
)

// ServeFlags holds serve command flags
type ServeFlags struct {
	Config     string
	Listen     string
	Encryption string
	Key        string
	File       string
	Level      string
	Console    bool
}

var serveFlags ServeFlags

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive records from client writers",
		Long: `Start a server writer and route everything it receives to the configured
writers. Either pass a configuration file with --config or describe a simple
setup with --listen and --file.`,
		RunE: runServe,
	}

	cmd.Flags().StringVarP(&serveFlags.Config, "config", "c", "", "configuration file (.yaml, .yml, .json or .xml)")
	cmd.Flags().StringVarP(&serveFlags.Listen, "listen", "l", "127.0.0.1:12999", "address to listen on when no config is given")
	cmd.Flags().StringVarP(&serveFlags.Encryption, "encryption", "e", "none", "encryption method: none, authkey, aes")
	cmd.Flags().StringVarP(&serveFlags.Key, "key", "k", "", "base64 key for authkey or aes (default: $FASTLOGD_KEY)")
	cmd.Flags().StringVarP(&serveFlags.File, "file", "f", "", "write received records to this file")
	cmd.Flags().StringVar(&serveFlags.Level, "level", "NOTSET", "lowest level to accept")
	cmd.Flags().BoolVar(&serveFlags.Console, "console", true, "write received records to stdout")

	return cmd
}

// buildServeConfig turns flags into a configuration when no file is given
func buildServeConfig(f ServeFlags) (logging.Config, error) {
	var cfg logging.Config
	level, err := core.ParseLevel(f.Level)
	if err != nil {
		return cfg, err
	}
	var method netproto.EncryptionMethod
	if err := method.UnmarshalText([]byte(f.Encryption)); err != nil {
		return cfg, err
	}
	key := f.Key
	if key == "" {
		key = os.Getenv("FASTLOGD_KEY")
	}
	var raw []byte
	if key != "" {
		if raw, err = base64.StdEncoding.DecodeString(strings.TrimSpace(key)); err != nil {
			return cfg, fmt.Errorf("%w: key: %w", core.ErrConfiguration, err)
		}
	}

	cfg.Level = level
	cfg.Writers = append(cfg.Writers, logging.WriterConfig{
		Server: &serverwriter.Config{Level: level, Address: f.Listen, Encryption: method, Key: raw},
	})
	if f.Console {
		cfg.Writers = append(cfg.Writers, logging.WriterConfig{Console: &consolewriter.Config{Level: level}})
	}
	if f.File != "" {
		cfg.Writers = append(cfg.Writers, logging.WriterConfig{File: &filewriter.Config{Level: level, Path: f.File}})
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg logging.Config
	var err error
	if serveFlags.Config != "" {
		cfg, err = logging.LoadConfig(serveFlags.Config)
	} else {
		cfg, err = buildServeConfig(serveFlags)
	}
	if err != nil {
		return err
	}

	diag, err := diagnostics()
	if err != nil {
		return err
	}
	defer diag.Sync()
	cfg.Diagnostics = diag

	l, err := logging.New(cfg)
	if err != nil {
		return err
	}

	addrs := l.ServerAddresses()
	if len(addrs) == 0 {
		_ = l.Shutdown(true)
		return fmt.Errorf("%w: configuration has no server writer", core.ErrConfiguration)
	}
	for configured, bound := range addrs {
		fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s (configured %s)\n", bound, configured)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, l, diag, syscall.SIGHUP)
}

// syncInterval is how often serve flushes the writers
var syncInterval = time.Second

// serve runs until ctx ends. Every value on the rotate signal rotates the
// file writers. Writers are flushed periodically and failures go to diag.
// On exit l is shut down with draining.
func serve(ctx context.Context, l *logging.Logging, diag *zap.Logger, rotateOn os.Signal) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, rotateOn)
	defer signal.Stop(hup)

	flush := time.NewTicker(syncInterval)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return l.Shutdown(false)
		case <-hup:
			if err := l.Rotate(""); err != nil {
				l.Warning(fmt.Sprintf("rotation failed: %v", err))
			}
		case <-flush.C:
			if err := l.SyncAll(syncInterval); err != nil {
				diag.Warn("sync failed", zap.Error(err))
			}
		}
	}
}

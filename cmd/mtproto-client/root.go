package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/telemtp/mtproto-go/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// rootFlags holds the persistent flags every subcommand can see. Only the
// ones the user actually passed are forwarded into config.Load's
// overrides map, so an unset flag never shadows a YAML or env value.
type rootFlags struct {
	configFile  string
	apiID       int32
	apiHash     string
	dc          int32
	sessionFile string
	boltPath    string
	logLevel    string
	logFormat   string
	logFile     string
	metricsAddr string
	testMode    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "mtproto-client",
		Short:        "Reference MTProto 2.0 client",
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().Int32Var(&flags.apiID, "api-id", 0, "Telegram api_id")
	cmd.PersistentFlags().StringVar(&flags.apiHash, "api-hash", "", "Telegram api_hash")
	cmd.PersistentFlags().Int32Var(&flags.dc, "dc", 0, "datacenter id to connect to")
	cmd.PersistentFlags().StringVar(&flags.sessionFile, "session-file", "", "path to a JSON session file")
	cmd.PersistentFlags().StringVar(&flags.boltPath, "bolt-path", "", "path to a bbolt session database (overrides --session-file)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn, or error")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "text or json")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "mtproto-client-debug.log", "path to a full-debug JSON log file, written alongside the console log")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "address to serve /metrics on, e.g. :9090 (empty disables)")
	cmd.PersistentFlags().BoolVar(&flags.testMode, "test-mode", false, "connect to Telegram's test datacenters")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newGenSchemaCmd())
	cmd.AddCommand(newSessionCmd(flags))

	return cmd
}

// loadConfig resolves a config.Config from flags actually set on cmd,
// layered over YAML/env/defaults per config.Load.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	overrides := map[string]interface{}{}
	set := func(name string, val interface{}) {
		if cmd.Flags().Changed(name) {
			overrides[name] = val
		}
	}
	set("api-id", flags.apiID)
	set("api-hash", flags.apiHash)
	set("dc", flags.dc)
	set("session-file", flags.sessionFile)
	set("bolt-path", flags.boltPath)
	set("log-level", flags.logLevel)
	set("log-format", flags.logFormat)
	set("metrics-addr", flags.metricsAddr)
	set("test-mode", flags.testMode)

	// cobra flag names use dashes; config keys use underscores.
	renamed := map[string]interface{}{}
	for k, v := range overrides {
		renamed[dashesToUnderscores(k)] = v
	}

	return config.Load(flags.configFile, renamed)
}

func dashesToUnderscores(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}

// setupLogging builds a logger that writes full debug output to
// flags.logFile as JSON and a level-filtered view to stdout in the
// configured format, fanning out through multiHandler the way the
// teacher's CLI does.
func setupLogging(flags *rootFlags, level slog.Level) (*slog.Logger, *os.File, error) {
	logFile, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})

	var stdoutHandler slog.Handler
	if flags.logFormat == "json" {
		stdoutHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		stdoutHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(&multiHandler{handlers: []slog.Handler{fileHandler, stdoutHandler}})
	return logger, logFile, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// multiHandler fans out slog records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}

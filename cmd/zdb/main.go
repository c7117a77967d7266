// Zdb is an interactive debugging client for N64 builds running in an
// emulator that hosts the zdb debug server script.
//
// It resolves function names to runtime addresses using the linker map of
// the running build, overlays included, and sends breakpoint commands to the
// server over a length-prefixed framing protocol.
//
// Usage:
//
//	zdb [command] [flags]
//
// Running without a command connects to the server and starts the
// interactive prompt. See 'zdb --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/zdb/internal/config"
	"github.com/muurk/zdb/internal/logging"
	"github.com/muurk/zdb/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// reportedError wraps an error that has already been shown to the user in a
// result box, so main only sets the exit status.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Flags shared by every command
var (
	configPath string
	flagHost   string
	flagPort   int
	flagMap    string
	flagFrame  string
	flagLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "zdb",
	Short: "Symbolic breakpoint client for the zdb emulator debug server",
	Long: `zdb connects to the debug server running inside an emulator and lets you set
breakpoints by function name.

Names are resolved with the linker map of the running build. Functions that
live in relocatable overlays are sent as an offset into their overlay, and
the server relocates them using the overlay tables announced at startup.

If no command is specified, zdb connects and starts the interactive prompt.`,
	Example: `  # Connect using zdb.yaml in the current directory
  zdb

  # Connect to an emulator on another machine
  zdb --host 192.168.1.20 --map build/z64.map

  # Find servers advertising on the local network
  zdb --discover`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSession,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zdb %s\n", version.Full())
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ./"+config.LocalConfigFile+", then the per-user config)")
	pf.StringVar(&flagHost, "host", "", "Debug server host")
	pf.IntVar(&flagPort, "port", config.DefaultPort, "Debug server port")
	pf.StringVar(&flagMap, "map", "", "Linker map file of the running build")
	pf.StringVar(&flagFrame, "framing", "", "Frame header format (length-prefix, hex)")
	pf.StringVar(&flagLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file, applies flags that were set explicitly,
// validates the result and initializes logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, path, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Host = flagHost
	}
	if f.Changed("port") {
		cfg.Port = flagPort
	}
	if f.Changed("map") {
		cfg.MapFile = flagMap
	}
	if f.Changed("framing") {
		cfg.Framing = flagFrame
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLevel
	}
	applySessionFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, err
	}

	logging.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("map_file", cfg.MapFile),
		zap.String("framing", cfg.Framing),
	)
	return cfg, nil
}

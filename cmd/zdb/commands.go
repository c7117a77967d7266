package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/zdb/internal/command"
	"github.com/muurk/zdb/internal/config"
	"github.com/muurk/zdb/internal/discovery"
	"github.com/muurk/zdb/internal/logging"
	"github.com/muurk/zdb/internal/mapfile"
	"github.com/muurk/zdb/internal/ui"
)

// Subcommand flags
var (
	discoverTimeout time.Duration
	configInitPath  string
	configInitForce bool
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)

	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", discovery.DefaultScanTimeout, "How long to listen for advertisements")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "Where to write the file (default: per-user config path)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file without asking")
}

// resolveCmd looks names up in the map file without connecting
var resolveCmd = &cobra.Command{
	Use:   "resolve <func>...",
	Short: "Resolve function names using the map file",
	Long: `Resolve function names to the addresses zdb would send to the debug server.

Base image functions resolve to an absolute address. Functions inside an
overlay resolve to an offset from the overlay's RAM base. The directive
column shows the exact break command that would be sent.`,
	Example: `  zdb resolve Actor_Init EnTest_Update
  zdb resolve --map build/z64.map Play_Init`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	idx, err := loadIndex(afero.NewOsFs(), cfg)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	var rows [][]string
	var failed []error
	for _, name := range args {
		r, err := idx.Resolve(name)
		if err != nil {
			failed = append(failed, err)
			continue
		}
		rows = append(rows, []string{name, r.String(), command.BreakCommand(name, r)})
	}

	if len(rows) > 0 {
		printer.PrintTable([]string{"Function", "Location", "Directive"}, rows)
	}
	for _, err := range failed {
		printer.PrintProblem(err)
	}
	if len(failed) > 0 {
		return reportedError{fmt.Errorf("%d of %d names did not resolve", len(failed), len(args))}
	}
	return nil
}

// tablesCmd shows the overlay table announcement
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Show the overlay table addresses announced at startup",
	Long: `Show where the overlay dispatch tables are in the map file.

These addresses are announced to the debug server with a tablelocs command
when a session starts, so that it can relocate overlay breakpoints.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	locs, err := mapfile.LocateTablesFile(afero.NewOsFs(), cfg.MapFile, cfg.TableSymbols)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(locs.Names()))
	for _, name := range locs.Names() {
		addr, ok := locs.Get(name)
		if !ok {
			addr = mapfile.AbsentTable
		}
		rows = append(rows, []string{name, addr})
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintTable([]string{"Table", "Address"}, rows)
	printer.PrintInfo("%s", command.TableLocsCommand(locs, mapfile.AbsentTable))
	return nil
}

// discoverCmd lists servers advertising over mDNS
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find debug servers on the local network",
	Long: `Listen for debug servers advertising the ` + discovery.ServiceType + ` mDNS service.

The emulator's debug server script can advertise itself so that zdb can
connect without a host name. Use 'zdb --discover' to connect to the first
server that answers.`,
	Example: `  zdb discover
  zdb discover --timeout 10s`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(flagLevel); err != nil {
		return err
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = discoverTimeout
	scanner.Logger = logging.GetLogger()

	out := cmd.OutOrStdout()
	var servers []*discovery.Server
	label := fmt.Sprintf("scanning for %s servers (timeout: %s)", discovery.ServiceType, discoverTimeout)
	err := ui.RunWithSpinner(cmd.Context(), out, label, "done", func(ctx context.Context) error {
		var err error
		servers, err = scanner.Scan(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printer := ui.NewPrinter(out)
	if len(servers) == 0 {
		printer.PrintError("No debug servers found", discovery.ErrNoServers, []string{
			"Ensure the emulator's debug server script is running and advertising",
			"Check that multicast (UDP 5353) is allowed on this network",
			"Try increasing --timeout",
			"Use --host to connect directly if discovery is unavailable",
		})
		return reportedError{discovery.ErrNoServers}
	}

	rows := make([][]string, 0, len(servers))
	for _, s := range servers {
		framing := s.Framing()
		if framing == "" {
			framing = "default"
		}
		rows = append(rows, []string{s.Instance, s.Address(), s.Transport(), framing})
	}
	printer.PrintTable([]string{"Instance", "Address", "Transport", "Framing"}, rows)
	printer.PrintInfo("Use 'zdb --discover' or 'zdb --host <ip> --port <port>' to connect")
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the zdb configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configInitPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return err
		}
	}

	force := configInitForce
	if _, err := os.Stat(path); err == nil && !force {
		if !ui.IsTerminal(os.Stdin) {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		force = ui.Confirm(os.Stdin, cmd.OutOrStdout(), "Config file exists",
			[]string{path + " will be replaced with default settings"}, "Overwrite it?")
		if !force {
			return errors.New("aborted")
		}
	}

	if err := config.CreateDefaultConfig(path, force); err != nil {
		return err
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Configuration written",
		ui.Param{Key: "Path", Value: path},
		ui.Param{Key: "Map", Value: config.DefaultMapFile},
		ui.Param{Key: "Server", Value: fmt.Sprintf("%s:%d", config.DefaultHost, config.DefaultPort)},
	)
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Print the configuration after the config file and command-line flags are applied.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

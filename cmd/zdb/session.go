package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/zdb/internal/command"
	"github.com/muurk/zdb/internal/config"
	"github.com/muurk/zdb/internal/discovery"
	"github.com/muurk/zdb/internal/logging"
	"github.com/muurk/zdb/internal/mapfile"
	"github.com/muurk/zdb/internal/repl"
	"github.com/muurk/zdb/internal/session"
	"github.com/muurk/zdb/internal/transport"
	"github.com/muurk/zdb/internal/ui"
)

// Session flags (root command only)
var (
	flagTransport string
	flagURL       string
	flagAwaitAcks bool
	flagPipelined bool
	flagDiscover  bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagTransport, "transport", transport.NetworkTCP, "Byte stream to the server (tcp, websocket)")
	f.StringVar(&flagURL, "url", "", "WebSocket endpoint, e.g. ws://localhost:7340/")
	f.BoolVar(&flagAwaitAcks, "await-acks", false, "Wait for a reply after every command")
	f.BoolVar(&flagPipelined, "pipelined", false, "Accept several frames in one read")
	f.BoolVar(&flagDiscover, "discover", false, "Find the server with mDNS instead of --host")
}

// applySessionFlags copies root-only flags that were set explicitly.
func applySessionFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Lookup("transport") == nil {
		return
	}
	if f.Changed("transport") {
		cfg.Transport = flagTransport
	}
	if f.Changed("url") {
		cfg.URL = flagURL
		if !f.Changed("transport") {
			cfg.Transport = transport.NetworkWebSocket
		}
	}
	if f.Changed("await-acks") {
		cfg.AwaitAcks = flagAwaitAcks
	}
	if f.Changed("pipelined") {
		cfg.Pipelined = flagPipelined
	}
	if f.Changed("discover") {
		cfg.Discover = flagDiscover
	}
}

var troubleshootConnect = []string{
	"Ensure the emulator is running with the zdb server script loaded",
	"Check host and port in " + config.LocalConfigFile + " or pass --host/--port",
	"Run 'zdb discover' to list servers advertising on the local network",
}

var troubleshootSession = []string{
	"Check that client and server use the same framing (--framing)",
	"Restart the debug server script and reconnect",
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.GetLogger()

	// Interrupt cancels discovery and connecting; once the prompt is up it
	// keeps its default behaviour.
	ctx := cmd.Context()
	dialCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fs := afero.NewOsFs()
	idx, err := loadIndex(fs, cfg)
	if err != nil {
		return err
	}
	locs, err := mapfile.LocateTablesFile(fs, cfg.MapFile, cfg.TableSymbols)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)

	if cfg.Discover && !cmd.Flags().Changed("host") {
		if err := discoverServer(dialCtx, cfg, os.Stdout); err != nil {
			return err
		}
	}

	framing, err := transport.CodecByName(cfg.Framing)
	if err != nil {
		return err
	}

	printer.PrintHeader(ui.NewHeader("zdb", cmd.CommandPath(),
		ui.Param{Key: "Server", Value: serverLabel(cfg)},
		ui.Param{Key: "Map", Value: cfg.MapFile},
		ui.Param{Key: "Symbols", Value: fmt.Sprintf("%d in %d overlays", idx.Len(), len(idx.Overlays()))},
		ui.Param{Key: "Tables", Value: fmt.Sprintf("%d of %d found", locs.Found(), len(locs.Names()))},
		ui.Param{Key: "Framing", Value: framing.Name()},
	))

	conn, err := connect(dialCtx, cfg, os.Stdout, logger)
	stop()
	if err != nil {
		printer.PrintError("Could not connect", err, troubleshootConnect)
		return reportedError{err}
	}
	logging.LogConnection(cfg.DialConfig().Target(), "connected")

	codec := command.NewCodec(idx,
		command.WithFs(fs),
		command.WithAwaitAcks(cfg.AwaitAcks),
		command.WithLogger(logger),
	)
	sess := session.New(conn, codec, framing, logger,
		transport.WithPipelining(cfg.Pipelined),
		transport.WithReplyTimeout(cfg.ReplyTimeout),
	)
	defer func() {
		_ = sess.Close()
		logging.LogConnection(cfg.DialConfig().Target(), "closed")
	}()

	out, err := sess.Announce(locs)
	if err == nil {
		for _, reply := range out.Replies {
			printer.PrintReply(reply)
		}
		err = repl.New(sess, repl.WithLogger(logger)).Run(ctx)
	}
	if err != nil && ctx.Err() == nil {
		printer.PrintError("Session ended", err, troubleshootSession)
		return reportedError{err}
	}
	return nil
}

// loadIndex parses the configured map file.
func loadIndex(fs afero.Fs, cfg *config.Config) (*mapfile.Index, error) {
	return mapfile.ParseFile(fs, cfg.MapFile,
		mapfile.WithOverlayPrefix(cfg.OverlayPrefix),
		mapfile.WithLogger(logging.GetLogger()),
	)
}

func serverLabel(cfg *config.Config) string {
	if cfg.Transport == transport.NetworkWebSocket {
		return cfg.URL
	}
	return cfg.Address()
}

// connect dials the server behind a spinner.
func connect(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) (io.ReadWriteCloser, error) {
	dc := cfg.DialConfig()
	dc.Logger = logger

	label := fmt.Sprintf("connecting to %s on port %d", cfg.Host, cfg.Port)
	if cfg.Transport == transport.NetworkWebSocket {
		label = "connecting to " + cfg.URL
	}

	var conn io.ReadWriteCloser
	err := ui.RunWithSpinner(ctx, out, label, "connected", func(ctx context.Context) error {
		c, err := transport.Dial(ctx, dc)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, err
	}
	return conn, nil
}

// discoverServer fills cfg with the first server found over mDNS.
func discoverServer(ctx context.Context, cfg *config.Config, out io.Writer) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = cfg.DiscoverTimeout
	scanner.Logger = logging.GetLogger()

	var srv *discovery.Server
	err := ui.RunWithSpinner(ctx, out, "looking for a debug server", "found", func(ctx context.Context) error {
		var err error
		srv, err = scanner.First(ctx)
		return err
	})
	if err != nil {
		return err
	}

	cfg.Host = srv.IP
	cfg.Port = srv.Port
	cfg.Transport = srv.Transport()
	if cfg.Transport == transport.NetworkWebSocket {
		cfg.URL = srv.WebSocketURL()
	}
	if framing := srv.Framing(); framing != "" {
		cfg.Framing = framing
	}

	logging.Info("using discovered server",
		zap.String("instance", srv.Instance),
		zap.String("address", srv.Address()),
		zap.Int("port", srv.Port),
	)
	return cfg.Validate()
}

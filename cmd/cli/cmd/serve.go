package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/perfsight/cgviewer/internal/callgrind"
	"github.com/perfsight/cgviewer/internal/webui"
	"github.com/perfsight/cgviewer/pkg/config"
	cgerrors "github.com/perfsight/cgviewer/pkg/errors"
	"github.com/perfsight/cgviewer/pkg/utils"
)

var (
	// Serve command flags
	serveInput      string
	serveConfigPath string
	servePort       int
	serveRemote     bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Parse a Callgrind dump and browse it through the web UI",
	Long: `Serve parses a Callgrind dump and starts an HTTP server exposing
its call graph as a JSON API for interactive caller/callee traversal.

Equivalent to "parse --serve" but skips printing the ranking first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	binName := BinName()
	serveCmd.Example = `  # Start server with default settings (port 8080)
  ` + binName + ` serve ./callgrind.out.18859

  # Specify a port
  ` + binName + ` serve ./callgrind.out.18859 --port 9090`

	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "Input Callgrind dump file (defaults to the first positional argument)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Config file path")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port for web server")
	serveCmd.Flags().BoolVar(&serveRemote, "remote", false, "Treat --input as a key in the configured object storage backend rather than a local path")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	sourceRef := serveInput
	if sourceRef == "" && len(args) > 0 {
		sourceRef = args[0]
	}
	if sourceRef == "" {
		return fmt.Errorf("input file is required: pass it as an argument or with --input")
	}

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return cgerrors.Wrap(cgerrors.CodeConfigError, "failed to load config", err)
	}

	inputPath, cleanup, err := resolveInput(cmd.Context(), cfg, sourceRef, serveRemote)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	p := callgrind.NewParser(inputPath, nil)
	if err := p.Parse(); err != nil {
		return wrapParseError(err)
	}

	summary := p.Summary()
	log.Info("Parsed %d entries (%d unique positions) from %s", summary.NEntries, summary.NUniquePositions, inputPath)

	srv := webui.NewServer(p, servePort, log)
	return startWebServer(srv, servePort, log)
}

// startWebServer runs srv until SIGINT/SIGTERM, shared by "parse --serve" and "serve".
func startWebServer(srv *webui.Server, port int, log utils.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		os.Exit(0)
	}()

	log.Info("")
	log.Info("cgviewer web UI listening on http://localhost:%d", port)
	log.Info("Press Ctrl+C to stop")
	log.Info("")

	if err := srv.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

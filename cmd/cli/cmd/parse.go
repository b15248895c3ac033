package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/perfsight/cgviewer/internal/advisor"
	"github.com/perfsight/cgviewer/internal/callgrind"
	"github.com/perfsight/cgviewer/internal/storage"
	"github.com/perfsight/cgviewer/internal/store"
	"github.com/perfsight/cgviewer/internal/webui"
	"github.com/perfsight/cgviewer/pkg/config"
	cgerrors "github.com/perfsight/cgviewer/pkg/errors"
	"github.com/perfsight/cgviewer/pkg/utils"
	"github.com/perfsight/cgviewer/pkg/writer"
)

var parseTracer = otel.Tracer("cgviewer/cli")

var (
	parseInput      string
	parseConfigPath string
	parseTopN       int
	parseExportPath string
	parsePersist    bool
	parseServe      bool
	parseServePort  int
	parseRemote     bool
)

// parseCmd represents the parse command.
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Callgrind dump and report the hot-function ranking",
	Long: `Parse reads a Valgrind Callgrind profile dump, assembles the
call graph, ranks functions by total cost, and prints the top functions.

Optionally the parsed session can be persisted to a relational store,
exported as JSON, and/or browsed through the web UI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	binName := BinName()
	parseCmd.Example = `  ` + binName + ` parse ./callgrind.out.18859

  ` + binName + ` parse ./callgrind.out.18859 --top 20

  ` + binName + ` parse ./callgrind.out.18859 --export ./callgraph.json

  ` + binName + ` parse ./callgrind.out.18859 --serve --port 9090`

	parseCmd.Flags().StringVarP(&parseInput, "input", "i", "", "Input Callgrind dump file (defaults to the first positional argument)")
	parseCmd.Flags().StringVar(&parseConfigPath, "config", "", "Config file path")
	parseCmd.Flags().IntVarP(&parseTopN, "top", "n", 20, "Number of top functions to print")
	parseCmd.Flags().StringVar(&parseExportPath, "export", "", "Write the ranked call graph as JSON to this path (use a .gz suffix to gzip it)")
	parseCmd.Flags().BoolVar(&parsePersist, "persist", false, "Persist an ingest-session record and advisor suggestions to the configured database")
	parseCmd.Flags().BoolVar(&parseServe, "serve", false, "Start the web UI after parsing")
	parseCmd.Flags().IntVar(&parseServePort, "port", 8080, "Port for the web UI (used with --serve)")
	parseCmd.Flags().BoolVar(&parseRemote, "remote", false, "Treat --input as a key in the configured object storage backend rather than a local path")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	sourceRef := parseInput
	if sourceRef == "" && len(args) > 0 {
		sourceRef = args[0]
	}
	if sourceRef == "" {
		return fmt.Errorf("input file is required: pass it as an argument or with --input")
	}

	ctx, span := parseTracer.Start(cmd.Context(), "ingest.parse")
	defer span.End()

	cfg, err := config.Load(parseConfigPath)
	if err != nil {
		return cgerrors.Wrap(cgerrors.CodeConfigError, "failed to load config", err)
	}

	inputPath, cleanup, err := resolveInput(ctx, cfg, sourceRef, parseRemote)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	log.Info("Parsing %s", inputPath)
	timer := utils.NewTimer("parse", utils.WithLogger(log))

	opts := callgrind.DefaultParserOptions()
	opts.Verbose = verbose
	opts.SummaryTopN = parseTopN
	p := callgrind.NewParser(inputPath, opts)

	pt := timer.Start("scan")
	if err := p.Parse(); err != nil {
		return wrapParseError(err)
	}
	pt.Stop()

	summary := p.Summary()
	log.Info("Parsed %d entries (%d unique positions) in %s", summary.NEntries, summary.NUniquePositions, timer.GetDuration("scan"))

	printTopEntries(log, p, parseTopN)

	if parseExportPath != "" {
		ept := timer.Start("export")
		if err := exportCallGraph(p, parseExportPath); err != nil {
			return cgerrors.Wrap(cgerrors.CodeIOError, "failed to export call graph", err)
		}
		ept.Stop()
		log.Info("Exported call graph to %s", parseExportPath)
	}

	if parsePersist {
		ppt := timer.Start("persist")
		if err := persistSession(ctx, cfg, p, sourceRef); err != nil {
			return err
		}
		ppt.Stop()
	}

	if verbose {
		timer.PrintSummary()
	}

	if parseServe {
		log.Info("Starting web server...")
		srv := webui.NewServer(p, parseServePort, log)
		return startWebServer(srv, parseServePort, log)
	}

	return nil
}

// resolveInput returns a local filesystem path ready for callgrind.NewParser.
// When remote is false, ref is taken as a local path directly: it is
// stat-checked and returned unchanged, with a nil cleanup. When remote is
// true, ref is treated as a key in the storage backend configured by
// cfg.Storage; it is downloaded to a temp file, whose removal the caller
// must arrange via the returned cleanup func.
func resolveInput(ctx context.Context, cfg *config.Config, ref string, remote bool) (path string, cleanup func(), err error) {
	if !remote {
		if _, err := os.Stat(ref); os.IsNotExist(err) {
			return "", nil, cgerrors.Wrap(cgerrors.CodeNotFound, fmt.Sprintf("input file not found: %s", ref), err)
		}
		return ref, nil, nil
	}

	backend, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return "", nil, cgerrors.Wrap(cgerrors.CodeConfigError, "failed to initialize storage backend", err)
	}

	return downloadToTemp(ctx, backend, ref)
}

// downloadToTemp downloads ref from backend into a fresh temp file and
// returns its path. Split out from resolveInput so the download logic can
// be exercised against a storage.Storage test double.
func downloadToTemp(ctx context.Context, backend storage.Storage, ref string) (path string, cleanup func(), err error) {
	tmp, err := os.CreateTemp("", "cgviewer-*.callgrind")
	if err != nil {
		return "", nil, cgerrors.Wrap(cgerrors.CodeIOError, "failed to create temp file for remote input", err)
	}
	localPath := tmp.Name()
	tmp.Close()

	if err := backend.DownloadFile(ctx, ref, localPath); err != nil {
		os.Remove(localPath)
		return "", nil, cgerrors.Wrap(cgerrors.CodeIOError, fmt.Sprintf("failed to download %s from storage", ref), err)
	}

	return localPath, func() { os.Remove(localPath) }, nil
}

// printTopEntries prints the top-N functions by event-0 total cost, in the
// "pct% cost  object::symbol" format.
func printTopEntries(log interface{ Info(string, ...interface{}) }, p *callgrind.Parser, topN int) {
	entries := p.Entries()
	nEvents := len(p.EventAxis())
	if len(entries) == 0 || nEvents == 0 {
		return
	}

	maxCost := entries[0].TotalCost(nEvents)[0]

	log.Info("")
	log.Info("=== Top Functions (%s) ===", p.EventAxis()[0])
	count := topN
	if count > len(entries) {
		count = len(entries)
	}
	for i := 0; i < count; i++ {
		e := entries[i]
		cost := e.TotalCost(nEvents)[0]
		pct := 0.0
		if maxCost > 0 {
			pct = float64(cost) * 100 / float64(maxCost)
		}
		log.Info("  %2d. %6.2f%%  %10d  %s::%s", i+1, pct, cost, e.Position.Object, e.Position.Symbol)
	}
}

type exportFunction struct {
	Object    string   `json:"object"`
	Source    string   `json:"source"`
	Symbol    string   `json:"symbol"`
	TotalCost []uint64 `json:"total_cost"`
	NCalls    int      `json:"n_calls"`
	NCallers  int      `json:"n_callers"`
}

// exportCallGraph writes the ranked call graph to path. A ".gz" suffix
// selects the gzipped writer so large dumps can be exported without
// exhausting disk space on the CI machines that run cgviewer in batch mode;
// any other extension falls back to plain, pretty-printed JSON.
func exportCallGraph(p *callgrind.Parser, path string) error {
	nEvents := len(p.EventAxis())
	entries := p.Entries()

	out := make([]exportFunction, 0, len(entries))
	for _, e := range entries {
		out = append(out, exportFunction{
			Object:    e.Position.Object,
			Source:    e.Position.Source,
			Symbol:    e.Position.Symbol,
			TotalCost: e.TotalCost(nEvents),
			NCalls:    len(e.Calls),
			NCallers:  len(e.Callers),
		})
	}

	if filepath.Ext(path) == ".gz" {
		w := writer.NewGzipWriter[[]exportFunction]()
		return w.WriteToFile(out, path)
	}

	w := writer.NewPrettyJSONWriter[[]exportFunction]()
	return w.WriteToFile(out, path)
}

// persistSession opens the configured database and delegates to
// persistSessionWithRepos for the actual record-keeping. Split out so the
// record-keeping logic can be exercised against store.SessionRepository/
// store.SuggestionRepository test doubles without a real database.
func persistSession(ctx context.Context, cfg *config.Config, p *callgrind.Parser, inputPath string) error {
	db, err := store.NewGormDB(&cfg.Database)
	if err != nil {
		return cgerrors.Wrap(cgerrors.CodeDatabaseError, "failed to open database", err)
	}
	repos := store.NewRepositories(db)
	defer repos.Close()

	return persistSessionWithRepos(ctx, repos.Session, repos.Suggestion, p, inputPath)
}

// persistSessionWithRepos records an ingest-session row with a compressed
// call-graph snapshot, runs the advisor over the parsed entries, and
// persists its suggestions, against whatever SessionRepository/
// SuggestionRepository it is given.
func persistSessionWithRepos(ctx context.Context, sessions store.SessionRepository, suggestions store.SuggestionRepository, p *callgrind.Parser, inputPath string) error {
	entries := p.Entries()
	nEvents := len(p.EventAxis())

	snapshotFuncs := make([]store.SnapshotFunction, 0, len(entries))
	for _, e := range entries {
		snapshotFuncs = append(snapshotFuncs, store.SnapshotFunction{
			Symbol:    e.Position.Symbol,
			Object:    e.Position.Object,
			Source:    e.Position.Source,
			TotalCost: e.TotalCost(nEvents),
		})
	}
	snapshot, err := store.EncodeSnapshot(snapshotFuncs)
	if err != nil {
		return cgerrors.Wrap(cgerrors.CodeIOError, "failed to encode snapshot", err)
	}

	eventAxisJSON, err := json.Marshal(p.EventAxis())
	if err != nil {
		return cgerrors.Wrap(cgerrors.CodeIOError, "failed to encode event axis", err)
	}

	summary := p.Summary()
	session := &store.IngestSession{
		SessionID:        sessionIDFor(inputPath),
		SourcePath:       inputPath,
		EventAxis:        store.JSONField(eventAxisJSON),
		NEntries:         summary.NEntries,
		NUniquePositions: summary.NUniquePositions,
		Snapshot:         snapshot,
	}
	if err := sessions.Create(ctx, session); err != nil {
		return cgerrors.Wrap(cgerrors.CodeDatabaseError, "failed to persist ingest session", err)
	}

	adv := advisor.NewAdvisor()
	findings := adv.Advise(&advisor.RuleContext{Entries: entries})

	batch := make([]*store.Suggestion, 0, len(findings))
	for _, f := range findings {
		batch = append(batch, &store.Suggestion{
			SessionID: session.SessionID,
			Type:      f.Type,
			Severity:  f.Severity,
			FuncName:  f.FuncName,
			Message:   f.Message,
		})
	}
	if err := suggestions.CreateBatch(ctx, batch); err != nil {
		return cgerrors.Wrap(cgerrors.CodeDatabaseError, "failed to persist suggestions", err)
	}

	GetLogger().Info("Persisted ingest session %s (%d suggestions)", session.SessionID, len(batch))
	return nil
}

func sessionIDFor(inputPath string) string {
	return fmt.Sprintf("%s-%d", filepath.Base(inputPath), time.Now().UnixNano())
}

// wrapParseError wraps a *callgrind.ParseError into the application error
// envelope without losing errors.As access to the original.
func wrapParseError(err error) error {
	return cgerrors.Wrap(cgerrors.CodeParseError, "failed to parse Callgrind dump", err)
}

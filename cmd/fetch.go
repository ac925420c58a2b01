package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/feb"
	"github.com/pable/go-clutch-metrics/internal/logging"
	"github.com/pable/go-clutch-metrics/internal/metrics"
	"github.com/pable/go-clutch-metrics/internal/pipeline"
	"github.com/pable/go-clutch-metrics/internal/report"
)

// fetch command flags.
var (
	// fetchGamesFile is a season game-list CSV to read ids from.
	fetchGamesFile string
	fetchWorkers   int
	fetchRetries   int
	fetchForce     bool
	// fetchSnapshotDir keeps the raw widget HTML of every fetched game.
	fetchSnapshotDir string
	fetchMetricsAddr string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [game-id...]",
	Short: "Fetch FEB games and store their clutch metrics",
	Long: `Fetches the play-by-play widget of each game, reconstructs on-court
intervals, clutch windows and lineups, and stores the per-game tables.

Games already stored are skipped unless --force is given. A game that keeps
failing after its retries is recorded as a fetch failure and the run continues.

Examples:
  clutchmetrics fetch 2301 2315
  clutchmetrics fetch --games season.csv --workers 3 --snapshot-dir ./html`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchGamesFile, "games", "", "season game-list CSV (Fase,Jornada,IdPartido,...)")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "concurrent browser sessions (default from config)")
	fetchCmd.Flags().IntVar(&fetchRetries, "retries", -1, "retries per game after the first attempt (default from config)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "re-fetch games that are already stored")
	fetchCmd.Flags().StringVar(&fetchSnapshotDir, "snapshot-dir", "", "save compressed widget HTML here")
	fetchCmd.Flags().StringVar(&fetchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ids, err := fetchGameIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no game ids given; pass ids or --games")
	}

	if fetchWorkers > 0 {
		cfg.Workers = fetchWorkers
	}
	if fetchRetries >= 0 {
		cfg.MaxRetries = fetchRetries
	}
	if fetchSnapshotDir != "" {
		cfg.SnapshotDir = fetchSnapshotDir
	}
	if fetchMetricsAddr != "" {
		cfg.MetricsAddr = fetchMetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Default()
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	client := feb.NewClient(cfg.Browser(), log)
	defer client.Close()

	fmt.Fprintf(os.Stdout, "Fetching %d games with %d workers...\n", len(ids), cfg.Workers)
	res, err := pipeline.Run(ctx, ids, client, db, pipeline.Options{
		Workers:     cfg.Workers,
		Retry:       cfg.Retry(),
		Force:       fetchForce,
		SnapshotDir: cfg.SnapshotDir,
		Engine:      cfg.Engine(),
		Recorder:    rec,
		Logger:      log,
	})
	if res != nil {
		fmt.Fprintln(os.Stdout)
		report.PrintRunSummary(os.Stdout, res.Stored, res.Failed, res.Skipped)
	}
	if err != nil {
		return fmt.Errorf("fetch run: %w", err)
	}
	return nil
}

// fetchGameIDs merges positional ids with those of --games, dropping repeats.
func fetchGameIDs(args []string) ([]string, error) {
	ids := append([]string(nil), args...)
	if fetchGamesFile != "" {
		f, err := os.Open(fetchGamesFile)
		if err != nil {
			return nil, fmt.Errorf("open game list: %w", err)
		}
		defer f.Close()
		listed, err := pipeline.ReadGameList(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, listed...)
	}

	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

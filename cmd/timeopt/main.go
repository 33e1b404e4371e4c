package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/coordinator"
	"timeopt/internal/daemon"
	"timeopt/internal/database"
	"timeopt/internal/feed"
	"timeopt/internal/logger"
	"timeopt/internal/reporter"
	"timeopt/internal/sink"
	"timeopt/internal/web"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "timeopt",
	Short: "Time optimization engine",
	Long: `timeopt turns a stream of app focus changes into productivity signals:
interrupt detection, context-switch costs, DEAL classification, meeting
fragmentation, and a rolling traffic-light status with nudges.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest an activity feed and run the engine",
	Long: `Reads newline-delimited JSON activity events from the feed (a file, or
"-" for stdin), drives every analyzer, and flushes the rolling status
to the configured sink until the feed ends or the process is stopped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		feedPath, _ := cmd.Flags().GetString("feed")
		serve, _ := cmd.Flags().GetBool("serve")
		return runEngine(feedPath, serve)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a daily or weekly report",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateStr, _ := cmd.Flags().GetString("date")
		weekly, _ := cmd.Flags().GetBool("week")
		jsonOut, _ := cmd.Flags().GetBool("json")
		return generateReport(dateStr, weekly, jsonOut)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last flushed engine status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("timeopt version %s (commit %s)\n", version, commit)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Debug = true
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*database.DB, *database.Repository, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = database.GetDefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}
	db, err := database.Connect(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, database.NewRepository(db), nil
}

func buildStatusSink(cfg *config.Config) (sink.StatusSink, error) {
	switch cfg.Sink.Type {
	case "redis":
		return sink.NewRedisSink(cfg.Sink.RedisAddr, cfg.Sink.RedisKey, cfg.Sink.RedisTTL), nil
	default:
		return sink.NewFileSink(cfg.Sink.Path)
	}
}

func runEngine(feedPath string, serve bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serve {
		cfg.Web.Enabled = true
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	guard, err := daemon.New(cfg.PIDFile)
	if err != nil {
		return err
	}
	if err := guard.Acquire(); err != nil {
		return err
	}
	defer guard.Release()

	db, repo, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	statusSink, err := buildStatusSink(cfg)
	if err != nil {
		return err
	}
	defer statusSink.Close()

	nudgeSink, err := sink.NewFileNudgeSink(cfg.Sink.NudgeLog)
	if err != nil {
		return err
	}

	coord, err := coordinator.New(cfg, repo, log, coordinator.WithNudgeSink(nudgeSink))
	if err != nil {
		return err
	}

	var src io.Reader
	if feedPath == "-" {
		src = os.Stdin
	} else {
		f, err := os.Open(feedPath)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flusher := coordinator.NewFlusher(coord, statusSink, cfg.Status.FlushInterval, log)
	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		flusher.Run(ctx)
	}()

	go logEvents(ctx, coord, log)

	var webServer *web.Server
	if cfg.Web.Enabled {
		webServer = web.NewServer(cfg, repo, coord, log)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Error("web server failed", zap.Error(err))
			}
		}()
	}

	log.Info("engine started",
		zap.String("feed", feedPath),
		zap.String("sink", cfg.Sink.Type))

	stats, streamErr := feed.NewReader(log).Stream(ctx, src, coord.OnActivity)
	log.Info("feed finished",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped))

	stop()
	if webServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("web server shutdown failed", zap.Error(err))
		}
		cancel()
	}
	<-flusherDone

	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		return streamErr
	}
	return nil
}

// logEvents drains the coordinator's event channel so slow observers
// can't back it up, logging each one.
func logEvents(ctx context.Context, coord *coordinator.Coordinator, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-coord.Events():
			switch ev := e.(type) {
			case coordinator.InterruptDetected:
				log.Info("interrupt detected",
					zap.String("app", ev.Interrupt.InterruptApp),
					zap.String("type", string(ev.Interrupt.InterruptType)),
					zap.Float64("context_loss_minutes", ev.Interrupt.ContextLossMinutes))
			case coordinator.SwitchDetected:
				log.Debug("context switch",
					zap.String("from", ev.Switch.FromApp),
					zap.String("to", ev.Switch.ToApp),
					zap.Float64("cost_minutes", ev.Switch.EstimatedCostMinutes))
			case coordinator.NudgeCreated:
				log.Info("nudge created",
					zap.String("id", ev.Nudge.ID),
					zap.String("type", string(ev.Nudge.NudgeType)),
					zap.String("message", ev.Nudge.Message))
			case coordinator.StatusChanged:
				log.Info("status changed",
					zap.String("from", string(ev.Previous)),
					zap.String("to", string(ev.Current)))
			}
		}
	}
}

func generateReport(dateStr string, weekly, jsonOut bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	db, repo, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	date := time.Now()
	if dateStr != "" {
		date, err = time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
		}
	}

	rep := reporter.New(cfg, repo, log)

	if weekly {
		report, err := rep.WeeklyReport(reporter.WeekStartOf(date))
		if err != nil {
			return err
		}
		if jsonOut {
			out, err := rep.FormatJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(out)
		} else {
			fmt.Print(rep.FormatWeeklyText(report))
		}
		return nil
	}

	report, err := rep.DailyReport(date)
	if err != nil {
		return err
	}
	if jsonOut {
		out, err := rep.FormatJSON(report)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(rep.FormatDailyText(report))
	}
	return nil
}

func showStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Sink.Type != "file" {
		return fmt.Errorf("status command reads the file sink; configured sink is %q", cfg.Sink.Type)
	}

	fs, err := sink.NewFileSink(cfg.Sink.Path)
	if err != nil {
		return err
	}
	status, err := fs.ReadStatus()
	if err != nil {
		return fmt.Errorf("no status available, is the engine running? (%w)", err)
	}

	fmt.Printf("Status: %s (updated %s)\n", status.StatusColor, status.UpdatedAt.Format("15:04:05"))
	fmt.Printf("Deep work today:    %.1fh\n", status.DailyDeepWorkHours)
	fmt.Printf("Interruptions:      %d\n", status.InterruptCountToday)
	fmt.Printf("Switch cost:        %.1f min\n", status.SwitchCostMinutesToday)
	fmt.Printf("Distraction time:   %.0f min\n", status.DistractionMinutesToday)
	if n := status.LatestNudge; n != nil {
		fmt.Printf("Latest nudge:       [%s] %s\n", n.NudgeType, n.Message)
		fmt.Printf("                    %s\n", n.Suggestion)
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	runCmd.Flags().String("feed", "-", `Activity feed path ("-" for stdin)`)
	runCmd.Flags().Bool("serve", false, "Serve the HTTP API while running")

	reportCmd.Flags().String("date", "", "Report date as YYYY-MM-DD (default today)")
	reportCmd.Flags().Bool("week", false, "Weekly fragmentation report instead of daily")
	reportCmd.Flags().Bool("json", false, "Emit JSON instead of text")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

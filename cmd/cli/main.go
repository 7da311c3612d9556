package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/buildinfo"
	"github.com/nomis52/turnact/config"
	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/metrics"
	"github.com/nomis52/turnact/simulation"
	"github.com/nomis52/turnact/world"
)

const pushTimeout = 10 * time.Second

type Args struct {
	ConfigPath  string
	Turns       int
	Snapshot    bool
	ShowVersion bool
	Validate    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	if args.ShowVersion {
		fmt.Println(buildinfo.Get().Describe("turnact"))
		return nil
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if args.Validate {
		fmt.Printf("Configuration validation successful: %s\n", args.ConfigPath)
		return nil
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	props := buildinfo.Get()
	logger.Info("turnact started",
		"build_time", props.BuildTime,
		"git_commit", props.GitCommit,
		"config_path", args.ConfigPath,
		"turns", args.Turns,
	)

	var opts []simulation.Option
	var registry *metrics.PushRegistry
	if cfg.Monitoring.VictoriaMetricsURL != "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		registry = metrics.NewPushRegistry(metrics.PushConfig{
			URL:      cfg.Monitoring.VictoriaMetricsURL,
			Prefix:   cfg.Monitoring.MetricsPrefix,
			Job:      cfg.Monitoring.JobName,
			Instance: hostname,
			Timeout:  pushTimeout,
		})
		opts = append(opts, simulation.WithMetricsRegistry(registry))
	}

	sim, err := simulation.New(&cfg, logger.Logger, opts...)
	if err != nil {
		return err
	}
	if err := sim.Populate(cfg.Simulation.Actors); err != nil {
		return err
	}

	simulate(os.Stdout, sim.World, args.Turns)

	if args.Snapshot {
		store, closeStore, err := simulation.OpenStore(cfg.Snapshot, logger.Logger)
		if err != nil {
			return err
		}
		defer closeStore()
		summary, err := store.Save(sim.World.Snapshot())
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Printf("snapshot %s saved at turn %d\n", summary.ID, summary.Turn)
	}

	if registry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := registry.Flush(ctx); err != nil {
			return fmt.Errorf("failed to push metrics: %w", err)
		}
		logger.Info("metrics pushed", "series", registry.Len())
	}
	return nil
}

// simulate steps w for turns turns, printing every outcome and progress
// message. It stops early once every actor is idle.
func simulate(out io.Writer, w *world.World, turns int) {
	for range turns {
		report := w.Step()
		busy := 0
		for _, v := range w.ActorViews() {
			outcome := report.Outcomes[v.ID]
			if v.Activity.Kind != "" {
				busy++
			}
			switch {
			case v.Progress != "":
				fmt.Fprintf(out, "turn %d  %-12s %-10s %s\n", report.Turn, v.Name, outcome, v.Progress)
			case outcome != activity.OutcomeIdle:
				fmt.Fprintf(out, "turn %d  %-12s %s\n", report.Turn, v.Name, outcome)
			}
		}
		if busy == 0 {
			fmt.Fprintf(out, "all actors idle after turn %d\n", report.Turn)
			return
		}
	}
}

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to config file (defaults apply when empty)")
	configPathShort := flag.String("c", "", "Path to config file (shorthand)")
	turns := flag.Int("turns", 100, "Maximum number of turns to run")
	snapshot := flag.Bool("snapshot", false, "Save a snapshot to the configured store when done")
	showVersion := flag.Bool("version", false, "Show version information")
	versionShort := flag.Bool("v", false, "Show version information (shorthand)")
	validate := flag.Bool("validate", false, "Validate configuration and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nRuns the activity simulation headless and prints progress each turn.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --config config.yaml --turns 50\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config config.yaml --validate\n", os.Args[0])
	}

	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	return Args{
		ConfigPath:  path,
		Turns:       *turns,
		Snapshot:    *snapshot,
		ShowVersion: *showVersion || *versionShort,
		Validate:    *validate,
	}
}

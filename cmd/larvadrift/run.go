package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/larvadrift/config"
	"github.com/sarchlab/larvadrift/simulation"
)

const autoRecordPath = "auto"

var (
	configFile  string
	pld         float64
	noMigration bool
	steps       uint64
	particles   int
	startTime   string
	stepLength  time.Duration
	recordPath  string
	monitor     bool
	monitorPort int
	openBrowser bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a larval drift experiment",
	Long: `Builds the ensemble and the step pipeline from the configuration and
runs it until the step limit is reached or no larva is active anymore.

Settings come from the defaults, then the --config file, then LARVADRIFT_*
environment variables, then the flags given on the command line.`,
	Args: cobra.NoArgs,
	RunE: runExperiment,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	f.Float64Var(&pld, "pld", 1, "Pelagic larval duration in days")
	f.BoolVar(&noMigration, "no-migration", false,
		"Disable diel vertical migration")
	f.Uint64Var(&steps, "steps", 48, "Number of steps, 0 runs until no larva is active")
	f.IntVar(&particles, "particles", 100, "Number of larvae to seed")
	f.StringVar(&startTime, "start", "", "Start time, RFC3339")
	f.DurationVar(&stepLength, "step", time.Hour, "Step length")
	f.StringVar(&recordPath, "record", "",
		"Record steps to PATH.sqlite3 or a clickhouse:// DSN; "+
			"without a value a unique file name is used")
	f.Lookup("record").NoOptDefVal = autoRecordPath
	f.BoolVar(&monitor, "monitor", false, "Serve the monitoring page")
	f.IntVar(&monitorPort, "monitor-port", 0, "Port of the monitoring page")
	f.BoolVar(&openBrowser, "open-browser", false,
		"Open the monitoring page in a browser")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()

	if flags.Changed("pld") {
		cfg.IBM.CompletePLD = pld
	}

	if noMigration {
		cfg.IBM.Migration = false
	}

	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}

	if flags.Changed("particles") {
		cfg.Seeding.Particles = particles
	}

	if flags.Changed("start") {
		t, err := time.Parse(time.RFC3339, startTime)
		if err != nil {
			return config.Config{}, fmt.Errorf("--start: %w", err)
		}

		cfg.Run.Start = t
	}

	if flags.Changed("step") {
		cfg.Run.Step = stepLength
	}

	if monitor {
		cfg.Run.Monitor = true
	}

	if flags.Changed("monitor-port") {
		cfg.Run.Monitor = true
		cfg.Run.MonitorPort = monitorPort
	}

	return cfg, cfg.Validate()
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	builder := simulation.MakeBuilder().
		WithConfig(cfg).
		WithLogger(logger)

	switch {
	case recordPath == autoRecordPath:
		builder = builder.WithOutputFileName("")
	case recordPath != "":
		builder = builder.WithOutputFileName(recordPath)
	}

	if openBrowser {
		builder = builder.WithBrowser()
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	result, runErr := s.Run()
	termErr := s.Terminate()

	if runErr != nil {
		return runErr
	}

	if termErr != nil {
		logger.Warn("cannot finish run cleanly", zap.Error(termErr))
	}

	printResult(cmd, result)

	return nil
}

func printResult(cmd *cobra.Command, r simulation.Result) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "run %s: %d steps", r.RunID, r.Steps)
	if r.StoppedEarly {
		fmt.Fprint(out, " (no active larvae left)")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "larvae: %d total, %d active\n", r.Final.Total, r.Final.Active)

	if r.Final.Active > 0 {
		fmt.Fprintf(out, "depth: min %.3f m, mean %.3f m, max %.3f m\n",
			r.Final.MinZ, r.Final.MeanZ, r.Final.MaxZ)
	}

	reasons := make([]string, 0, len(r.Reasons))
	for reason := range r.Reasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	for _, reason := range reasons {
		fmt.Fprintf(out, "  %-10s %d\n", reason, r.Reasons[reason])
	}
}

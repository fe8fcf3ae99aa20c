// Command vajrapulse loads a YAML load-test configuration, builds the
// pattern/backpressure/metrics/exporter graph it describes, and runs the
// execution engine against a task until the pattern's duration elapses or
// an interrupt is received.
//
// VajraPulse itself only specifies the task.Task contract; this binary
// has no concrete task body of its own (no HTTP client, no database
// driver). Without -task-smoke it only validates and describes a
// configuration. -task-smoke plugs in a synthetic task so every load
// pattern, backpressure rule, and exporter can be exercised end to end
// without a real backend — library users wire their own task.Task the
// same way via the engine.Builder API directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/vajrapulse/vajrapulse/internal/config"
	"github.com/vajrapulse/vajrapulse/internal/engine"
	"github.com/vajrapulse/vajrapulse/internal/metrics"
	"github.com/vajrapulse/vajrapulse/internal/task"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	configPath     string
	duration       time.Duration
	workerOverride int
	verbose        bool
	validate       bool
	dryRun         bool
	showVersion    bool
	taskSmoke      bool
	prometheusAddr string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to the YAML configuration file")
	flag.StringVar(&configPath, "c", "", "Path to the YAML configuration file (shorthand)")

	flag.DurationVar(&duration, "duration", 0, "Override the pattern's warmup/cooldown-free run duration where supported (e.g. static, ramp)")
	flag.DurationVar(&duration, "d", 0, "Override run duration (shorthand)")
	flag.IntVar(&workerOverride, "workers", 0, "Override worker pool size")

	flag.BoolVar(&verbose, "verbose", false, "Enable verbose output")
	flag.BoolVar(&verbose, "v", false, "Enable verbose output (shorthand)")
	flag.BoolVar(&validate, "validate", false, "Validate configuration and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "Print the resolved execution plan without running")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&taskSmoke, "task-smoke", false, "Run against a synthetic task, exercising the full pipeline without a real backend")
	flag.StringVar(&prometheusAddr, "prometheus", "", "Override Prometheus listen address (e.g. :9090)")

	flag.Usage = printUsage
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `vajrapulse - programmable load-generation engine

USAGE:
    vajrapulse -config <path> [options]

DESCRIPTION:
    Loads a YAML load-test configuration describing a traffic pattern,
    optional adaptive tuning, backpressure handling, worker pool sizing,
    and metrics exporters, then runs the execution engine until the
    pattern completes or SIGINT/SIGTERM is received.

OPTIONS:
    -config, -c <path>    Path to the YAML configuration file
    -duration, -d <dur>   Override run duration where the pattern supports it
    -workers <n>          Override worker pool size
    -validate             Validate configuration and exit
    -dry-run              Print the resolved execution plan without running
    -task-smoke           Run with a synthetic task (for pattern/config validation)
    -prometheus <addr>    Override Prometheus listen address (e.g. :9090)
    -verbose, -v          Enable verbose output
    -version              Show version information
    -help, -h             Show this help message

EXAMPLES:
    vajrapulse -config configs/ramp.yaml -validate
    vajrapulse -config configs/ramp.yaml -dry-run
    vajrapulse -config configs/ramp.yaml -task-smoke -duration 30s
`)
}

func main() {
	flag.Parse()

	if showVersion {
		printVersion()
		os.Exit(0)
	}

	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromFile(absConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	applyOverrides(cfg)

	if validate {
		fmt.Printf("Configuration %q is valid.\n", cfg.Name)
		printConfigSummary(cfg)
		os.Exit(0)
	}

	if dryRun {
		printExecutionPlan(cfg)
		os.Exit(0)
	}

	if !taskSmoke {
		fmt.Println("No task wired: pass -task-smoke to exercise the pipeline with a synthetic task,")
		fmt.Println("or use -validate / -dry-run to inspect the configuration. Library callers build")
		fmt.Println("an engine.Builder with their own task.Task directly.")
		os.Exit(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running load test: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("vajrapulse version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

func applyOverrides(cfg *config.Config) {
	if duration > 0 {
		switch cfg.Pattern.Type {
		case "static":
			if cfg.Pattern.Static != nil {
				cfg.Pattern.Static.Duration = duration
			}
		case "ramp":
			if cfg.Pattern.Ramp != nil {
				cfg.Pattern.Ramp.RampDuration = duration
			}
		}
		if verbose {
			fmt.Printf("Override: duration = %v\n", duration)
		}
	}

	if workerOverride > 0 {
		cfg.WorkerPool.Size = workerOverride
		if verbose {
			fmt.Printf("Override: workerPool.size = %d\n", workerOverride)
		}
	}

	if prometheusAddr != "" {
		if cfg.Output.Prometheus == nil {
			cfg.Output.Prometheus = &config.PrometheusOutputConfig{}
		}
		cfg.Output.Prometheus.Enabled = true
		if port := parsePort(prometheusAddr); port > 0 {
			cfg.Output.Prometheus.Port = port
		}
		if verbose {
			fmt.Printf("Override: Prometheus enabled on %s\n", prometheusAddr)
		}
	}
}

// parsePort extracts a port from ":9090" or "host:9090" style addresses.
func parsePort(addr string) int {
	var port int
	if _, err := fmt.Sscanf(addr, ":%d", &port); err == nil && port > 0 {
		return port
	}
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err == nil && port > 0 {
				return port
			}
			break
		}
	}
	return 0
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Name:        %s\n", cfg.Name)
	fmt.Printf("  Version:     %s\n", cfg.Version)
	fmt.Printf("  Pattern:     %s\n", cfg.Pattern.Type)
	fmt.Printf("  WorkerPool:  size=%d maxQueueDepth=%d gracePeriod=%v\n",
		cfg.WorkerPool.Size, cfg.WorkerPool.MaxQueueDepth, cfg.WorkerPool.GracePeriod)
	if cfg.Backpressure != nil {
		fmt.Printf("  Backpressure: provider=%s handler=%s\n", cfg.Backpressure.Provider, cfg.Backpressure.Handler)
	}
}

func printExecutionPlan(cfg *config.Config) {
	fmt.Println("=== Execution Plan (Dry Run) ===")
	printConfigSummary(cfg)

	fmt.Println()
	fmt.Println("Pattern:")
	switch cfg.Pattern.Type {
	case "static":
		fmt.Printf("  rate=%.1f duration=%v\n", cfg.Pattern.Static.Rate, cfg.Pattern.Static.Duration)
	case "ramp":
		fmt.Printf("  maxTps=%.1f rampDuration=%v\n", cfg.Pattern.Ramp.MaxTps, cfg.Pattern.Ramp.RampDuration)
	case "rampToMax":
		fmt.Printf("  maxTps=%.1f rampDuration=%v sustainDuration=%v\n",
			cfg.Pattern.RampToMax.MaxTps, cfg.Pattern.RampToMax.RampDuration, cfg.Pattern.RampToMax.SustainDuration)
	case "step":
		fmt.Println("  steps:")
		for i, s := range cfg.Pattern.Step.Steps {
			fmt.Printf("    %d. rate=%.1f duration=%v\n", i+1, s.Rate, s.Duration)
		}
	case "spike":
		fmt.Printf("  base=%.1f spike=%.1f total=%v interval=%v spikeDuration=%v\n",
			cfg.Pattern.Spike.Base, cfg.Pattern.Spike.Spike, cfg.Pattern.Spike.Total,
			cfg.Pattern.Spike.Interval, cfg.Pattern.Spike.SpikeDuration)
	case "sine":
		fmt.Printf("  mean=%.1f amplitude=%.1f total=%v period=%v\n",
			cfg.Pattern.Sine.Mean, cfg.Pattern.Sine.Amplitude, cfg.Pattern.Sine.Total, cfg.Pattern.Sine.Period)
	case "adaptive":
		fmt.Printf("  initialTps=%.1f min=%.1f max=%v rampInterval=%v errorThreshold=%.3f\n",
			cfg.Adaptive.InitialTps, cfg.Adaptive.MinTps, cfg.Adaptive.MaxTps,
			cfg.Adaptive.RampInterval, cfg.Adaptive.ErrorThreshold)
	}
	if cfg.Pattern.Warmup > 0 || cfg.Pattern.Cooldown > 0 {
		fmt.Printf("  warmup=%v cooldown=%v\n", cfg.Pattern.Warmup, cfg.Pattern.Cooldown)
	}

	if cfg.Backpressure != nil {
		fmt.Println()
		fmt.Println("Backpressure:")
		fmt.Printf("  provider=%s handler=%s consultThreshold=%.3f\n",
			cfg.Backpressure.Provider, cfg.Backpressure.Handler, cfg.Backpressure.ConsultThreshold)
	}

	fmt.Println()
	fmt.Println("Output:")
	if cfg.Output.Console != nil {
		fmt.Printf("  console: enabled\n")
	}
	if cfg.Output.JSON != nil && cfg.Output.JSON.Enabled {
		fmt.Printf("  json: %s\n", cfg.Output.JSON.File)
	}
	if cfg.Output.CSV != nil && cfg.Output.CSV.Enabled {
		fmt.Printf("  csv: %s\n", cfg.Output.CSV.File)
	}
	if cfg.Output.HTML != nil && cfg.Output.HTML.Enabled {
		fmt.Printf("  html: %s\n", cfg.Output.HTML.File)
	}
	if cfg.Output.Prometheus != nil && cfg.Output.Prometheus.Enabled {
		fmt.Printf("  prometheus: :%d%s\n", cfg.Output.Prometheus.Port, cfg.Output.Prometheus.Path)
	}
	if cfg.Output.OTLP != nil && cfg.Output.OTLP.Enabled {
		fmt.Printf("  otlp: enabled\n")
	}

	fmt.Println()
	fmt.Println("Ready to execute. Pass -task-smoke to run against a synthetic task.")
}

func run(cfg *config.Config) error {
	collector := cfg.BuildMetricsCollector()

	bpProvider, bpHandler, bpThreshold, err := cfg.BuildBackpressure(collector)
	if err != nil {
		return fmt.Errorf("building backpressure: %w", err)
	}

	pat, err := cfg.BuildPattern(collector.Provider(), bpProviderAdapter{bpProvider})
	if err != nil {
		return fmt.Errorf("building pattern: %w", err)
	}

	exporters, err := cfg.BuildExporters()
	if err != nil {
		return fmt.Errorf("building exporters: %w", err)
	}
	for _, exp := range exporters {
		if starter, ok := exp.(interface{ Start() error }); ok {
			if err := starter.Start(); err != nil {
				return fmt.Errorf("starting exporter: %w", err)
			}
		}
	}

	builder := engine.NewBuilder().
		WithTask(&smokeTask{}).
		WithLoadPattern(pat).
		WithMetricsCollector(collector).
		WithWorkerCount(cfg.WorkerPool.Size).
		WithMaxQueueDepth(cfg.WorkerPool.MaxQueueDepth).
		WithGracePeriod(cfg.WorkerPool.GracePeriod)

	if bpHandler != nil {
		builder = builder.WithBackpressure(bpHandler, bpProvider, bpThreshold)
	}

	runCtx := metrics.RunContext{
		RunID:           uuid.NewString(),
		TaskClass:       "task-smoke",
		LoadPatternType: cfg.Pattern.Type,
		StartTime:       time.Now(),
		System: metrics.SystemInfo{
			GoVersion:           runtime.Version(),
			OSName:              runtime.GOOS,
			OSArch:              runtime.GOARCH,
			AvailableProcessors: runtime.NumCPU(),
		},
	}
	if len(exporters) > 0 {
		builder = builder.WithExporters(cfg.Name, runCtx, exporters...)
	}

	eng, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		if verbose {
			fmt.Println("Received shutdown signal, draining...")
		}
		eng.Stop()
	}()

	fmt.Printf("Running %q (run %s)...\n", cfg.Name, runCtx.RunID)
	if err := eng.Run(ctx); err != nil {
		return err
	}

	snapshot := collector.Snapshot()
	fmt.Printf("Done: total=%d success=%d failure=%d dropped=%d rejected=%d\n",
		snapshot.TotalExecutions, snapshot.SuccessCount, snapshot.FailureCount,
		snapshot.DroppedCount, snapshot.RejectedCount)
	return nil
}

// bpProviderAdapter adapts a possibly-nil backpressure.Provider to
// adaptive.BackpressureProvider, reporting zero pressure when unset.
type bpProviderAdapter struct {
	provider interface{ Level() float64 }
}

func (a bpProviderAdapter) Level() float64 {
	if a.provider == nil {
		return 0
	}
	return a.provider.Level()
}

// smokeTask is a synthetic task.Task used by -task-smoke to exercise a
// configuration's full pattern/backpressure/metrics/exporter pipeline
// without a real backend. It simulates latency and an occasional
// synthetic failure so error-rate-driven features (adaptive ramp-down,
// recovery) have something to react to.
type smokeTask struct{}

func (t *smokeTask) Setup(context.Context) error { return nil }

func (t *smokeTask) Execute(ctx context.Context, iteration uint64) task.Result {
	latency := time.Duration(5+rand.Intn(15)) * time.Millisecond
	select {
	case <-ctx.Done():
		return task.Fail(ctx.Err())
	case <-time.After(latency):
	}
	if rand.Float64() < 0.02 {
		return task.Fail(fmt.Errorf("smoke: synthetic failure on iteration %d", iteration))
	}
	return task.Succeed(nil)
}

func (t *smokeTask) Cleanup(context.Context) error { return nil }

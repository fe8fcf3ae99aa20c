// Package config provides the YAML configuration structures that tie
// together a load pattern, its adaptive tuning, backpressure handling,
// worker pool sizing, metrics collection, and exporters into one
// runnable description of a load test.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vajrapulse/vajrapulse/internal/adaptive"
	"github.com/vajrapulse/vajrapulse/internal/backpressure"
	"github.com/vajrapulse/vajrapulse/internal/metrics"
	"github.com/vajrapulse/vajrapulse/internal/pattern"
)

// Errors returned by the config package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrConfigNotFound is returned when the config file is not found.
	ErrConfigNotFound = errors.New("config: configuration file not found")
)

// Config is the root configuration structure for a load run.
type Config struct {
	// Name is a descriptive name for this configuration.
	Name string `yaml:"name" json:"name"`

	// Description provides additional context about the configuration.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Version is the configuration schema version.
	Version string `yaml:"version" json:"version"`

	// Pattern selects and configures the load pattern.
	Pattern PatternConfig `yaml:"pattern" json:"pattern"`

	// Adaptive configures the adaptive ramp, used only when
	// pattern.type is "adaptive".
	Adaptive *AdaptiveConfig `yaml:"adaptive,omitempty" json:"adaptive,omitempty"`

	// Backpressure configures backpressure signal providers and the
	// disposition handler.
	Backpressure *BackpressureConfig `yaml:"backpressure,omitempty" json:"backpressure,omitempty"`

	// WorkerPool configures the execution engine's fixed worker pool.
	WorkerPool WorkerPoolConfig `yaml:"workerPool,omitempty" json:"workerPool,omitempty"`

	// Metrics configures the metrics collector.
	Metrics MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty"`

	// Output configures which exporters run at the end of the run.
	Output OutputConfig `yaml:"output,omitempty" json:"output,omitempty"`
}

// PatternConfig selects one built-in load pattern and its
// pattern-specific sub-config, mirroring the teacher's per-type
// sub-struct nesting (see loadctrl.ShaperConfig). Exactly one of the
// sub-configs matching Type should be set; the rest are ignored.
type PatternConfig struct {
	// Type is one of: "static", "ramp", "rampToMax", "step", "spike",
	// "sine", "adaptive".
	Type string `yaml:"type" json:"type"`

	Static    *StaticPatternConfig    `yaml:"static,omitempty" json:"static,omitempty"`
	Ramp      *RampPatternConfig      `yaml:"ramp,omitempty" json:"ramp,omitempty"`
	RampToMax *RampToMaxPatternConfig `yaml:"rampToMax,omitempty" json:"rampToMax,omitempty"`
	Step      *StepPatternConfig      `yaml:"step,omitempty" json:"step,omitempty"`
	Spike     *SpikePatternConfig     `yaml:"spike,omitempty" json:"spike,omitempty"`
	Sine      *SinePatternConfig      `yaml:"sine,omitempty" json:"sine,omitempty"`

	// Warmup and Cooldown, if either is nonzero, wrap the constructed
	// pattern in a WarmupCooldownLoadPattern.
	Warmup   time.Duration `yaml:"warmup,omitempty" json:"warmup,omitempty"`
	Cooldown time.Duration `yaml:"cooldown,omitempty" json:"cooldown,omitempty"`
}

// StaticPatternConfig configures a constant-rate load.
type StaticPatternConfig struct {
	Rate     float64       `yaml:"rate" json:"rate"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// RampPatternConfig configures a linear ramp that holds at maxTps after
// rampDuration.
type RampPatternConfig struct {
	MaxTps       float64       `yaml:"maxTps" json:"maxTps"`
	RampDuration time.Duration `yaml:"rampDuration" json:"rampDuration"`
}

// RampToMaxPatternConfig configures a linear ramp followed by a sustain
// window at maxTps.
type RampToMaxPatternConfig struct {
	MaxTps          float64       `yaml:"maxTps" json:"maxTps"`
	RampDuration    time.Duration `yaml:"rampDuration" json:"rampDuration"`
	SustainDuration time.Duration `yaml:"sustainDuration" json:"sustainDuration"`
}

// StepPatternConfig configures a piecewise-constant load.
type StepPatternConfig struct {
	Steps []StepSegment `yaml:"steps" json:"steps"`
}

// StepSegment is a single constant-rate segment.
type StepSegment struct {
	Rate     float64       `yaml:"rate" json:"rate"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// SpikePatternConfig configures a base rate with periodic spikes.
type SpikePatternConfig struct {
	Base          float64       `yaml:"base" json:"base"`
	Spike         float64       `yaml:"spike" json:"spike"`
	Total         time.Duration `yaml:"total" json:"total"`
	Interval      time.Duration `yaml:"interval" json:"interval"`
	SpikeDuration time.Duration `yaml:"spikeDuration" json:"spikeDuration"`
}

// SinePatternConfig configures a sinusoidal load oscillating around a
// mean rate.
type SinePatternConfig struct {
	Mean      float64       `yaml:"mean" json:"mean"`
	Amplitude float64       `yaml:"amplitude" json:"amplitude"`
	Total     time.Duration `yaml:"total" json:"total"`
	Period    time.Duration `yaml:"period" json:"period"`
}

// AdaptiveConfig is the YAML-facing mirror of adaptive.Config. MaxTps
// accepts the string "unlimited" in addition to a number, translated to
// +Inf (see UnmarshalYAML).
type AdaptiveConfig struct {
	InitialTps    float64       `yaml:"initialTps" json:"initialTps"`
	RampIncrement float64       `yaml:"rampIncrement" json:"rampIncrement"`
	RampDecrement float64       `yaml:"rampDecrement" json:"rampDecrement"`
	RampInterval  time.Duration `yaml:"rampInterval" json:"rampInterval"`

	MaxTps maxTps `yaml:"maxTps" json:"maxTps"`
	MinTps float64 `yaml:"minTps" json:"minTps"`

	SustainDuration time.Duration `yaml:"sustainDuration,omitempty" json:"sustainDuration,omitempty"`
	ErrorThreshold  float64       `yaml:"errorThreshold" json:"errorThreshold"`

	BackpressureRampUpThreshold   float64 `yaml:"backpressureRampUpThreshold" json:"backpressureRampUpThreshold"`
	BackpressureRampDownThreshold float64 `yaml:"backpressureRampDownThreshold" json:"backpressureRampDownThreshold"`

	StableIntervalsRequired int     `yaml:"stableIntervalsRequired,omitempty" json:"stableIntervalsRequired,omitempty"`
	TpsTolerance            float64 `yaml:"tpsTolerance,omitempty" json:"tpsTolerance,omitempty"`
	RecoveryTpsRatio        float64 `yaml:"recoveryTpsRatio,omitempty" json:"recoveryTpsRatio,omitempty"`

	InitialRampDuration time.Duration `yaml:"initialRampDuration,omitempty" json:"initialRampDuration,omitempty"`
}

// maxTps unmarshals either a plain number or the literal string
// "unlimited" into a float64 (+Inf for "unlimited").
type maxTps float64

func (m *maxTps) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		if s == "unlimited" {
			*m = maxTps(math.Inf(1))
			return nil
		}
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
			return fmt.Errorf("maxTps: %q is neither a number nor \"unlimited\"", s)
		}
		*m = maxTps(f)
		return nil
	}

	var f float64
	if err := value.Decode(&f); err != nil {
		return err
	}
	*m = maxTps(f)
	return nil
}

// ToAdaptiveConfig converts the YAML-facing shape to adaptive.Config.
func (a AdaptiveConfig) ToAdaptiveConfig() adaptive.Config {
	return adaptive.Config{
		InitialTps:                    a.InitialTps,
		RampIncrement:                 a.RampIncrement,
		RampDecrement:                 a.RampDecrement,
		RampInterval:                  a.RampInterval,
		MaxTps:                        float64(a.MaxTps),
		MinTps:                        a.MinTps,
		SustainDuration:               a.SustainDuration,
		ErrorThreshold:                a.ErrorThreshold,
		BackpressureRampUpThreshold:   a.BackpressureRampUpThreshold,
		BackpressureRampDownThreshold: a.BackpressureRampDownThreshold,
		StableIntervalsRequired:       a.StableIntervalsRequired,
		TpsTolerance:                  a.TpsTolerance,
		RecoveryTpsRatio:              a.RecoveryTpsRatio,
		InitialRampDuration:           a.InitialRampDuration,
	}
}

// BackpressureConfig selects a signal provider and a disposition
// handler.
type BackpressureConfig struct {
	// Provider is one of: "queue", "poolUtilisation", "latency". A
	// composite of more than one is not expressible in YAML; build one
	// programmatically with backpressure.CompositeProvider instead.
	Provider string `yaml:"provider" json:"provider"`

	MaxQueueDepth int64   `yaml:"maxQueueDepth,omitempty" json:"maxQueueDepth,omitempty"`
	UtilThreshold float64 `yaml:"utilThreshold,omitempty" json:"utilThreshold,omitempty"`
	LatencyTargetMillis float64 `yaml:"latencyTargetMillis,omitempty" json:"latencyTargetMillis,omitempty"`

	// Handler is one of: "drop", "queue", "reject", "threshold".
	Handler string `yaml:"handler" json:"handler"`

	// Threshold bands, used only when Handler is "threshold".
	QueueBand    float64 `yaml:"queueBand,omitempty" json:"queueBand,omitempty"`
	RejectBand   float64 `yaml:"rejectBand,omitempty" json:"rejectBand,omitempty"`
	DropBand     float64 `yaml:"dropBand,omitempty" json:"dropBand,omitempty"`

	// ConsultThreshold is the level at which the engine starts
	// consulting the handler at all; below it every submission is
	// accepted unconditionally.
	ConsultThreshold float64 `yaml:"consultThreshold,omitempty" json:"consultThreshold,omitempty"`
}

// WorkerPoolConfig configures the execution engine's fixed worker pool.
type WorkerPoolConfig struct {
	// Size is the fixed worker goroutine count. Default: 32.
	Size int `yaml:"size,omitempty" json:"size,omitempty"`

	// MaxQueueDepth bounds the pool's submission buffer. Default: 10000.
	MaxQueueDepth int64 `yaml:"maxQueueDepth,omitempty" json:"maxQueueDepth,omitempty"`

	// GracePeriod bounds how long shutdown waits for in-flight work.
	// Default: 30s.
	GracePeriod time.Duration `yaml:"gracePeriod,omitempty" json:"gracePeriod,omitempty"`
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	// Percentiles is the set of percentile keys reported by Snapshot.
	// Default: 0.5, 0.9, 0.95, 0.99.
	Percentiles []float64 `yaml:"percentiles,omitempty" json:"percentiles,omitempty"`

	// MaxSamples bounds each histogram's retained sample count.
	// Default: 10000.
	MaxSamples int `yaml:"maxSamples,omitempty" json:"maxSamples,omitempty"`

	// RecentWindow is the sliding window used for RecentFailureRate.
	// Default: 10s.
	RecentWindow time.Duration `yaml:"recentWindow,omitempty" json:"recentWindow,omitempty"`
}

// OutputConfig configures which exporters run at the end of a run.
type OutputConfig struct {
	Console    *ConsoleOutputConfig    `yaml:"console,omitempty" json:"console,omitempty"`
	JSON       *JSONOutputConfig       `yaml:"json,omitempty" json:"json,omitempty"`
	CSV        *CSVOutputConfig       `yaml:"csv,omitempty" json:"csv,omitempty"`
	HTML       *HTMLOutputConfig      `yaml:"html,omitempty" json:"html,omitempty"`
	Prometheus *PrometheusOutputConfig `yaml:"prometheus,omitempty" json:"prometheus,omitempty"`
	OTLP       *OTLPOutputConfig      `yaml:"otlp,omitempty" json:"otlp,omitempty"`
}

// ConsoleOutputConfig configures console output.
type ConsoleOutputConfig struct {
	Enabled   *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	UseColors *bool `yaml:"useColors,omitempty" json:"useColors,omitempty"`
}

// JSONOutputConfig configures JSON report output.
type JSONOutputConfig struct {
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	// File supports {{.Timestamp}}, {{.Date}}, {{.Time}} placeholders.
	// Default: "./results/vajrapulse-{{.Timestamp}}.json"
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// CSVOutputConfig configures CSV report output.
type CSVOutputConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	File    string `yaml:"file,omitempty" json:"file,omitempty"`
}

// HTMLOutputConfig configures HTML report output.
type HTMLOutputConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	File    string `yaml:"file,omitempty" json:"file,omitempty"`
}

// PrometheusOutputConfig configures the Prometheus /metrics endpoint.
type PrometheusOutputConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Port    int    `yaml:"port,omitempty" json:"port,omitempty"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
}

// OTLPOutputConfig configures the OpenTelemetry metrics exporter.
type OTLPOutputConfig struct {
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Validate validates the configuration, failing fast on the first
// violated constraint, matching the teacher's validate-then-default
// pipeline.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if err := c.Pattern.validate(); err != nil {
		return fmt.Errorf("%w: pattern: %w", ErrInvalidConfig, err)
	}

	if c.Pattern.Type == "adaptive" && c.Adaptive == nil {
		return fmt.Errorf("%w: adaptive config is required when pattern.type is \"adaptive\"", ErrInvalidConfig)
	}

	if c.Backpressure != nil {
		if err := c.Backpressure.validate(); err != nil {
			return fmt.Errorf("%w: backpressure: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

func (p PatternConfig) validate() error {
	switch p.Type {
	case "static":
		if p.Static == nil {
			return errors.New("static config is required")
		}
	case "ramp":
		if p.Ramp == nil {
			return errors.New("ramp config is required")
		}
	case "rampToMax":
		if p.RampToMax == nil {
			return errors.New("rampToMax config is required")
		}
	case "step":
		if p.Step == nil || len(p.Step.Steps) == 0 {
			return errors.New("step config with at least one step is required")
		}
	case "spike":
		if p.Spike == nil {
			return errors.New("spike config is required")
		}
	case "sine":
		if p.Sine == nil {
			return errors.New("sine config is required")
		}
	case "adaptive":
		// validated by Config.Validate against c.Adaptive
	default:
		return fmt.Errorf("unknown pattern type %q", p.Type)
	}
	if p.Warmup < 0 {
		return errors.New("warmup cannot be negative")
	}
	if p.Cooldown < 0 {
		return errors.New("cooldown cannot be negative")
	}
	return nil
}

func (b BackpressureConfig) validate() error {
	switch b.Provider {
	case "queue", "poolUtilisation", "latency":
	default:
		return fmt.Errorf("unknown provider %q", b.Provider)
	}
	switch b.Handler {
	case "drop", "queue", "reject", "threshold":
	default:
		return fmt.Errorf("unknown handler %q", b.Handler)
	}
	if b.Handler == "threshold" {
		if !(0 <= b.QueueBand && b.QueueBand < b.RejectBand && b.RejectBand < b.DropBand && b.DropBand <= 1) {
			return fmt.Errorf("threshold bands must satisfy 0<=queueBand<rejectBand<dropBand<=1, got %v/%v/%v", b.QueueBand, b.RejectBand, b.DropBand)
		}
	}
	return nil
}

// ApplyDefaults applies default values to unset fields.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}

	if c.WorkerPool.Size == 0 {
		c.WorkerPool.Size = 32
	}
	if c.WorkerPool.MaxQueueDepth == 0 {
		c.WorkerPool.MaxQueueDepth = 10000
	}
	if c.WorkerPool.GracePeriod == 0 {
		c.WorkerPool.GracePeriod = 30 * time.Second
	}

	if len(c.Metrics.Percentiles) == 0 {
		c.Metrics.Percentiles = []float64{0.5, 0.9, 0.95, 0.99}
	}
	if c.Metrics.MaxSamples == 0 {
		c.Metrics.MaxSamples = 10000
	}
	if c.Metrics.RecentWindow == 0 {
		c.Metrics.RecentWindow = 10 * time.Second
	}

	if c.Output.Console == nil {
		enabled := true
		useColors := true
		c.Output.Console = &ConsoleOutputConfig{Enabled: &enabled, UseColors: &useColors}
	}
	if c.Output.JSON != nil && c.Output.JSON.Enabled && c.Output.JSON.File == "" {
		c.Output.JSON.File = "./results/vajrapulse-{{.Timestamp}}.json"
	}
	if c.Output.CSV != nil && c.Output.CSV.Enabled && c.Output.CSV.File == "" {
		c.Output.CSV.File = "./results/vajrapulse-{{.Timestamp}}.csv"
	}
	if c.Output.HTML != nil && c.Output.HTML.Enabled && c.Output.HTML.File == "" {
		c.Output.HTML.File = "./results/vajrapulse-{{.Timestamp}}.html"
	}
	if c.Output.Prometheus != nil && c.Output.Prometheus.Enabled {
		if c.Output.Prometheus.Port == 0 {
			c.Output.Prometheus.Port = 9090
		}
		if c.Output.Prometheus.Path == "" {
			c.Output.Prometheus.Path = "/metrics"
		}
	}

	if c.Backpressure != nil && c.Backpressure.ConsultThreshold == 0 {
		c.Backpressure.ConsultThreshold = 0.01
	}
}

// BuildPattern constructs the pattern.LoadPattern described by
// c.Pattern (and c.Adaptive, if the type is "adaptive"), wrapping it in
// a warm-up/cool-down pattern if either is configured.
//
// metrics and backpressure are only consulted when Type is "adaptive";
// callers not using the adaptive pattern may pass nil for both.
func (c *Config) BuildPattern(metrics adaptive.MetricsProvider, bp adaptive.BackpressureProvider, opts ...adaptive.Option) (pattern.LoadPattern, error) {
	base, err := c.Pattern.build(c.Adaptive, metrics, bp, opts...)
	if err != nil {
		return nil, err
	}

	if c.Pattern.Warmup == 0 && c.Pattern.Cooldown == 0 {
		return base, nil
	}
	return pattern.NewWarmupCooldownLoadPattern(base, c.Pattern.Warmup, c.Pattern.Cooldown)
}

func (p PatternConfig) build(adaptiveCfg *AdaptiveConfig, metrics adaptive.MetricsProvider, bp adaptive.BackpressureProvider, opts ...adaptive.Option) (pattern.LoadPattern, error) {
	switch p.Type {
	case "static":
		return pattern.NewStaticLoad(p.Static.Rate, p.Static.Duration)
	case "ramp":
		return pattern.NewRampUpLoad(p.Ramp.MaxTps, p.Ramp.RampDuration)
	case "rampToMax":
		return pattern.NewRampUpToMaxLoad(p.RampToMax.MaxTps, p.RampToMax.RampDuration, p.RampToMax.SustainDuration)
	case "step":
		steps := make([]pattern.Step, len(p.Step.Steps))
		for i, s := range p.Step.Steps {
			steps[i] = pattern.Step{Rate: s.Rate, Duration: s.Duration}
		}
		return pattern.NewStepLoad(steps)
	case "spike":
		return pattern.NewSpikeLoad(p.Spike.Base, p.Spike.Spike, p.Spike.Total, p.Spike.Interval, p.Spike.SpikeDuration)
	case "sine":
		return pattern.NewSineWaveLoad(p.Sine.Mean, p.Sine.Amplitude, p.Sine.Total, p.Sine.Period)
	case "adaptive":
		validated, err := adaptive.NewConfig(adaptiveCfg.ToAdaptiveConfig())
		if err != nil {
			return nil, fmt.Errorf("adaptive config: %w", err)
		}
		allOpts := opts
		if bp != nil {
			allOpts = append([]adaptive.Option{adaptive.WithBackpressure(bp)}, opts...)
		}
		return adaptive.New(validated, metrics, allOpts...), nil
	default:
		return nil, fmt.Errorf("unknown pattern type %q", p.Type)
	}
}

// BuildBackpressure constructs the provider and handler described by
// c.Backpressure, wired to collector's own queue-depth and latency
// gauges. Returns (nil, nil, 0, nil) if Backpressure is unset.
func (c *Config) BuildBackpressure(collector *metrics.Collector) (backpressure.Provider, backpressure.Handler, float64, error) {
	if c.Backpressure == nil {
		return nil, nil, 0, nil
	}

	var provider backpressure.Provider
	switch c.Backpressure.Provider {
	case "queue":
		provider = &backpressure.QueueProvider{
			QueueDepth:    collector.QueueDepth,
			MaxQueueDepth: c.Backpressure.MaxQueueDepth,
		}
	case "poolUtilisation":
		provider = &backpressure.PoolUtilisationProvider{
			Active:        collector.QueueDepth,
			Total:         c.Backpressure.MaxQueueDepth,
			UtilThreshold: c.Backpressure.UtilThreshold,
		}
	case "latency":
		provider = &backpressure.LatencyProvider{
			RecentP95: collector.RecentSuccessP95Millis,
			Target:    c.Backpressure.LatencyTargetMillis,
		}
	default:
		return nil, nil, 0, fmt.Errorf("backpressure: unknown provider %q", c.Backpressure.Provider)
	}

	var handler backpressure.Handler
	switch c.Backpressure.Handler {
	case "drop":
		handler = backpressure.Drop
	case "queue":
		handler = backpressure.Queue
	case "reject":
		handler = backpressure.Reject
	case "threshold":
		handler = backpressure.Threshold(c.Backpressure.QueueBand, c.Backpressure.RejectBand, c.Backpressure.DropBand)
	default:
		return nil, nil, 0, fmt.Errorf("backpressure: unknown handler %q", c.Backpressure.Handler)
	}

	return provider, handler, c.Backpressure.ConsultThreshold, nil
}

// BuildMetricsCollector constructs a metrics.Collector from c.Metrics.
func (c *Config) BuildMetricsCollector() *metrics.Collector {
	return metrics.NewCollector(metrics.Config{
		Percentiles:  c.Metrics.Percentiles,
		MaxSamples:   c.Metrics.MaxSamples,
		RecentWindow: c.Metrics.RecentWindow,
	})
}

// BuildExporters constructs the enabled exporters from c.Output, in a
// fixed order: console, JSON, CSV, HTML, Prometheus, OTLP.
func (c *Config) BuildExporters() ([]metrics.Exporter, error) {
	var exporters []metrics.Exporter

	if cc := c.Output.Console; cc != nil && (cc.Enabled == nil || *cc.Enabled) {
		useColors := cc.UseColors == nil || *cc.UseColors
		exporters = append(exporters, &metrics.ConsoleExporter{UseColors: useColors})
	}
	if jc := c.Output.JSON; jc != nil && jc.Enabled {
		exporters = append(exporters, &metrics.JSONExporter{Path: jc.File})
	}
	if cc := c.Output.CSV; cc != nil && cc.Enabled {
		exporters = append(exporters, &metrics.CSVExporter{Path: cc.File})
	}
	if hc := c.Output.HTML; hc != nil && hc.Enabled {
		exporters = append(exporters, &metrics.HTMLExporter{Path: hc.File})
	}
	if pc := c.Output.Prometheus; pc != nil && pc.Enabled {
		exporters = append(exporters, metrics.NewPrometheusExporter(metrics.PrometheusConfig{Port: pc.Port, Path: pc.Path}))
	}
	if oc := c.Output.OTLP; oc != nil && oc.Enabled {
		otlp, err := metrics.NewOTLPExporter(nil)
		if err != nil {
			return nil, fmt.Errorf("building OTLP exporter: %w", err)
		}
		exporters = append(exporters, otlp)
	}

	return exporters, nil
}

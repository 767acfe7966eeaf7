// Package config resolves command line configuration from flags,
// ASYMMETRY_* environment variables and an optional .asymmetry.yaml file.
//
// Values are unmarshaled into Raw first and then validated into Config.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/dudk/asymmetry/filter"
	"github.com/dudk/asymmetry/pipe"
	"github.com/dudk/asymmetry/store"
)

// EnvPrefix is the prefix of environment variables.
const EnvPrefix = "ASYMMETRY"

// FileName is the config file name without extension.
const FileName = ".asymmetry"

// SourceKind identifies where chunks come from.
type SourceKind string

// Source kinds.
const (
	Synthetic SourceKind = "synthetic"
	EDF       SourceKind = "edf"
	WAV       SourceKind = "wav"
)

// Defaults.
const (
	DefaultSampleRate      = 256
	DefaultBand            = "alpha"
	DefaultEpochDuration   = 1.0
	DefaultEpochInterval   = 0.5
	DefaultMovingAvgEpochs = 4
	DefaultChunkSize       = 32
	DefaultFrequency       = 10.0
	DefaultAmplitudes      = "1,0.8"
	DefaultDuration        = 10.0
	DefaultStoreFile       = "score.txt"
)

// Raw holds unvalidated values from all sources.
type Raw struct {
	SampleRate      int     `mapstructure:"sample-rate"`
	Band            string  `mapstructure:"band"`
	FilterType      string  `mapstructure:"filter-type"`
	LowCut          float64 `mapstructure:"low-cut"`
	HighCut         float64 `mapstructure:"high-cut"`
	FilterOrder     int     `mapstructure:"filter-order"`
	EpochDuration   float64 `mapstructure:"epoch-duration"`
	EpochInterval   float64 `mapstructure:"epoch-interval"`
	MovingAvgEpochs int     `mapstructure:"moving-avg-epochs"`
	ChannelA        int     `mapstructure:"channel-a"`
	ChannelB        int     `mapstructure:"channel-b"`
	Workers         int     `mapstructure:"workers"`

	Source     string  `mapstructure:"source"`
	Input      string  `mapstructure:"input"`
	Signals    string  `mapstructure:"signals"`
	ChunkSize  int     `mapstructure:"chunk-size"`
	Realtime   bool    `mapstructure:"realtime"`
	Frequency  float64 `mapstructure:"frequency"`
	Amplitudes string  `mapstructure:"amplitudes"`
	Noise      float64 `mapstructure:"noise"`
	Duration   float64 `mapstructure:"duration"`

	Quiet    bool   `mapstructure:"quiet"`
	Parquet  string `mapstructure:"parquet"`
	Store    string `mapstructure:"store"`
	StoreDSN string `mapstructure:"store-dsn"`
	Metric   bool   `mapstructure:"metric"`
}

// Source describes the chunk source. Signals are indices of file
// signals or channels to read: EDF source reads first two signals by
// default, WAV source reads all channels. Frequency, Amplitudes, Noise
// and Duration in seconds are used by synthetic source only.
type Source struct {
	Kind       SourceKind
	Path       string
	Signals    []int
	ChunkSize  int
	Realtime   bool
	Frequency  float64
	Amplitudes []float64
	Noise      float64
	Duration   float64
}

// Config is validated configuration.
type Config struct {
	Pipe     pipe.Config
	Source   Source
	Console  bool
	Parquet  string
	Store    store.Backend
	StoreDSN string
	Metric   bool
}

// SetDefaults registers default values.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sample-rate", DefaultSampleRate)
	v.SetDefault("band", DefaultBand)
	v.SetDefault("filter-type", filter.Bandpass.String())
	v.SetDefault("low-cut", 0.0)
	v.SetDefault("high-cut", 0.0)
	v.SetDefault("filter-order", filter.DefaultOrder)
	v.SetDefault("epoch-duration", DefaultEpochDuration)
	v.SetDefault("epoch-interval", DefaultEpochInterval)
	v.SetDefault("moving-avg-epochs", DefaultMovingAvgEpochs)
	v.SetDefault("channel-a", 0)
	v.SetDefault("channel-b", 1)
	v.SetDefault("workers", 1)
	v.SetDefault("source", string(Synthetic))
	v.SetDefault("input", "")
	v.SetDefault("signals", "")
	v.SetDefault("realtime", false)
	v.SetDefault("chunk-size", DefaultChunkSize)
	v.SetDefault("frequency", DefaultFrequency)
	v.SetDefault("amplitudes", DefaultAmplitudes)
	v.SetDefault("noise", 0.0)
	v.SetDefault("duration", DefaultDuration)
	v.SetDefault("quiet", false)
	v.SetDefault("parquet", "")
	v.SetDefault("metric", false)
	v.SetDefault("store", string(store.FileBackend))
	v.SetDefault("store-dsn", "")
}

// Load reads config file and environment into Raw. If file is empty,
// .asymmetry.yaml is looked up in the working and home directories and
// its absence is not an error.
func Load(v *viper.Viper, file string) (Raw, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Raw{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var raw Raw
	if err := v.Unmarshal(&raw); err != nil {
		return Raw{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return raw, nil
}

// Validate converts raw values into Config. Returned error matches
// pipe.ErrConfig.
func (r Raw) Validate() (Config, error) {
	p, err := r.pipe()
	if err != nil {
		return Config{}, err
	}
	src, err := r.source()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", pipe.ErrConfig, err)
	}
	backend, err := store.ParseBackend(r.Store)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", pipe.ErrConfig, err)
	}
	dsn := r.StoreDSN
	if backend == store.FileBackend && dsn == "" {
		dsn = DefaultStoreFile
	}
	return Config{
		Pipe:     p,
		Source:   src,
		Console:  !r.Quiet,
		Parquet:  r.Parquet,
		Store:    backend,
		StoreDSN: dsn,
		Metric:   r.Metric,
	}, nil
}

// pipe resolves filter band and validates processing parameters.
// Explicit cutoffs take precedence over named band.
func (r Raw) pipe() (pipe.Config, error) {
	spec := filter.Spec{
		LowCut:     r.LowCut,
		HighCut:    r.HighCut,
		Order:      r.FilterOrder,
		SampleRate: r.SampleRate,
	}
	if r.HighCut == 0 {
		if r.Band == "" {
			return pipe.Config{}, fmt.Errorf("%w: either band or cutoffs must be set", pipe.ErrConfig)
		}
		band, ok := filter.BandByName(r.Band)
		if !ok {
			return pipe.Config{}, fmt.Errorf("%w: unknown band %q", pipe.ErrConfig, r.Band)
		}
		spec.Kind = filter.Bandpass
		spec.LowCut, spec.HighCut = band.Low, band.High
	} else {
		kind, err := filter.ParseKind(r.FilterType)
		if err != nil {
			return pipe.Config{}, fmt.Errorf("%w: %w", pipe.ErrConfig, err)
		}
		spec.Kind = kind
	}

	c := pipe.Config{
		Filter:          spec,
		EpochDuration:   r.EpochDuration,
		EpochInterval:   r.EpochInterval,
		MovingAvgEpochs: r.MovingAvgEpochs,
		Channels:        [2]int{r.ChannelA, r.ChannelB},
		Workers:         r.Workers,
	}
	if err := c.Validate(); err != nil {
		return pipe.Config{}, err
	}
	return c, nil
}

func (r Raw) source() (Source, error) {
	s := Source{
		Kind:      SourceKind(strings.ToLower(strings.TrimSpace(r.Source))),
		Path:      r.Input,
		ChunkSize: r.ChunkSize,
		Realtime:  r.Realtime,
		Frequency: r.Frequency,
		Noise:     r.Noise,
		Duration:  r.Duration,
	}
	if s.ChunkSize < 1 {
		return Source{}, fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize)
	}
	var err error
	if s.Signals, err = ParseInts(r.Signals); err != nil {
		return Source{}, fmt.Errorf("signals: %w", err)
	}
	switch s.Kind {
	case Synthetic:
		if s.Amplitudes, err = ParseFloats(r.Amplitudes); err != nil {
			return Source{}, fmt.Errorf("amplitudes: %w", err)
		}
		if len(s.Amplitudes) < 2 {
			return Source{}, fmt.Errorf("synthetic source needs at least two amplitudes, got %d", len(s.Amplitudes))
		}
		if s.Noise < 0 {
			return Source{}, fmt.Errorf("noise must not be negative, got %v", s.Noise)
		}
		if s.Duration <= 0 {
			return Source{}, fmt.Errorf("duration must be positive, got %v", s.Duration)
		}
	case EDF, WAV:
		if s.Path == "" {
			return Source{}, fmt.Errorf("%s source requires input file", s.Kind)
		}
		if s.Kind == EDF && len(s.Signals) == 0 {
			s.Signals = []int{0, 1}
		}
	default:
		return Source{}, fmt.Errorf("unknown source %q", r.Source)
	}
	return s, nil
}

// ParseInts parses comma-separated integers. Empty string gives nil.
func ParseInts(s string) ([]int, error) {
	var result []int
	for _, field := range fields(s) {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ParseFloats parses comma-separated floats. Empty string gives nil.
func ParseFloats(s string) ([]float64, error) {
	var result []float64
	for _, field := range fields(s) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func fields(s string) []string {
	var result []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			result = append(result, f)
		}
	}
	return result
}

package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/dudk/asymmetry/config"
	"github.com/dudk/asymmetry/signal"
	"github.com/dudk/asymmetry/source/edf"
	"github.com/dudk/asymmetry/source/synthetic"
	"github.com/dudk/asymmetry/source/wav"
)

type generateCommand struct {
	out        string
	sampleRate int
	frequency  float64
	amplitudes string
	noise      float64
	duration   float64
	seed       int64
}

func newGenerateCmd() *cobra.Command {
	g := &generateCommand{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic recording into .edf or .wav file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := g.run(); err != nil {
				return err
			}
			cmd.Printf("Written %s\n", g.out)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&g.out, "out", "", "output file, format is defined by extension (required)")
	fs.IntVar(&g.sampleRate, "sample-rate", config.DefaultSampleRate, "sample rate in Hz")
	fs.Float64Var(&g.frequency, "frequency", config.DefaultFrequency, "sine frequency in Hz")
	fs.StringVar(&g.amplitudes, "amplitudes", config.DefaultAmplitudes, "comma-separated channel amplitudes")
	fs.Float64Var(&g.noise, "noise", 0, "standard deviation of noise")
	fs.Float64Var(&g.duration, "duration", config.DefaultDuration, "duration in seconds")
	fs.Int64Var(&g.seed, "seed", 1, "noise seed")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (g *generateCommand) run() error {
	amplitudes, err := config.ParseFloats(g.amplitudes)
	if err != nil {
		return fmt.Errorf("amplitudes: %w", err)
	}
	p := synthetic.Pump{
		SampleRate: g.sampleRate,
		Frequency:  g.frequency,
		Amplitudes: amplitudes,
		Noise:      g.noise,
		Samples:    signal.SamplesOf(g.sampleRate, g.duration),
		Seed:       g.seed,
	}
	data, err := p.Generate()
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(g.out)); ext {
	case ".wav":
		// wav holds values within [-1, 1]
		if m := peak(data...); m > 1 {
			for i := range data {
				floats.Scale(1/m, data[i])
			}
		}
		return wav.Write(g.out, g.sampleRate, signal.BitDepth16, data)
	case ".edf":
		labels := make([]edf.Label, len(amplitudes))
		for i := range amplitudes {
			bound := peak(data[i])
			if bound == 0 {
				bound = 1
			}
			labels[i] = edf.Label{
				Name:      fmt.Sprintf("CH%d", i+1),
				Dimension: "uV",
				Min:       -bound,
				Max:       bound,
			}
		}
		return edf.Write(g.out, g.sampleRate, labels, data)
	default:
		return fmt.Errorf("unsupported output format %q, must be .edf or .wav", ext)
	}
}

// peak returns maximum absolute value.
func peak(channels ...[]float64) float64 {
	var p float64
	for _, c := range channels {
		if len(c) == 0 {
			continue
		}
		p = math.Max(p, math.Max(floats.Max(c), -floats.Min(c)))
	}
	return p
}

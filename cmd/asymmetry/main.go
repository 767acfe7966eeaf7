// Command asymmetry computes the streaming asymmetry score of two
// channels of a multi-channel signal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dudk/asymmetry/config"
	"github.com/dudk/asymmetry/log"
)

// Linker flags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	successExitCode = 0
	errorExitCode   = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		os.Exit(errorExitCode)
	}
	os.Exit(successExitCode)
}

// app is shared by commands of a single invocation.
type app struct {
	v   *viper.Viper
	log log.Logger
}

// load resolves and validates configuration.
func (a *app) load() (config.Config, error) {
	raw, err := config.Load(a.v, a.v.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}
	return raw.Validate()
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:   viper.New(),
		log: log.GetLogger(),
	}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:           "asymmetry",
		Short:         "Streaming EEG asymmetry score.",
		Long:          `Asymmetry filters a multi-channel signal, estimates band power of two channels and maps their log ratio into a 0-100 score.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.Int("sample-rate", config.DefaultSampleRate, "Sample rate of the signal in Hz")
	flags.String("band", config.DefaultBand, "Named frequency band: delta, theta, alpha, beta or gamma")
	flags.String("filter-type", "bandpass", "Filter type used with explicit cutoffs: bandpass, lowpass or highpass")
	flags.Float64("low-cut", 0, "Low cutoff in Hz, overrides band together with high cut")
	flags.Float64("high-cut", 0, "High cutoff in Hz, overrides band")
	flags.Int("filter-order", 4, "Butterworth filter order")
	flags.Float64("epoch-duration", config.DefaultEpochDuration, "Epoch length in seconds")
	flags.Float64("epoch-interval", config.DefaultEpochInterval, "Distance between epochs in seconds")
	flags.Int("moving-avg-epochs", config.DefaultMovingAvgEpochs, "Number of epochs and scores to average")
	flags.Int("channel-a", 0, "Index of channel A")
	flags.Int("channel-b", 1, "Index of channel B")
	flags.Int("workers", 1, "Number of concurrent spectral workers")
	flags.String("store", "file", "Score store: file, sqlite, postgres, mysql or none")
	flags.String("store-dsn", "", "Store file path or database connection string")
	if err := a.v.BindPFlags(flags); err != nil {
		a.log.Fatalf("Error binding root flags: %v", err)
	}

	root.AddCommand(
		newRunCmd(a),
		newBandsCmd(),
		newLatestCmd(a),
		newGenerateCmd(),
		newVersionCmd(),
	)
	return root
}

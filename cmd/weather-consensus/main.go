// Command weather-consensus aggregates current weather from several providers
// into a consensus view with insights, alerts and an optional narrated answer.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-consensus/internal/config"
	"github.com/i474232898/weather-consensus/internal/render"
	"github.com/i474232898/weather-consensus/internal/weather"
)

const serviceName = "weather-consensus"

// globalFlags holds the parsed values of the persistent flags.
type globalFlags struct {
	Format   string
	Strategy string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Multi-source weather consensus and analysis",
		Long: `weather-consensus queries every configured weather provider concurrently,
reconciles their readings into a consensus, derives comfort, severity and alerts,
and optionally asks a language model to narrate the result.

Quick start:
  weather-consensus analyze --location "Boston, MA, USA" --question "Do I need an umbrella?"
  weather-consensus serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.Format, "format", render.FormatTable, "output format: table|json")
	pf.StringVar(&flags.Strategy, "strategy", "", "consensus strategy: simple|weighted (overrides CONSENSUS_STRATEGY)")

	root.AddCommand(newAnalyzeCmd(flags), newServeCmd(flags))
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(flags *globalFlags) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.Strategy != "" {
		cfg.ConsensusStrategy = weather.Strategy(strings.ToLower(flags.Strategy))
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

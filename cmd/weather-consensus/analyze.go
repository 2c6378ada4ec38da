package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-consensus/internal/render"
)

func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	var location, question string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis and print the result",
		Example: `  weather-consensus analyze --location "London, UK"
  weather-consensus analyze -l "Denver, CO, USA" -q "Is it safe to hike?" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch flags.Format {
			case render.FormatTable, render.FormatJSON:
			default:
				return fmt.Errorf("unsupported format %q: use table or json", flags.Format)
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			d := buildDeps(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res := d.orchestrator.Run(ctx, location, question)
			if err := render.Render(cmd.OutOrStdout(), res, flags.Format); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("analysis failed: %s", res.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "location to analyze (default: DEFAULT_LOCATION)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "free-form question for the narrator")
	return cmd
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/swatches/internal/config"
	"github.com/dyluth/swatches/internal/printer"
	"github.com/dyluth/swatches/internal/render"
	"github.com/dyluth/swatches/internal/watch"
	"github.com/dyluth/swatches/pkg/swatch"
)

var (
	watchSaturation int
	watchLightness  int
	watchOutput     string
	watchWait       bool
	watchTimeout    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow discoveries made by other processes",
	Long: `Follow discoveries made by other swatches processes sharing the cache.

Stream Mode (default, redis backend only):
  Prints every color as another process discovers it. Filter with
  --saturation and --lightness.

Wait Mode (--wait):
  Polls the cache until a result for the given saturation and lightness
  exists, prints it, and exits.

Output Formats:
  table - Colored swatches (default)
  jsonl - One JSON object per color

Examples:
  # Stream all live discoveries
  swatches watch

  # Only colors at lightness 50
  swatches watch -l 50 --output=jsonl

  # Block until another process has cached saturation 80, lightness 40
  swatches watch --wait -s 80 -l 40 --timeout 2m`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVarP(&watchSaturation, "saturation", "s", 0, "Only colors at this saturation")
	watchCmd.Flags().IntVarP(&watchLightness, "lightness", "l", 0, "Only colors at this lightness")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", render.FormatNameTable, "Output format: table or jsonl")
	watchCmd.Flags().BoolVar(&watchWait, "wait", false, "Wait for a cached result instead of streaming")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", time.Minute, "How long --wait polls before giving up")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchOutput != render.FormatNameTable && watchOutput != render.FormatNameJSONL {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutput),
			[]string{"Valid formats: table, jsonl"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if watchWait {
		return runWatchWait(ctx, cmd, cfg)
	}

	if cfg.Cache.Backend != config.BackendRedis {
		return printer.Error(
			"live streaming requires redis",
			fmt.Sprintf("The configured cache backend is %q; only redis carries live events.", cfg.Cache.Backend),
			[]string{
				"Set cache.backend: redis in swatches.yml",
				"Wait for a cached result instead:\n  swatches watch --wait -s 100 -l 50",
			},
		)
	}

	st, client, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer st.Close()

	sub, err := client.SubscribeEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to swatch events: %w", err)
	}
	defer sub.Close()

	var filter watch.Filter
	if cmd.Flags().Changed("saturation") {
		filter.Saturation = &watchSaturation
	}
	if cmd.Flags().Changed("lightness") {
		filter.Lightness = &watchLightness
	}

	printer.Step("Watching for discoveries (namespace %s), Ctrl+C to stop\n", cfg.Cache.Namespace)

	return watch.StreamEvents(ctx, sub, filter,
		func(e *swatch.Event) error {
			if watchOutput == render.FormatNameJSONL {
				return render.WritePointJSON(printer.Stdout, e.Point)
			}
			printer.Printf("[%d%%/%d%%] ", e.Saturation, e.Lightness)
			printer.Swatch(e.Point)
			return nil
		},
		func(err error) {
			printer.Warning("%v\n", err)
		},
	)
}

func runWatchWait(ctx context.Context, cmd *cobra.Command, cfg *config.SwatchesConfig) error {
	saturation, lightness, err := resolveSL(cfg, watchSaturation, watchLightness,
		cmd.Flags().Changed("saturation"), cmd.Flags().Changed("lightness"))
	if err != nil {
		return err
	}

	st, _, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := watch.PollForSwatches(ctx, st, saturation, lightness, watch.DefaultPollInterval, watchTimeout)
	if err != nil {
		return printer.Error(
			"no result",
			err.Error(),
			[]string{fmt.Sprintf("Run the discovery yourself:\n  swatches discover -s %d -l %d", saturation, lightness)},
		)
	}

	return render.Write(printer.Stdout, watchOutput, render.Document{
		Saturation: saturation,
		Lightness:  lightness,
		Cached:     true,
		Total:      len(c),
		Swatches:   c,
	})
}

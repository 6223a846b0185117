package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dyluth/swatches/internal/cache"
	"github.com/dyluth/swatches/internal/discovery"
	"github.com/dyluth/swatches/internal/gate"
	"github.com/dyluth/swatches/internal/oracle"
	"github.com/dyluth/swatches/internal/printer"
	"github.com/dyluth/swatches/internal/render"
	"github.com/dyluth/swatches/pkg/swatch"
)

var (
	discoverSaturation  int
	discoverLightness   int
	discoverOutput      string
	discoverOffline     bool
	discoverNoCache     bool
	discoverSamples     int
	discoverConcurrency int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find every named color at a saturation and lightness",
	Long: `Find every distinct named color around the hue wheel at a fixed
saturation and lightness.

Colors are printed as they are found. A complete result is cached, so asking
again for the same saturation and lightness answers without any lookups.

Output Formats:
  table - Colored swatches as found, then a hue-ordered table (default)
  json  - One JSON document with the hue-ordered result
  jsonl - One JSON object per color, printed as each color is found

Examples:
  # Discover using the configured defaults (saturation 100, lightness 50)
  swatches discover

  # Pastels, without network access
  swatches discover -s 60 -l 80 --offline

  # Stream colors for scripting
  swatches discover --output=jsonl | jq -r .name

  # Ignore and bypass the cache
  swatches discover --no-cache`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVarP(&discoverSaturation, "saturation", "s", 0, "Saturation percent 0-100 (default from config)")
	discoverCmd.Flags().IntVarP(&discoverLightness, "lightness", "l", 0, "Lightness percent 0-100 (default from config)")
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", render.FormatNameTable, "Output format: table, json, or jsonl")
	discoverCmd.Flags().BoolVar(&discoverOffline, "offline", false, "Name colors with the built-in palette instead of the color API")
	discoverCmd.Flags().BoolVar(&discoverNoCache, "no-cache", false, "Skip the configured cache for this run")
	discoverCmd.Flags().IntVar(&discoverSamples, "samples", 0, "Initial evenly spaced probes (overrides config)")
	discoverCmd.Flags().IntVar(&discoverConcurrency, "concurrency", 0, "Maximum concurrent lookups (overrides config)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	switch discoverOutput {
	case render.FormatNameTable, render.FormatNameJSON, render.FormatNameJSONL:
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", discoverOutput),
			[]string{"Valid formats: table, json, jsonl"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	saturation, lightness, err := resolveSL(cfg, discoverSaturation, discoverLightness,
		cmd.Flags().Changed("saturation"), cmd.Flags().Changed("lightness"))
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	o, err := newOracle(cfg.API, discoverOffline)
	if err != nil {
		return fmt.Errorf("failed to create color oracle: %w", err)
	}

	engineCfg := discovery.Config{
		StartingSamples:  cfg.Algorithm.StartingSamples,
		ConcurrencyLimit: cfg.Algorithm.ConcurrencyLimit,
		Logger:           slog.Default(),
	}
	if discoverSamples != 0 {
		engineCfg.StartingSamples = discoverSamples
	}
	if discoverConcurrency != 0 {
		engineCfg.ConcurrencyLimit = discoverConcurrency
	}
	engine, err := discovery.NewEngine(o, engineCfg)
	if err != nil {
		return printer.Error("invalid discovery settings", err.Error(), []string{"--concurrency must be at least 1"})
	}

	var st store = cache.NewMemory()
	var opts []gate.Option
	opts = append(opts, gate.WithLogger(slog.Default()))
	if !discoverNoCache {
		configured, redisClient, err := openStore(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		st = configured
		if redisClient != nil {
			opts = append(opts, gate.WithPublisher(redisClient))
		}
	}
	defer st.Close()

	g, err := gate.New(engine, st, opts...)
	if err != nil {
		return err
	}
	defer g.Close()

	onColorFound := func(p swatch.ColorPoint) {
		switch discoverOutput {
		case render.FormatNameTable:
			printer.Swatch(p)
		case render.FormatNameJSONL:
			if err := render.WritePointJSON(printer.Stdout, p); err != nil {
				slog.Warn("failed to write color", "hue", p.Hue, "error", err)
			}
		}
	}

	result, err := g.Fetch(ctx, saturation, lightness, onColorFound)
	if err != nil {
		return reportDiscoverError(saturation, lightness, result, err)
	}

	if result.Cached && discoverOutput == render.FormatNameJSONL {
		// Nothing was streamed for a cache hit.
		return render.FormatJSONL(printer.Stdout, result.Swatches)
	}

	doc := documentFor(result)
	switch discoverOutput {
	case render.FormatNameTable:
		if !result.Cached {
			printer.Println()
		}
		render.FormatTable(printer.Stdout, doc)
		return nil
	case render.FormatNameJSON:
		return render.FormatJSON(printer.Stdout, doc)
	}
	return nil
}

// reportDiscoverError prints a failed run. Cancellation is reported as a
// warning and is not an error; anything else is reported once.
func reportDiscoverError(saturation, lightness int, result *gate.Result, err error) error {
	found := 0
	if result != nil {
		found = result.Total
	}

	if discovery.IsCanceled(err) {
		printer.Warning("Discovery canceled after %d colors; nothing was cached\n", found)
		return nil
	}

	details := map[string]string{
		"Saturation":   strconv.Itoa(saturation),
		"Lightness":    strconv.Itoa(lightness),
		"Colors found": strconv.Itoa(found),
	}

	var oracleErr *oracle.Error
	if errors.As(err, &oracleErr) {
		details["Hue"] = strconv.Itoa(oracleErr.Hue)
		return printer.ErrorWithContext(
			"color lookup failed",
			err.Error(),
			details,
			[]string{
				"Check network access to the color API (api.base_url in swatches.yml)",
				"Slow down requests: lower algorithm.concurrency_limit or set api.requests_per_second",
				"Work offline:\n  swatches discover --offline",
			},
		)
	}

	return printer.ErrorWithContext("discovery failed", err.Error(), details, nil)
}

func documentFor(r *gate.Result) render.Document {
	return render.Document{
		Saturation: r.Saturation,
		Lightness:  r.Lightness,
		Cached:     r.Cached,
		Total:      r.Total,
		Swatches:   r.Swatches,
	}
}

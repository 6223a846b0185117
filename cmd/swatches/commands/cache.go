package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/swatches/internal/printer"
	"github.com/dyluth/swatches/internal/render"
	"github.com/dyluth/swatches/pkg/swatch"
)

var (
	cacheSaturation int
	cacheLightness  int
	cacheOutput     string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached results",
	Long: `Inspect and manage results stored in the configured cache backend.

Examples:
  # Show the cached colors for saturation 100, lightness 50
  swatches cache get -s 100 -l 50

  # Forget one result
  swatches cache remove -s 100 -l 50

  # Forget everything
  swatches cache clear`,
}

var cacheGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a cached result",
	RunE:  runCacheGet,
}

var cacheRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a cached result",
	RunE:  runCacheRemove,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached result",
	RunE:  runCacheClear,
}

func init() {
	for _, c := range []*cobra.Command{cacheGetCmd, cacheRemoveCmd} {
		c.Flags().IntVarP(&cacheSaturation, "saturation", "s", 0, "Saturation percent 0-100 (default from config)")
		c.Flags().IntVarP(&cacheLightness, "lightness", "l", 0, "Lightness percent 0-100 (default from config)")
	}
	cacheGetCmd.Flags().StringVarP(&cacheOutput, "output", "o", render.FormatNameTable, "Output format: table, json, or jsonl")

	cacheCmd.AddCommand(cacheGetCmd, cacheRemoveCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	saturation, lightness, err := resolveSL(cfg, cacheSaturation, cacheLightness,
		cmd.Flags().Changed("saturation"), cmd.Flags().Changed("lightness"))
	if err != nil {
		return err
	}

	st, _, err := openStore(cmd.Context(), cfg.Cache)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.Get(cmd.Context(), saturation, lightness)
	if swatch.IsNotFound(err) {
		return printer.Error(
			"not cached",
			fmt.Sprintf("No result is cached for saturation %d%%, lightness %d%% (backend: %s).", saturation, lightness, cfg.Cache.Backend),
			[]string{fmt.Sprintf("Run a discovery:\n  swatches discover -s %d -l %d", saturation, lightness)},
		)
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	doc := render.Document{
		Saturation: saturation,
		Lightness:  lightness,
		Cached:     true,
		Total:      len(c),
		Swatches:   c,
	}
	if err := render.Write(printer.Stdout, cacheOutput, doc); err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: table, json, jsonl"})
	}
	return nil
}

func runCacheRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	saturation, lightness, err := resolveSL(cfg, cacheSaturation, cacheLightness,
		cmd.Flags().Changed("saturation"), cmd.Flags().Changed("lightness"))
	if err != nil {
		return err
	}

	st, _, err := openStore(cmd.Context(), cfg.Cache)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Remove(cmd.Context(), saturation, lightness); err != nil {
		return fmt.Errorf("failed to remove cached result: %w", err)
	}

	printer.Success("Removed %s\n", swatch.CacheKey(saturation, lightness))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, _, err := openStore(cmd.Context(), cfg.Cache)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	printer.Success("Cleared %d cached results (backend: %s)\n", n, cfg.Cache.Backend)
	return nil
}

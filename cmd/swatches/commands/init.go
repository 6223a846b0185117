package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/swatches/internal/config"
	"github.com/dyluth/swatches/internal/printer"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default swatches.yml",
	Long: `Write a swatches.yml holding every setting at its default value.

The file is written to the --config path (swatches.yml in the current
directory unless overridden).

Use --force to overwrite an existing file.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.Save(configPath, config.Default(), forceInit); err != nil {
		return printer.Error(
			"initialization failed",
			err.Error(),
			[]string{"Overwrite it:\n  swatches init --force"},
		)
	}

	printer.Success("Wrote %s\n", configPath)
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Choose a cache backend (memory, redis, or sqlite) in %s\n", configPath)
	printer.Info("  2. Run: swatches discover\n")

	return nil
}

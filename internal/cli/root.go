// Package cli implements the furnishctl ingest tool: catalog loading from CSV
// and vector index population.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ikarus-cloud/furnish/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "furnishctl",
	Short: "Catalog ingest tool for the furnish API",
	Long: `furnishctl loads the product catalog and populates the vector index.

Example usage:
  furnishctl load products.csv   # Load a catalog CSV into the database
  furnishctl index               # Embed the catalog into the vector index`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(config.GetEnv())
		return err
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

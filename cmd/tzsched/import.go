package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tzsched/internal/config"
	"tzsched/internal/zonedb"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <cities.txt> <countryInfo.txt>",
		Short: "Build the city database from geonames dumps",
		Long: `Import the geonames city and country dumps into the local database.
Expected inputs are the tab-separated cities15000.txt and
countryInfo.txt files from download.geonames.org.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := zonedb.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Importing into %s...\n", cfg.DBPath)

			stats, err := db.Import(args[0], args[1])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}

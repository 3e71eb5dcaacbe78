package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tzsched/internal/config"
	"tzsched/internal/rowdata"
	"tzsched/internal/zonedb"
)

func findCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Search the zone directory",
		Long: `Search cities by free text. Every query word must prefix-match a
word of the city or country name. Output is TSV: key, full name,
IANA zone, population.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := zonedb.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			dir, err := zonedb.Load(db)
			if err != nil {
				return fmt.Errorf("load zone directory: %w", err)
			}

			svc := rowdata.New(dir)
			zones, err := svc.ResolveZoneSuggestions(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			if len(zones) == 0 {
				fmt.Fprintln(os.Stderr, "No zones found.")
				return nil
			}

			for _, z := range zones {
				city := dir.ByKey(z.Key)
				var population int64
				if city != nil {
					population = city.Population
				}
				fmt.Printf("%s\t%s\t%s\t%d\n", z.Key, z.FullName, z.TZ, population)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 8, "Max results (capped at 50)")

	return cmd
}

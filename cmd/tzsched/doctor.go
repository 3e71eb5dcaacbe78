package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tzsched/internal/config"
	"tzsched/internal/zonedb"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, city database, and tz data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  DB path:   %s\n", cfg.DBPath)
			if cfg.HomeZone != "" {
				fmt.Printf("  Home zone: %s\n", cfg.HomeZone)
			}
			if len(cfg.Zones) > 0 {
				fmt.Printf("  Zones:     %v\n", cfg.Zones)
			}

			fmt.Println("\n=== Database ===")
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'tzsched import' first)")
				return nil
			}

			db, err := zonedb.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			cityCount, err := db.CityCount()
			if err != nil {
				return fmt.Errorf("count cities: %w", err)
			}
			countryCount, err := db.CountryCount()
			if err != nil {
				return fmt.Errorf("count countries: %w", err)
			}
			fmt.Printf("  Cities:    %d\n", cityCount)
			fmt.Printf("  Countries: %d\n", countryCount)
			if cityCount == 0 {
				fmt.Println("  Status: EMPTY (run 'tzsched import')")
			} else {
				fmt.Println("  Status: OK")
			}

			fmt.Println("\n=== Time zone data ===")
			if loc, err := time.LoadLocation("Europe/Zagreb"); err != nil {
				fmt.Printf("  LoadLocation error: %v\n", err)
			} else {
				name, offset := time.Now().In(loc).Zone()
				fmt.Printf("  Europe/Zagreb resolves: %s (UTC%+d)\n", name, offset/3600)
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

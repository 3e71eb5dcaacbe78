package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tzsched/internal/civil"
	"tzsched/internal/config"
	"tzsched/internal/rowdata"
	"tzsched/internal/session"
	"tzsched/internal/table"
	"tzsched/internal/tui"
	"tzsched/internal/zonedb"
)

func tableCmd() *cobra.Command {
	var token, dateKey string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Interactive world time table",
		Long: `Show the interactive time comparison table. Zones and the home
selection can be restored from a shareable link token:

  tzsched table --tz 'HR::Zagreb!,US::Boston::MA'

The token lists location keys in display order, "/" escaped as "::",
with a trailing "!" marking the home zone.`,
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
			if dateKey == "" {
				dateKey = civil.Now().DateKey()
			} else if _, _, _, err := civil.ParseDateKey(dateKey); err != nil {
				return err
			}
			coll := table.New(svc, dateKey)

			if token == "" && len(cfg.Zones) > 0 {
				token = session.Encode(cfg.Zones, cfg.HomeZone)
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(svc, coll, token)
			}

			// Piped output: build the table once and print it.
			if token != "" {
				entries := session.Decode(token)
				if err := session.Reconcile(context.Background(), coll, entries); err != nil {
					return err
				}
			}
			for _, r := range coll.Rows() {
				printRow(os.Stdout, r)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "tz", "", "Session token to restore (zones and home)")
	cmd.Flags().StringVar(&dateKey, "date", "", "Date to display (DD-MM-YYYY, default today)")

	return cmd
}

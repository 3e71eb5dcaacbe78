package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tzsched/internal/civil"
	"tzsched/internal/config"
	"tzsched/internal/rowdata"
	"tzsched/internal/table"
	"tzsched/internal/zonedb"
)

func rowCmd() *cobra.Command {
	var homeQuery, dateKey string

	cmd := &cobra.Command{
		Use:   "row <zone>",
		Short: "Print one zone's day row as text",
		Args:  cobra.ExactArgs(1),
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
			}

			ctx := context.Background()
			coll := table.New(svc, dateKey)
			if homeQuery != "" {
				if _, err := coll.AddByKey(ctx, homeQuery); err != nil && err != table.ErrAlreadyPresent {
					return fmt.Errorf("home zone: %w", err)
				}
			}
			row, err := coll.AddByKey(ctx, args[0])
			if err == table.ErrAlreadyPresent {
				// away == home; the row is already in the collection
				for _, r := range coll.Rows() {
					printRow(cmd.OutOrStdout(), r)
				}
				return nil
			}
			if err != nil {
				return err
			}
			printRow(cmd.OutOrStdout(), row)
			return nil
		},
	}

	cmd.Flags().StringVar(&homeQuery, "home", "", "Home zone the offsets are computed against")
	cmd.Flags().StringVar(&dateKey, "date", "", "Date (DD-MM-YYYY, default today)")

	return cmd
}

func printRow(w io.Writer, r *table.Row) {
	fmt.Fprintf(w, "%s [%s]", r.Zone.FullName, r.Key)
	if r.Offsets != nil {
		hours := r.Offsets.Mean / 3600
		if hours == 0 {
			fmt.Fprintf(w, "  (home)")
		} else {
			fmt.Fprintf(w, "  (%+g hours from home)", hours)
		}
	}
	fmt.Fprintln(w)

	var hours []string
	for _, c := range r.Cells {
		hours = append(hours, fmt.Sprintf("%02d", c.Slot.Hour))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(hours, " "))

	if r.Transition != nil {
		hours := float64(r.Transition.ToOffset-r.Transition.FromOffset) / 3600
		fmt.Fprintf(w, "  next change: %s to %s (%+g hours) on %s\n",
			r.Transition.FromName, r.Transition.ToName, hours, r.Transition.Activates)
	}
}

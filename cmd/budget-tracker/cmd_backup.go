package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recipereverie-droid/Budget-Tracker/internal/worker"
)

func (a *app) backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect and repair the spreadsheet backup",
	}

	var month string
	list := &cobra.Command{
		Use:   "list",
		Short: "List backed up rows for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, m, err := parseMonth(month, time.Now().UTC())
			if err != nil {
				return err
			}
			backup, err := a.backend.OpenBackup()
			if err != nil {
				return err
			}
			rows, err := backup.ListRows(cmd.Context(), year, m)
			if err != nil {
				return err
			}
			return a.print(rows)
		},
	}
	list.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default current month)")

	var backfillMonth string
	backfill := &cobra.Command{
		Use:   "backfill",
		Short: "Append the user's transactions missing from the backup",
		Long: `Backfill compares the user's transactions in a month with the rows in
the spreadsheet and appends the missing ones. Use it after the worker was
down or events were lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			year, m, err := parseMonth(backfillMonth, time.Now().UTC())
			if err != nil {
				return err
			}
			backup, err := a.backend.OpenBackup()
			if err != nil {
				return err
			}
			w := worker.NewEventWorker(a.backend.Store, backup, nil, a.logger)
			n, err := w.Backfill(cmd.Context(), backup, userID, year, m)
			if err != nil {
				return err
			}
			return a.print(map[string]any{"userId": userID, "month": fmt.Sprintf("%04d-%02d", year, int(m)), "written": n})
		},
	}
	backfill.Flags().StringVar(&backfillMonth, "month", "", "Month as YYYY-MM (default current month)")

	cmd.AddCommand(list, backfill)
	return cmd
}

func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q: want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

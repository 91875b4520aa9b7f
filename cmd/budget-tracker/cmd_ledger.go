package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/rules"
	"github.com/recipereverie-droid/Budget-Tracker/internal/validation"
)

func (a *app) categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage income and expense categories",
	}

	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a category",
		Example: `  budget-tracker category create --user u1 --data '{"name":"Books","icon":"📚","type":"expense","color":"#22C55E"}'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			raw, err := a.input()
			if err != nil {
				return err
			}
			c, err := a.backend.Ledger.CreateCategory(cmd.Context(), userID, raw)
			if err != nil {
				return err
			}
			return a.print(c)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			cats, err := a.backend.Ledger.Categories(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return a.print(cats)
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func (a *app) transactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transaction",
		Aliases: []string{"tx"},
		Short:   "Record and list transactions",
	}

	record := &cobra.Command{
		Use:     "record",
		Short:   "Record a transaction and update the matching budgets",
		Example: `  echo '{"categoryId":"c1","amount":"420.00","description":"Groceries","type":"expense","paymentMethod":"upi","date":"2025-03-14"}' | budget-tracker tx record --user u1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			raw, err := a.input()
			if err != nil {
				return err
			}
			rec, err := a.backend.Ledger.RecordTransaction(cmd.Context(), userID, raw)
			if err != nil {
				return err
			}
			return a.print(rec)
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions dated in [from, to); defaults to the current month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			r, err := dateRange(from, to, time.Now().UTC())
			if err != nil {
				return err
			}
			txns, err := a.backend.Ledger.Transactions(cmd.Context(), userID, r)
			if err != nil {
				return err
			}
			return a.print(txns)
		},
	}
	list.Flags().StringVar(&from, "from", "", "First day included (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "First day excluded (YYYY-MM-DD)")

	cmd.AddCommand(record, list)
	return cmd
}

// dateRange builds a half-open range from optional bounds. Missing bounds
// fall back to the month containing now.
func dateRange(from, to string, now time.Time) (core.DateRange, error) {
	r := rules.MonthWindow{}.Window(now)
	if from != "" {
		t, err := validation.ParseDate(from)
		if err != nil {
			return core.DateRange{}, fmt.Errorf("invalid --from: %w", err)
		}
		r.Start = t
	}
	if to != "" {
		t, err := validation.ParseDate(to)
		if err != nil {
			return core.DateRange{}, fmt.Errorf("invalid --to: %w", err)
		}
		r.End = t
	}
	if !r.End.After(r.Start) {
		return core.DateRange{}, fmt.Errorf("empty range: --to must be after --from")
	}
	return r, nil
}

package main

import (
	"github.com/spf13/cobra"
)

func (a *app) budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage per-category spending budgets",
	}

	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a budget on an expense category",
		Example: `  budget-tracker budget create --user u1 --data '{"categoryId":"c1","amount":"500","period":"monthly","alertThreshold":80}'`,
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
			b, err := a.backend.Ledger.CreateBudget(cmd.Context(), userID, raw)
			if err != nil {
				return err
			}
			return a.print(b)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show every budget with its utilization and alert state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			st, err := a.backend.Ledger.BudgetStatus(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return a.print(st)
		},
	}

	reset := &cobra.Command{
		Use:   "reset BUDGET_ID",
		Short: "Start a new period: set spent back to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			if err := a.backend.Ledger.ResetBudget(cmd.Context(), userID, args[0]); err != nil {
				return err
			}
			return a.print(map[string]string{"budgetId": args[0], "status": "reset"})
		},
	}

	cmd.AddCommand(create, status, reset)
	return cmd
}

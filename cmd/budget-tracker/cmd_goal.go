package main

import (
	"github.com/spf13/cobra"
)

func (a *app) goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage savings goals",
	}

	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a savings goal",
		Example: `  budget-tracker goal create --user u1 --data '{"name":"Trip","targetAmount":"1000","targetDate":"2025-12-31"}'`,
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
			g, err := a.backend.Ledger.CreateGoal(cmd.Context(), userID, raw)
			if err != nil {
				return err
			}
			return a.print(g)
		},
	}

	contribute := &cobra.Command{
		Use:     "contribute GOAL_ID",
		Short:   "Add an amount to a goal and report a crossed milestone",
		Example: `  budget-tracker goal contribute g1 --user u1 --data '{"amount":"250"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			raw, err := a.input()
			if err != nil {
				return err
			}
			res, err := a.backend.Ledger.ContributeToGoal(cmd.Context(), userID, args[0], raw)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			goals, err := a.backend.Ledger.Goals(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return a.print(goals)
		},
	}

	cmd.AddCommand(create, contribute, list)
	return cmd
}

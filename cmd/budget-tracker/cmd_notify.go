package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/validation"
)

type summaryOutput struct {
	Day          string             `json:"day"`
	Income       core.Money         `json:"income"`
	Expense      core.Money         `json:"expense"`
	Net          core.Money         `json:"net"`
	Transactions int                `json:"transactions"`
	Notification *core.Notification `json:"notification,omitempty"`
}

func (a *app) summaryCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total one day of transactions and raise the daily summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			at := time.Now().UTC()
			if day != "" {
				if at, err = validation.ParseDate(day); err != nil {
					return fmt.Errorf("invalid --day: %w", err)
				}
			}
			sum, note, err := a.backend.Ledger.DailySummary(cmd.Context(), userID, at)
			if err != nil {
				return err
			}
			return a.print(summaryOutput{
				Day:          sum.Day.Start.Format("2006-01-02"),
				Income:       sum.Income,
				Expense:      sum.Expense,
				Net:          core.Money{Cents: sum.Net()},
				Transactions: sum.Transactions,
				Notification: note,
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "Day to summarize (YYYY-MM-DD, default today in UTC)")
	return cmd
}

func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "List and acknowledge notifications",
	}

	var unread bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			notes, err := a.backend.Ledger.Notifications(cmd.Context(), userID, unread)
			if err != nil {
				return err
			}
			return a.print(notes)
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")

	read := &cobra.Command{
		Use:   "read NOTIFICATION_ID",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			if err := a.backend.Ledger.MarkNotificationRead(cmd.Context(), userID, args[0]); err != nil {
				return err
			}
			return a.print(map[string]any{"notificationId": args[0], "isRead": true})
		},
	}

	cmd.AddCommand(list, read)
	return cmd
}

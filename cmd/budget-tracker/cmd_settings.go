package main

import (
	"github.com/spf13/cobra"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change application settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the user's settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			st, err := a.backend.Ledger.Settings(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return a.print(st)
		},
	}

	update := &cobra.Command{
		Use:     "update",
		Short:   "Apply a partial settings update",
		Example: `  budget-tracker settings update --user u1 --data '{"theme":"dark","budgetAlerts":false}'`,
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
			st, err := a.backend.Ledger.UpdateSettings(cmd.Context(), userID, raw)
			if err != nil {
				return err
			}
			return a.print(st)
		},
	}

	var pin string
	setPIN := &cobra.Command{
		Use:   "pin",
		Short: "Set the app-lock PIN and enable the app lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			if err := a.backend.Ledger.SetAppLockPIN(cmd.Context(), userID, pin); err != nil {
				return err
			}
			return a.print(map[string]any{"userId": userID, "appLockEnabled": true})
		},
	}
	setPIN.Flags().StringVar(&pin, "pin", "", "4 to 6 digit PIN")
	_ = setPIN.MarkFlagRequired("pin")

	var check string
	verifyPIN := &cobra.Command{
		Use:   "verify-pin",
		Short: "Check a PIN against the stored app-lock PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			if err := a.backend.Ledger.VerifyPIN(cmd.Context(), userID, check); err != nil {
				return err
			}
			return a.print(map[string]any{"userId": userID, "valid": true})
		},
	}
	verifyPIN.Flags().StringVar(&check, "pin", "", "PIN to check")
	_ = verifyPIN.MarkFlagRequired("pin")

	var biometricOn bool
	biometric := &cobra.Command{
		Use:     "biometric",
		Short:   "Turn biometric unlock on or off",
		Example: `  budget-tracker settings biometric --user u1 --enabled=false`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.requireUser()
			if err != nil {
				return err
			}
			if err := a.backend.Ledger.SetBiometric(cmd.Context(), userID, biometricOn); err != nil {
				return err
			}
			return a.print(map[string]any{"userId": userID, "biometricEnabled": biometricOn})
		},
	}
	biometric.Flags().BoolVar(&biometricOn, "enabled", true, "enable biometric unlock")

	cmd.AddCommand(show, update, setPIN, verifyPIN, biometric)
	return cmd
}

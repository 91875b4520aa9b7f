package main

import (
	"github.com/spf13/cobra"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register users and check credentials",
	}

	create := &cobra.Command{
		Use:     "create",
		Short:   "Register a user with default settings and categories",
		Example: `  budget-tracker user create --data '{"username":"asha","password":"s3cret!"}'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := a.input()
			if err != nil {
				return err
			}
			u, err := a.backend.Ledger.RegisterUser(cmd.Context(), raw)
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}

	var username, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Verify a username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.backend.Ledger.VerifyPassword(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}
	login.Flags().StringVar(&username, "username", "", "Username")
	login.Flags().StringVar(&password, "password", "", "Password")
	_ = login.MarkFlagRequired("username")
	_ = login.MarkFlagRequired("password")

	cmd.AddCommand(create, login)
	return cmd
}

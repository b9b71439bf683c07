// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.jetify.com/nps/internal/session"
	"go.jetify.com/nps/internal/ux"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the users signed in on this machine",
	}

	cmd.AddCommand(loginCmd())
	cmd.AddCommand(logoutCmd())
	cmd.AddCommand(switchCmd())
	cmd.AddCommand(whoamiCmd())
	cmd.AddCommand(listUsersCmd())
	return cmd
}

func loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login <user-id>",
		Short: "Sign a user in and make them the primary user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			user := session.User{ID: args[0], Email: email}
			if err := s.Login(user); err != nil {
				return err
			}
			ux.Fsuccess(cmd.ErrOrStderr(), "signed in as %s\n", user)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address of the user")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [user-id]",
		Short: "Sign a user out (the primary user by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			} else {
				if id, err = primaryUserID(s); err != nil {
					return err
				}
			}
			if err := s.Logout(id); err != nil {
				return err
			}
			ux.Fsuccess(cmd.ErrOrStderr(), "signed out %s\n", id)
			return nil
		},
	}
}

func switchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <user-id>",
		Short: "Make a signed-in user the primary user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			return s.Switch(args[0])
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the primary user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			primary, err := s.Primary()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !primary.IsPresent() {
				fmt.Fprintln(w, "Not logged in")
				return nil
			}
			u, _ := primary.Get()
			fmt.Fprintln(w, u)
			return nil
		},
	}
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List signed-in users, marking the primary one with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			users, err := s.Users()
			if err != nil {
				return err
			}
			primary, err := s.Primary()
			if err != nil {
				return err
			}
			for _, u := range users {
				marker := " "
				if p, err := primary.Get(); err == nil && p.ID == u.ID {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, u)
			}
			return nil
		},
	}
}

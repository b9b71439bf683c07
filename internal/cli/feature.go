// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/featureflag/flagstore"
	"go.jetify.com/nps/internal/session"
)

type featureCmdFlags struct {
	user string
}

func featureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Inspect and override feature flags",
	}
	cmd.AddCommand(featureSetCmd())
	cmd.AddCommand(featureUnsetCmd())
	cmd.AddCommand(featureListCmd())
	cmd.AddCommand(featureSwitchesCmd())
	return cmd
}

func (f *featureCmdFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "", "user to apply to (defaults to the primary user)")
}

// userID returns the --user flag or, if it's empty, the primary user.
func (f *featureCmdFlags) userID() (string, error) {
	if f.user != "" {
		return f.user, nil
	}
	s, err := openSession()
	if err != nil {
		return "", err
	}
	return primaryUserID(s)
}

func primaryUserID(s *session.Store) (string, error) {
	primary, err := s.Primary()
	if err != nil {
		return "", err
	}
	u, err := primary.Get()
	if err != nil {
		return "", usererr.WithHint(usererr.New("nobody is signed in"), "nps auth login <user-id>")
	}
	return u.ID, nil
}

func openFlagStore() (*flagstore.Store, error) {
	return flagstore.New(flagstore.DefaultPath())
}

func featureSetCmd() *cobra.Command {
	flags := featureCmdFlags{}
	cmd := &cobra.Command{
		Use:   "set <feature> <true|false>",
		Short: "Override a feature flag for a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return usererr.New("%q is not a boolean", args[1])
			}
			userID, err := flags.userID()
			if err != nil {
				return err
			}
			store, err := openFlagStore()
			if err != nil {
				return err
			}
			return store.Set(userID, featureflag.ID(args[0]), value)
		},
	}
	flags.register(cmd)
	return cmd
}

func featureUnsetCmd() *cobra.Command {
	flags := featureCmdFlags{}
	cmd := &cobra.Command{
		Use:   "unset <feature>",
		Short: "Remove a user's override so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.userID()
			if err != nil {
				return err
			}
			store, err := openFlagStore()
			if err != nil {
				return err
			}
			return store.Unset(userID, featureflag.ID(args[0]))
		},
	}
	flags.register(cmd)
	return cmd
}

func featureListCmd() *cobra.Command {
	flags := featureCmdFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feature flags and their values for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.userID()
			if err != nil {
				return err
			}
			store, err := openFlagStore()
			if err != nil {
				return err
			}
			states, err := store.List(userID)
			if err != nil {
				return err
			}
			for _, s := range states {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func featureSwitchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switches",
		Short: "List global switches and whether they are on",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			all := featureflag.All()
			names := lo.Keys(all)
			slices.Sort(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%t\n", name, all[name])
			}
		},
	}
}

// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/flow"
	"go.jetify.com/nps/internal/goutil"
	"go.jetify.com/nps/internal/nps"
	"go.jetify.com/nps/internal/session"
	"go.jetify.com/nps/internal/ux"
	"go.jetify.com/nps/internal/ux/stepper"
)

type eligibleCmdFlags struct {
	watch bool
}

func eligibleCmd() *cobra.Command {
	flags := eligibleCmdFlags{}
	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "Print whether the primary user should see the NPS prompt",
		Long: heredoc.Doc(`
			Prints true if there is a primary user, the NPS switch is on and the
			user's NPSFeedback flag is on, and false otherwise.

			With --watch, prints a new line every time the answer is recomputed
			because the primary user or their flags changed, until interrupted.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEligible(cmd, flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "keep printing as the answer changes")
	return cmd
}

func runEligible(cmd *cobra.Command, flags eligibleCmdFlags) error {
	sessions, err := openSession()
	if err != nil {
		return err
	}
	flagStore, err := openFlagStore()
	if err != nil {
		return err
	}

	observe := nps.NewObserveEligibility(
		func() flow.Flow[goutil.Optional[session.User]] {
			return sessions.ObservePrimaryUser(flags.watch)
		},
		func(userID string, id featureflag.ID) flow.Flow[featureflag.State] {
			return flagStore.Observe(userID, id, flags.watch)
		},
		featureflag.NPS.Enabled,
	)

	w := cmd.OutOrStdout()
	interactive := ux.IsTerminal(w)
	if interactive && flags.watch {
		return watchEligibility(cmd, observe.Observe())
	}
	return observe.Observe()(cmd.Context(), func(eligible bool) error {
		printEligibility(w, eligible, interactive)
		return nil
	})
}

// watchEligibility keeps the latest answer on a single status line instead of
// printing one line per change.
func watchEligibility(cmd *cobra.Command, eligibility flow.Flow[bool]) error {
	step := stepper.Start(cmd.OutOrStdout(), "checking eligibility")
	last := "unknown"
	err := eligibility(cmd.Context(), func(eligible bool) error {
		last = eligibilityWord(eligible)
		step.Display("%s (watching for changes, ^C to stop)", last)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		step.Fail("%v", err)
		return err
	}
	step.Stop("%s", last)
	return err
}

func eligibilityWord(eligible bool) string {
	if eligible {
		return "eligible"
	}
	return "not eligible"
}

func printEligibility(w io.Writer, eligible, interactive bool) {
	if !interactive {
		fmt.Fprintln(w, strconv.FormatBool(eligible))
		return
	}
	c := color.New(color.FgYellow)
	if eligible {
		c = color.New(color.FgHiGreen)
	}
	c.Fprintln(w, eligibilityWord(eligible))
}

// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetify.com/nps/internal/build"
	"go.jetify.com/nps/internal/cli/midcobra"
	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/featureflag/flagstore"
	"go.jetify.com/nps/internal/session"
)

var (
	debugMiddleware = midcobra.NewDebugMiddleware(
		midcobra.StateFile{Name: "session_file", Path: session.DefaultPath},
		midcobra.StateFile{Name: "features_file", Path: flagstore.DefaultPath},
	)
	traceMiddleware = &midcobra.TraceMiddleware{}
)

type rootCmdFlags struct {
	quiet   bool
	envFile string
}

func RootCmd() *cobra.Command {
	flags := rootCmdFlags{}
	command := &cobra.Command{
		Use:   "nps",
		Short: "Decide whether to ask the signed-in user for NPS feedback",
		Long: heredoc.Doc(`
			nps decides whether the primary signed-in user should be shown an NPS
			survey prompt. A user is eligible when the NPS switch is on
			(NPS_FEATURE_NPS) and their NPSFeedback feature flag is on.
		`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.quiet {
				cmd.SetErr(io.Discard)
			}
			return loadEnvFile(flags.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.AddCommand(authCmd())
	command.AddCommand(eligibleCmd())
	command.AddCommand(featureCmd())
	command.AddCommand(versionCmd())

	command.PersistentFlags().BoolVarP(
		&flags.quiet, "quiet", "q", false, "suppresses logs")
	command.PersistentFlags().StringVar(
		&flags.envFile, "env-file", "", "load environment variables (such as NPS_FEATURE_NPS) from a dotenv file")
	debugMiddleware.AttachToFlag(command.PersistentFlags(), "debug")
	traceMiddleware.AttachToFlag(command.PersistentFlags(), "trace")

	return command
}

func Execute(ctx context.Context, args []string) int {
	defer debug.Recover()
	exe := midcobra.New(RootCmd())
	exe.AddMiddleware(traceMiddleware)
	exe.AddMiddleware(midcobra.Telemetry(&midcobra.TelemetryOpts{
		AppName:      build.AppName,
		AppVersion:   build.Version,
		SentryDSN:    build.SentryDSN,
		TelemetryKey: build.TelemetryKey,
		SignedIn:     isSignedIn,
	}))
	exe.AddMiddleware(debugMiddleware)
	return exe.Execute(ctx, args)
}

func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// loadEnvFile applies a dotenv file to the process environment. Variables
// that are already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return usererr.New("env file %s does not exist", path)
		}
		return usererr.WithUserMessage(err, "could not load env file %s", path)
	}
	debug.Log("loaded environment from %s", path)
	return nil
}

func openSession() (*session.Store, error) {
	return session.NewStore(session.DefaultPath())
}

func isSignedIn() bool {
	s, err := openSession()
	if err != nil {
		return false
	}
	primary, err := s.Primary()
	return err == nil && primary.IsPresent()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, %s)\n",
				build.AppName, build.Version, build.Commit, build.CommitDate)
		},
	}
}

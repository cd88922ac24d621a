// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"syncbin-cli/internal/gitx"

	"github.com/spf13/cobra"
)

func (app *App) git() gitx.Git {
	return gitx.Git{Runner: app.Runner, Stdout: app.stdout, Stderr: app.stderr}
}

func newGitSquashCommand(app *App) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "git-squash <n>",
		Short: "Squash the last n commits into one",
		Long: `Squash the last n commits into one. The commit message defaults to the
subject of the oldest squashed commit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid commit count %q", args[0])
			}
			return toolResult(app.git().Squash(cmd.Context(), n, message))
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message of the squashed commit")
	return addVersionFlag(cmd)
}

func newGitResetToRemoteCommand(app *App) *cobra.Command {
	var branch, remote string
	cmd := &cobra.Command{
		Use:   "git-reset-to-remote",
		Short: "Fetch and hard-reset the branch to its remote state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return toolResult(app.git().ResetToRemote(cmd.Context(), remote, branch))
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "", "branch to reset to (default is the current branch)")
	cmd.Flags().StringVar(&remote, "remote", gitx.DefaultRemote, "remote to fetch from")
	return addVersionFlag(cmd)
}

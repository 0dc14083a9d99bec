package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/groovemind/djbooth/internal/models"
	"github.com/spf13/cobra"
)

// NewUserCmd creates the user command group
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect and reset listener penalty state",
	}

	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserStatusCmd())
	cmd.AddCommand(newUserResetCmd())

	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every listener with moderation state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAdminClient()

			var states []models.UserState
			if err := client.do(context.Background(), http.MethodGet, "/admin/users", nil, &states); err != nil {
				return err
			}

			if len(states) == 0 {
				fmt.Println("No listeners with moderation state")
				return nil
			}

			for _, state := range states {
				printUserState(state)
			}
			return nil
		},
	}
}

func newUserStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id>",
		Short: "Show one listener's moderation state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAdminClient()

			var state models.UserState
			path := "/admin/users/" + url.PathEscape(args[0]) + "/status"
			if err := client.do(context.Background(), http.MethodGet, path, nil, &state); err != nil {
				return err
			}

			printUserState(state)
			return nil
		},
	}
}

func newUserResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user-id>",
		Short: "Clear a listener's warnings, mutes and suspension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAdminClient()

			var state models.UserState
			path := "/admin/users/" + url.PathEscape(args[0]) + "/reset"
			if err := client.do(context.Background(), http.MethodPost, path, nil, &state); err != nil {
				return err
			}

			fmt.Printf("Reset %s\n", args[0])
			printUserState(state)
			return nil
		},
	}
}

func printUserState(state models.UserState) {
	fmt.Printf("  - User: %s\n", state.UserID)
	fmt.Printf("    Status: %s\n", state.Status)
	fmt.Printf("    Warnings: %d\n", state.Warnings)
	fmt.Printf("    Mutes: %d\n", state.Mutes)
	if state.MutedUntil != nil {
		fmt.Printf("    Muted until: %s\n", state.MutedUntil.Format(time.RFC3339))
	}
	if state.SuspendedUntil != nil {
		fmt.Printf("    Suspended until: %s\n", state.SuspendedUntil.Format(time.RFC3339))
	}
	if state.LastRequestAt != nil {
		fmt.Printf("    Last request: %s\n", state.LastRequestAt.Format(time.RFC3339))
	}
	fmt.Println()
}

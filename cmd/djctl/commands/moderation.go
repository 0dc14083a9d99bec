package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/groovemind/djbooth/internal/models"
	"github.com/spf13/cobra"
)

// moderationView mirrors the admin endpoint's wire form, durations in
// seconds.
type moderationView struct {
	WarningThreshold int `json:"warning_threshold"`
	MuteDurationSec  int `json:"mute_duration_seconds"`
	MuteThreshold    int `json:"mute_threshold"`
	SuspensionDurSec int `json:"suspension_duration_seconds"`
}

// NewModerationCmd creates the moderation command group
func NewModerationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moderation",
		Short: "Show and tune moderation thresholds",
	}

	cmd.AddCommand(newModerationGetCmd())
	cmd.AddCommand(newModerationSetCmd())

	return cmd
}

func newModerationGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current moderation configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAdminClient()

			var view moderationView
			if err := client.do(context.Background(), http.MethodGet, "/admin/moderation", nil, &view); err != nil {
				return err
			}

			printModerationView(view)
			return nil
		},
	}
}

func newModerationSetCmd() *cobra.Command {
	var (
		warningThreshold int
		muteDuration     int
		muteThreshold    int
		suspensionDur    int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update moderation thresholds on the running server",
		Long:  "Update moderation thresholds; only the flags you pass are changed. Penalties already in flight keep their original expiry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.ModerationConfigPatch
			if cmd.Flags().Changed("warning-threshold") {
				patch.WarningThreshold = &warningThreshold
			}
			if cmd.Flags().Changed("mute-duration") {
				patch.MuteDurationSec = &muteDuration
			}
			if cmd.Flags().Changed("mute-threshold") {
				patch.MuteThreshold = &muteThreshold
			}
			if cmd.Flags().Changed("suspension-duration") {
				patch.SuspensionDurSec = &suspensionDur
			}

			if patch.WarningThreshold == nil && patch.MuteDurationSec == nil &&
				patch.MuteThreshold == nil && patch.SuspensionDurSec == nil {
				return fmt.Errorf("nothing to update: pass at least one flag")
			}

			client := newAdminClient()

			var view moderationView
			if err := client.do(context.Background(), http.MethodPatch, "/admin/moderation", patch, &view); err != nil {
				return err
			}

			fmt.Println("Moderation configuration updated:")
			printModerationView(view)
			return nil
		},
	}

	cmd.Flags().IntVar(&warningThreshold, "warning-threshold", 0, "Off-topic strikes before a mute")
	cmd.Flags().IntVar(&muteDuration, "mute-duration", 0, "Mute length in seconds")
	cmd.Flags().IntVar(&muteThreshold, "mute-threshold", 0, "Mutes before a suspension")
	cmd.Flags().IntVar(&suspensionDur, "suspension-duration", 0, "Suspension length in seconds")

	return cmd
}

func printModerationView(view moderationView) {
	fmt.Printf("  Warning threshold: %d\n", view.WarningThreshold)
	fmt.Printf("  Mute duration: %ds\n", view.MuteDurationSec)
	fmt.Printf("  Mute threshold: %d\n", view.MuteThreshold)
	fmt.Printf("  Suspension duration: %ds\n", view.SuspensionDurSec)
}

package main

import (
	"fmt"
	"os"

	"github.com/groovemind/djbooth/cmd/djctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "djctl",
		Short: "Moderation tool for the DJ booth API",
		Long:  "CLI tool for inspecting listener penalty state and tuning moderation thresholds on a running server",
	}

	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewModerationCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

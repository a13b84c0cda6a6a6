package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/utilities/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}

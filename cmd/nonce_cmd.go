package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/conf"
	"github.com/supabase/auth-siwe/internal/crypto"
)

func nonceCmd(exec execWithConfig) *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "Generate a random alphanumeric nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exec(cmd, func(config *conf.GlobalConfiguration) error {
				n := config.Message.NonceLength
				if cmd.Flags().Changed("length") {
					n = length
				}

				nonce, err := crypto.GenerateNonce(n)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), nonce)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", 0, "nonce length, defaults to the configured length")

	return cmd
}

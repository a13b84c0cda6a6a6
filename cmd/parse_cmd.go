package cmd

import (
	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/conf"
	"github.com/supabase/auth-siwe/siwe"
)

func parseCmd(exec execWithConfig) *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a message and print its fields as JSON",
		Long:  "Parse a message read from file, or from stdin when file is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exec(cmd, func(config *conf.GlobalConfiguration) error {
				var path string
				if len(args) > 0 {
					path = args[0]
				}

				text, err := readMessage(cmd, path)
				if err != nil {
					return err
				}

				p, err := siwe.Parse(text, siwe.WithTimestampCodec(timestampCodec(lenient)))
				if err != nil {
					return err
				}

				return printJSON(cmd, p.Fields())
			})
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "accept any RFC 3339 timestamp")

	return cmd
}

func timestampCodec(lenient bool) siwe.TimestampCodec {
	if lenient {
		return siwe.Lenient
	}
	return siwe.ISO8601
}

package cmd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/conf"
	"github.com/supabase/auth-siwe/internal/metering"
	"github.com/supabase/auth-siwe/siwe"
)

type verifyFlags struct {
	message         string
	signature       string
	lenient         bool
	expectedDomain  string
	expectedChainID int64
}

type verifyResult struct {
	Valid  bool         `json:"valid"`
	Fields *siwe.Fields `json:"fields,omitempty"`
}

func verifyCmd(exec execWithConfig) *cobra.Command {
	var f verifyFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signed message",
		Long: "Verify the time window, the expected domain and chain id, and the EIP-191 signature of a message. " +
			"The command fails when any check fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exec(cmd, func(config *conf.GlobalConfiguration) error {
				return verifyMessage(cmd, config, &f)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.message, "message", "m", "", "file holding the message, stdin when empty or \"-\"")
	flags.StringVarP(&f.signature, "signature", "s", "", "0x-prefixed hex signature")
	flags.BoolVar(&f.lenient, "lenient", false, "accept any RFC 3339 timestamp")
	flags.StringVar(&f.expectedDomain, "expected-domain", "", "domain the message must be addressed to, overrides the configuration")
	flags.Int64Var(&f.expectedChainID, "expected-chain-id", 0, "chain id the message must be bound to")
	_ = cmd.MarkFlagRequired("signature")

	return cmd
}

func verifyMessage(cmd *cobra.Command, config *conf.GlobalConfiguration, f *verifyFlags) error {
	text, err := readMessage(cmd, f.message)
	if err != nil {
		return err
	}

	expectedDomain := config.Message.ExpectedDomain
	if cmd.Flags().Changed("expected-domain") {
		expectedDomain = f.expectedDomain
	}

	verifier := siwe.NewVerifier(
		siwe.WithVerifierTimestampCodec(timestampCodec(f.lenient)),
		siwe.WithExpectedDomain(expectedDomain),
		siwe.WithExpectedChainID(f.expectedChainID),
		siwe.WithLogger(logrus.StandardLogger()),
	)

	p, err := verifier.VerifyMessageOrFail(cmd.Context(), text, f.signature)
	if err != nil {
		if kind, ok := siwe.KindOf(err); ok {
			return errors.Wrapf(err, "verification failed (%s)", kind)
		}
		return errors.Wrap(err, "verification failed")
	}

	metering.RecordSignIn(&metering.SignInData{
		Address:   p.Address(),
		ChainID:   p.ChainID(),
		Domain:    p.Domain(),
		URI:       p.URI(),
		RequestID: p.RequestID(),
	})

	fields := p.Fields()
	return printJSON(cmd, verifyResult{Valid: true, Fields: &fields})
}

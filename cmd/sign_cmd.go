package cmd

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/conf"
	"github.com/supabase/auth-siwe/internal/utilities/web3/ethereum"
	"github.com/supabase/auth-siwe/siwe"
)

type signResult struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// signCmd signs messages with a local key, standing in for a wallet when
// producing test vectors.
func signCmd(exec execWithConfig) *cobra.Command {
	var (
		message     string
		key         string
		generateKey bool
		lenient     bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with a local private key",
		Long: "Sign a message the way a wallet's personal_sign would. With --generate-key a fresh key is " +
			"created and the message's address is replaced by the key's address before signing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exec(cmd, func(config *conf.GlobalConfiguration) error {
				if (key == "") == !generateKey {
					return errors.New("exactly one of --key or --generate-key is required")
				}

				text, err := readMessage(cmd, message)
				if err != nil {
					return err
				}

				var privateKey *ecdsa.PrivateKey
				if generateKey {
					if privateKey, err = crypto.GenerateKey(); err != nil {
						return errors.Wrap(err, "unable to generate key")
					}
				} else {
					if privateKey, err = crypto.HexToECDSA(strings.TrimPrefix(key, "0x")); err != nil {
						return errors.Wrap(err, "invalid --key")
					}
				}
				address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()

				codec := siwe.WithTimestampCodec(timestampCodec(lenient))
				p, err := siwe.Parse(text, codec)
				if err != nil {
					return err
				}
				if generateKey {
					if p, err = p.Builder().WithAddress(address).Build(codec); err != nil {
						return err
					}
					text = siwe.Create(p, codec)
				}

				signature, err := ethereum.SignMessage(privateKey, text)
				if err != nil {
					return err
				}

				return printJSON(cmd, signResult{Address: address, Message: text, Signature: signature})
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&message, "message", "m", "", "file holding the message, stdin when empty or \"-\"")
	flags.StringVar(&key, "key", "", "hex encoded secp256k1 private key")
	flags.BoolVar(&generateKey, "generate-key", false, "sign with a freshly generated key")
	flags.BoolVar(&lenient, "lenient", false, "accept any RFC 3339 timestamp")

	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/conf"
	"github.com/supabase/auth-siwe/internal/crypto"
	"github.com/supabase/auth-siwe/siwe"
)

type createFlags struct {
	paramsFile string

	address        string
	chainID        int64
	domain         string
	uri            string
	statement      string
	scheme         string
	nonce          string
	issuedAt       string
	expirationTime string
	notBefore      string
	requestID      string
	resources      []string

	ttl               time.Duration
	generateRequestID bool
}

func createCmd(exec execWithConfig) *cobra.Command {
	var f createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Render a message for the wallet to sign",
		Long: "Render a canonical EIP-4361 message. Values come from the message configuration, " +
			"then the --params JSON file, then individual flags.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exec(cmd, func(config *conf.GlobalConfiguration) error {
				return createMessage(cmd, config, &f)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.paramsFile, "params", "p", "", "JSON file with message fields")
	flags.StringVar(&f.address, "address", "", "signer address")
	flags.Int64Var(&f.chainID, "chain-id", 0, "EIP-155 chain id")
	flags.StringVar(&f.domain, "domain", "", "relying party domain")
	flags.StringVar(&f.uri, "uri", "", "subject URI")
	flags.StringVar(&f.statement, "statement", "", "human-readable statement")
	flags.StringVar(&f.scheme, "scheme", "", "URI scheme of the origin")
	flags.StringVar(&f.nonce, "nonce", "", "nonce, generated when empty")
	flags.StringVar(&f.issuedAt, "issued-at", "", "RFC 3339 issue time, now when empty")
	flags.StringVar(&f.expirationTime, "expiration-time", "", "RFC 3339 expiration time")
	flags.StringVar(&f.notBefore, "not-before", "", "RFC 3339 time the message becomes valid")
	flags.StringVar(&f.requestID, "request-id", "", "request id")
	flags.StringArrayVar(&f.resources, "resource", nil, "resource URI, may be repeated")
	flags.DurationVar(&f.ttl, "ttl", 0, "expiration relative to issued at, overrides the configured ttl")
	flags.BoolVar(&f.generateRequestID, "generate-request-id", false, "set a random UUID request id when none is given")

	return cmd
}

func createMessage(cmd *cobra.Command, config *conf.GlobalConfiguration, f *createFlags) error {
	fields := siwe.Fields{
		Domain:    config.Message.Domain,
		Scheme:    config.Message.Scheme,
		URI:       config.Message.URI,
		ChainID:   config.Message.ChainID,
		Statement: config.Message.Statement,
	}

	if f.paramsFile != "" {
		if err := decodeParamsFile(f.paramsFile, &fields); err != nil {
			return err
		}
	}

	if err := f.apply(cmd, &fields); err != nil {
		return err
	}

	ttl := config.Message.TTL
	if cmd.Flags().Changed("ttl") {
		ttl = f.ttl
	}
	if ttl > 0 && fields.ExpirationTime == nil {
		if fields.IssuedAt.IsZero() {
			fields.IssuedAt = time.Now().UTC()
		}
		exp := fields.IssuedAt.Add(ttl)
		fields.ExpirationTime = &exp
	}

	if f.generateRequestID && fields.RequestID == "" {
		id, err := crypto.NewRequestID()
		if err != nil {
			return err
		}
		fields.RequestID = id
	}

	nonceLength := config.Message.NonceLength
	p, err := siwe.New(fields, siwe.WithNonceGenerator(siwe.NonceGeneratorFunc(func() (string, error) {
		return crypto.GenerateNonce(nonceLength)
	})))
	if err != nil {
		return err
	}

	// no trailing newline so the output can be signed as is
	fmt.Fprint(cmd.OutOrStdout(), siwe.Create(p))
	return nil
}

func (f *createFlags) apply(cmd *cobra.Command, fields *siwe.Fields) error {
	changed := cmd.Flags().Changed

	strs := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"address", f.address, &fields.Address},
		{"domain", f.domain, &fields.Domain},
		{"uri", f.uri, &fields.URI},
		{"statement", f.statement, &fields.Statement},
		{"scheme", f.scheme, &fields.Scheme},
		{"nonce", f.nonce, &fields.Nonce},
		{"request-id", f.requestID, &fields.RequestID},
	}
	for _, s := range strs {
		if changed(s.flag) {
			*s.dst = s.value
		}
	}

	if changed("chain-id") {
		fields.ChainID = f.chainID
	}
	if changed("resource") {
		fields.Resources = append([]string{}, f.resources...)
	}

	if changed("issued-at") {
		t, err := parseFlagTime("issued-at", f.issuedAt)
		if err != nil {
			return err
		}
		fields.IssuedAt = t
	}
	if changed("expiration-time") {
		t, err := parseFlagTime("expiration-time", f.expirationTime)
		if err != nil {
			return err
		}
		fields.ExpirationTime = &t
	}
	if changed("not-before") {
		t, err := parseFlagTime("not-before", f.notBefore)
		if err != nil {
			return err
		}
		fields.NotBefore = &t
	}

	return nil
}

func parseFlagTime(flag, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid --%s", flag)
	}
	return t.UTC(), nil
}

// decodeParamsFile overlays the JSON object in path onto fields. Keys use
// the camelCase field names and timestamps are RFC 3339 strings.
func decodeParamsFile(path string, fields *siwe.Fields) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return errors.Wrap(err, "unable to read params file")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "params file is not a JSON object")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		ErrorUnused: true,
		Result:      fields,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(err, "invalid params file")
	}

	return nil
}

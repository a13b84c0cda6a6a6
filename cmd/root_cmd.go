package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supabase/auth-siwe/internal/conf"
	"github.com/supabase/auth-siwe/internal/observability"
	"github.com/supabase/auth-siwe/internal/utilities/version"
)

// RootCommand will setup and return the root command
func RootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "siwe",
		Short:         "Create, parse and verify Sign-In with Ethereum messages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	withConfig := func(cmd *cobra.Command, fn func(config *conf.GlobalConfiguration) error) error {
		config, err := loadConfig(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		return fn(config)
	}

	rootCmd.AddCommand(
		createCmd(withConfig),
		parseCmd(withConfig),
		verifyCmd(withConfig),
		nonceCmd(withConfig),
		signCmd(withConfig),
		versionCmd(),
	)
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the config file to use")

	return rootCmd
}

type execWithConfig func(cmd *cobra.Command, fn func(config *conf.GlobalConfiguration) error) error

func loadConfig(ctx context.Context, configFile string) (*conf.GlobalConfiguration, error) {
	config, err := conf.LoadGlobal(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}

	if err := observability.ConfigureLogging(&config.Logging); err != nil {
		return nil, errors.Wrap(err, "unable to configure logging")
	}

	if err := observability.ConfigureTracing(ctx, &config.Tracing); err != nil {
		logrus.WithError(err).Error("unable to configure tracing")
	}

	if err := observability.ConfigureMetrics(ctx, &config.Metrics); err != nil {
		logrus.WithError(err).Error("unable to configure metrics")
	}

	if err := version.InitVersionMetrics(ctx, version.Version); err != nil {
		logrus.WithError(err).Warn("unable to record version metrics")
	}

	return config, nil
}

// readMessage reads a message from path, or from stdin when path is empty
// or "-". A single trailing newline is dropped since messages never end
// with one.
func readMessage(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	}
	if err != nil {
		return "", errors.Wrap(err, "unable to read message")
	}

	text := string(data)
	if t, ok := strings.CutSuffix(text, "\r\n"); ok {
		return t, nil
	}
	return strings.TrimSuffix(text, "\n"), nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

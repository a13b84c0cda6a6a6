package conf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultNonceLength = 17
const minNonceLength = 8

// LoggingConfig configures the process-wide logrus logger.
type LoggingConfig struct {
	Level  string                 `mapstructure:"log_level" json:"log_level"`
	File   string                 `mapstructure:"log_file" json:"log_file"`
	Fields map[string]interface{} `mapstructure:"fields" json:"fields"`
}

func (c *LoggingConfig) Validate() error {
	return nil
}

// MessageConfiguration holds the defaults used when creating messages from
// the command line and the relying party checks applied when verifying them.
type MessageConfiguration struct {
	Domain    string `json:"domain"`
	Scheme    string `json:"scheme"`
	URI       string `json:"uri"`
	ChainID   int64  `json:"chain_id" split_words:"true" default:"1"`
	Statement string `json:"statement"`

	// TTL sets Expiration Time relative to Issued At when greater than zero.
	TTL time.Duration `json:"ttl"`

	NonceLength int `json:"nonce_length" split_words:"true" default:"17"`

	// ExpectedDomain, when set, rejects messages addressed to another domain.
	ExpectedDomain string `json:"expected_domain" split_words:"true"`
}

func (c *MessageConfiguration) Validate() error {
	if c.ChainID <= 0 {
		return fmt.Errorf("conf: message chain id must be positive, got %d", c.ChainID)
	}
	if c.NonceLength < minNonceLength {
		return fmt.Errorf("conf: message nonce length must be at least %d, got %d", minNonceLength, c.NonceLength)
	}
	if c.TTL < 0 {
		return errors.New("conf: message ttl must not be negative")
	}
	return nil
}

// GlobalConfiguration holds all the configuration of the siwe tool.
type GlobalConfiguration struct {
	Logging LoggingConfig `envconfig:"LOG"`
	Tracing TracingConfig
	Metrics MetricsConfig
	Message MessageConfiguration
}

func loadEnvironment(filename string) error {
	var err error
	if filename != "" {
		err = godotenv.Overload(filename)
	} else {
		err = godotenv.Load()
		// handle if .env file does not exist, this is OK
		if os.IsNotExist(err) {
			return nil
		}
	}
	return err
}

// LoadGlobal loads configuration from the optional env file and the SIWE_
// prefixed environment.
func LoadGlobal(filename string) (*GlobalConfiguration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, err
	}

	config := new(GlobalConfiguration)
	if err := envconfig.Process("siwe", config); err != nil {
		return nil, err
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyDefaults sets defaults for a GlobalConfiguration
func (config *GlobalConfiguration) ApplyDefaults() error {
	if config.Message.NonceLength == 0 {
		config.Message.NonceLength = defaultNonceLength
	}
	if config.Message.ExpectedDomain == "" {
		config.Message.ExpectedDomain = config.Message.Domain
	}
	return nil
}

// Validate validates all of configuration.
func (c *GlobalConfiguration) Validate() error {
	validatables := []interface {
		Validate() error
	}{
		&c.Logging,
		&c.Tracing,
		&c.Metrics,
		&c.Message,
	}

	for _, validatable := range validatables {
		if err := validatable.Validate(); err != nil {
			return err
		}
	}

	return nil
}

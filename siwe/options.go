package siwe

import (
	"time"

	"github.com/supabase/auth-siwe/internal/crypto"
)

// DefaultNonceLength is the length of nonces generated when none is given.
const DefaultNonceLength = 17

// NonceGenerator produces fresh, unpredictable alphanumeric nonces of at
// least 8 characters.
type NonceGenerator interface {
	Generate() (string, error)
}

type NonceGeneratorFunc func() (string, error)

func (f NonceGeneratorFunc) Generate() (string, error) {
	return f()
}

// GenerateNonce returns a nonce from the default generator.
func GenerateNonce() (string, error) {
	return crypto.GenerateNonce(DefaultNonceLength)
}

type options struct {
	now        func() time.Time
	nonces     NonceGenerator
	timestamps TimestampCodec
}

// Option configures New, Builder.Build, Create and Parse.
type Option func(*options)

// WithClock sets the clock used to default the Issued At field.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithNonceGenerator sets the generator used when no nonce is provided.
func WithNonceGenerator(g NonceGenerator) Option {
	return func(o *options) {
		o.nonces = g
	}
}

// WithTimestampCodec sets the codec used to format and parse timestamps.
func WithTimestampCodec(c TimestampCodec) Option {
	return func(o *options) {
		o.timestamps = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		now:        time.Now,
		nonces:     NonceGeneratorFunc(GenerateNonce),
		timestamps: ISO8601,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

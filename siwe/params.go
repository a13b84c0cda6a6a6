// Package siwe implements Sign-In with Ethereum (EIP-4361) messages.
//
// A relying party builds Params, renders them with Create and asks the
// user's wallet to sign the resulting text. On the way back the text is
// parsed with Parse and checked with a Verifier, which validates the time
// window and delegates the signature check to a SignatureVerifier.
//
// Params are immutable once constructed. Every constructor (New,
// Builder.Build and Parse) runs the same field validation, so an invalid
// message can never be observed as a Params value.
package siwe

import (
	"fmt"
	"time"
)

// DefaultVersion is the only message version defined by EIP-4361.
const DefaultVersion = "1"

// Fields is the plain, mutable form of a message. Empty optional strings,
// nil timestamps and a nil Resources slice mean "absent".
type Fields struct {
	Address        string     `json:"address" mapstructure:"address"`
	ChainID        int64      `json:"chainId" mapstructure:"chainId"`
	Domain         string     `json:"domain" mapstructure:"domain"`
	URI            string     `json:"uri" mapstructure:"uri"`
	IssuedAt       time.Time  `json:"issuedAt" mapstructure:"issuedAt"`
	Nonce          string     `json:"nonce" mapstructure:"nonce"`
	Statement      string     `json:"statement,omitempty" mapstructure:"statement"`
	Version        string     `json:"version" mapstructure:"version"`
	Scheme         string     `json:"scheme,omitempty" mapstructure:"scheme"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty" mapstructure:"expirationTime"`
	NotBefore      *time.Time `json:"notBefore,omitempty" mapstructure:"notBefore"`
	RequestID      string     `json:"requestId,omitempty" mapstructure:"requestId"`
	Resources      []string   `json:"resources,omitempty" mapstructure:"resources"`
}

// Params is a validated, immutable SIWE message.
type Params struct {
	f Fields
}

// New fills in defaults for Issued At, Nonce and Version, then validates
// every field.
func New(fields Fields, opts ...Option) (*Params, error) {
	o := newOptions(opts)

	f := fields.clone()
	if f.IssuedAt.IsZero() {
		f.IssuedAt = o.now()
	}
	if f.Nonce == "" {
		nonce, err := o.nonces.Generate()
		if err != nil {
			return nil, fmt.Errorf("siwe: generating nonce: %w", err)
		}
		f.Nonce = nonce
	}
	if f.Version == "" {
		f.Version = DefaultVersion
	}

	if err := validateFields(&f); err != nil {
		return nil, err
	}

	return &Params{f: f}, nil
}

func (f Fields) clone() Fields {
	c := f
	if f.ExpirationTime != nil {
		t := *f.ExpirationTime
		c.ExpirationTime = &t
	}
	if f.NotBefore != nil {
		t := *f.NotBefore
		c.NotBefore = &t
	}
	if f.Resources != nil {
		c.Resources = append([]string{}, f.Resources...)
	}
	return c
}

func (p *Params) Address() string     { return p.f.Address }
func (p *Params) ChainID() int64      { return p.f.ChainID }
func (p *Params) Domain() string      { return p.f.Domain }
func (p *Params) URI() string         { return p.f.URI }
func (p *Params) IssuedAt() time.Time { return p.f.IssuedAt }
func (p *Params) Nonce() string       { return p.f.Nonce }
func (p *Params) Statement() string   { return p.f.Statement }
func (p *Params) Version() string     { return p.f.Version }
func (p *Params) Scheme() string      { return p.f.Scheme }
func (p *Params) RequestID() string   { return p.f.RequestID }

func (p *Params) ExpirationTime() (time.Time, bool) {
	if p.f.ExpirationTime == nil {
		return time.Time{}, false
	}
	return *p.f.ExpirationTime, true
}

func (p *Params) NotBefore() (time.Time, bool) {
	if p.f.NotBefore == nil {
		return time.Time{}, false
	}
	return *p.f.NotBefore, true
}

// Resources returns a copy of the resource list, nil when absent.
func (p *Params) Resources() []string {
	if p.f.Resources == nil {
		return nil
	}
	return append([]string{}, p.f.Resources...)
}

// Fields returns a copy of the message fields with defaults filled in.
func (p *Params) Fields() Fields {
	return p.f.clone()
}

// Builder returns a builder seeded with p, for deriving a modified copy.
func (p *Params) Builder() *Builder {
	f := p.f.clone()
	return &Builder{fields: f, chainIDSet: true}
}

// String renders the canonical message with the default timestamp codec.
func (p *Params) String() string {
	return Create(p)
}

package siwe

import "time"

// Builder accumulates message fields and validates them once, in Build.
// A Builder is not safe for concurrent use.
type Builder struct {
	fields     Fields
	chainIDSet bool
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) WithAddress(address string) *Builder {
	b.fields.Address = address
	return b
}

func (b *Builder) WithChainID(chainID int64) *Builder {
	b.fields.ChainID = chainID
	b.chainIDSet = true
	return b
}

func (b *Builder) WithDomain(domain string) *Builder {
	b.fields.Domain = domain
	return b
}

func (b *Builder) WithURI(uri string) *Builder {
	b.fields.URI = uri
	return b
}

func (b *Builder) WithIssuedAt(t time.Time) *Builder {
	b.fields.IssuedAt = t
	return b
}

func (b *Builder) WithNonce(nonce string) *Builder {
	b.fields.Nonce = nonce
	return b
}

// WithStatement sets the human-readable statement. It must fit on one line.
func (b *Builder) WithStatement(statement string) *Builder {
	b.fields.Statement = statement
	return b
}

func (b *Builder) WithVersion(version string) *Builder {
	b.fields.Version = version
	return b
}

func (b *Builder) WithScheme(scheme string) *Builder {
	b.fields.Scheme = scheme
	return b
}

func (b *Builder) WithExpirationTime(t time.Time) *Builder {
	b.fields.ExpirationTime = &t
	return b
}

func (b *Builder) WithNotBefore(t time.Time) *Builder {
	b.fields.NotBefore = &t
	return b
}

func (b *Builder) WithRequestID(requestID string) *Builder {
	b.fields.RequestID = requestID
	return b
}

// WithResources replaces the resource list. Calling it with no arguments
// sets an empty list, which Build rejects.
func (b *Builder) WithResources(resources ...string) *Builder {
	b.fields.Resources = append([]string{}, resources...)
	return b
}

// Build checks that address, chain ID, domain and URI were provided and then
// constructs the Params through New.
func (b *Builder) Build(opts ...Option) (*Params, error) {
	switch {
	case b.fields.Address == "":
		return nil, errRequired("address")
	case !b.chainIDSet:
		return nil, errRequired("chainId")
	case b.fields.Domain == "":
		return nil, errRequired("domain")
	case b.fields.URI == "":
		return nil, errRequired("uri")
	}

	return New(b.fields, opts...)
}

package siwe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRequiredFields(t *testing.T) {
	examples := []struct {
		name    string
		builder *Builder
		field   string
	}{
		{
			name:    "domain and uri only",
			builder: NewBuilder().WithDomain("example.com").WithURI("https://example.com"),
			field:   "address",
		},
		{
			name:    "missing chain id",
			builder: NewBuilder().WithAddress(testAddress).WithDomain("example.com").WithURI("https://example.com"),
			field:   "chainId",
		},
		{
			name:    "missing domain",
			builder: NewBuilder().WithAddress(testAddress).WithChainID(1).WithURI("https://example.com"),
			field:   "domain",
		},
		{
			name:    "missing uri",
			builder: NewBuilder().WithAddress(testAddress).WithChainID(1).WithDomain("example.com"),
			field:   "uri",
		},
	}

	for _, example := range examples {
		t.Run(example.name, func(t *testing.T) {
			_, err := example.builder.Build()
			fe := requireFieldError(t, err, example.field)
			assert.Equal(t, []string{"required field is not set"}, fe.Conditions)
		})
	}
}

func TestBuilderExplicitZeroChainID(t *testing.T) {
	_, err := NewBuilder().
		WithAddress(testAddress).
		WithChainID(0).
		WithDomain("example.com").
		WithURI("https://example.com").
		Build()

	fe := requireFieldError(t, err, "chainId")
	assert.Equal(t, []string{"must be a positive integer"}, fe.Conditions)
}

func TestBuilderDefaults(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	p, err := NewBuilder().
		WithAddress(testAddress).
		WithChainID(10).
		WithDomain("example.com").
		WithURI("https://example.com").
		Build(WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	assert.Equal(t, now, p.IssuedAt())
	assert.Equal(t, DefaultVersion, p.Version())
	assert.Len(t, p.Nonce(), DefaultNonceLength)
	assert.Equal(t, int64(10), p.ChainID())
}

func TestBuilderAllFields(t *testing.T) {
	exp := testIssuedAt.Add(10 * time.Minute)
	nb := testIssuedAt.Add(-time.Minute)

	p, err := NewBuilder().
		WithAddress(testAddress).
		WithChainID(1).
		WithDomain("example.com").
		WithURI("https://example.com/login").
		WithIssuedAt(testIssuedAt).
		WithNonce("abcd1234EFGH").
		WithStatement("Sign in to Example").
		WithVersion("1").
		WithScheme("https").
		WithExpirationTime(exp).
		WithNotBefore(nb).
		WithRequestID("req-42").
		WithResources("https://example.com/a", "ipfs://bafy").
		Build()
	require.NoError(t, err)

	assert.Equal(t, fullParams(t).Fields().Address, p.Address())
	assert.Equal(t, "https", p.Scheme())
	assert.Equal(t, "req-42", p.RequestID())
	assert.Equal(t, []string{"https://example.com/a", "ipfs://bafy"}, p.Resources())

	got, ok := p.ExpirationTime()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
	got, ok = p.NotBefore()
	require.True(t, ok)
	assert.True(t, got.Equal(nb))
}

func TestBuilderEmptyResources(t *testing.T) {
	_, err := NewBuilder().
		WithAddress(testAddress).
		WithChainID(1).
		WithDomain("example.com").
		WithURI("https://example.com").
		WithResources().
		Build()

	requireFieldError(t, err, "resources")
}

func TestBuilderResourcesAreCopied(t *testing.T) {
	resources := []string{"https://example.com/a"}

	b := NewBuilder().
		WithAddress(testAddress).
		WithChainID(1).
		WithDomain("example.com").
		WithURI("https://example.com").
		WithResources(resources...)
	resources[0] = "https://evil.example.com"

	p, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, p.Resources())
}

func TestParamsBuilderDerivesCopy(t *testing.T) {
	original := mustNew(t, minimalFields())

	derived, err := original.Builder().
		WithStatement("Updated statement").
		WithChainID(137).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "Updated statement", derived.Statement())
	assert.Equal(t, int64(137), derived.ChainID())
	assert.Equal(t, original.Nonce(), derived.Nonce())
	assert.Equal(t, original.IssuedAt(), derived.IssuedAt())

	assert.Empty(t, original.Statement())
	assert.Equal(t, int64(1), original.ChainID())
}

package siwe

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/supabase/auth-siwe/internal/utilities/web3/ethereum"
)

const walletAddress = "0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E"

const walletMessage = "example.com wants you to sign in with your Ethereum account:\n" +
	walletAddress + "\n" +
	"\n" +
	"Sign in to Example App\n" +
	"\n" +
	"URI: https://example.com\n" +
	"Version: 1\n" +
	"Chain ID: 1\n" +
	"Nonce: 12345678\n" +
	"Issued At: 2025-01-01T00:00:00.000Z"

const walletSignature = "0xee337880f195524c156b8cc5f425ffcedb9d94638a91fa41ba72e26d93f04c9d1c7bca7020071c34ef7527ed6389ee24b59de79deab4e9e8251e6ca1e195a56a1b"

type VerifierTestSuite struct {
	suite.Suite

	key     *ecdsa.PrivateKey
	address string
	now     time.Time

	spans *tracetest.InMemoryExporter
	logs  *logrustest.Hook
}

func TestVerifier(t *testing.T) {
	suite.Run(t, new(VerifierTestSuite))
}

func (ts *VerifierTestSuite) SetupSuite() {
	key, err := crypto.GenerateKey()
	require.NoError(ts.T(), err)

	ts.key = key
	ts.address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	ts.now = testIssuedAt.Add(time.Minute)
}

func (ts *VerifierTestSuite) SetupTest() {
	ts.spans = tracetest.NewInMemoryExporter()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(ts.spans)),
	))
}

func (ts *VerifierTestSuite) verifier(opts ...VerifierOption) *Verifier {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ts.logs = hook

	return NewVerifier(append([]VerifierOption{
		WithVerifierClock(func() time.Time { return ts.now }),
		WithLogger(logger),
	}, opts...)...)
}

func (ts *VerifierTestSuite) params(mutate func(f *Fields)) *Params {
	f := minimalFields()
	f.Address = ts.address
	if mutate != nil {
		mutate(&f)
	}
	return mustNew(ts.T(), f)
}

func (ts *VerifierTestSuite) sign(message string) string {
	sig, err := ethereum.SignMessage(ts.key, message)
	require.NoError(ts.T(), err)
	return sig
}

func (ts *VerifierTestSuite) TestVerifyEndToEnd() {
	p := ts.params(nil)
	message := Create(p)
	sig := ts.sign(message)

	v := ts.verifier()
	ctx := context.Background()

	require.NoError(ts.T(), v.VerifyOrFail(ctx, p, message, sig))
	assert.True(ts.T(), v.Verify(ctx, p, sig))
	assert.True(ts.T(), v.VerifyMessage(ctx, message, sig))

	parsed, err := v.VerifyMessageOrFail(ctx, message, sig)
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), p.Fields(), parsed.Fields())

	entry := ts.logs.LastEntry()
	require.NotNil(ts.T(), entry)
	assert.Equal(ts.T(), "ok", entry.Data["result"])
	assert.Equal(ts.T(), p.Nonce(), entry.Data["nonce"])

	spans := ts.spans.GetSpans().Snapshots()
	require.NotEmpty(ts.T(), spans)
	assert.Equal(ts.T(), "siwe.VerifyOrFail", spans[0].Name())
	assert.Equal(ts.T(), codes.Unset, spans[0].Status().Code)
}

func (ts *VerifierTestSuite) TestVerifyLowercaseAddress() {
	p := ts.params(func(f *Fields) {
		f.Address = strings.ToLower(ts.address)
	})
	message := Create(p)

	assert.True(ts.T(), ts.verifier().Verify(context.Background(), p, ts.sign(message)))
}

func (ts *VerifierTestSuite) TestVerifyExpired() {
	exp := ts.now.Add(-time.Second)
	p := ts.params(func(f *Fields) {
		f.ExpirationTime = &exp
	})
	message := Create(p)

	err := ts.verifier().VerifyOrFail(context.Background(), p, message, ts.sign(message))

	var te *TimeValidationError
	require.True(ts.T(), errors.As(err, &te))
	assert.True(ts.T(), te.Has(Expired))

	spans := ts.spans.GetSpans().Snapshots()
	require.Len(ts.T(), spans, 1)
	assert.Equal(ts.T(), codes.Error, spans[0].Status().Code)
	assert.Equal(ts.T(), "time", ts.logs.LastEntry().Data["result"])
}

func (ts *VerifierTestSuite) TestVerifyNotYetValid() {
	nb := ts.now.Add(time.Hour)
	p := ts.params(func(f *Fields) {
		f.NotBefore = &nb
	})
	message := Create(p)

	err := ts.verifier().VerifyOrFail(context.Background(), p, message, ts.sign(message))

	var te *TimeValidationError
	require.True(ts.T(), errors.As(err, &te))
	assert.True(ts.T(), te.Has(NotYetValid))
}

func (ts *VerifierTestSuite) TestVerifyTamperedMessage() {
	p := ts.params(nil)
	sig := ts.sign(Create(p))

	tampered := ts.params(func(f *Fields) {
		f.Nonce = "otherNonce123"
	})

	v := ts.verifier()
	assert.False(ts.T(), v.Verify(context.Background(), tampered, sig))

	err := v.VerifyOrFail(context.Background(), tampered, Create(tampered), sig)
	var se *SignatureError
	require.True(ts.T(), errors.As(err, &se))
	assert.Equal(ts.T(), ts.address, se.Address)
}

func (ts *VerifierTestSuite) TestVerifyTamperedSignature() {
	p := ts.params(nil)
	sig := ts.sign(Create(p))

	// flip one nibble of r
	b := []byte(sig)
	if b[10] == 'a' {
		b[10] = 'b'
	} else {
		b[10] = 'a'
	}

	assert.False(ts.T(), ts.verifier().Verify(context.Background(), p, string(b)))
}

func (ts *VerifierTestSuite) TestVerifyOtherSigner() {
	other, err := crypto.GenerateKey()
	require.NoError(ts.T(), err)

	p := ts.params(nil)
	message := Create(p)
	sig, err := ethereum.SignMessage(other, message)
	require.NoError(ts.T(), err)

	err = ts.verifier().VerifyOrFail(context.Background(), p, message, sig)
	kind, ok := KindOf(err)
	require.True(ts.T(), ok)
	assert.Equal(ts.T(), KindSignature, kind)
}

func (ts *VerifierTestSuite) TestVerifyMalformedSignature() {
	p := ts.params(nil)

	for _, sig := range []string{"", "0x", "0xzz", "0x1234"} {
		assert.False(ts.T(), ts.verifier().Verify(context.Background(), p, sig), sig)
	}
}

func (ts *VerifierTestSuite) TestVerifyBindings() {
	p := ts.params(nil)
	message := Create(p)
	sig := ts.sign(message)
	ctx := context.Background()

	err := ts.verifier(WithExpectedDomain("other.example.com")).VerifyOrFail(ctx, p, message, sig)
	var be *BindingError
	require.True(ts.T(), errors.As(err, &be))
	assert.Equal(ts.T(), "domain", be.Field)
	assert.Equal(ts.T(), "other.example.com", be.Expected)
	assert.Equal(ts.T(), "example.com", be.Got)

	err = ts.verifier(WithExpectedChainID(137)).VerifyOrFail(ctx, p, message, sig)
	require.True(ts.T(), errors.As(err, &be))
	assert.Equal(ts.T(), "chainId", be.Field)

	require.NoError(ts.T(), ts.verifier(
		WithExpectedDomain("example.com"),
		WithExpectedChainID(1),
	).VerifyOrFail(ctx, p, message, sig))
}

func (ts *VerifierTestSuite) TestVerifyMessageUsesOriginalText() {
	message := replaceLine(Create(ts.params(nil)), 9, "Issued At: 2024-05-01T12:00:00.123+00:00")
	sig := ts.sign(message)
	ctx := context.Background()

	v := ts.verifier(WithVerifierTimestampCodec(Lenient))

	p, err := v.VerifyMessageOrFail(ctx, message, sig)
	require.NoError(ts.T(), err)

	// re-rendering normalizes the timestamp, so the signature no longer matches
	assert.NotEqual(ts.T(), message, Create(p))
	assert.False(ts.T(), v.Verify(ctx, p, sig))
}

func (ts *VerifierTestSuite) TestVerifyMessageParseError() {
	v := ts.verifier()

	_, err := v.VerifyMessageOrFail(context.Background(), "not a message", "0x")
	kind, ok := KindOf(err)
	require.True(ts.T(), ok)
	assert.Equal(ts.T(), KindParse, kind)
	assert.False(ts.T(), v.VerifyMessage(context.Background(), "not a message", "0x"))
	assert.Equal(ts.T(), "parse", ts.logs.LastEntry().Data["result"])
}

func (ts *VerifierTestSuite) TestVerifyWalletSignature() {
	ts.now = time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC)
	defer func() { ts.now = testIssuedAt.Add(time.Minute) }()

	v := ts.verifier()
	ctx := context.Background()

	p, err := v.VerifyMessageOrFail(ctx, walletMessage, walletSignature)
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), walletAddress, p.Address())
	assert.True(ts.T(), v.Verify(ctx, p, walletSignature))

	assert.False(ts.T(), v.VerifyMessage(ctx, strings.Replace(walletMessage, "12345678", "12345679", 1), walletSignature))
}

func (ts *VerifierTestSuite) TestCustomSignatureVerifier() {
	p := ts.params(nil)
	message := Create(p)

	var got []string
	stub := SignatureVerifierFunc(func(message, signature, address string) bool {
		got = []string{message, signature, address}
		return signature == "accepted"
	})

	v := ts.verifier(WithSignatureVerifier(stub))
	ctx := context.Background()

	assert.True(ts.T(), v.Verify(ctx, p, "accepted"))
	assert.Equal(ts.T(), []string{message, "accepted", ts.address}, got)
	assert.False(ts.T(), v.Verify(ctx, p, "rejected"))
}

func (ts *VerifierTestSuite) TestPanickingSignatureVerifier() {
	p := ts.params(nil)

	v := ts.verifier(WithSignatureVerifier(SignatureVerifierFunc(func(string, string, string) bool {
		panic("boom")
	})))

	assert.NotPanics(ts.T(), func() {
		assert.False(ts.T(), v.Verify(context.Background(), p, "0x00"))
	})

	err := v.VerifyOrFail(context.Background(), p, Create(p), "0x00")
	kind, _ := KindOf(err)
	assert.Equal(ts.T(), KindSignature, kind)

	var sawPanic bool
	for _, entry := range ts.logs.AllEntries() {
		if entry.Data["panic"] == "boom" {
			sawPanic = true
		}
	}
	assert.True(ts.T(), sawPanic)
}

func (ts *VerifierTestSuite) TestTimeCheckedBeforeSignature() {
	exp := ts.now.Add(-time.Second)
	p := ts.params(func(f *Fields) {
		f.ExpirationTime = &exp
	})

	called := false
	v := ts.verifier(WithSignatureVerifier(SignatureVerifierFunc(func(string, string, string) bool {
		called = true
		return true
	})))

	assert.False(ts.T(), v.Verify(context.Background(), p, "0x00"))
	assert.False(ts.T(), called)
}

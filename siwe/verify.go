package siwe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/supabase/auth-siwe/internal/observability"
	"github.com/supabase/auth-siwe/internal/utilities/web3/ethereum"
)

// SignatureVerifier reports whether signature over message was produced by
// the key controlling address. Implementations must be side-effect free.
type SignatureVerifier interface {
	Verify(message, signature, address string) bool
}

type SignatureVerifierFunc func(message, signature, address string) bool

func (f SignatureVerifierFunc) Verify(message, signature, address string) bool {
	return f(message, signature, address)
}

// EthereumSignatureVerifier checks EIP-191 personal_sign signatures. See
// ethereum.VerifySignature for the address comparison rules.
var EthereumSignatureVerifier SignatureVerifier = ethereum.Verifier{}

// Verifier authenticates signed messages. It is immutable after
// construction and safe for concurrent use.
type Verifier struct {
	signatures      SignatureVerifier
	now             func() time.Time
	timestamps      TimestampCodec
	logger          logrus.FieldLogger
	expectedDomain  string
	expectedChainID int64

	tracer   trace.Tracer
	attempts metric.Int64Counter
}

type VerifierOption func(*Verifier)

func WithSignatureVerifier(sv SignatureVerifier) VerifierOption {
	return func(v *Verifier) {
		v.signatures = sv
	}
}

// WithVerifierClock sets the clock the time window is checked against.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

func WithVerifierTimestampCodec(c TimestampCodec) VerifierOption {
	return func(v *Verifier) {
		v.timestamps = c
	}
}

func WithLogger(logger logrus.FieldLogger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithExpectedDomain rejects messages whose domain differs from domain.
func WithExpectedDomain(domain string) VerifierOption {
	return func(v *Verifier) {
		v.expectedDomain = domain
	}
}

// WithExpectedChainID rejects messages for other chains.
func WithExpectedChainID(chainID int64) VerifierOption {
	return func(v *Verifier) {
		v.expectedChainID = chainID
	}
}

func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{
		signatures: EthereumSignatureVerifier,
		now:        time.Now,
		timestamps: ISO8601,
		logger:     logrus.StandardLogger(),
		tracer:     observability.Tracer("siwe"),
		attempts:   observability.ObtainMetricCounter("siwe_verification_attempts", "Number of SIWE verification attempts by result"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyOrFail checks the time window, the configured relying party
// bindings and finally the signature of message. It returns nil only if all
// checks pass.
func (v *Verifier) VerifyOrFail(ctx context.Context, p *Params, message, signature string) (err error) {
	ctx, span := v.tracer.Start(ctx, "siwe.VerifyOrFail", trace.WithAttributes(
		attribute.String("siwe.domain", p.Domain()),
		attribute.Int64("siwe.chain_id", p.ChainID()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		v.record(ctx, p, err)
	}()

	if err = ValidateTime(p, v.now()); err != nil {
		return err
	}

	if err = v.checkBindings(p); err != nil {
		return err
	}

	if !v.verifySignature(message, signature, p.Address()) {
		return &SignatureError{Address: p.Address()}
	}

	return nil
}

// Verify re-creates the message text from p and reports whether signature
// authenticates it. Use VerifyOrFail to learn why verification failed.
func (v *Verifier) Verify(ctx context.Context, p *Params, signature string) bool {
	return v.VerifyOrFail(ctx, p, Create(p, WithTimestampCodec(v.timestamps)), signature) == nil
}

// VerifyMessage parses text and reports whether signature authenticates it.
// The signature is checked against text itself, not a re-rendered copy.
func (v *Verifier) VerifyMessage(ctx context.Context, text, signature string) bool {
	_, err := v.VerifyMessageOrFail(ctx, text, signature)
	return err == nil
}

// VerifyMessageOrFail is VerifyMessage with the typed error, returning the
// parsed params on success so the caller can consume the nonce.
func (v *Verifier) VerifyMessageOrFail(ctx context.Context, text, signature string) (*Params, error) {
	p, err := Parse(text, WithTimestampCodec(v.timestamps))
	if err != nil {
		v.record(ctx, nil, err)
		return nil, err
	}

	if err := v.VerifyOrFail(ctx, p, text, signature); err != nil {
		return nil, err
	}

	return p, nil
}

func (v *Verifier) checkBindings(p *Params) error {
	if v.expectedDomain != "" && p.Domain() != v.expectedDomain {
		return &BindingError{Field: "domain", Expected: v.expectedDomain, Got: p.Domain()}
	}
	if v.expectedChainID != 0 && p.ChainID() != v.expectedChainID {
		return &BindingError{
			Field:    "chainId",
			Expected: strconv.FormatInt(v.expectedChainID, 10),
			Got:      strconv.FormatInt(p.ChainID(), 10),
		}
	}
	return nil
}

// verifySignature treats a panicking SignatureVerifier as a failed check.
func (v *Verifier) verifySignature(message, signature, address string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.WithField("panic", fmt.Sprint(r)).Error("siwe: signature verifier panicked")
			ok = false
		}
	}()
	return v.signatures.Verify(message, signature, address)
}

func (v *Verifier) record(ctx context.Context, p *Params, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if kind, ok := KindOf(err); ok {
			result = kind.String()
		}
	}
	v.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))

	entry := v.logger.WithField("result", result)
	if p != nil {
		entry = entry.WithFields(logrus.Fields{
			"address": p.Address(),
			"domain":  p.Domain(),
			"nonce":   p.Nonce(),
		})
	}
	if err != nil {
		entry.WithError(err).Debug("siwe verification failed")
		return
	}
	entry.Debug("siwe verification succeeded")
}

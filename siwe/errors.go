package siwe

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind tags every error produced by this package so callers can switch on
// the failure class without type-asserting each concrete error.
type Kind int

const (
	KindInvalidField Kind = iota + 1
	KindParse
	KindTime
	KindSignature
	KindBinding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidField:
		return "invalid_field"
	case KindParse:
		return "parse"
	case KindTime:
		return "time"
	case KindSignature:
		return "signature"
	case KindBinding:
		return "binding"
	default:
		return "unknown"
	}
}

// Error is implemented by all errors returned from this package.
type Error interface {
	error
	Kind() Kind
}

// KindOf reports the Kind of the first siwe error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.Kind(), true
	}
	return 0, false
}

// InvalidFieldError is returned when a field violates one of the message
// invariants, whether the params were built directly, with a Builder or by
// Parse.
type InvalidFieldError struct {
	Field      string
	Value      string
	Conditions []string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("siwe: invalid message field %q: %s (provided value %q)", e.Field, strings.Join(e.Conditions, "; "), e.Value)
}

func (e *InvalidFieldError) Kind() Kind { return KindInvalidField }

// ParseError is returned when text does not follow the message grammar at
// all. Line is 1-based; 0 means the error is not tied to a line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "siwe: " + e.Reason
	}
	return fmt.Sprintf("siwe: line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Kind() Kind { return KindParse }

// TimeCondition identifies one violated temporal condition.
type TimeCondition int

const (
	IssuedAtMissing TimeCondition = iota + 1
	NotYetValid
	Expired
)

func (c TimeCondition) String() string {
	switch c {
	case IssuedAtMissing:
		return "issued_at_missing"
	case NotYetValid:
		return "not_yet_valid"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

type TimeViolation struct {
	Condition TimeCondition
	Message   string
}

// TimeValidationError lists every temporal condition that failed at Now.
type TimeValidationError struct {
	Now        time.Time
	Violations []TimeViolation
}

func (e *TimeValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("siwe: message is not valid at %s: %s", e.Now.UTC().Format(time.RFC3339Nano), strings.Join(msgs, "; "))
}

func (e *TimeValidationError) Kind() Kind { return KindTime }

// Has reports whether the condition is among the violations.
func (e *TimeValidationError) Has(c TimeCondition) bool {
	for _, v := range e.Violations {
		if v.Condition == c {
			return true
		}
	}
	return false
}

// SignatureError is returned when the signature was not produced by Address.
type SignatureError struct {
	Address string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("siwe: signature is not valid for address %s", e.Address)
}

func (e *SignatureError) Kind() Kind { return KindSignature }

// BindingError is returned when a message is well-formed and signed but
// addressed to a different relying party than the verifier expects.
type BindingError struct {
	Field    string
	Expected string
	Got      string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("siwe: %s mismatch, expected %q got %q", e.Field, e.Expected, e.Got)
}

func (e *BindingError) Kind() Kind { return KindBinding }

func errRequired(field string) *InvalidFieldError {
	return &InvalidFieldError{
		Field:      field,
		Conditions: []string{"required field is not set"},
	}
}

func errUnexpectedLine(line int, expected string) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf("expected %s", expected)}
}

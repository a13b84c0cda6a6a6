package siwe

import (
	"fmt"
	"time"
)

// ValidateTime checks the message's validity window at now. All violated
// conditions are reported together in a *TimeValidationError.
func ValidateTime(p *Params, now time.Time) error {
	var violations []TimeViolation

	if p.f.IssuedAt.IsZero() {
		violations = append(violations, TimeViolation{
			Condition: IssuedAtMissing,
			Message:   "issued at is not set",
		})
	}

	if nb := p.f.NotBefore; nb != nil && now.Before(*nb) {
		violations = append(violations, TimeViolation{
			Condition: NotYetValid,
			Message:   fmt.Sprintf("not valid before %s", ISO8601.Format(*nb)),
		})
	}

	if exp := p.f.ExpirationTime; exp != nil && !now.Before(*exp) {
		violations = append(violations, TimeViolation{
			Condition: Expired,
			Message:   fmt.Sprintf("expired at %s", ISO8601.Format(*exp)),
		})
	}

	if len(violations) > 0 {
		return &TimeValidationError{Now: now, Violations: violations}
	}
	return nil
}

package siwe

import (
	"fmt"
	"strconv"
	"time"
)

type fieldRule struct {
	name  string
	value func(f *Fields) string
	check func(f *Fields) []string
}

// Rules run in this order and the first field with violations is reported.
var fieldRules = []fieldRule{
	{
		name:  "address",
		value: func(f *Fields) string { return f.Address },
		check: func(f *Fields) []string {
			if f.Address == "" {
				return []string{"required field is not set"}
			}
			if !IsValidAddress(f.Address) {
				return []string{"must be 0x followed by 40 hexadecimal characters"}
			}
			return nil
		},
	},
	{
		name:  "chainId",
		value: func(f *Fields) string { return strconv.FormatInt(f.ChainID, 10) },
		check: func(f *Fields) []string {
			if f.ChainID <= 0 {
				return []string{"must be a positive integer"}
			}
			return nil
		},
	},
	{
		name:  "domain",
		value: func(f *Fields) string { return f.Domain },
		check: func(f *Fields) []string {
			if f.Domain == "" {
				return []string{"required field is not set"}
			}
			if !IsValidDomain(f.Domain) {
				return []string{"must be a host name or IP address with an optional port"}
			}
			return nil
		},
	},
	{
		name:  "uri",
		value: func(f *Fields) string { return f.URI },
		check: func(f *Fields) []string {
			if f.URI == "" {
				return []string{"required field is not set"}
			}
			if !IsValidURI(f.URI) {
				return []string{"must be an absolute RFC 3986 URI"}
			}
			return nil
		},
	},
	{
		name:  "nonce",
		value: func(f *Fields) string { return f.Nonce },
		check: func(f *Fields) []string {
			var conds []string
			if len(f.Nonce) < minNonceLength {
				conds = append(conds, fmt.Sprintf("must be at least %d characters long", minNonceLength))
			}
			if !nonceAlphabet.MatchString(f.Nonce) {
				conds = append(conds, "must contain only letters and digits")
			}
			return conds
		},
	},
	{
		name:  "version",
		value: func(f *Fields) string { return f.Version },
		check: func(f *Fields) []string {
			if f.Version != DefaultVersion {
				return []string{fmt.Sprintf("must be %q", DefaultVersion)}
			}
			return nil
		},
	},
	{
		name:  "statement",
		value: func(f *Fields) string { return f.Statement },
		check: func(f *Fields) []string {
			if hasLineBreak(f.Statement) {
				return []string{"must not contain line breaks"}
			}
			return nil
		},
	},
	{
		name:  "scheme",
		value: func(f *Fields) string { return f.Scheme },
		check: func(f *Fields) []string {
			if f.Scheme != "" && !IsValidScheme(f.Scheme) {
				return []string{"must be an RFC 3986 URI scheme"}
			}
			return nil
		},
	},
	{
		name:  "requestId",
		value: func(f *Fields) string { return f.RequestID },
		check: func(f *Fields) []string {
			if hasLineBreak(f.RequestID) {
				return []string{"must not contain line breaks"}
			}
			return nil
		},
	},
	{
		name:  "resources",
		value: func(f *Fields) string { return fmt.Sprintf("%q", f.Resources) },
		check: func(f *Fields) []string {
			if f.Resources == nil {
				return nil
			}
			if len(f.Resources) == 0 {
				return []string{"must contain at least one entry when present"}
			}
			var conds []string
			for i, r := range f.Resources {
				if !IsValidURI(r) {
					conds = append(conds, fmt.Sprintf("entry %d must be an absolute RFC 3986 URI", i))
				}
			}
			return conds
		},
	},
	{
		name:  "notBefore",
		value: func(f *Fields) string { return formatOptionalTime(f.NotBefore) },
		check: func(f *Fields) []string {
			if f.NotBefore != nil && f.ExpirationTime != nil && f.NotBefore.After(*f.ExpirationTime) {
				return []string{"must not be after expirationTime"}
			}
			return nil
		},
	},
}

func validateFields(f *Fields) error {
	for _, rule := range fieldRules {
		if conds := rule.check(f); len(conds) > 0 {
			return &InvalidFieldError{
				Field:      rule.name,
				Value:      rule.value(f),
				Conditions: conds,
			}
		}
	}
	return nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ISO8601.Format(*t)
}

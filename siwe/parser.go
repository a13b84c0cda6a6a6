package siwe

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse reads a canonical EIP-4361 message. Text that does not follow the
// grammar yields a *ParseError; text that follows it but carries invalid
// values yields the same *InvalidFieldError that New would return.
func Parse(text string, opts ...Option) (*Params, error) {
	o := newOptions(opts)
	r := &lineReader{lines: strings.Split(text, "\n")}

	var f Fields

	line, n, _ := r.next()
	scheme, domain, ok := matchHeader(line)
	if !ok {
		return nil, errUnexpectedLine(n, fmt.Sprintf("%q header", "<domain>"+headerSuffix))
	}
	f.Scheme = scheme
	f.Domain = domain

	line, n, ok = r.next()
	if !ok {
		return nil, errEOF(n, "address")
	}
	if !matchAddress(line) {
		return nil, errUnexpectedLine(n, "0x-prefixed 40 digit hexadecimal address")
	}
	f.Address = line

	if err := r.blank(); err != nil {
		return nil, err
	}

	line, n, ok = r.next()
	if !ok {
		return nil, errEOF(n, "statement or blank line")
	}
	if !matchBlank(line) {
		f.Statement = line
		if err := r.blank(); err != nil {
			return nil, err
		}
	}

	var err error
	if f.URI, _, err = r.field(labelURI); err != nil {
		return nil, err
	}
	if f.Version, _, err = r.field(labelVersion); err != nil {
		return nil, err
	}

	chainID, n, err := r.field(labelChainID)
	if err != nil {
		return nil, err
	}
	if f.ChainID, err = strconv.ParseInt(chainID, 10, 64); err != nil {
		return nil, &ParseError{Line: n, Reason: fmt.Sprintf("%s %q is not an integer", labelChainID, chainID)}
	}

	if f.Nonce, _, err = r.field(labelNonce); err != nil {
		return nil, err
	}

	issuedAt, n, err := r.field(labelIssuedAt)
	if err != nil {
		return nil, err
	}
	if f.IssuedAt, err = parseTimestamp(o.timestamps, labelIssuedAt, issuedAt, n); err != nil {
		return nil, err
	}
	if f.IssuedAt.IsZero() {
		// New would otherwise replace it with the current time
		return nil, &ParseError{Line: n, Reason: labelIssuedAt + " must not be the zero time"}
	}

	if value, n, ok := r.optionalField(labelExpirationTime); ok {
		t, err := parseTimestamp(o.timestamps, labelExpirationTime, value, n)
		if err != nil {
			return nil, err
		}
		f.ExpirationTime = &t
	}
	if value, n, ok := r.optionalField(labelNotBefore); ok {
		t, err := parseTimestamp(o.timestamps, labelNotBefore, value, n)
		if err != nil {
			return nil, err
		}
		f.NotBefore = &t
	}
	if value, _, ok := r.optionalField(labelRequestID); ok {
		f.RequestID = value
	}

	if line, ok := r.peek(); ok && line == labelResources {
		r.next()
		for !r.done() {
			line, n, _ := r.next()
			resource, ok := matchResource(line)
			if !ok {
				return nil, errUnexpectedLine(n, fmt.Sprintf("resource line starting with %q", resourcePrefix))
			}
			f.Resources = append(f.Resources, resource)
		}
		if len(f.Resources) == 0 {
			return nil, errEOF(r.pos+1, "at least one resource")
		}
	}

	if !r.done() {
		_, n, _ := r.next()
		return nil, errUnexpectedLine(n, "end of message")
	}

	return New(f, opts...)
}

type lineReader struct {
	lines []string
	pos   int
}

// next returns the next line and its 1-based number.
func (r *lineReader) next() (string, int, bool) {
	if r.pos >= len(r.lines) {
		return "", r.pos + 1, false
	}
	line := r.lines[r.pos]
	r.pos++
	return line, r.pos, true
}

func (r *lineReader) peek() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	return r.lines[r.pos], true
}

func (r *lineReader) done() bool {
	return r.pos >= len(r.lines)
}

func (r *lineReader) blank() error {
	line, n, ok := r.next()
	if !ok {
		return errEOF(n, "blank line")
	}
	if !matchBlank(line) {
		return errUnexpectedLine(n, "blank line")
	}
	return nil
}

func (r *lineReader) field(label string) (string, int, error) {
	line, n, ok := r.next()
	if !ok {
		return "", n, errEOF(n, fmt.Sprintf("%q line", label))
	}
	value, ok := matchField(line, label)
	if !ok {
		return "", n, errUnexpectedLine(n, fmt.Sprintf("%q line", label))
	}
	return value, n, nil
}

func (r *lineReader) optionalField(label string) (string, int, bool) {
	line, ok := r.peek()
	if !ok {
		return "", 0, false
	}
	value, ok := matchField(line, label)
	if !ok {
		return "", 0, false
	}
	_, n, _ := r.next()
	return value, n, true
}

// matchHeader splits "[scheme://]domain wants you to sign in ..." into its
// scheme and domain tokens.
func matchHeader(line string) (scheme, domain string, ok bool) {
	authority, ok := strings.CutSuffix(line, headerSuffix)
	if !ok {
		return "", "", false
	}
	if s, rest, found := strings.Cut(authority, "://"); found {
		if s == "" {
			return "", "", false
		}
		scheme, authority = s, rest
	}
	if authority == "" || strings.ContainsAny(authority, " \t/") {
		return "", "", false
	}
	return scheme, authority, true
}

func matchAddress(line string) bool {
	return addressPattern.MatchString(line)
}

func matchBlank(line string) bool {
	return line == ""
}

func matchField(line, label string) (string, bool) {
	value, ok := strings.CutPrefix(line, label+": ")
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func matchResource(line string) (string, bool) {
	return strings.CutPrefix(line, resourcePrefix)
}

func parseTimestamp(codec TimestampCodec, label, value string, line int) (time.Time, error) {
	t, err := codec.Parse(value)
	if err != nil {
		return time.Time{}, &ParseError{Line: line, Reason: fmt.Sprintf("%s is not a valid timestamp: %v", label, err)}
	}
	return t, nil
}

func errEOF(line int, expected string) *ParseError {
	return &ParseError{Line: line, Reason: "unexpected end of message, expected " + expected}
}

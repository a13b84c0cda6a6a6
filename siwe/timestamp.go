package siwe

import (
	"fmt"
	"regexp"
	"time"
)

// TimestampCodec converts between timestamps and their textual form in a
// message.
type TimestampCodec interface {
	Format(t time.Time) string
	Parse(s string) (time.Time, error)
}

const isoLayout = "2006-01-02T15:04:05.000Z"

var isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,9}Z$`)

type isoCodec struct{}

// ISO8601 formats timestamps in UTC with millisecond precision and only
// accepts that profile (with 1 to 9 fractional digits) back.
var ISO8601 TimestampCodec = isoCodec{}

func (isoCodec) Format(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func (isoCodec) Parse(s string) (time.Time, error) {
	if !isoPattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("timestamp %q is not in YYYY-MM-DDTHH:MM:SS.sssZ form", s)
	}
	return time.Parse(time.RFC3339Nano, s)
}

type lenientCodec struct{}

// Lenient formats exactly like ISO8601 but parses any RFC 3339 timestamp,
// including ones without fractional seconds or with a numeric offset.
var Lenient TimestampCodec = lenientCodec{}

func (lenientCodec) Format(t time.Time) string {
	return ISO8601.Format(t)
}

func (lenientCodec) Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

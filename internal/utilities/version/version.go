package version

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Version is the release tag the binary was built from, set with
// -ldflags "-X github.com/supabase/auth-siwe/internal/utilities/version.Version=v1.2.3".
var Version = "0.0.0"

// InitVersionMetrics records the major, minor and patch parts of ver as
// siwe_version_* gauges.
func InitVersionMetrics(ctx context.Context, ver string) error {
	sv, err := semver.NewVersion(ver)
	if err != nil {
		return fmt.Errorf("version: unable to parse version %q: %w", ver, err)
	}

	return errors.Join(
		recordPart(ctx, "major", sv.Major(), otelGauge),
		recordPart(ctx, "minor", sv.Minor(), otelGauge),
		recordPart(ctx, "patch", sv.Patch(), otelGauge),
	)
}

type gaugeFunc func(name string, options ...metric.Int64GaugeOption) (metric.Int64Gauge, error)

func otelGauge(name string, options ...metric.Int64GaugeOption) (metric.Int64Gauge, error) {
	return otel.Meter("github.com/supabase/auth-siwe").Int64Gauge(name, options...)
}

func recordPart(ctx context.Context, part string, val uint64, gauge gaugeFunc) error {
	if val > math.MaxInt64 {
		return fmt.Errorf("version: %s part %v exceeds math.MaxInt64", part, val)
	}

	g, err := gauge(
		"siwe_version_"+part,
		metric.WithDescription(fmt.Sprintf("The %s version number of the siwe build.", part)),
	)
	if err != nil {
		return fmt.Errorf("version: %s gauge: %w", part, err)
	}

	g.Record(ctx, int64(val))
	return nil
}

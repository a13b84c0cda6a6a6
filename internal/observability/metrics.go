package observability

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/supabase/auth-siwe/internal/conf"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	otelruntimemetrics "go.opentelemetry.io/contrib/instrumentation/runtime"
)

func Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return otel.Meter(name, opts...)
}

// ObtainMetricCounter returns a counter from the siwe meter. Instrument
// creation only fails on programmer error, hence the panic.
func ObtainMetricCounter(name, desc string) metric.Int64Counter {
	counter, err := Meter(instrumentationName).Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		panic(err)
	}
	return counter
}

// shutdownOnDone runs shutdown once ctx is cancelled and registers the
// goroutine with WaitForCleanup.
func shutdownOnDone(ctx context.Context, what string, shutdown func(context.Context) error) {
	cleanupWaitGroup.Add(1)
	go func() {
		defer cleanupWaitGroup.Done()

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Errorf("unable to gracefully shut down %s", what)
		} else {
			logrus.Infof("%s shut down", what)
		}
	}()
}

func enablePrometheusMetrics(ctx context.Context, mc *conf.MetricsConfig) error {
	exporter, err := prometheus.New()
	if err != nil {
		return err
	}

	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))

	addr := net.JoinHostPort(mc.PrometheusListenHost, mc.PrometheusListenPort)
	baseContext, cancel := context.WithCancel(context.Background())

	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return baseContext
		},
		ReadHeaderTimeout: 2 * time.Second, // to mitigate a Slowloris attack
	}

	shutdownOnDone(ctx, fmt.Sprintf("prometheus server (%s)", addr), func(shutdownCtx context.Context) error {
		cancel()
		return server.Shutdown(shutdownCtx)
	})

	cleanupWaitGroup.Add(1)
	go func() {
		defer cleanupWaitGroup.Done()

		logrus.Infof("prometheus server listening on %s", addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Errorf("prometheus server (%s) shut down", addr)
		}
	}()

	return nil
}

func enableOpenTelemetryMetrics(ctx context.Context, mc *conf.MetricsConfig) error {
	var (
		exporter sdkmetric.Exporter
		err      error
	)

	switch mc.ExporterProtocol {
	case "grpc":
		exporter, err = otlpmetricgrpc.New(ctx)
	case "http/protobuf":
		exporter, err = otlpmetrichttp.New(ctx)
	default: // http/json for example
		return fmt.Errorf("unsupported OpenTelemetry exporter protocol %q", mc.ExporterProtocol)
	}
	if err != nil {
		return err
	}

	otel.SetMeterProvider(sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	))

	shutdownOnDone(ctx, "OpenTelemetry metric exporter", exporter.Shutdown)

	logrus.Info("OpenTelemetry metrics exporter started")
	return nil
}

var (
	metricsOnce *sync.Once = &sync.Once{}
)

// ConfigureMetrics installs the configured meter provider. Cancelling ctx
// stops the exporters.
func ConfigureMetrics(ctx context.Context, mc *conf.MetricsConfig) error {
	if ctx == nil {
		panic("context must not be nil")
	}

	var err error

	metricsOnce.Do(func() {
		if !mc.Enabled {
			return
		}

		switch mc.Exporter {
		case conf.Prometheus:
			if err = enablePrometheusMetrics(ctx, mc); err != nil {
				logrus.WithError(err).Error("unable to start prometheus metrics exporter")
				return
			}

		case conf.OpenTelemetryMetrics:
			if err = enableOpenTelemetryMetrics(ctx, mc); err != nil {
				logrus.WithError(err).Error("unable to start OTLP metrics exporter")
				return
			}
		}

		if errRuntime := otelruntimemetrics.Start(otelruntimemetrics.WithMinimumReadMemStatsInterval(time.Second)); errRuntime != nil {
			logrus.WithError(errRuntime).Error("unable to start OpenTelemetry Go runtime metrics collection")
		} else {
			logrus.Info("Go runtime metrics collection started")
		}

		_, errGauge := Meter(instrumentationName).Int64ObservableGauge(
			"siwe_running",
			metric.WithDescription("Whether the siwe process is running (always 1)"),
			metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
				obsrv.Observe(int64(1))
				return nil
			}),
		)
		if errGauge != nil {
			logrus.WithError(errGauge).Error("unable to get siwe_running gauge metric")
		}
	})

	return err
}

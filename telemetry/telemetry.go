// Package telemetry wires OpenTelemetry trace and log export for duesort.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/duesort/envutil"
	"github.com/amp-labs/duesort/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	EnvEnabled        = "OTEL_ENABLED"
	EnvLogsEnabled    = "OTEL_LOGS_ENABLED"
	EnvServiceName    = "OTEL_SERVICE_NAME"
	EnvServiceVersion = "OTEL_SERVICE_VERSION"
	EnvTraceEndpoint  = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	EnvLogsEndpoint   = "OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"
	EnvTimeout        = "OTEL_EXPORTER_OTLP_TIMEOUT"

	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
)

// Providers holds whatever Initialize installed globally. A nil field means
// that signal is not exported.
type Providers struct {
	Traces *sdktrace.TracerProvider
	Logs   *sdklog.LoggerProvider
}

// Config holds the OpenTelemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceEndpoint  string
	LogsEndpoint   string
	Enabled        bool
	LogsEnabled    bool
	Timeout        time.Duration
}

// LoadConfigFromEnv loads OpenTelemetry configuration from environment variables.
// The logs endpoint falls back to the traces endpoint.
func LoadConfigFromEnv(ctx context.Context, runningEnv string) (*Config, error) {
	enabled, err := envutil.Bool(ctx, EnvEnabled, envutil.Default(false)).Value()
	if err != nil {
		return nil, err
	}

	logsEnabled, err := envutil.Bool(ctx, EnvLogsEnabled, envutil.Default(false)).Value()
	if err != nil {
		return nil, err
	}

	svcName, err := envutil.String(ctx, EnvServiceName, envutil.Default(logger.GetSubsystem(ctx))).Value()
	if err != nil {
		return nil, err
	}

	svcVersion, err := envutil.String(ctx, EnvServiceVersion,
		envutil.Default(defaultServiceVersion)).
		Value()
	if err != nil {
		return nil, err
	}

	traceEndpoint, err := envutil.String(ctx, EnvTraceEndpoint, envutil.Default("")).Value()
	if err != nil {
		return nil, err
	}

	logsEndpoint, err := envutil.String(ctx, EnvLogsEndpoint, envutil.Default(traceEndpoint)).Value()
	if err != nil {
		return nil, err
	}

	timeout, err := envutil.Duration(ctx, EnvTimeout, envutil.Default(defaultTimeout)).Value()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServiceName:    svcName,
		ServiceVersion: svcVersion,
		Environment:    runningEnv,
		TraceEndpoint:  traceEndpoint,
		LogsEndpoint:   logsEndpoint,
		Enabled:        enabled,
		LogsEnabled:    enabled && logsEnabled,
		Timeout:        timeout,
	}, nil
}

// Initialize sets up trace export and, when configured, log export. The
// returned Providers must be passed to Shutdown before exit.
func Initialize(ctx context.Context, config *Config) (*Providers, error) {
	log := logger.Get(ctx)
	providers := &Providers{}

	if !config.Enabled {
		log.Debug("OpenTelemetry export is disabled")

		return providers, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if config.TraceEndpoint == "" {
		log.Warn("OpenTelemetry traces endpoint not configured, tracing will be disabled")
	} else {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(config.TraceEndpoint),
			otlptracehttp.WithTimeout(config.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

		providers.Traces = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)

		otel.SetTracerProvider(providers.Traces)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	if config.LogsEnabled && config.LogsEndpoint != "" {
		exporter, err := otlploghttp.New(ctx,
			otlploghttp.WithEndpointURL(config.LogsEndpoint),
			otlploghttp.WithTimeout(config.Timeout),
		)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create OTLP log exporter: %w", err),
				providers.shutdown(ctx))
		}

		providers.Logs = sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
			sdklog.WithResource(res),
		)

		global.SetLoggerProvider(providers.Logs)
	}

	log.Info("OpenTelemetry initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"traces", providers.Traces != nil,
		"logs", providers.Logs != nil,
	)

	return providers, nil
}

func (p *Providers) shutdown(ctx context.Context) error {
	var errs []error

	if p.Traces != nil {
		errs = append(errs, p.Traces.Shutdown(ctx))
	}

	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

// Flush exports anything buffered without stopping the providers.
func Flush(ctx context.Context, providers *Providers) error {
	if providers == nil {
		return nil
	}

	var errs []error

	if providers.Traces != nil {
		errs = append(errs, providers.Traces.ForceFlush(ctx))
	}

	if providers.Logs != nil {
		errs = append(errs, providers.Logs.ForceFlush(ctx))
	}

	return errors.Join(errs...)
}

// Shutdown flushes and stops every installed provider. Safe on nil.
func Shutdown(ctx context.Context, providers *Providers) error {
	if providers == nil {
		return nil
	}

	return providers.shutdown(ctx)
}

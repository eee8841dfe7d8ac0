// Package tracing настраивает глобальный OpenTelemetry TracerProvider
// с экспортом по OTLP/HTTP.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/pribylovaa/comments-web/internal/config"
)

// Shutdown досылает буфер span'ов и останавливает провайдер.
type Shutdown func(ctx context.Context) error

func noop(context.Context) error { return nil }

// Init ставит глобальные провайдер и пропагатор. Пустой Endpoint — трейсинг
// выключен: провайдер остаётся no-op, а пропагатор всё равно ставится, чтобы
// traceparent доходил до бэкенда.
func Init(ctx context.Context, cfg config.TracingConfig, env string) (Shutdown, error) {
	const op = "internal/tracing/Init"

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	if cfg.Endpoint == "" {
		return noop, nil
	}

	exp, err := otlptracehttp.New(ctx, endpointOption(cfg.Endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("%s: exporter: %w", op, err)
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("deployment.environment", env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: resource: %w", op, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// endpointOption: "http(s)://host:port[/path]" — как URL, иначе host:port
// без TLS (так обычно адресуют коллектор внутри кластера).
func endpointOption(endpoint string) []otlptracehttp.Option {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	return []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure()}
}

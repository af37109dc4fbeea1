// Package observability provides the logger, metrics registry and tracer
// shared by every module.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(
		NewLogger,
		NewRegistry,
		NewGatherer,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		NewTracerProvider,
		func(tp *sdktrace.TracerProvider) trace.TracerProvider { return tp },
	),
	fx.Invoke(func(lc fx.Lifecycle, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				_ = log.Sync()
				return nil
			},
		})
	}),
)

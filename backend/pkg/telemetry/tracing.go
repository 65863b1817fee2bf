package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"learnhub/backend/config"
)

// InitTracing 初始化全局 TracerProvider
// trace_exporter=none 时不安装导出器，仍保留传播器以透传上游 trace 上下文
func InitTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Telemetry.TraceExporter == "" || cfg.Telemetry.TraceExporter == "none" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.Telemetry.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Telemetry.Version),
			attribute.String("deployment.environment", cfg.Server.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 otel resource 失败: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Telemetry.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	case "otlp":
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("创建 trace 导出器失败: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Telemetry.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("链路追踪已初始化",
		zap.String("exporter", cfg.Telemetry.TraceExporter),
		zap.Float64("sample_ratio", cfg.Telemetry.SampleRatio),
	)

	return tp.Shutdown, nil
}

// Tracer 返回业务层使用的 tracer
func Tracer() trace.Tracer {
	return otel.Tracer("learnhub/backend")
}

// withTrace 将当前 span 的 trace_id 附加到上报内容，便于关联日志与链路
func withTrace(ctx context.Context, extras map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(extras)+1)
	for k, v := range extras {
		out[k] = v
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		out["trace_id"] = sc.TraceID().String()
	}
	return out
}

package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	defaultOTLPEndpoint = "http://localhost:4318"
	defaultOTLPPath     = "/v1/traces"
)

// AppVersion is stamped at build time with -ldflags "-X ...config.AppVersion=...".
var AppVersion = "dev"

// otlpTarget is what otlptracehttp needs: a bare host:port plus the URL path.
type otlpTarget struct {
	hostport string
	path     string
	insecure bool
}

// SetupTracing installs a global tracer provider when OTEL_TRACES_ENABLED is
// true. The returned shutdown flushes pending spans; it is nil when tracing is off.
func SetupTracing(logger *log.Logger) (func(context.Context) error, error) {
	if !utils.IsTracingEnabled() {
		return nil, nil
	}

	endpoint := utils.GetEnvTrimmedOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint)
	target, err := parseOTLPEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(target.hostport),
		otlptracehttp.WithURLPath(target.path),
	}
	if target.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("setup tracing exporter: %w", err)
	}

	serviceName := utils.OTelServiceName()
	res, err := resource.New(context.Background(), resource.WithAttributes(tracingAttributes(serviceName)...))
	if err != nil {
		return nil, fmt.Errorf("setup tracing resource: %w", err)
	}

	ratio := utils.GetEnvRatio("OTEL_TRACES_SAMPLER_RATIO", 1)
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("OpenTelemetry tracing enabled",
		"service", serviceName,
		"endpoint", endpoint,
		"sample_ratio", ratio,
	)

	return tp.Shutdown, nil
}

func tracingAttributes(serviceName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", AppVersion),
	}
	if env := GetAppEnv(); env != "" {
		attrs = append(attrs, attribute.String("deployment.environment", env))
	}
	if driver, err := GetStoreDriver(); err == nil {
		attrs = append(attrs, attribute.String("waitlist.store", string(driver)))
	}
	return attrs
}

// parseOTLPEndpoint accepts http(s)://host:port[/path] or a bare host:port,
// which is treated as plain http.
func parseOTLPEndpoint(raw string) (otlpTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpTarget{}, fmt.Errorf("empty OTLP endpoint")
	}

	if !strings.Contains(raw, "://") {
		if strings.ContainsAny(raw, "/?#") {
			return otlpTarget{}, fmt.Errorf("invalid OTLP endpoint %q: use http://host:port[/path] when a path is needed", raw)
		}
		return otlpTarget{hostport: raw, path: defaultOTLPPath, insecure: true}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return otlpTarget{}, fmt.Errorf("invalid OTLP endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return otlpTarget{}, fmt.Errorf("invalid OTLP endpoint %q: missing host", raw)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return otlpTarget{}, fmt.Errorf("unsupported OTLP endpoint scheme %q in %q", u.Scheme, raw)
	}

	path := u.EscapedPath()
	if path == "" || path == "/" {
		path = defaultOTLPPath
	}

	return otlpTarget{hostport: u.Host, path: path, insecure: scheme == "http"}, nil
}

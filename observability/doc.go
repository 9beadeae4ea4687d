// Package observability wires OpenTelemetry tracing and metrics.
//
// Setup installs OTLP HTTP exporters as the global providers when enabled;
// otherwise the global no-op providers stay in place and instrumentation
// costs nothing. The dispatcher records one SpanDispatch span per call and
// the modelgate.dispatch.* instruments from DispatchMetrics.
package observability

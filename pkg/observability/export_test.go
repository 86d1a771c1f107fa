package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ProbeBuildResource exposes buildResource to external tests.
func ProbeBuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// ProbeSamplerSpan builds the sampler selectSampler would choose for cfg and
// reports whether it samples a root span (no parent context).
func ProbeSamplerSpan(cfg Config) bool {
	sampler := selectSampler(cfg)

	result := sampler.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       [16]byte{1},
		Name:          "probe",
	})

	return result.Decision != sdktrace.Drop
}

package backend

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/common/metrics"
)

type instrumented struct {
	next Client
	kind string
}

// Instrument wraps c so that every call records a span and a latency observation.
func Instrument(c Client, kind string) Client {
	return &instrumented{next: c, kind: kind}
}

func (i *instrumented) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs, attribute.String("backend", i.kind))
	ctx, span := otel.Tracer("").Start(ctx, op, trace.WithAttributes(attrs...))
	started := time.Now()

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.BackendCallDuration.WithLabelValues(i.kind, op, metrics.Result(err)).Observe(time.Since(started).Seconds())
	}
}

func refAttrs(ref v1beta1.ClusterObjectRef) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("name", ref.Name),
		attribute.String("namespace", ref.Namespace),
		attribute.String("cluster", ref.ClusterName),
	}
}

func (i *instrumented) GetGraphqlApi(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error) {
	ctx, end := i.start(ctx, "GetGraphqlApi", refAttrs(ref)...)
	api, err := i.next.GetGraphqlApi(ctx, ref)
	end(err)
	return api, err
}

func (i *instrumented) ListGraphqlApis(ctx context.Context) ([]v1beta1.GraphQLApi, error) {
	ctx, end := i.start(ctx, "ListGraphqlApis")
	apis, err := i.next.ListGraphqlApis(ctx)
	end(err)
	return apis, err
}

func (i *instrumented) UpdateGraphqlApi(ctx context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error) {
	ctx, end := i.start(ctx, "UpdateGraphqlApi", refAttrs(api.Ref())...)
	out, err := i.next.UpdateGraphqlApi(ctx, api)
	end(err)
	return out, err
}

func (i *instrumented) ListUpstreams(ctx context.Context) ([]v1beta1.Upstream, error) {
	ctx, end := i.start(ctx, "ListUpstreams")
	ups, err := i.next.ListUpstreams(ctx)
	end(err)
	return ups, err
}

func (i *instrumented) ValidateResolverYaml(ctx context.Context, yaml string, kind v1beta1.ResolverKind) error {
	ctx, end := i.start(ctx, "ValidateResolverYaml", attribute.String("resolverType", string(kind)))
	err := i.next.ValidateResolverYaml(ctx, yaml, kind)
	end(err)
	metrics.ResolverValidations.WithLabelValues(string(kind), metrics.Result(err)).Inc()
	return err
}

func (i *instrumented) ValidateSchemaDefinition(ctx context.Context, req v1beta1.ValidateSchemaDefinitionRequest) error {
	ctx, end := i.start(ctx, "ValidateSchemaDefinition")
	err := i.next.ValidateSchemaDefinition(ctx, req)
	end(err)
	return err
}

func (i *instrumented) UpsertResolver(ctx context.Context, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error) {
	attrs := append(refAttrs(req.APIRef), attribute.String("resolver", req.ResolverName))
	ctx, end := i.start(ctx, "UpsertResolver", attrs...)
	api, err := i.next.UpsertResolver(ctx, req)
	end(err)
	return api, err
}

func (i *instrumented) DeleteResolver(ctx context.Context, req v1beta1.DeleteResolverRequest) (*v1beta1.GraphQLApi, error) {
	attrs := append(refAttrs(req.APIRef), attribute.String("resolver", req.ResolverName))
	ctx, end := i.start(ctx, "DeleteResolver", attrs...)
	api, err := i.next.DeleteResolver(ctx, req)
	end(err)
	return api, err
}

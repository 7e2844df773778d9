// Package backend is the console's access layer to the gateway control plane.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/resolver/conversion"
)

var (
	ErrNotFound      = errors.New("graphql api not found")
	ErrConflict      = errors.New("graphql api was modified concurrently")
	ErrUnavailable   = errors.New("control plane unavailable")
	ErrUnknownKind   = errors.New("unknown backend kind")
	ErrInvalidConfig = errors.New("invalid backend configuration")
)

const (
	KindMemory = "memory"
	KindKube   = "kube"
	KindRemote = "remote"
)

// Client is implemented by every control plane backend.
type Client interface {
	GetGraphqlApi(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error)
	ListGraphqlApis(ctx context.Context) ([]v1beta1.GraphQLApi, error)
	UpdateGraphqlApi(ctx context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error)
	ListUpstreams(ctx context.Context) ([]v1beta1.Upstream, error)

	ValidateResolverYaml(ctx context.Context, yaml string, kind v1beta1.ResolverKind) error
	ValidateSchemaDefinition(ctx context.Context, req v1beta1.ValidateSchemaDefinitionRequest) error
	UpsertResolver(ctx context.Context, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error)
	DeleteResolver(ctx context.Context, req v1beta1.DeleteResolverRequest) (*v1beta1.GraphQLApi, error)
}

// ResourceStore is the read/write surface shared by backends that hold resources themselves.
type ResourceStore interface {
	GetGraphqlApi(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error)
	UpdateGraphqlApi(ctx context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error)
}

// UpsertResolver applies req to the stored API and writes the result back.
func UpsertResolver(ctx context.Context, s ResourceStore, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error) {
	api, err := s.GetGraphqlApi(ctx, req.APIRef)
	if err != nil {
		return nil, err
	}
	if err := conversion.ApplyResolver(api, req); err != nil {
		return nil, err
	}
	return s.UpdateGraphqlApi(ctx, api)
}

func DeleteResolver(ctx context.Context, s ResourceStore, req v1beta1.DeleteResolverRequest) (*v1beta1.GraphQLApi, error) {
	api, err := s.GetGraphqlApi(ctx, req.APIRef)
	if err != nil {
		return nil, err
	}
	if err := conversion.RemoveResolver(api, req); err != nil {
		return nil, err
	}
	return s.UpdateGraphqlApi(ctx, api)
}

// ValidateSchemaDefinition validates req, resolving the API named by req.Resolver when set.
func ValidateSchemaDefinition(ctx context.Context, s ResourceStore, req v1beta1.ValidateSchemaDefinitionRequest) error {
	if req.Resolver == nil {
		return conversion.ValidateSchemaDefinition(nil, req)
	}
	api, err := s.GetGraphqlApi(ctx, req.Resolver.APIRef)
	if err != nil {
		return err
	}
	return conversion.ValidateSchemaDefinition(api, req)
}

func NotFound(ref v1beta1.ClusterObjectRef) error {
	return fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Package kube reads and writes gateway resources through the Kubernetes API.
package kube

import (
	"context"
	"fmt"
	"sort"

	"github.com/platform-mesh/golang-commons/logger"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/manifest"
	"github.com/solo-io/graphql-console/resolver/conversion"
)

var _ backend.Client = (*Backend)(nil)

// Backend talks to a single cluster. Namespace limits list calls; empty means all namespaces.
type Backend struct {
	log         *logger.Logger
	client      dynamic.Interface
	clusterName string
	namespace   string
}

func New(log *logger.Logger, client dynamic.Interface, clusterName, namespace string) *Backend {
	return &Backend{log: log, client: client, clusterName: clusterName, namespace: namespace}
}

func NewForConfig(log *logger.Logger, cfg *rest.Config, clusterName, namespace string) (*Backend, error) {
	client, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return New(log, client, clusterName, namespace), nil
}

func (b *Backend) GetGraphqlApi(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if ref.ClusterName != "" && ref.ClusterName != b.clusterName {
		return nil, backend.NotFound(ref)
	}

	obj, err := b.client.Resource(manifest.GraphQLApiGVR).Namespace(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, backend.NotFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graphql api %s: %w", ref, err)
	}

	api, err := manifest.GraphQLApiFromUnstructured(obj)
	if err != nil {
		return nil, err
	}
	api.Metadata.ClusterName = b.clusterName
	return api, nil
}

func (b *Backend) ListGraphqlApis(ctx context.Context) ([]v1beta1.GraphQLApi, error) {
	list, err := b.client.Resource(manifest.GraphQLApiGVR).Namespace(b.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list graphql apis: %w", err)
	}

	out := make([]v1beta1.GraphQLApi, 0, len(list.Items))
	for i := range list.Items {
		api, err := manifest.GraphQLApiFromUnstructured(&list.Items[i])
		if err != nil {
			// one malformed resource must not hide the others
			b.log.Warn().Err(err).Str("name", list.Items[i].GetName()).Str("namespace", list.Items[i].GetNamespace()).Msg("skipping graphql api")
			continue
		}
		api.Metadata.ClusterName = b.clusterName
		out = append(out, *api)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref().String() < out[j].Ref().String() })
	return out, nil
}

// UpdateGraphqlApi writes the spec of api. A set resource version is sent along so the API
// server rejects stale writes.
func (b *Backend) UpdateGraphqlApi(ctx context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error) {
	ref := api.Ref()
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	obj, err := manifest.GraphQLApiToUnstructured(api)
	if err != nil {
		return nil, err
	}

	client := b.client.Resource(manifest.GraphQLApiGVR).Namespace(ref.Namespace)
	current, err := client.Get(ctx, ref.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, backend.NotFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graphql api %s: %w", ref, err)
	}

	// Only the spec is owned by the console; metadata and status stay as stored.
	current.Object["spec"] = obj.Object["spec"]
	if v := api.Metadata.ResourceVersion; v != "" {
		current.SetResourceVersion(v)
	}

	updated, err := client.Update(ctx, current, metav1.UpdateOptions{})
	switch {
	case apierrors.IsNotFound(err):
		return nil, backend.NotFound(ref)
	case apierrors.IsConflict(err):
		return nil, fmt.Errorf("%w: %s", backend.ErrConflict, ref)
	case err != nil:
		return nil, fmt.Errorf("failed to update graphql api %s: %w", ref, err)
	}

	b.log.Debug().Str("graphqlApi", ref.String()).Str("resourceVersion", updated.GetResourceVersion()).Msg("updated graphql api")

	out, err := manifest.GraphQLApiFromUnstructured(updated)
	if err != nil {
		return nil, err
	}
	out.Metadata.ClusterName = b.clusterName
	return out, nil
}

func (b *Backend) ListUpstreams(ctx context.Context) ([]v1beta1.Upstream, error) {
	list, err := b.client.Resource(manifest.UpstreamGVR).Namespace(b.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list upstreams: %w", err)
	}

	out := make([]v1beta1.Upstream, 0, len(list.Items))
	for i := range list.Items {
		up := manifest.UpstreamFromUnstructured(&list.Items[i])
		up.Metadata.ClusterName = b.clusterName
		out = append(out, up)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref().String() < out[j].Ref().String() })
	return out, nil
}

func (b *Backend) ValidateResolverYaml(_ context.Context, yaml string, kind v1beta1.ResolverKind) error {
	return conversion.ValidateResolverYAML(yaml, kind)
}

func (b *Backend) ValidateSchemaDefinition(ctx context.Context, req v1beta1.ValidateSchemaDefinitionRequest) error {
	return backend.ValidateSchemaDefinition(ctx, b, req)
}

func (b *Backend) UpsertResolver(ctx context.Context, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error) {
	return backend.UpsertResolver(ctx, b, req)
}

func (b *Backend) DeleteResolver(ctx context.Context, req v1beta1.DeleteResolverRequest) (*v1beta1.GraphQLApi, error) {
	return backend.DeleteResolver(ctx, b, req)
}

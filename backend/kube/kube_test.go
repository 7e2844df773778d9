package kube

import (
	"context"
	"errors"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/manifest"
)

const productsSDL = `type Query {
  products: [Product]
}

type Product {
  id: String
}
`

func graphqlAPIObject(name, namespace string, resolutions map[string]any) *unstructured.Unstructured {
	local := map[string]any{}
	if resolutions != nil {
		local["resolutions"] = resolutions
	}
	obj := &unstructured.Unstructured{Object: map[string]any{
		"metadata": map[string]any{
			"name":        name,
			"namespace":   namespace,
			"annotations": map[string]any{"owner": "platform"},
		},
		"spec": map[string]any{
			"executableSchema": map[string]any{
				"schemaDefinition": productsSDL,
				"executor": map[string]any{
					"local": local,
				},
			},
		},
	}}
	obj.SetGroupVersionKind(manifest.GraphQLApiGVK)
	return obj
}

func upstreamObject(name, namespace string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"metadata": map[string]any{"name": name, "namespace": namespace},
		"spec":     map[string]any{"kube": map[string]any{"serviceName": name}},
	}}
	obj.SetGroupVersionKind(manifest.UpstreamGVK)
	return obj
}

func newFakeBackend(t *testing.T, objs ...runtime.Object) (*Backend, *fake.FakeDynamicClient) {
	t.Helper()
	client := fake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), map[schema.GroupVersionResource]string{
		manifest.GraphQLApiGVR: "GraphQLApiList",
		manifest.UpstreamGVR:   "UpstreamList",
	}, objs...)
	return New(testlogger.New().HideLogOutput().Logger, client, "cluster-a", ""), client
}

func TestGetGraphqlApi(t *testing.T) {
	b, _ := newFakeBackend(t, graphqlAPIObject("products", "gloo-system", map[string]any{
		"Query|products": map[string]any{
			"restResolver": map[string]any{
				"request": map[string]any{"headers": map[string]any{":path": "/products", ":method": "GET"}},
			},
		},
	}))
	ctx := context.Background()

	tests := []struct {
		name string
		ref  v1beta1.ClusterObjectRef
		err  error
	}{
		{name: "found", ref: v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system", ClusterName: "cluster-a"}},
		{name: "found_without_cluster", ref: v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"}},
		{name: "other_cluster", ref: v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system", ClusterName: "cluster-b"}, err: backend.ErrNotFound},
		{name: "missing", ref: v1beta1.ClusterObjectRef{Name: "users", Namespace: "gloo-system"}, err: backend.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, err := b.GetGraphqlApi(ctx, tt.ref)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "cluster-a", api.Metadata.ClusterName)

			res, ok := api.Resolution("Query|products")
			require.True(t, ok)
			assert.Equal(t, v1beta1.KeyValueList{{Key: ":method", Value: "GET"}, {Key: ":path", Value: "/products"}}, res.RestResolver.Request.HeadersMap)
		})
	}
}

func TestListResources(t *testing.T) {
	b, _ := newFakeBackend(t,
		graphqlAPIObject("users", "team-b", nil),
		graphqlAPIObject("products", "team-a", nil),
		upstreamObject("reviews", "gloo-system"),
		upstreamObject("details", "gloo-system"),
	)
	ctx := context.Background()

	apis, err := b.ListGraphqlApis(ctx)
	require.NoError(t, err)
	require.Len(t, apis, 2)
	assert.Equal(t, "products", apis[0].Metadata.Name)
	assert.Equal(t, "users", apis[1].Metadata.Name)

	ups, err := b.ListUpstreams(ctx)
	require.NoError(t, err)
	require.Len(t, ups, 2)
	assert.Equal(t, "details::gloo-system", ups[0].Ref().String())
	assert.Equal(t, "kube", ups[0].Type)
}

func TestUpsertResolverWritesSpec(t *testing.T) {
	b, client := newFakeBackend(t, graphqlAPIObject("products", "gloo-system", nil))
	ctx := context.Background()

	api, err := b.UpsertResolver(ctx, v1beta1.UpsertResolverRequest{
		APIRef:       v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"},
		TypeName:     "Query",
		FieldName:    "products",
		ResolverName: "Query|products",
		ResolverType: v1beta1.ResolverTypeGRPC,
		Yaml:         "grpcResolver:\n  requestTransform:\n    serviceName: products.Products\n    methodName: List\n    requestMetadata:\n      tenant: acme\n",
		Upstream:     v1beta1.ResourceRef{Name: "products", Namespace: "gloo-system"},
	})
	require.NoError(t, err)
	assert.Contains(t, api.SchemaDefinition(), `@resolve(name: "Query|products")`)

	stored, err := client.Resource(manifest.GraphQLApiGVR).Namespace("gloo-system").Get(ctx, "products", metav1.GetOptions{})
	require.NoError(t, err)

	metadata, found, err := unstructured.NestedStringMap(stored.Object, "spec", "executableSchema", "executor", "local", "resolutions", "Query|products", "grpcResolver", "requestTransform", "requestMetadata")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]string{"tenant": "acme"}, metadata)

	upstream, _, _ := unstructured.NestedString(stored.Object, "spec", "executableSchema", "executor", "local", "resolutions", "Query|products", "grpcResolver", "upstreamRef", "name")
	assert.Equal(t, "products", upstream)
	assert.Equal(t, map[string]string{"owner": "platform"}, stored.GetAnnotations(), "metadata is preserved")
}

func TestUpdateGraphqlApiErrors(t *testing.T) {
	b, client := newFakeBackend(t, graphqlAPIObject("products", "gloo-system", nil))
	ctx := context.Background()

	_, err := b.UpdateGraphqlApi(ctx, &v1beta1.GraphQLApi{Metadata: v1beta1.ObjectMeta{Name: "missing", Namespace: "gloo-system"}})
	assert.ErrorIs(t, err, backend.ErrNotFound)

	client.PrependReactor("update", "graphqlapis", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("etcd unavailable")
	})
	api, err := b.GetGraphqlApi(ctx, v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"})
	require.NoError(t, err)
	_, err = b.UpdateGraphqlApi(ctx, api)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd unavailable")
}

package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/memory"
)

const productsSDL = `type Query {
  products: [Product]
}

type Product {
  id: String
}
`

var productsRef = v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"}

func newRemote(t *testing.T) *Client {
	t.Helper()
	log := testlogger.New().HideLogOutput().Logger

	store := memory.New(log,
		memory.WithGraphQLApis(v1beta1.GraphQLApi{
			Metadata: v1beta1.ObjectMeta{Name: "products", Namespace: "gloo-system"},
			Spec: v1beta1.GraphQLApiSpec{ExecutableSchema: &v1beta1.ExecutableSchema{
				SchemaDefinition: productsSDL,
				Executor:         &v1beta1.Executor{Local: &v1beta1.LocalExecutor{}},
			}},
		}),
		memory.WithUpstreams(v1beta1.Upstream{Metadata: v1beta1.ObjectMeta{Name: "products", Namespace: "gloo-system"}, Type: "kube"}),
	)

	mux := http.NewServeMux()
	mux.Handle(backend.RPCPath, http.StripPrefix("/api/rpc", backend.RPCHandler(store, log)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(log, srv.URL+"/")
	require.NoError(t, err)
	return client
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(testlogger.New().HideLogOutput().Logger, "")
	assert.ErrorIs(t, err, backend.ErrInvalidConfig)
}

func TestReadCalls(t *testing.T) {
	c := newRemote(t)
	ctx := context.Background()

	apis, err := c.ListGraphqlApis(ctx)
	require.NoError(t, err)
	require.Len(t, apis, 1)

	api, err := c.GetGraphqlApi(ctx, productsRef)
	require.NoError(t, err)
	assert.Equal(t, productsSDL, api.SchemaDefinition())

	_, err = c.GetGraphqlApi(ctx, v1beta1.ClusterObjectRef{Name: "missing", Namespace: "gloo-system"})
	assert.ErrorIs(t, err, backend.ErrNotFound)

	_, err = c.GetGraphqlApi(ctx, v1beta1.ClusterObjectRef{Name: "missing"})
	var rpcErr *backend.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, backend.CodeInvalidArgument, rpcErr.Code)

	ups, err := c.ListUpstreams(ctx)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, "products::gloo-system", ups[0].Ref().String())
}

func TestValidateResolverYaml(t *testing.T) {
	c := newRemote(t)
	ctx := context.Background()

	assert.NoError(t, c.ValidateResolverYaml(ctx, "restResolver:\n  spanName: products\n", v1beta1.ResolverKindREST))

	err := c.ValidateResolverYaml(ctx, "request: [", v1beta1.ResolverKindREST)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to convert options YAML to JSON: ")
}

func TestResolverWrites(t *testing.T) {
	c := newRemote(t)
	ctx := context.Background()

	upsert := v1beta1.UpsertResolverRequest{
		APIRef:       productsRef,
		TypeName:     "Query",
		FieldName:    "products",
		ResolverName: "Query|products",
		ResolverType: v1beta1.ResolverTypeREST,
		Yaml:         "restResolver:\n  request:\n    headers:\n      \":path\": /products\n",
		Upstream:     v1beta1.ResourceRef{Name: "products", Namespace: "gloo-system"},
	}
	require.NoError(t, c.ValidateSchemaDefinition(ctx, v1beta1.ValidateSchemaDefinitionRequest{Resolver: &upsert}))

	api, err := c.UpsertResolver(ctx, upsert)
	require.NoError(t, err)
	assert.Equal(t, "2", api.Metadata.ResourceVersion)
	assert.Contains(t, api.SchemaDefinition(), `@resolve(name: "Query|products")`)

	// stale version
	api.Metadata.ResourceVersion = "1"
	_, err = c.UpdateGraphqlApi(ctx, api)
	assert.ErrorIs(t, err, backend.ErrConflict)

	api, err = c.DeleteResolver(ctx, v1beta1.DeleteResolverRequest{APIRef: productsRef, TypeName: "Query", FieldName: "products", ResolverName: "Query|products"})
	require.NoError(t, err)
	assert.Empty(t, api.Resolutions())

	err = c.ValidateSchemaDefinition(ctx, v1beta1.ValidateSchemaDefinitionRequest{SchemaDefinition: "type Query {"})
	var rpcErr *backend.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, backend.CodeInvalidArgument, rpcErr.Code)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream connect error", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(testlogger.New().HideLogOutput().Logger, srv.URL)
	require.NoError(t, err)

	_, err = c.ListGraphqlApis(context.Background())
	var rpcErr *backend.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, backend.CodeInternal, rpcErr.Code)
	assert.Equal(t, "upstream connect error", rpcErr.Message)

	srv.Close()
	_, err = c.ListUpstreams(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListUpstreams request failed")
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Equal(t, backend.CodeUnavailable, backend.ErrorCode(err))
}

package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/solo-io/graphql-console/apis/v1beta1"
)

const bookinfoManifest = `apiVersion: graphql.gloo.solo.io/v1beta1
kind: GraphQLApi
metadata:
  name: bookinfo
  namespace: gloo-system
spec:
  executableSchema:
    schemaDefinition: |
      type Query { productsForHome: [Product] @resolve(name: "Query|productsForHome") }
      type Product { id: String }
    executor:
      local:
        enableIntrospection: true
        resolutions:
          Query|productsForHome:
            restResolver:
              upstreamRef:
                name: productpage
                namespace: gloo-system
              request:
                headers:
                  ":path": /api/v1/products
                  ":method": GET
                body:
                  headers: {keep: me}
              response:
                resultRoot: data
            statPrefix: home
---
apiVersion: gloo.solo.io/v1
kind: Upstream
metadata:
  name: productpage
  namespace: gloo-system
spec:
  kube:
    serviceName: productpage
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: ignored
`

func TestDecode(t *testing.T) {
	objs, err := Decode(strings.NewReader(bookinfoManifest))
	require.NoError(t, err)
	require.Len(t, objs.GraphQLApis, 1)
	require.Len(t, objs.Upstreams, 1)

	api := objs.GraphQLApis[0]
	assert.Equal(t, "bookinfo", api.Metadata.Name)
	assert.True(t, api.Spec.ExecutableSchema.Executor.Local.EnableIntrospection)

	res, ok := api.Resolution("Query|productsForHome")
	require.True(t, ok)
	require.NotNil(t, res.RestResolver)
	assert.Equal(t, "productpage::gloo-system", res.UpstreamRef().String())
	assert.Equal(t, v1beta1.KeyValueList{{Key: ":method", Value: "GET"}, {Key: ":path", Value: "/api/v1/products"}}, res.RestResolver.Request.HeadersMap)
	assert.Equal(t, map[string]any{"headers": map[string]any{"keep": "me"}}, res.RestResolver.Request.Body)
	assert.Equal(t, "data", res.RestResolver.Response.ResultRoot)
	require.NotNil(t, res.StatPrefix)
	assert.Equal(t, "home", res.StatPrefix.Value)

	assert.Equal(t, "kube", objs.Upstreams[0].Type)
	assert.Equal(t, "productpage::gloo-system", objs.Upstreams[0].Ref().String())
}

func TestDecodeRejectsMalformedDocuments(t *testing.T) {
	_, err := Decode(strings.NewReader("apiVersion: graphql.gloo.solo.io/v1beta1\nkind: GraphQLApi\nspec: [\n"))
	assert.ErrorIs(t, err, ErrDecodeManifest)

	_, err = Decode(strings.NewReader(`apiVersion: graphql.gloo.solo.io/v1beta1
kind: GraphQLApi
metadata: {name: broken}
spec:
  executableSchema:
    executor:
      local:
        resolutions: 7
`))
	assert.ErrorIs(t, err, ErrConvertObject)
}

func TestGraphQLApiRoundTrip(t *testing.T) {
	objs, err := Decode(strings.NewReader(bookinfoManifest))
	require.NoError(t, err)
	api := objs.GraphQLApis[0]

	obj, err := GraphQLApiToUnstructured(&api)
	require.NoError(t, err)
	assert.Equal(t, GraphQLApiGVK, obj.GroupVersionKind())

	headers, found, err := unstructured.NestedStringMap(obj.Object, "spec", "executableSchema", "executor", "local", "resolutions", "Query|productsForHome", "restResolver", "request", "headers")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]string{":method": "GET", ":path": "/api/v1/products"}, headers)

	statPrefix, _, _ := unstructured.NestedString(obj.Object, "spec", "executableSchema", "executor", "local", "resolutions", "Query|productsForHome", "statPrefix")
	assert.Equal(t, "home", statPrefix)

	back, err := GraphQLApiFromUnstructured(obj)
	require.NoError(t, err)
	assert.Equal(t, api.Spec, back.Spec)
}

func TestStitchedSchemaFields(t *testing.T) {
	objs, err := Decode(strings.NewReader(`apiVersion: graphql.gloo.solo.io/v1beta1
kind: GraphQLApi
metadata: {name: stitched, namespace: gloo-system}
spec:
  stitchedSchema:
    subschemas:
    - name: users
      namespace: gloo-system
      typeMerge:
        User:
          selectionSet: '{ username }'
          queryName: getUser
          args:
            username: username
`))
	require.NoError(t, err)
	require.Len(t, objs.GraphQLApis, 1)

	stitched := objs.GraphQLApis[0].Spec.StitchedSchema
	require.NotNil(t, stitched)
	require.Len(t, stitched.SubschemasList, 1)
	merge := stitched.SubschemasList[0].TypeMergeMap
	require.Len(t, merge, 1)
	assert.Equal(t, "User", merge[0].Key)
	assert.Equal(t, "getUser", merge[0].Value.QueryName)
	assert.Equal(t, v1beta1.KeyValueList{{Key: "username", Value: "username"}}, merge[0].Value.ArgsMap)
}

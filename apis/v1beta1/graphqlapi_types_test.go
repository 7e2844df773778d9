package v1beta1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wireAPI = `{
  "metadata": {"name": "bookinfo", "namespace": "gloo-system"},
  "spec": {
    "executableSchema": {
      "schemaDefinition": "type Query { products: [Product] }",
      "executor": {"local": {"resolutionsMap": [
        ["Query|products", {"restResolver": {
          "upstreamRef": {"name": "products", "namespace": "gloo-system"},
          "request": {"headersMap": [[":method", "GET"], [":path", "/products"]]}
        }}]
      ]}}
    }
  }
}`

func TestGraphQLApiWireFormat(t *testing.T) {
	var api GraphQLApi
	require.NoError(t, json.Unmarshal([]byte(wireAPI), &api))

	resolutions := api.Resolutions()
	require.Len(t, resolutions, 1)
	assert.Equal(t, "Query|products", resolutions[0].Key)

	rest := resolutions[0].Value.RestResolver
	require.NotNil(t, rest)
	assert.Equal(t, map[string]string{":method": "GET", ":path": "/products"}, rest.Request.HeadersMap.ToMap())
	assert.Equal(t, ResolverTypeREST, resolutions[0].Value.Type())
	assert.Equal(t, "products::gloo-system", resolutions[0].Value.UpstreamRef().String())

	out, err := json.Marshal(api)
	require.NoError(t, err)
	assert.Contains(t, string(out), `["Query|products",{"restResolver"`)
	assert.Contains(t, string(out), `[":method","GET"]`)
}

func TestEntryUnmarshalRejectsMalformedPairs(t *testing.T) {
	tests := map[string]string{
		"not_an_array": `{"a": 1}`,
		"one_element":  `["only"]`,
		"key_not_text": `[1, "v"]`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var e Entry[string]
			assert.Error(t, json.Unmarshal([]byte(data), &e))
		})
	}
}

func TestSetResolution(t *testing.T) {
	api := GraphQLApi{Spec: GraphQLApiSpec{ExecutableSchema: &ExecutableSchema{SchemaDefinition: "type Query { a: Int }"}}}

	require.NoError(t, api.SetResolution("a", Resolution{RestResolver: &RestResolver{SpanName: "first"}}))
	require.NoError(t, api.SetResolution("b", Resolution{GrpcResolver: &GrpcResolver{}}))
	require.NoError(t, api.SetResolution("a", Resolution{RestResolver: &RestResolver{SpanName: "second"}}))

	require.Len(t, api.Resolutions(), 2)
	got, ok := api.Resolution("a")
	require.True(t, ok)
	assert.Equal(t, "second", got.RestResolver.SpanName)

	stitched := GraphQLApi{Spec: GraphQLApiSpec{StitchedSchema: &StitchedSchema{}}}
	assert.ErrorIs(t, stitched.SetResolution("a", Resolution{}), ErrNotExecutable)
}

func TestParseUpstreamValue(t *testing.T) {
	ref, err := ParseUpstreamValue("reviews::gloo-system")
	require.NoError(t, err)
	assert.Equal(t, ResourceRef{Name: "reviews", Namespace: "gloo-system"}, ref)

	for _, bad := range []string{"", "reviews", "reviews::", "::gloo-system"} {
		_, err := ParseUpstreamValue(bad)
		assert.ErrorIs(t, err, ErrInvalidUpstreamValue, bad)
	}
}

func TestParseResolverType(t *testing.T) {
	tests := map[string]ResolverType{
		"REST":          ResolverTypeREST,
		"rest":          ResolverTypeREST,
		"REST_RESOLVER": ResolverTypeREST,
		"gRPC":          ResolverTypeGRPC,
		"GRPC_RESOLVER": ResolverTypeGRPC,
	}
	for in, want := range tests {
		got, err := ParseResolverType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, want, got.Kind().ResolverType())
	}

	_, err := ParseResolverType("Mock")
	assert.ErrorIs(t, err, ErrUnknownResolverType)
}

func TestKeyValueListFromMapIsSorted(t *testing.T) {
	l := KeyValueListFromMap(map[string]string{"b": "2", "a": "1", "c": "3"})
	require.Len(t, l, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{l[0].Key, l[1].Key, l[2].Key})
	assert.Nil(t, KeyValueListFromMap(nil))
}

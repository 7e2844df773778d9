package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/solo-io/graphql-console/apis/v1beta1"
)

var upstream = &v1beta1.ResourceRef{Name: "products", Namespace: "gloo-system"}

func TestToDisplayYAML(t *testing.T) {
	tests := []struct {
		name     string
		res      v1beta1.Resolution
		kind     v1beta1.ResolverType
		expected map[string]any
	}{
		{
			name: "rest_with_empty_request_and_stat_prefix",
			res: v1beta1.Resolution{
				RestResolver: &v1beta1.RestResolver{
					UpstreamRef: upstream,
					Request:     &v1beta1.RequestTemplate{},
					Response:    &v1beta1.ResponseTemplate{ResultRoot: "products"},
				},
				StatPrefix: &v1beta1.StringValue{},
			},
			kind: v1beta1.ResolverTypeREST,
			expected: map[string]any{
				"restResolver": map[string]any{
					"response": map[string]any{"resultRoot": "products"},
				},
			},
		},
		{
			name: "rest_pair_lists_become_mappings",
			res: v1beta1.Resolution{
				RestResolver: &v1beta1.RestResolver{
					UpstreamRef: upstream,
					Request: &v1beta1.RequestTemplate{
						HeadersMap:     v1beta1.KeyValueList{{Key: ":path", Value: "/ratings/{$parent.id}"}, {Key: ":method", Value: "GET"}},
						QueryParamsMap: v1beta1.KeyValueList{{Key: "limit", Value: "10"}},
					},
					Response: &v1beta1.ResponseTemplate{
						SettersMap: v1beta1.KeyValueList{{Key: "rating", Value: "{$body.score}"}},
					},
					SpanName: "ratings",
				},
				StatPrefix: &v1beta1.StringValue{Value: "ratings"},
			},
			kind: v1beta1.ResolverTypeREST,
			expected: map[string]any{
				"restResolver": map[string]any{
					"request": map[string]any{
						"headers": map[string]any{":method": "GET", ":path": "/ratings/{$parent.id}"},
						"qParams": map[string]any{"limit": "10"},
					},
					"response": map[string]any{
						"setters": map[string]any{"rating": "{$body.score}"},
					},
					"spanName": "ratings",
				},
				"statPrefix": map[string]any{"value": "ratings"},
			},
		},
		{
			name: "grpc_drops_rest_half",
			res: v1beta1.Resolution{
				RestResolver: &v1beta1.RestResolver{SpanName: "stale"},
				GrpcResolver: &v1beta1.GrpcResolver{
					UpstreamRef: upstream,
					RequestTransform: &v1beta1.GrpcRequestTemplate{
						ServiceName:         "bookinfo.Reviews",
						MethodName:          "GetReviews",
						OutgoingMessageJSON: map[string]any{"productId": "{$parent.id}"},
						RequestMetadataMap:  v1beta1.KeyValueList{{Key: "x-team", Value: "books"}},
					},
				},
			},
			kind: v1beta1.ResolverTypeGRPC,
			expected: map[string]any{
				"grpcResolver": map[string]any{
					"requestTransform": map[string]any{
						"methodName":          "GetReviews",
						"outgoingMessageJson": map[string]any{"productId": "{$parent.id}"},
						"requestMetadata":     map[string]any{"x-team": "books"},
						"serviceName":         "bookinfo.Reviews",
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToDisplayYAML(tt.res, tt.kind)
			require.NoError(t, err)
			assert.NotContains(t, out, UpstreamRefKey)

			var got map[string]any
			require.NoError(t, yaml.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToDisplayYAMLLayout(t *testing.T) {
	res := v1beta1.Resolution{
		RestResolver: &v1beta1.RestResolver{
			UpstreamRef: upstream,
			Request:     &v1beta1.RequestTemplate{},
			Response:    &v1beta1.ResponseTemplate{ResultRoot: "products"},
			SpanName:    "products",
		},
		StatPrefix: &v1beta1.StringValue{},
	}

	out, err := ToDisplayYAML(res, v1beta1.ResolverTypeREST)
	require.NoError(t, err)
	assert.Equal(t, "restResolver:\n  response:\n    resultRoot: products\n  spanName: products\n", out)
}

func TestTrimDocumentIsIdempotent(t *testing.T) {
	res := v1beta1.Resolution{
		RestResolver: &v1beta1.RestResolver{
			UpstreamRef: upstream,
			Request: &v1beta1.RequestTemplate{
				HeadersMap: v1beta1.KeyValueList{{Key: ":method", Value: "GET"}},
				Body:       map[string]any{"ids": []any{1, 2}, "empty": ""},
			},
			Response: &v1beta1.ResponseTemplate{},
		},
	}

	first, err := ToDisplayYAML(res, v1beta1.ResolverTypeREST)
	require.NoError(t, err)
	assert.NotContains(t, first, "response:")
	assert.NotContains(t, first, "statPrefix:")
	assert.NotContains(t, first, "empty")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(first), &doc))
	second, err := Marshal(TrimDocument(doc, v1beta1.ResolverTypeREST))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTrimDocumentDropsEmptyRequest(t *testing.T) {
	doc := map[string]any{
		"restResolver": map[string]any{
			"request":     map[string]any{"headersMap": []any{}, "body": nil},
			"upstreamRef": map[string]any{"name": "a", "namespace": "b"},
			"spanName":    "s",
		},
		"statPrefix": map[string]any{"value": ""},
	}

	assert.Equal(t, map[string]any{
		"restResolver": map[string]any{"spanName": "s"},
	}, TrimDocument(doc, v1beta1.ResolverTypeREST))
}

func TestTrimDocumentLeavesInputUntouched(t *testing.T) {
	body := map[string]any{
		"upstreamRef": map[string]any{"name": "a", "namespace": "b"},
		"spanName":    "s",
	}
	doc := map[string]any{
		"restResolver": body,
		"grpcResolver": map[string]any{"spanName": "g"},
	}

	assert.Equal(t, map[string]any{
		"restResolver": map[string]any{"spanName": "s"},
	}, TrimDocument(doc, v1beta1.ResolverTypeREST))

	assert.Contains(t, body, "upstreamRef")
	assert.Contains(t, doc, "grpcResolver")
}

func TestForResolver(t *testing.T) {
	out, err := ForResolver(nil, v1beta1.ResolverTypeREST)
	require.NoError(t, err)
	assert.Equal(t, Placeholder(v1beta1.ResolverTypeREST), out)

	out, err = ForResolver(&v1beta1.Resolution{}, v1beta1.ResolverTypeGRPC)
	require.NoError(t, err)
	assert.Equal(t, Placeholder(v1beta1.ResolverTypeGRPC), out)

	onlyUpstream := &v1beta1.Resolution{RestResolver: &v1beta1.RestResolver{UpstreamRef: upstream}}
	out, err = ForResolver(onlyUpstream, v1beta1.ResolverTypeREST)
	require.NoError(t, err)
	assert.Equal(t, Placeholder(v1beta1.ResolverTypeREST), out)

	for _, kind := range []v1beta1.ResolverType{v1beta1.ResolverTypeREST, v1beta1.ResolverTypeGRPC} {
		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(Placeholder(kind)), &doc))
		assert.Contains(t, doc, ResolverKey(kind))
	}
}

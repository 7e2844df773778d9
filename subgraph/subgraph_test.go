package subgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/memory"
	"github.com/solo-io/graphql-console/backend/mocks"
)

var gatewayRef = v1beta1.ClusterObjectRef{Name: "gateway", Namespace: "gloo-system"}

func executable(name string) v1beta1.GraphQLApi {
	return v1beta1.GraphQLApi{
		Metadata: v1beta1.ObjectMeta{Name: name, Namespace: "gloo-system"},
		Spec: v1beta1.GraphQLApiSpec{ExecutableSchema: &v1beta1.ExecutableSchema{
			SchemaDefinition: "type Query { " + name + ": String }",
		}},
	}
}

func newManager(t *testing.T) (*Manager, *memory.Backend) {
	t.Helper()
	log := testlogger.New().HideLogOutput().Logger
	b := memory.New(log, memory.WithGraphQLApis(
		v1beta1.GraphQLApi{
			Metadata: v1beta1.ObjectMeta{Name: "gateway", Namespace: "gloo-system"},
			Spec: v1beta1.GraphQLApiSpec{StitchedSchema: &v1beta1.StitchedSchema{
				SubschemasList: []v1beta1.SubschemaConfig{{Name: "products", Namespace: "gloo-system"}},
			}},
		},
		executable("products"),
		executable("reviews"),
	))
	return NewManager(b, log), b
}

func TestList(t *testing.T) {
	m, _ := newManager(t)

	subgraphs, err := m.List(context.Background(), gatewayRef)
	require.NoError(t, err)
	assert.Equal(t, []v1beta1.SubGraph{{Name: "products", Namespace: "gloo-system"}}, subgraphs)

	_, err = m.List(context.Background(), v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"})
	assert.ErrorIs(t, err, v1beta1.ErrNotStitched)
}

func TestAdd(t *testing.T) {
	merge := []v1beta1.Entry[v1beta1.TypeMergeConfig]{{
		Key:   "Review",
		Value: v1beta1.TypeMergeConfig{QueryName: "review", SelectionSet: "{ id }", ArgsMap: v1beta1.KeyValueList{{Key: "id", Value: "id"}}},
	}}

	tests := []struct {
		name string
		ref  v1beta1.ClusterObjectRef
		sg   v1beta1.SubGraph
		err  error
	}{
		{name: "added", ref: gatewayRef, sg: v1beta1.SubGraph{Name: "reviews", Namespace: "gloo-system", TypeMergeMap: merge}},
		{name: "duplicate", ref: gatewayRef, sg: v1beta1.SubGraph{Name: "products", Namespace: "gloo-system"}, err: ErrDuplicateSubGraph},
		{name: "self", ref: gatewayRef, sg: v1beta1.SubGraph{Name: "gateway", Namespace: "gloo-system"}, err: ErrSelfReference},
		{name: "missing_api", ref: gatewayRef, sg: v1beta1.SubGraph{Name: "users", Namespace: "gloo-system"}, err: backend.ErrNotFound},
		{name: "invalid_ref", ref: gatewayRef, sg: v1beta1.SubGraph{Name: "reviews"}, err: v1beta1.ErrInvalidRef},
		{name: "not_stitched", ref: v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"}, sg: v1beta1.SubGraph{Name: "reviews", Namespace: "gloo-system"}, err: v1beta1.ErrNotStitched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newManager(t)
			api, err := m.Add(context.Background(), tt.ref, tt.sg)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			list := api.Spec.StitchedSchema.SubschemasList
			require.Len(t, list, 2)
			assert.Equal(t, "products", list[0].Name)
			assert.Equal(t, v1beta1.SubschemaConfig{Name: "reviews", Namespace: "gloo-system", TypeMergeMap: merge}, list[1])
			assert.Equal(t, "2", api.Metadata.ResourceVersion)
		})
	}
}

func TestRemove(t *testing.T) {
	m, b := newManager(t)
	ctx := context.Background()

	_, err := m.Remove(ctx, gatewayRef, "reviews", "gloo-system")
	assert.ErrorIs(t, err, ErrSubGraphNotFound)

	api, err := m.Remove(ctx, gatewayRef, "products", "gloo-system")
	require.NoError(t, err)
	assert.Empty(t, api.Spec.StitchedSchema.SubschemasList)

	stored, err := b.GetGraphqlApi(ctx, gatewayRef)
	require.NoError(t, err)
	assert.Empty(t, stored.Spec.StitchedSchema.SubschemasList)
}

func TestUpdateFailureIsReturned(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.EXPECT().GetGraphqlApi(mock.Anything, gatewayRef).Return(&v1beta1.GraphQLApi{
		Metadata: v1beta1.ObjectMeta{Name: "gateway", Namespace: "gloo-system", ResourceVersion: "7"},
		Spec: v1beta1.GraphQLApiSpec{StitchedSchema: &v1beta1.StitchedSchema{
			SubschemasList: []v1beta1.SubschemaConfig{{Name: "products", Namespace: "gloo-system"}},
		}},
	}, nil)
	client.EXPECT().UpdateGraphqlApi(mock.Anything, mock.MatchedBy(func(api *v1beta1.GraphQLApi) bool {
		return api.Metadata.ResourceVersion == "7" && len(api.Spec.StitchedSchema.SubschemasList) == 0
	})).Return(nil, errors.Join(backend.ErrConflict, errors.New("stale")))

	m := NewManager(client, testlogger.New().HideLogOutput().Logger)
	_, err := m.Remove(context.Background(), gatewayRef, "products", "gloo-system")
	assert.ErrorIs(t, err, backend.ErrConflict)
}

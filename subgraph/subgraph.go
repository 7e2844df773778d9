// Package subgraph edits the sub-graph list of a stitched GraphQL API. The backend owns the
// stitching itself; edits resubmit the full list.
package subgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/platform-mesh/golang-commons/logger"

	"github.com/solo-io/graphql-console/apis/v1beta1"
)

var (
	ErrDuplicateSubGraph = errors.New("sub-graph is already part of the stitched schema")
	ErrSubGraphNotFound  = errors.New("sub-graph is not part of the stitched schema")
	ErrSelfReference     = errors.New("a stitched schema cannot include itself")
)

// Backend is the part of the backend client sub-graph edits need.
type Backend interface {
	GetGraphqlApi(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error)
	UpdateGraphqlApi(ctx context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error)
}

type Manager struct {
	backend Backend
	log     *logger.Logger
}

func NewManager(b Backend, log *logger.Logger) *Manager {
	return &Manager{backend: b, log: log}
}

func (m *Manager) stitched(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	api, err := m.backend.GetGraphqlApi(ctx, ref)
	if err != nil {
		return nil, err
	}
	if api.Spec.StitchedSchema == nil {
		return nil, fmt.Errorf("%w: %s", v1beta1.ErrNotStitched, ref)
	}
	return api, nil
}

// List returns the sub-graphs of the stitched API ref.
func (m *Manager) List(ctx context.Context, ref v1beta1.ClusterObjectRef) ([]v1beta1.SubGraph, error) {
	api, err := m.stitched(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make([]v1beta1.SubGraph, 0, len(api.Spec.StitchedSchema.SubschemasList))
	for _, s := range api.Spec.StitchedSchema.SubschemasList {
		out = append(out, v1beta1.SubGraph{Name: s.Name, Namespace: s.Namespace, TypeMergeMap: s.TypeMergeMap})
	}
	return out, nil
}

// Add appends sg to the stitched API ref. The sub-graph must name an existing API in the
// same cluster.
func (m *Manager) Add(ctx context.Context, ref v1beta1.ClusterObjectRef, sg v1beta1.SubGraph) (*v1beta1.GraphQLApi, error) {
	sgRef := v1beta1.ClusterObjectRef{Name: sg.Name, Namespace: sg.Namespace, ClusterName: ref.ClusterName}
	if err := sgRef.Validate(); err != nil {
		return nil, err
	}
	if sg.Name == ref.Name && sg.Namespace == ref.Namespace {
		return nil, fmt.Errorf("%w: %s", ErrSelfReference, ref)
	}

	api, err := m.stitched(ctx, ref)
	if err != nil {
		return nil, err
	}
	for _, s := range api.Spec.StitchedSchema.SubschemasList {
		if s.Name == sg.Name && s.Namespace == sg.Namespace {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateSubGraph, sg.Name, sg.Namespace)
		}
	}
	if _, err := m.backend.GetGraphqlApi(ctx, sgRef); err != nil {
		return nil, fmt.Errorf("sub-graph %s: %w", sgRef, err)
	}

	api.Spec.StitchedSchema.SubschemasList = append(api.Spec.StitchedSchema.SubschemasList, v1beta1.SubschemaConfig{
		Name:         sg.Name,
		Namespace:    sg.Namespace,
		TypeMergeMap: sg.TypeMergeMap,
	})
	updated, err := m.backend.UpdateGraphqlApi(ctx, api)
	if err != nil {
		return nil, err
	}
	m.log.Info().Str("graphqlApi", ref.String()).Str("subGraph", sgRef.String()).Msg("sub-graph added")
	return updated, nil
}

// Remove drops the sub-graph name.namespace from the stitched API ref.
func (m *Manager) Remove(ctx context.Context, ref v1beta1.ClusterObjectRef, name, namespace string) (*v1beta1.GraphQLApi, error) {
	api, err := m.stitched(ctx, ref)
	if err != nil {
		return nil, err
	}

	list := api.Spec.StitchedSchema.SubschemasList
	kept := make([]v1beta1.SubschemaConfig, 0, len(list))
	for _, s := range list {
		if s.Name == name && s.Namespace == namespace {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == len(list) {
		return nil, fmt.Errorf("%w: %s.%s", ErrSubGraphNotFound, name, namespace)
	}

	api.Spec.StitchedSchema.SubschemasList = kept
	updated, err := m.backend.UpdateGraphqlApi(ctx, api)
	if err != nil {
		return nil, err
	}
	m.log.Info().Str("graphqlApi", ref.String()).Str("subGraph", name+"."+namespace).Msg("sub-graph removed")
	return updated, nil
}

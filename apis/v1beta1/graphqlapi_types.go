package v1beta1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// Group and versions of the control plane resources the console manages.
	GraphQLGroup    = "graphql.gloo.solo.io"
	GraphQLVersion  = "v1beta1"
	GraphQLResource = "graphqlapis"
	GraphQLKind     = "GraphQLApi"

	GlooGroup        = "gloo.solo.io"
	GlooVersion      = "v1"
	UpstreamResource = "upstreams"
	UpstreamKind     = "Upstream"
)

var (
	ErrInvalidRef           = errors.New("resource reference requires a name and a namespace")
	ErrNotExecutable        = errors.New("graphql api does not have an executable schema")
	ErrNotStitched          = errors.New("graphql api does not have a stitched schema")
	ErrInvalidUpstreamValue = errors.New("upstream must be of the form name::namespace")
)

type ObjectMeta struct {
	Name            string            `json:"name"`
	Namespace       string            `json:"namespace"`
	ClusterName     string            `json:"clusterName,omitempty"`
	ResourceVersion string            `json:"resourceVersion,omitempty"`
	Labels          map[string]string `json:"labels,omitempty"`
}

// ClusterObjectRef identifies a resource across the clusters a console can see.
type ClusterObjectRef struct {
	Name        string `json:"name"`
	Namespace   string `json:"namespace"`
	ClusterName string `json:"clusterName,omitempty"`
}

func (r ClusterObjectRef) Validate() error {
	if r.Name == "" || r.Namespace == "" {
		return fmt.Errorf("%w: %+v", ErrInvalidRef, r)
	}
	return nil
}

func (r ClusterObjectRef) String() string {
	return r.Name + "/" + r.Namespace + "/" + r.ClusterName
}

type Executor struct {
	Local *LocalExecutor `json:"local,omitempty"`
}

type LocalExecutor struct {
	ResolutionsMap      []ResolutionEntry `json:"resolutionsMap,omitempty"`
	EnableIntrospection bool              `json:"enableIntrospection,omitempty"`
}

type GrpcDescriptorRegistry struct {
	ProtoDescriptor    string `json:"protoDescriptor,omitempty"`
	ProtoDescriptorBin string `json:"protoDescriptorBin,omitempty"`
}

type ExecutableSchema struct {
	SchemaDefinition       string                  `json:"schemaDefinition"`
	Executor               *Executor               `json:"executor,omitempty"`
	GrpcDescriptorRegistry *GrpcDescriptorRegistry `json:"grpcDescriptorRegistry,omitempty"`
}

type TypeMergeConfig struct {
	SelectionSet string       `json:"selectionSet,omitempty"`
	QueryName    string       `json:"queryName,omitempty"`
	ArgsMap      KeyValueList `json:"argsMap,omitempty"`
}

// SubschemaConfig references another GraphQL API composed into a stitched schema.
type SubschemaConfig struct {
	Name         string                   `json:"name"`
	Namespace    string                   `json:"namespace"`
	TypeMergeMap []Entry[TypeMergeConfig] `json:"typeMergeMap,omitempty"`
}

type StitchedSchema struct {
	SubschemasList []SubschemaConfig `json:"subschemasList"`
}

type GraphQLApiSpec struct {
	ExecutableSchema       *ExecutableSchema `json:"executableSchema,omitempty"`
	StitchedSchema         *StitchedSchema   `json:"stitchedSchema,omitempty"`
	StatPrefix             *StringValue      `json:"statPrefix,omitempty"`
	AllowedQueryHashesList []string          `json:"allowedQueryHashesList,omitempty"`
}

type GraphQLApiStatus struct {
	State  string `json:"state,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// GraphQLApi is the console's view of a graphqlapis.graphql.gloo.solo.io resource.
type GraphQLApi struct {
	Metadata ObjectMeta        `json:"metadata"`
	Spec     GraphQLApiSpec    `json:"spec"`
	Status   *GraphQLApiStatus `json:"status,omitempty"`
}

func (a *GraphQLApi) Ref() ClusterObjectRef {
	return ClusterObjectRef{
		Name:        a.Metadata.Name,
		Namespace:   a.Metadata.Namespace,
		ClusterName: a.Metadata.ClusterName,
	}
}

// DeepCopy returns an independent copy of a. Free-form JSON payloads are copied through
// their JSON encoding.
func (a *GraphQLApi) DeepCopy() *GraphQLApi {
	if a == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		panic(fmt.Sprintf("graphql api %s is not serializable: %v", a.Ref(), err))
	}
	out := &GraphQLApi{}
	if err := json.Unmarshal(raw, out); err != nil {
		panic(fmt.Sprintf("graphql api %s does not round-trip: %v", a.Ref(), err))
	}
	return out
}

// SchemaDefinition returns the SDL of an executable API, or "" for any other kind.
func (a *GraphQLApi) SchemaDefinition() string {
	if a.Spec.ExecutableSchema == nil {
		return ""
	}
	return a.Spec.ExecutableSchema.SchemaDefinition
}

// Resolutions returns the local executor's resolver map in wire order.
func (a *GraphQLApi) Resolutions() []ResolutionEntry {
	es := a.Spec.ExecutableSchema
	if es == nil || es.Executor == nil || es.Executor.Local == nil {
		return nil
	}
	return es.Executor.Local.ResolutionsMap
}

// Resolution returns the resolver stored under exactly name.
func (a *GraphQLApi) Resolution(name string) (Resolution, bool) {
	for _, e := range a.Resolutions() {
		if e.Key == name {
			return e.Value, true
		}
	}
	return Resolution{}, false
}

// SetResolution replaces the resolver stored under name, appending it when absent.
func (a *GraphQLApi) SetResolution(name string, res Resolution) error {
	es := a.Spec.ExecutableSchema
	if es == nil {
		return ErrNotExecutable
	}
	if es.Executor == nil {
		es.Executor = &Executor{}
	}
	if es.Executor.Local == nil {
		es.Executor.Local = &LocalExecutor{}
	}

	local := es.Executor.Local
	for i := range local.ResolutionsMap {
		if local.ResolutionsMap[i].Key == name {
			local.ResolutionsMap[i].Value = res
			return nil
		}
	}
	local.ResolutionsMap = append(local.ResolutionsMap, ResolutionEntry{Key: name, Value: res})
	return nil
}

// RemoveResolution drops the resolver stored under name and reports whether it existed.
func (a *GraphQLApi) RemoveResolution(name string) bool {
	es := a.Spec.ExecutableSchema
	if es == nil || es.Executor == nil || es.Executor.Local == nil {
		return false
	}
	local := es.Executor.Local
	for i := range local.ResolutionsMap {
		if local.ResolutionsMap[i].Key == name {
			local.ResolutionsMap = append(local.ResolutionsMap[:i], local.ResolutionsMap[i+1:]...)
			return true
		}
	}
	return false
}

// Upstream is the subset of an upstream resource the console lists for selection.
type Upstream struct {
	Metadata ObjectMeta `json:"metadata"`
	Type     string     `json:"type,omitempty"`
}

func (u Upstream) Ref() ResourceRef {
	return ResourceRef{Name: u.Metadata.Name, Namespace: u.Metadata.Namespace}
}

// ParseUpstreamValue splits a "name::namespace" selection value.
func ParseUpstreamValue(v string) (ResourceRef, error) {
	name, namespace, ok := strings.Cut(strings.TrimSpace(v), "::")
	if !ok || name == "" || namespace == "" {
		return ResourceRef{}, fmt.Errorf("%w: %q", ErrInvalidUpstreamValue, v)
	}
	return ResourceRef{Name: name, Namespace: namespace}, nil
}

package v1beta1

type ValidateResolverYamlRequest struct {
	Yaml         string       `json:"yaml"`
	ResolverType ResolverKind `json:"resolverType"`
}

type ValidateResolverYamlResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidateSchemaDefinitionRequest checks a schema either as given, or as it would look once
// Resolver is applied to the API it names.
type ValidateSchemaDefinitionRequest struct {
	SchemaDefinition string                 `json:"schemaDefinition,omitempty"`
	Resolutions      []ResolutionEntry      `json:"resolutionsMap,omitempty"`
	Resolver         *UpsertResolverRequest `json:"resolver,omitempty"`
}

// UpsertResolverRequest stores the resolver typed into the editor for one schema field.
// Yaml is the edited document; the server converts it.
type UpsertResolverRequest struct {
	APIRef       ClusterObjectRef `json:"graphqlApiRef"`
	TypeName     string           `json:"typeName"`
	FieldName    string           `json:"fieldName"`
	ResolverName string           `json:"resolverName"`
	ResolverType ResolverType     `json:"resolverType"`
	Yaml         string           `json:"yaml"`
	Upstream     ResourceRef      `json:"upstreamRef"`
}

type DeleteResolverRequest struct {
	APIRef       ClusterObjectRef `json:"graphqlApiRef"`
	TypeName     string           `json:"typeName"`
	FieldName    string           `json:"fieldName"`
	ResolverName string           `json:"resolverName"`
}

type SubGraph struct {
	Name         string                   `json:"name"`
	Namespace    string                   `json:"namespace"`
	TypeMergeMap []Entry[TypeMergeConfig] `json:"typeMergeMap,omitempty"`
}

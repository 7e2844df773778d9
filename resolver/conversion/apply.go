package conversion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/model"
)

var (
	ErrFieldNotFound        = errors.New("field not found in schema definition")
	ErrMissingResolverName  = errors.New("resolver name is required")
	ErrUndefinedResolver    = errors.New("schema references an undefined resolver")
	ErrMissingUpstreamRef   = errors.New("upstream reference is required")
	ErrUnlocatedDeclaration = errors.New("field declaration has no source location")
)

// ApplyResolver converts req.Yaml and stores it on api under req.ResolverName. The field's
// declaration in the schema definition gains a matching @resolve directive, replacing any
// directive naming a different resolver.
func ApplyResolver(api *v1beta1.GraphQLApi, req v1beta1.UpsertResolverRequest) error {
	if req.ResolverName == "" {
		return ErrMissingResolverName
	}
	if req.Upstream.Name == "" || req.Upstream.Namespace == "" {
		return ErrMissingUpstreamRef
	}
	if api.Spec.ExecutableSchema == nil {
		return v1beta1.ErrNotExecutable
	}

	res, err := ParseResolverYAML(req.Yaml, req.ResolverType.Kind())
	if err != nil {
		return err
	}
	res.SetUpstreamRef(req.Upstream)

	sdl, err := AnnotateField(api.SchemaDefinition(), req.TypeName, req.FieldName, req.ResolverName)
	if err != nil {
		return err
	}

	if err := api.SetResolution(req.ResolverName, res); err != nil {
		return err
	}
	api.Spec.ExecutableSchema.SchemaDefinition = sdl
	return nil
}

// AnnotateField returns sdl with typeName.fieldName carrying @resolve(name: resolverName).
func AnnotateField(sdl, typeName, fieldName, resolverName string) (string, error) {
	m, err := model.Parse(sdl)
	if err != nil {
		return "", err
	}
	field, ok := m.Field(typeName, fieldName)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrFieldNotFound, typeName, fieldName)
	}
	if binding.HasResolveDirective(field.Node, resolverName) {
		return sdl, nil
	}

	directive := binding.FieldVariants(field, resolverName)
	annotation := strings.TrimPrefix(directive.WithDirective, directive.WithoutDirective+" ")

	if existing := resolveDirective(field.Node); existing != nil {
		if existing.Loc == nil {
			return "", ErrUnlocatedDeclaration
		}
		return sdl[:existing.Loc.Start] + annotation + sdl[existing.Loc.End:], nil
	}

	loc := field.Node.Type.GetLoc()
	if loc == nil {
		return "", ErrUnlocatedDeclaration
	}
	return sdl[:loc.End] + " " + annotation + sdl[loc.End:], nil
}

// RemoveResolver drops req.ResolverName from api and strips the field's @resolve directive
// when it names that resolver.
func RemoveResolver(api *v1beta1.GraphQLApi, req v1beta1.DeleteResolverRequest) error {
	if req.ResolverName == "" {
		return ErrMissingResolverName
	}
	if api.Spec.ExecutableSchema == nil {
		return v1beta1.ErrNotExecutable
	}

	sdl, err := StripField(api.SchemaDefinition(), req.TypeName, req.FieldName, req.ResolverName)
	if err != nil {
		return err
	}
	if !api.RemoveResolution(req.ResolverName) {
		return fmt.Errorf("%w: %q", ErrUndefinedResolver, req.ResolverName)
	}
	api.Spec.ExecutableSchema.SchemaDefinition = sdl
	return nil
}

// StripField removes @resolve(name: resolverName) from typeName.fieldName.
func StripField(sdl, typeName, fieldName, resolverName string) (string, error) {
	m, err := model.Parse(sdl)
	if err != nil {
		return "", err
	}
	field, ok := m.Field(typeName, fieldName)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrFieldNotFound, typeName, fieldName)
	}
	if !binding.HasResolveDirective(field.Node, resolverName) {
		return sdl, nil
	}

	d := resolveDirective(field.Node)
	if d.Loc == nil {
		return "", ErrUnlocatedDeclaration
	}
	start := d.Loc.Start
	for start > 0 && (sdl[start-1] == ' ' || sdl[start-1] == '\t') {
		start--
	}
	return sdl[:start] + sdl[d.Loc.End:], nil
}

func resolveDirective(field *ast.FieldDefinition) *ast.Directive {
	for _, d := range field.Directives {
		if d.Name != nil && d.Name.Value == binding.ResolveDirective {
			return d
		}
	}
	return nil
}

// ValidateSchemaDefinition checks that the schema parses and that every @resolve directive
// names a resolver that exists. With req.Resolver set, the check runs against the API as it
// would be after applying that resolver.
func ValidateSchemaDefinition(api *v1beta1.GraphQLApi, req v1beta1.ValidateSchemaDefinitionRequest) error {
	sdl := req.SchemaDefinition
	resolutions := req.Resolutions
	checkRefs := resolutions != nil || api != nil

	if req.Resolver != nil {
		if api == nil {
			return v1beta1.ErrNotExecutable
		}
		candidate := api.DeepCopy()
		if err := ApplyResolver(candidate, *req.Resolver); err != nil {
			return err
		}
		sdl = candidate.SchemaDefinition()
		resolutions = candidate.Resolutions()
	} else if api != nil {
		if sdl == "" {
			sdl = api.SchemaDefinition()
		}
		if resolutions == nil {
			resolutions = api.Resolutions()
		}
	}

	m, err := model.Parse(sdl)
	if err != nil {
		return err
	}
	if !checkRefs {
		return nil
	}

	defined := make(map[string]bool, len(resolutions))
	for _, e := range resolutions {
		defined[e.Key] = true
	}

	var errs []error
	for _, group := range m.Types {
		for _, f := range group.Fields {
			name, ok := binding.ResolveDirectiveName(f.Node)
			if ok && !defined[name] {
				errs = append(errs, fmt.Errorf("%w: %q on %s.%s", ErrUndefinedResolver, name, f.TypeName, f.FieldName))
			}
		}
	}
	return errors.Join(errs...)
}

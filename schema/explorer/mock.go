// Package explorer lets an operator browse a schema definition and query a live endpoint.
// Nothing here executes real resolvers.
package explorer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/model"
)

var (
	ErrBuildSchema = errors.New("failed to build mock schema")
	ErrUnknownType = errors.New("unknown type")
	ErrNoQueryType = errors.New("schema has no query type")
)

const (
	MockString  = "Hello World"
	MockInt     = 42
	MockFloat   = 4.2
	MockBoolean = true
	// MockListLength is the number of items every list field returns.
	MockListLength = 2
)

// ResolveDirective accepts @resolve(name: ...) on fields and enum values without acting on it.
var ResolveDirective = graphql.NewDirective(graphql.DirectiveConfig{
	Name:        binding.ResolveDirective,
	Description: "Names the resolver configured for a field.",
	Locations: []string{
		graphql.DirectiveLocationFieldDefinition,
		graphql.DirectiveLocationEnumValue,
	},
	Args: graphql.FieldConfigArgument{
		"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

// FieldIdentity names a field of an object type or a value of an enum.
type FieldIdentity struct {
	Type  string
	Field string
}

func (f FieldIdentity) String() string {
	return f.Type + "." + f.Field
}

// MockSchema is an executable schema whose fields return fixed values.
type MockSchema struct {
	Schema *graphql.Schema
	// Annotations maps every field or enum value carrying @resolve to its resolver name.
	Annotations map[FieldIdentity]string
}

// ResolverName returns the resolver annotated on typeName.fieldName.
func (m *MockSchema) ResolverName(typeName, fieldName string) (string, bool) {
	name, ok := m.Annotations[FieldIdentity{Type: typeName, Field: fieldName}]
	return name, ok
}

type mockBuilder struct {
	named       map[string]graphql.Type
	objects     map[string]*graphql.Object
	interfaces  map[string]*graphql.Interface
	implementer map[string][]string
	annotations map[FieldIdentity]string
	enumFirst   map[string]string

	objectDefs map[string]*ast.ObjectDefinition
	order      []string
}

// BuildMockSchema builds an executable schema from sdl. Every field resolves to a mock value:
// strings to MockString, numbers to MockInt and MockFloat, booleans to true, IDs to a random
// UUID, enums to their first value and lists to MockListLength items.
func BuildMockSchema(sdl string) (*MockSchema, error) {
	if sdl == "" {
		return nil, errors.Join(ErrBuildSchema, model.ErrEmptySchema)
	}
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(sdl), Name: "GraphQL schema"}),
	})
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, model.ErrParseSchema, err)
	}

	b := &mockBuilder{
		named: map[string]graphql.Type{
			"String":  graphql.String,
			"Int":     graphql.Int,
			"Float":   graphql.Float,
			"Boolean": graphql.Boolean,
			"ID":      graphql.ID,
		},
		objects:     map[string]*graphql.Object{},
		interfaces:  map[string]*graphql.Interface{},
		implementer: map[string][]string{},
		annotations: map[FieldIdentity]string{},
		enumFirst:   map[string]string{},
		objectDefs:  map[string]*ast.ObjectDefinition{},
	}

	schema, err := b.build(doc)
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	return &MockSchema{Schema: schema, Annotations: b.annotations}, nil
}

func (b *mockBuilder) build(doc *ast.Document) (*graphql.Schema, error) {
	var (
		enums      []*ast.EnumDefinition
		scalars    []*ast.ScalarDefinition
		inputs     []*ast.InputObjectDefinition
		ifaces     []*ast.InterfaceDefinition
		unions     []*ast.UnionDefinition
		extensions []*ast.ObjectDefinition
		roots      = map[string]string{}
	)

	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.ObjectDefinition:
			if _, ok := b.objectDefs[d.Name.Value]; !ok {
				b.order = append(b.order, d.Name.Value)
			}
			b.objectDefs[d.Name.Value] = d
		case *ast.TypeExtensionDefinition:
			if d.Definition != nil {
				extensions = append(extensions, d.Definition)
			}
		case *ast.EnumDefinition:
			enums = append(enums, d)
		case *ast.ScalarDefinition:
			scalars = append(scalars, d)
		case *ast.InputObjectDefinition:
			inputs = append(inputs, d)
		case *ast.InterfaceDefinition:
			ifaces = append(ifaces, d)
		case *ast.UnionDefinition:
			unions = append(unions, d)
		case *ast.SchemaDefinition:
			for _, op := range d.OperationTypes {
				roots[op.Operation] = op.Type.Name.Value
			}
		}
	}

	for _, ext := range extensions {
		base, ok := b.objectDefs[ext.Name.Value]
		if !ok {
			return nil, fmt.Errorf("%w: extended type %q", ErrUnknownType, ext.Name.Value)
		}
		merged := *base
		merged.Fields = append(append([]*ast.FieldDefinition{}, base.Fields...), ext.Fields...)
		merged.Interfaces = append(append([]*ast.Named{}, base.Interfaces...), ext.Interfaces...)
		b.objectDefs[ext.Name.Value] = &merged
	}

	for _, d := range scalars {
		b.named[d.Name.Value] = newMockScalar(d)
	}
	for _, d := range enums {
		b.named[d.Name.Value] = b.newEnum(d)
	}

	// Everything referenced must be declared before the thunks below run.
	if err := b.checkReferences(inputs, ifaces, unions); err != nil {
		return nil, err
	}

	for _, d := range inputs {
		b.named[d.Name.Value] = b.newInputObject(d)
	}
	for _, d := range ifaces {
		iface := b.newInterface(d)
		b.interfaces[d.Name.Value] = iface
		b.named[d.Name.Value] = iface
	}
	for _, name := range b.order {
		obj := b.newObject(b.objectDefs[name])
		b.objects[name] = obj
		b.named[name] = obj
	}
	for _, d := range unions {
		b.named[d.Name.Value] = b.newUnion(d)
	}

	config := graphql.SchemaConfig{
		Directives: append(append([]*graphql.Directive{}, graphql.SpecifiedDirectives...), ResolveDirective),
	}
	root := func(operation, fallback string) (*graphql.Object, error) {
		name, explicit := roots[operation]
		if !explicit {
			name = fallback
		}
		obj, ok := b.objects[name]
		if !ok && explicit {
			return nil, fmt.Errorf("%w: %s type %q", ErrUnknownType, operation, name)
		}
		return obj, nil
	}
	var err error
	if config.Query, err = root(ast.OperationTypeQuery, model.QueryType); err != nil {
		return nil, err
	}
	if config.Query == nil {
		return nil, ErrNoQueryType
	}
	if config.Mutation, err = root(ast.OperationTypeMutation, model.MutationType); err != nil {
		return nil, err
	}
	if config.Subscription, err = root(ast.OperationTypeSubscription, "Subscription"); err != nil {
		return nil, err
	}
	for _, name := range b.order {
		config.Types = append(config.Types, b.objects[name])
	}

	schema, err := graphql.NewSchema(config)
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func (b *mockBuilder) checkReferences(inputs []*ast.InputObjectDefinition, ifaces []*ast.InterfaceDefinition, unions []*ast.UnionDefinition) error {
	declared := map[string]bool{}
	for name := range b.named {
		declared[name] = true
	}
	for _, d := range inputs {
		declared[d.Name.Value] = true
	}
	for _, d := range ifaces {
		declared[d.Name.Value] = true
	}
	for _, d := range unions {
		declared[d.Name.Value] = true
	}
	for name := range b.objectDefs {
		declared[name] = true
	}

	var errs []error
	check := func(owner string, t ast.Type) {
		if name, _ := model.Unwrap(t); !declared[name] {
			errs = append(errs, fmt.Errorf("%w %q in %s", ErrUnknownType, name, owner))
		}
	}
	checkFields := func(typeName string, fields []*ast.FieldDefinition) {
		for _, f := range fields {
			owner := typeName + "." + f.Name.Value
			check(owner, f.Type)
			for _, arg := range f.Arguments {
				check(owner, arg.Type)
			}
		}
	}

	for _, name := range b.order {
		d := b.objectDefs[name]
		checkFields(name, d.Fields)
		for _, iface := range d.Interfaces {
			if !declared[iface.Name.Value] {
				errs = append(errs, fmt.Errorf("%w %q implemented by %s", ErrUnknownType, iface.Name.Value, name))
			}
		}
	}
	for _, d := range ifaces {
		checkFields(d.Name.Value, d.Fields)
	}
	for _, d := range inputs {
		for _, f := range d.Fields {
			check(d.Name.Value+"."+f.Name.Value, f.Type)
		}
	}
	for _, d := range unions {
		for _, member := range d.Types {
			if _, ok := b.objectDefs[member.Name.Value]; !ok {
				errs = append(errs, fmt.Errorf("%w: union %s member %q is not an object type", ErrUnknownType, d.Name.Value, member.Name.Value))
			}
		}
	}
	return errors.Join(errs...)
}

// typeOf resolves an AST type reference. References were checked before any thunk runs.
func (b *mockBuilder) typeOf(t ast.Type) graphql.Type {
	switch t := t.(type) {
	case *ast.NonNull:
		return graphql.NewNonNull(b.typeOf(t.Type))
	case *ast.List:
		return graphql.NewList(b.typeOf(t.Type))
	case *ast.Named:
		return b.named[t.Name.Value]
	}
	return nil
}

func (b *mockBuilder) args(defs []*ast.InputValueDefinition) graphql.FieldConfigArgument {
	if len(defs) == 0 {
		return nil
	}
	args := graphql.FieldConfigArgument{}
	for _, a := range defs {
		args[a.Name.Value] = &graphql.ArgumentConfig{
			Type:        b.typeOf(a.Type),
			Description: describe(a.Description),
		}
	}
	return args
}

func (b *mockBuilder) fields(typeName string, defs []*ast.FieldDefinition) graphql.FieldsThunk {
	for _, f := range defs {
		if name, ok := binding.ResolveDirectiveName(f); ok {
			b.annotations[FieldIdentity{Type: typeName, Field: f.Name.Value}] = name
		}
	}
	return func() graphql.Fields {
		fields := graphql.Fields{}
		for _, f := range defs {
			t := b.typeOf(f.Type)
			fields[f.Name.Value] = &graphql.Field{
				Type:        t,
				Args:        b.args(f.Arguments),
				Description: describe(f.Description),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return b.mockValue(t), nil
				},
			}
		}
		return fields
	}
}

func (b *mockBuilder) newObject(d *ast.ObjectDefinition) *graphql.Object {
	var ifaces []*graphql.Interface
	for _, named := range d.Interfaces {
		if iface, ok := b.interfaces[named.Name.Value]; ok {
			ifaces = append(ifaces, iface)
			b.implementer[named.Name.Value] = append(b.implementer[named.Name.Value], d.Name.Value)
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        d.Name.Value,
		Description: describe(d.Description),
		Interfaces:  ifaces,
		Fields:      b.fields(d.Name.Value, d.Fields),
	})
}

func (b *mockBuilder) newInterface(d *ast.InterfaceDefinition) *graphql.Interface {
	name := d.Name.Value
	return graphql.NewInterface(graphql.InterfaceConfig{
		Name:        name,
		Description: describe(d.Description),
		Fields:      b.fields(name, d.Fields),
		ResolveType: func(graphql.ResolveTypeParams) *graphql.Object {
			if impl := b.implementer[name]; len(impl) > 0 {
				return b.objects[impl[0]]
			}
			return nil
		},
	})
}

func (b *mockBuilder) newUnion(d *ast.UnionDefinition) *graphql.Union {
	members := make([]*graphql.Object, 0, len(d.Types))
	for _, named := range d.Types {
		members = append(members, b.objects[named.Name.Value])
	}
	return graphql.NewUnion(graphql.UnionConfig{
		Name:        d.Name.Value,
		Description: describe(d.Description),
		Types:       members,
		ResolveType: func(graphql.ResolveTypeParams) *graphql.Object {
			return members[0]
		},
	})
}

func (b *mockBuilder) newEnum(d *ast.EnumDefinition) *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, v := range d.Values {
		values[v.Name.Value] = &graphql.EnumValueConfig{
			Value:       v.Name.Value,
			Description: describe(v.Description),
		}
		if name, ok := binding.DirectiveResolverName(v.Directives); ok {
			b.annotations[FieldIdentity{Type: d.Name.Value, Field: v.Name.Value}] = name
		}
	}
	if len(d.Values) > 0 {
		b.enumFirst[d.Name.Value] = d.Values[0].Name.Value
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        d.Name.Value,
		Description: describe(d.Description),
		Values:      values,
	})
}

func (b *mockBuilder) newInputObject(d *ast.InputObjectDefinition) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        d.Name.Value,
		Description: describe(d.Description),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range d.Fields {
				fields[f.Name.Value] = &graphql.InputObjectFieldConfig{
					Type:        b.typeOf(f.Type),
					Description: describe(f.Description),
				}
			}
			return fields
		}),
	})
}

func newMockScalar(d *ast.ScalarDefinition) *graphql.Scalar {
	identity := func(v any) any { return v }
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        d.Name.Value,
		Description: describe(d.Description),
		Serialize:   identity,
		ParseValue:  identity,
		ParseLiteral: func(v ast.Value) any {
			return v.GetValue()
		},
	})
}

func (b *mockBuilder) mockValue(t graphql.Type) any {
	switch t := t.(type) {
	case *graphql.NonNull:
		return b.mockValue(t.OfType)
	case *graphql.List:
		items := make([]any, MockListLength)
		for i := range items {
			items[i] = b.mockValue(t.OfType)
		}
		return items
	case *graphql.Scalar:
		switch t.Name() {
		case "Int":
			return MockInt
		case "Float":
			return MockFloat
		case "Boolean":
			return MockBoolean
		case "ID":
			return uuid.NewString()
		}
		return MockString
	case *graphql.Enum:
		if v, ok := b.enumFirst[t.Name()]; ok {
			return v
		}
		return nil
	}
	// objects, interfaces and unions; their fields resolve themselves
	return map[string]any{}
}

func describe(s *ast.StringValue) string {
	if s == nil {
		return ""
	}
	return s.Value
}

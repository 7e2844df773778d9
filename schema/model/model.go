package model

import (
	"errors"
	"sort"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"github.com/solo-io/graphql-console/common/metrics"
)

const (
	QueryType    = "Query"
	MutationType = "Mutation"

	// EnumLabelPrefix keeps enum groups apart from object types of the same name.
	EnumLabelPrefix = "Enum "
)

var (
	ErrParseSchema = errors.New("failed to parse schema definition")
	ErrEmptySchema = errors.New("schema definition is empty")
)

// TypeField is one field definition of one object type.
type TypeField struct {
	TypeName       string
	FieldName      string
	ReturnTypeName string
	DeclaredType   string // as written, non-null markers included
	IsList         bool
	Description    string

	Node *ast.FieldDefinition `json:"-"`
}

type EnumValue struct {
	EnumName    string
	Label       string
	ValueName   string
	Description string
}

type TypeGroup struct {
	Name   string
	Fields []TypeField
}

type EnumGroup struct {
	Label  string
	Name   string
	Values []EnumValue
}

// Model is the display projection of a schema definition. It is never mutated after Parse returns.
type Model struct {
	Types []TypeGroup
	Enums []EnumGroup

	types map[string]int
	enums map[string]int
}

// Parse projects sdl into object type groups and enum groups. Query and Mutation lead the
// object types; everything else keeps document order.
func Parse(sdl string) (*Model, error) {
	m, err := parse(sdl)
	metrics.SchemaParses.WithLabelValues(metrics.Result(err)).Inc()
	return m, err
}

func parse(sdl string) (*Model, error) {
	if sdl == "" {
		return nil, errors.Join(ErrParseSchema, ErrEmptySchema)
	}

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(sdl), Name: "GraphQL schema"}),
	})
	if err != nil {
		return nil, errors.Join(ErrParseSchema, err)
	}

	m := &Model{
		types: map[string]int{},
		enums: map[string]int{},
	}

	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.ObjectDefinition:
			group := TypeGroup{Name: d.Name.Value}
			for _, f := range d.Fields {
				group.Fields = append(group.Fields, newTypeField(group.Name, f))
			}
			m.Types = append(m.Types, group)
		case *ast.EnumDefinition:
			group := EnumGroup{Name: d.Name.Value, Label: EnumLabelPrefix + d.Name.Value}
			for _, v := range d.Values {
				group.Values = append(group.Values, EnumValue{
					EnumName:    group.Name,
					Label:       group.Label,
					ValueName:   v.Name.Value,
					Description: description(v.Description),
				})
			}
			m.Enums = append(m.Enums, group)
		}
	}

	sort.SliceStable(m.Types, func(i, j int) bool {
		return rootRank(m.Types[i].Name) < rootRank(m.Types[j].Name)
	})

	for i, g := range m.Types {
		m.types[g.Name] = i
	}
	for i, g := range m.Enums {
		m.enums[g.Label] = i
	}

	return m, nil
}

func rootRank(name string) int {
	switch name {
	case QueryType:
		return 0
	case MutationType:
		return 1
	default:
		return 2
	}
}

func newTypeField(typeName string, f *ast.FieldDefinition) TypeField {
	named, isList := Unwrap(f.Type)
	return TypeField{
		TypeName:       typeName,
		FieldName:      f.Name.Value,
		ReturnTypeName: named,
		DeclaredType:   TypeString(f.Type),
		IsList:         isList,
		Description:    description(f.Description),
		Node:           f,
	}
}

// Unwrap returns the innermost named type of t and whether t is a list once an outer
// non-null wrapper is removed. [Rating!]! is a list of Rating.
func Unwrap(t ast.Type) (string, bool) {
	if nn, ok := t.(*ast.NonNull); ok {
		t = nn.Type
	}
	_, isList := t.(*ast.List)

	for {
		switch tt := t.(type) {
		case *ast.NonNull:
			t = tt.Type
		case *ast.List:
			t = tt.Type
		case *ast.Named:
			return tt.Name.Value, isList
		default:
			return "", isList
		}
	}
}

// TypeString renders t the way it is written in SDL, for example [Rating!]!.
func TypeString(t ast.Type) string {
	switch tt := t.(type) {
	case *ast.NonNull:
		return TypeString(tt.Type) + "!"
	case *ast.List:
		return "[" + TypeString(tt.Type) + "]"
	case *ast.Named:
		if tt.Name != nil {
			return tt.Name.Value
		}
	}
	return ""
}

func description(s *ast.StringValue) string {
	if s == nil {
		return ""
	}
	return s.Value
}

// TypeNames returns object type names in display order.
func (m *Model) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for _, g := range m.Types {
		names = append(names, g.Name)
	}
	return names
}

// EnumLabels returns enum group labels ("Enum <name>") in document order.
func (m *Model) EnumLabels() []string {
	labels := make([]string, 0, len(m.Enums))
	for _, g := range m.Enums {
		labels = append(labels, g.Label)
	}
	return labels
}

func (m *Model) TypeFields(typeName string) ([]TypeField, bool) {
	i, ok := m.types[typeName]
	if !ok {
		return nil, false
	}
	return m.Types[i].Fields, true
}

func (m *Model) Field(typeName, fieldName string) (TypeField, bool) {
	fields, _ := m.TypeFields(typeName)
	for _, f := range fields {
		if f.FieldName == fieldName {
			return f, true
		}
	}
	return TypeField{}, false
}

func (m *Model) EnumValues(label string) ([]EnumValue, bool) {
	i, ok := m.enums[label]
	if !ok {
		return nil, false
	}
	return m.Enums[i].Values, true
}

// Package binding associates resolver configurations with the schema fields they implement.
package binding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/schema/model"
)

const (
	ResolveDirective = "resolve"
	resolveNameArg   = "name"
	keySeparator     = "|"
)

var ErrUnknownMatchMode = errors.New("unknown match mode")

// MatchMode selects how a stored resolver key is associated with a field.
type MatchMode string

const (
	// MatchSubstring associates the first resolver whose key contains the field name.
	// Kept for stored data whose keys are not qualified by type.
	MatchSubstring MatchMode = "substring"
	// MatchExact requires the key's field name to equal the field name, and the owner type to
	// equal the field's type when the key names one.
	MatchExact MatchMode = "exact"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(s)) {
	case MatchExact:
		return MatchExact, nil
	case MatchSubstring:
		return MatchSubstring, nil
	}
	return "", fmt.Errorf("%w %q, expected %q or %q", ErrUnknownMatchMode, s, MatchExact, MatchSubstring)
}

// FindBinding returns the first resolution whose key contains fieldName.
func FindBinding(resolutions []v1beta1.ResolutionEntry, fieldName string) (v1beta1.ResolutionEntry, bool) {
	for _, e := range resolutions {
		if strings.Contains(e.Key, fieldName) {
			return e, true
		}
	}
	return v1beta1.ResolutionEntry{}, false
}

// ResolverKey is a stored resolver name split into its optional owner type and field name.
type ResolverKey struct {
	OwnerType string
	FieldName string
}

// ParseResolverKey splits "Type|field" keys. Keys without a separator are bare field names.
func ParseResolverKey(key string) ResolverKey {
	owner, field, ok := strings.Cut(key, keySeparator)
	if !ok {
		return ResolverKey{FieldName: key}
	}
	return ResolverKey{OwnerType: owner, FieldName: field}
}

func (k ResolverKey) String() string {
	if k.OwnerType == "" {
		return k.FieldName
	}
	return k.OwnerType + keySeparator + k.FieldName
}

// Matches reports whether the key names the field fieldName of ownerType.
func (k ResolverKey) Matches(ownerType, fieldName string) bool {
	if k.FieldName != fieldName {
		return false
	}
	return k.OwnerType == "" || k.OwnerType == ownerType
}

// Match is the outcome of a lookup. Mode records which rule produced it.
type Match struct {
	Name       string
	Resolution v1beta1.Resolution
	Mode       MatchMode
}

// Index answers resolver lookups for one resolution list.
type Index struct {
	mode    MatchMode
	entries []v1beta1.ResolutionEntry
	keys    []ResolverKey
}

func NewIndex(resolutions []v1beta1.ResolutionEntry, mode MatchMode) *Index {
	if mode == "" {
		mode = MatchExact
	}
	keys := make([]ResolverKey, len(resolutions))
	for i, e := range resolutions {
		keys[i] = ParseResolverKey(e.Key)
	}
	return &Index{mode: mode, entries: resolutions, keys: keys}
}

func (idx *Index) Mode() MatchMode {
	return idx.mode
}

// Lookup finds the resolver implementing ownerType.fieldName. In exact mode a key qualified
// with the owner type is preferred over a bare one.
func (idx *Index) Lookup(ownerType, fieldName string) (Match, bool) {
	if idx.mode == MatchSubstring {
		e, ok := FindBinding(idx.entries, fieldName)
		if !ok {
			return Match{}, false
		}
		return Match{Name: e.Key, Resolution: e.Value, Mode: MatchSubstring}, true
	}

	bare := -1
	for i, k := range idx.keys {
		if !k.Matches(ownerType, fieldName) {
			continue
		}
		if k.OwnerType != "" {
			return idx.match(i), true
		}
		if bare < 0 {
			bare = i
		}
	}
	if bare >= 0 {
		return idx.match(bare), true
	}
	return Match{}, false
}

func (idx *Index) match(i int) Match {
	return Match{Name: idx.entries[i].Key, Resolution: idx.entries[i].Value, Mode: MatchExact}
}

// IsListType reports whether typeName.fieldName returns a list.
func IsListType(m *model.Model, typeName, fieldName string) bool {
	f, ok := m.Field(typeName, fieldName)
	return ok && f.IsList
}

// DirectiveVariantPair holds a field declaration with and without its @resolve directive.
type DirectiveVariantPair struct {
	WithoutDirective string
	WithDirective    string
}

func BuildDirectiveVariants(fieldName, typeName string, isList bool, resolverName string) DirectiveVariantPair {
	declared := typeName
	if isList {
		declared = "[" + typeName + "]"
	}
	without := fieldName + ": " + declared
	return DirectiveVariantPair{
		WithoutDirective: without,
		WithDirective:    fmt.Sprintf("%s @%s(%s: %q)", without, ResolveDirective, resolveNameArg, resolverName),
	}
}

// FieldVariants builds the variant pair from the declared return type of f, so non-null
// markers such as [Rating]! appear in both strings.
func FieldVariants(f model.TypeField, resolverName string) DirectiveVariantPair {
	if f.DeclaredType == "" {
		return BuildDirectiveVariants(f.FieldName, f.ReturnTypeName, f.IsList, resolverName)
	}
	without := f.FieldName + ": " + f.DeclaredType
	return DirectiveVariantPair{
		WithoutDirective: without,
		WithDirective:    fmt.Sprintf("%s @%s(%s: %q)", without, ResolveDirective, resolveNameArg, resolverName),
	}
}

// ContainsVariant reports whether the schema text already holds the annotated declaration.
// It compares text and misses declarations formatted differently; prefer HasResolveDirective.
func ContainsVariant(sdl string, pair DirectiveVariantPair) bool {
	return strings.Contains(sdl, pair.WithDirective)
}

// ResolveDirectiveName returns the name argument of the field's @resolve directive.
func ResolveDirectiveName(field *ast.FieldDefinition) (string, bool) {
	if field == nil {
		return "", false
	}
	return DirectiveResolverName(field.Directives)
}

// DirectiveResolverName finds the name argument of a @resolve directive among directives.
func DirectiveResolverName(directives []*ast.Directive) (string, bool) {
	for _, d := range directives {
		if d.Name == nil || d.Name.Value != ResolveDirective {
			continue
		}
		for _, arg := range d.Arguments {
			if arg.Name == nil || arg.Name.Value != resolveNameArg {
				continue
			}
			if s, ok := arg.Value.(*ast.StringValue); ok {
				return s.Value, true
			}
		}
	}
	return "", false
}

// HasResolveDirective reports whether field carries @resolve(name: resolverName).
func HasResolveDirective(field *ast.FieldDefinition, resolverName string) bool {
	name, ok := ResolveDirectiveName(field)
	return ok && name == resolverName
}

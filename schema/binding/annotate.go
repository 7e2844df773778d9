package binding

import (
	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/schema/model"
)

// FieldRow is one object-type field annotated with the resolver that implements it.
type FieldRow struct {
	TypeName     string               `json:"typeName"`
	FieldName    string               `json:"fieldName"`
	ReturnType   string               `json:"returnType"`
	IsList       bool                 `json:"isList"`
	Description  string               `json:"description,omitempty"`
	ResolverName string               `json:"resolverName,omitempty"`
	Resolution   *v1beta1.Resolution  `json:"resolution,omitempty"`
	MatchMode    MatchMode            `json:"matchMode,omitempty"`
	HasDirective bool                 `json:"hasDirective"`
	Variants     DirectiveVariantPair `json:"variants"`
}

func (r FieldRow) Bound() bool {
	return r.Resolution != nil
}

// Annotate returns one row per object-type field in model order. Unbound fields get variants
// keyed on the qualified "Type|field" name a new resolver would be stored under.
func Annotate(m *model.Model, resolutions []v1beta1.ResolutionEntry, mode MatchMode) []FieldRow {
	idx := NewIndex(resolutions, mode)

	var rows []FieldRow
	for _, group := range m.Types {
		for _, f := range group.Fields {
			row := FieldRow{
				TypeName:    f.TypeName,
				FieldName:   f.FieldName,
				ReturnType:  f.ReturnTypeName,
				IsList:      f.IsList,
				Description: f.Description,
			}

			resolverName := ResolverKey{OwnerType: f.TypeName, FieldName: f.FieldName}.String()
			if match, ok := idx.Lookup(f.TypeName, f.FieldName); ok {
				res := match.Resolution
				resolverName = match.Name
				row.ResolverName = match.Name
				row.Resolution = &res
				row.MatchMode = match.Mode
			}

			row.HasDirective = HasResolveDirective(f.Node, resolverName)
			row.Variants = FieldVariants(f, resolverName)
			rows = append(rows, row)
		}
	}
	return rows
}

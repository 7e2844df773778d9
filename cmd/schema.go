package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gobuffalo/flect"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/model"
)

var inspectColumns = []string{"type", "field", "returnType", "resolver", "matchMode", "directive"}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect GraphQL schema definitions",
	}
	cmd.AddCommand(newSchemaInspectCmd())
	return cmd
}

func newSchemaInspectCmd() *cobra.Command {
	var (
		flags clientFlags
		file  string
		match string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the fields of a schema with the resolvers bound to them",
		Example: "  console schema inspect --file schema.graphql\n" +
			"  console schema inspect --manifests ./manifests --api gloo-system/products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := binding.ParseMatchMode(match)
			if err != nil {
				return err
			}

			var (
				sdl         string
				resolutions []v1beta1.ResolutionEntry
			)
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read schema: %w", err)
				}
				sdl = string(data)
			case flags.api != "":
				_, api, err := flags.graphqlApi(cmd.Context())
				if err != nil {
					return err
				}
				sdl, resolutions = api.SchemaDefinition(), api.Resolutions()
			default:
				return errors.New("one of --file or --api is required")
			}

			m, err := model.Parse(sdl)
			if err != nil {
				return err
			}
			renderSchema(cmd.OutOrStdout(), m, binding.Annotate(m, resolutions, mode))
			return nil
		},
	}
	flags.addFlags(cmd.Flags())
	cmd.Flags().StringVar(&file, "file", "", "schema definition file")
	cmd.Flags().StringVar(&match, "match", string(binding.MatchExact), "resolver matching: exact or substring")
	return cmd
}

// newTable keeps headers as written so the titleized column names show unchanged.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}

func renderSchema(w io.Writer, m *model.Model, rows []binding.FieldRow) {
	t := newTable(w)

	header := make(table.Row, len(inspectColumns))
	for i, col := range inspectColumns {
		header[i] = flect.Titleize(col)
	}
	t.AppendHeader(header)

	for _, r := range rows {
		returns := r.ReturnType
		if r.IsList {
			returns = "[" + returns + "]"
		}
		directive := ""
		if r.HasDirective {
			directive = "@resolve"
		}
		t.AppendRow(table.Row{r.TypeName, r.FieldName, returns, r.ResolverName, r.MatchMode, directive})
	}
	t.Render()

	if len(m.Enums) == 0 {
		return
	}
	enums := newTable(w)
	enums.AppendHeader(table.Row{"Enum", "Value", "Description"})
	for _, group := range m.Enums {
		for _, v := range group.Values {
			enums.AppendRow(table.Row{group.Label, v.ValueName, v.Description})
		}
	}
	enums.Render()
}

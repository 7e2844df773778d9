package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/resolver/conversion"
	"github.com/solo-io/graphql-console/resolver/display"
	"github.com/solo-io/graphql-console/resolver/wizard"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/model"
)

var errInvalidResolver = errors.New("resolver configuration is invalid")

func newResolverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolver",
		Short: "Show, validate and edit resolvers",
	}
	cmd.AddCommand(newResolverShowCmd(), newResolverValidateCmd(), newResolverWizardCmd())
	return cmd
}

func newResolverShowCmd() *cobra.Command {
	var (
		flags    clientFlags
		resolver string
		kind     string
	)
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a resolver as the YAML document the editor shows",
		Example: "  console resolver show --manifests ./manifests --api gloo-system/products --resolver 'Query|products'",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, err := flags.graphqlApi(cmd.Context())
			if err != nil {
				return err
			}
			res, ok := api.Resolution(resolver)
			if !ok {
				return fmt.Errorf("%w: %q", conversion.ErrUndefinedResolver, resolver)
			}
			t := res.Type()
			if kind != "" {
				if t, err = v1beta1.ParseResolverType(kind); err != nil {
					return err
				}
			}
			text, err := display.ForResolver(&res, t)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	flags.addFlags(cmd.Flags())
	cmd.Flags().StringVar(&resolver, "resolver", "", "resolver name")
	cmd.Flags().StringVar(&kind, "type", "", "render as REST or gRPC, defaults to the stored type")
	cmd.MarkFlagRequired("resolver") //nolint:errcheck
	return cmd
}

func newResolverValidateCmd() *cobra.Command {
	var (
		file string
		kind string
	)
	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Check a resolver YAML document without a control plane",
		Example: "  console resolver validate --type REST --file resolver.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := v1beta1.ParseResolverType(kind)
			if err != nil {
				return err
			}
			var data []byte
			if file == "" || file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read resolver: %w", err)
			}

			if err := conversion.ValidateResolverYAML(string(data), t.Kind()); err != nil {
				return fmt.Errorf("%w: %s", errInvalidResolver, wizard.ExtractValidationMessage(err.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid") //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "resolver YAML file, - or empty for stdin")
	cmd.Flags().StringVar(&kind, "type", string(v1beta1.ResolverTypeREST), "resolver type: REST or gRPC")
	return cmd
}

func newResolverWizardCmd() *cobra.Command {
	var (
		flags     clientFlags
		typeName  string
		fieldName string
	)
	cmd := &cobra.Command{
		Use:     "wizard",
		Short:   "Configure the resolver of a schema field interactively",
		Example: "  console resolver wizard --remote-url http://localhost:8080 --api gloo-system/products --type-name Query --field products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, api, err := flags.graphqlApi(cmd.Context())
			if err != nil {
				return err
			}
			target, err := wizardTarget(api, typeName, fieldName)
			if err != nil {
				return err
			}
			err = runWizard(cmd.Context(), cmd.OutOrStdout(), client, target)
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		},
	}
	flags.addFlags(cmd.Flags())
	cmd.Flags().StringVar(&typeName, "type-name", model.QueryType, "object type owning the field")
	cmd.Flags().StringVar(&fieldName, "field", "", "field to resolve")
	cmd.MarkFlagRequired("field") //nolint:errcheck
	return cmd
}

// wizardTarget finds the field in the schema and the resolver currently bound to it.
func wizardTarget(api *v1beta1.GraphQLApi, typeName, fieldName string) (wizard.Target, error) {
	m, err := model.Parse(api.SchemaDefinition())
	if err != nil {
		return wizard.Target{}, err
	}
	if _, ok := m.Field(typeName, fieldName); !ok {
		return wizard.Target{}, fmt.Errorf("%w: %s.%s", conversion.ErrFieldNotFound, typeName, fieldName)
	}

	target := wizard.Target{APIRef: api.Ref(), TypeName: typeName, FieldName: fieldName}
	if match, ok := binding.NewIndex(api.Resolutions(), binding.MatchExact).Lookup(typeName, fieldName); ok {
		res := match.Resolution
		target.ResolverName = match.Name
		target.Current = &res
	}
	return target, nil
}

func runWizard(ctx context.Context, out io.Writer, client backend.Client, target wizard.Target) error {
	w := wizard.New(client, target, wizard.WithSeedDelay(0), wizard.WithLogger(log))
	defer w.Cancel()

	upstreams, err := client.ListUpstreams(ctx)
	if err != nil {
		return err
	}
	if len(upstreams) == 0 {
		return errors.New(wizard.MsgUpstreamRequired)
	}
	upstreamOptions := make([]huh.Option[string], 0, len(upstreams))
	for _, up := range upstreams {
		upstreamOptions = append(upstreamOptions, huh.NewOption(up.Ref().String(), up.Ref().String()))
	}

	values := w.Values()
	resolverType := string(values.ResolverType)
	upstream := values.Upstream

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(wizard.StepResolverType.Title()).
				Description(fmt.Sprintf("Resolver %s for %s.%s", w.Target().ResolverName, target.TypeName, target.FieldName)).
				Options(
					huh.NewOption(string(v1beta1.ResolverTypeREST), string(v1beta1.ResolverTypeREST)),
					huh.NewOption(string(v1beta1.ResolverTypeGRPC), string(v1beta1.ResolverTypeGRPC)),
				).
				Value(&resolverType),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(wizard.StepUpstream.Title()).
				Options(upstreamOptions...).
				Value(&upstream),
		),
	).Run()
	if err != nil {
		return err
	}

	if err := w.SetResolverType(v1beta1.ResolverType(resolverType)); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}
	if err := w.SetUpstream(upstream); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}

	config := w.Values().ResolverConfig
	for {
		submit := true
		err := huh.NewForm(huh.NewGroup(
			huh.NewText().
				Title(wizard.StepResolverConfig.Title()).
				Description(w.Message()).
				Lines(16).
				Value(&config),
			huh.NewConfirm().
				Title("Save the resolver?").
				Affirmative("Save").
				Negative("Keep editing").
				Value(&submit),
		)).Run()
		if err != nil {
			return err
		}
		if err := w.SetResolverConfig(config); err != nil {
			return err
		}
		if !submit {
			continue
		}

		if valid, msg := w.Validate(ctx); !valid {
			fmt.Fprintln(out, msg) //nolint:errcheck
			continue
		}
		api, err := w.Submit(ctx)
		switch {
		case errors.Is(err, wizard.ErrNothingChanged):
			fmt.Fprintln(out, "nothing changed") //nolint:errcheck
			return nil
		case err != nil && backend.ErrorCode(err) != backend.CodeInvalidArgument:
			return err
		case err != nil:
			fmt.Fprintln(out, w.Message()) //nolint:errcheck
			continue
		}
		fmt.Fprintf(out, "saved resolver %s on %s\n", w.Target().ResolverName, api.Ref()) //nolint:errcheck
		return nil
	}
}

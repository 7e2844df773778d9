package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/console/options"
	"github.com/solo-io/graphql-console/resolver/conversion"
)

const productsManifest = `apiVersion: graphql.gloo.solo.io/v1beta1
kind: GraphQLApi
metadata:
  name: products
  namespace: gloo-system
spec:
  executableSchema:
    schemaDefinition: |
      type Query {
        products: [Product] @resolve(name: "Query|products")
      }

      type Product {
        id: String
        name: String
      }

      enum Color {
        RED
      }
    executor:
      local:
        resolutions:
          "Query|products":
            restResolver:
              upstreamRef:
                name: products
                namespace: gloo-system
              spanName: products
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	log = testlogger.New().HideLogOutput().Logger

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSchemaInspect(t *testing.T) {
	manifests := writeFile(t, "products.yaml", productsManifest)
	sdl := writeFile(t, "schema.graphql", "type Query { products: [Product] }\ntype Product { id: ID }")

	tests := []struct {
		name     string
		args     []string
		contains []string
		err      bool
	}{
		{
			name:     "file",
			args:     []string{"--file", sdl},
			contains: []string{"Return Type", "Match Mode", "products", "[Product]"},
		},
		{
			name:     "api",
			args:     []string{"--manifests", manifests, "--api", "gloo-system/products"},
			contains: []string{"Query|products", "@resolve", "Enum Color", "RED"},
		},
		{name: "no_source", args: []string{}, err: true},
		{name: "bad_match", args: []string{"--file", sdl, "--match", "fuzzy"}, err: true},
		{name: "bad_api", args: []string{"--manifests", manifests, "--api", "products"}, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, newSchemaInspectCmd(), "", tt.args...)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestResolverShow(t *testing.T) {
	manifests := writeFile(t, "products.yaml", productsManifest)

	out, err := run(t, newResolverShowCmd(), "",
		"--manifests", manifests, "--api", "gloo-system/products", "--resolver", "Query|products")
	require.NoError(t, err)
	assert.Equal(t, "restResolver:\n  spanName: products\n", out)

	_, err = run(t, newResolverShowCmd(), "",
		"--manifests", manifests, "--api", "gloo-system/products", "--resolver", "missing")
	assert.ErrorIs(t, err, conversion.ErrUndefinedResolver)
}

func TestResolverValidate(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		input string
		err   error
	}{
		{name: "rest", kind: "REST", input: "restResolver:\n  spanName: x\n"},
		{name: "grpc", kind: "gRPC", input: "grpcResolver:\n  requestTransform:\n    serviceName: a.B\n"},
		{name: "unknown_key", kind: "REST", input: "restResolver:\n  nope: 1\n", err: errInvalidResolver},
		{name: "broken", kind: "REST", input: "restResolver: [", err: errInvalidResolver},
		{name: "unknown_type", kind: "SOAP", input: "x: 1", err: v1beta1.ErrUnknownResolverType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, newResolverValidateCmd(), tt.input, "--type", tt.kind)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "valid\n", out)
		})
	}
}

func TestWizardTarget(t *testing.T) {
	api := &v1beta1.GraphQLApi{
		Metadata: v1beta1.ObjectMeta{Name: "products", Namespace: "gloo-system"},
		Spec: v1beta1.GraphQLApiSpec{ExecutableSchema: &v1beta1.ExecutableSchema{
			SchemaDefinition: "type Query { products: [String] other: String }",
			Executor: &v1beta1.Executor{Local: &v1beta1.LocalExecutor{
				ResolutionsMap: []v1beta1.ResolutionEntry{{
					Key:   "Query|products",
					Value: v1beta1.Resolution{RestResolver: &v1beta1.RestResolver{SpanName: "products"}},
				}},
			}},
		}},
	}

	target, err := wizardTarget(api, "Query", "products")
	require.NoError(t, err)
	assert.Equal(t, "Query|products", target.ResolverName)
	require.NotNil(t, target.Current)
	assert.Equal(t, "products", target.Current.RestResolver.SpanName)

	target, err = wizardTarget(api, "Query", "other")
	require.NoError(t, err)
	assert.Empty(t, target.ResolverName)
	assert.Nil(t, target.Current)

	_, err = wizardTarget(api, "Query", "missing")
	assert.ErrorIs(t, err, conversion.ErrFieldNotFound)
}

func TestClientFlagsRef(t *testing.T) {
	tests := []struct {
		api string
		ok  bool
	}{
		{api: "gloo-system/products", ok: true},
		{api: "products"},
		{api: "/products"},
		{api: "gloo-system/"},
	}
	for _, tt := range tests {
		t.Run(tt.api, func(t *testing.T) {
			f := clientFlags{api: tt.api}
			ref, err := f.ref()
			if !tt.ok {
				assert.ErrorIs(t, err, v1beta1.ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, v1beta1.ClusterObjectRef{Name: "products", Namespace: "gloo-system"}, ref)
		})
	}

	_, err := (&clientFlags{}).client()
	assert.ErrorIs(t, err, errNoSource)
}

func TestTracesConfig(t *testing.T) {
	o := options.NewOptions()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	o.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--tracing-collector", "otel:4317", "--tracing-service-name", "console"}))
	completed, err := o.Complete()
	require.NoError(t, err)

	cfg := tracesConfig(completed)
	assert.Equal(t, "otel:4317", cfg.CollectorEndpoint)
	assert.Equal(t, "console", cfg.ServiceName)
	assert.Equal(t, version, cfg.ServiceVersion)
}

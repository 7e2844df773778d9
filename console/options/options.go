package options

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/common/config"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/explorer"
)

// Options are the serve flags. Every flag is bound to the config key it is named after, so
// flags override the config file and the environment.
type Options struct {
	// ConfigFile is an optional YAML file holding any of the config keys.
	ConfigFile string

	v *viper.Viper
}

type completedOptions struct {
	config.Config

	MatchMode binding.MatchMode
	Level     zerolog.Level
}

type CompletedOptions struct {
	*completedOptions
}

func NewOptions() *Options {
	return &Options{v: config.NewViper()}
}

// FlagName is the flag bound to a config key: dots become dashes.
func FlagName(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "path to a YAML config file")

	o.str(fs, "log-level", "log level: trace, debug, info, warn or error")
	o.duration(fs, "shutdown-timeout", "time allowed for in-flight requests on shutdown")

	o.str(fs, "server.address", "address the console API listens on")
	o.integer(fs, "server.port", "port the console API listens on")
	o.str(fs, "server.metrics-address", "address of the metrics server, empty to serve metrics on the API port only")
	o.str(fs, "server.health-address", "address of the health probe server, empty to serve probes on the API port only")

	o.str(fs, "backend.kind", "control plane backend: memory, kube or remote")
	o.str(fs, "backend.cluster-name", "cluster name reported on resources")
	o.str(fs, "backend.manifests-dir", "file or directory of GraphQLApi and Upstream manifests (memory backend)")
	o.boolean(fs, "backend.watch", "reload manifests when they change (memory backend)")
	o.duration(fs, "backend.watch-debounce", "delay before changed manifests are reloaded")
	o.str(fs, "backend.remote-url", "base URL of the console serving the control plane (remote backend)")
	o.str(fs, "backend.kubeconfig", "kubeconfig file (kube backend), in-cluster config when empty")
	o.str(fs, "backend.context", "kubeconfig context (kube backend)")
	o.str(fs, "backend.host", "API server URL, overrides the kubeconfig server (kube backend)")
	o.str(fs, "backend.token-file", "bearer token file (kube backend)")
	o.str(fs, "backend.ca-file", "API server CA bundle (kube backend)")
	o.boolean(fs, "backend.insecure", "skip API server certificate verification (kube backend)")
	o.str(fs, "backend.namespace", "namespace to watch, all namespaces when empty (kube backend)")

	o.str(fs, "storage.dir", "directory for console state, kept in memory when empty")
	o.str(fs, "explorer.default-url", "live GraphQL endpoint used until one is chosen")
	o.duration(fs, "explorer.debounce", "quiet period before a typed endpoint is committed")
	o.duration(fs, "wizard.seed-delay", "delay before the resolver editor is filled")
	o.str(fs, "matching.mode", "resolver matching: exact or substring")

	o.boolean(fs, "graphql.pretty", "pretty print mock explorer responses")
	o.boolean(fs, "graphql.playground", "serve the playground on the mock explorer")
	o.boolean(fs, "graphql.graphiql", "serve GraphiQL on the mock explorer")

	o.boolean(fs, "tracing.enabled", "export traces to the collector")
	o.str(fs, "tracing.collector", "OTLP collector address")
	o.str(fs, "tracing.service-name", "service name reported in traces")
}

func (o *Options) bind(fs *pflag.FlagSet, key string) {
	o.v.BindPFlag(key, fs.Lookup(FlagName(key))) //nolint:errcheck
}

func (o *Options) str(fs *pflag.FlagSet, key, usage string) {
	fs.String(FlagName(key), o.v.GetString(key), usage)
	o.bind(fs, key)
}

func (o *Options) integer(fs *pflag.FlagSet, key, usage string) {
	fs.Int(FlagName(key), o.v.GetInt(key), usage)
	o.bind(fs, key)
}

func (o *Options) boolean(fs *pflag.FlagSet, key, usage string) {
	fs.Bool(FlagName(key), o.v.GetBool(key), usage)
	o.bind(fs, key)
}

func (o *Options) duration(fs *pflag.FlagSet, key, usage string) {
	fs.Duration(FlagName(key), o.v.GetDuration(key), usage)
	o.bind(fs, key)
}

// Complete reads the config file and resolves the configuration.
func (o *Options) Complete() (*CompletedOptions, error) {
	cfg, err := config.Load(o.v, o.ConfigFile)
	if err != nil {
		return nil, err
	}
	return &CompletedOptions{completedOptions: &completedOptions{Config: cfg}}, nil
}

// Validate reports every invalid setting at once and fills MatchMode and Level.
func (o *CompletedOptions) Validate() error {
	var result *multierror.Error
	add := func(err error) {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	mode, err := binding.ParseMatchMode(o.Matching.Mode)
	add(err)
	o.MatchMode = mode

	level, err := zerolog.ParseLevel(strings.ToLower(o.Config.LogLevel))
	if err != nil {
		add(fmt.Errorf("--log-level: %w", err))
	}
	o.Level = level

	if o.Server.Port <= 0 || o.Server.Port > 65535 {
		add(fmt.Errorf("--server-port %d is not a valid port", o.Server.Port))
	}

	switch o.Backend.Kind {
	case backend.KindMemory, backend.KindKube:
	case backend.KindRemote:
		add(validateRemoteURL(o.Backend.RemoteURL))
	default:
		add(fmt.Errorf("%w %q, expected %s, %s or %s", backend.ErrUnknownKind, o.Backend.Kind,
			backend.KindMemory, backend.KindKube, backend.KindRemote))
	}

	add(explorer.ValidateEndpoint(o.Explorer.DefaultURL))

	if o.ShutdownTimeout <= 0 {
		add(errors.New("--shutdown-timeout must be positive"))
	}
	for flag, d := range map[string]time.Duration{
		"--backend-watch-debounce": o.Backend.WatchDebounce,
		"--explorer-debounce":      o.Explorer.Debounce,
		"--wizard-seed-delay":      o.Wizard.SeedDelay,
	} {
		if d < 0 {
			add(fmt.Errorf("%s must not be negative", flag))
		}
	}

	return result.ErrorOrNil()
}

func validateRemoteURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: --backend-remote-url must be set when --backend-kind=remote", backend.ErrInvalidConfig)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: --backend-remote-url %q is not an absolute url", backend.ErrInvalidConfig, raw)
	}
	return nil
}

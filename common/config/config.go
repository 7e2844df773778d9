// Package config holds the console configuration as read from flags, a config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CONSOLE_BACKEND_KIND.
const EnvPrefix = "CONSOLE"

type Config struct {
	LogLevel        string        `mapstructure:"log-level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`

	Server   Server   `mapstructure:"server"`
	Backend  Backend  `mapstructure:"backend"`
	Storage  Storage  `mapstructure:"storage"`
	Explorer Explorer `mapstructure:"explorer"`
	Wizard   Wizard   `mapstructure:"wizard"`
	Matching Matching `mapstructure:"matching"`
	GraphQL  GraphQL  `mapstructure:"graphql"`
	Tracing  Tracing  `mapstructure:"tracing"`
}

type Server struct {
	Address        string `mapstructure:"address"`
	Port           int    `mapstructure:"port"`
	MetricsAddress string `mapstructure:"metrics-address"`
	HealthAddress  string `mapstructure:"health-address"`
}

// Backend selects the control plane the console talks to. Kind is memory, kube or remote.
type Backend struct {
	Kind          string        `mapstructure:"kind"`
	ClusterName   string        `mapstructure:"cluster-name"`
	ManifestsDir  string        `mapstructure:"manifests-dir"`
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch-debounce"`
	RemoteURL     string        `mapstructure:"remote-url"`
	Kubeconfig    string        `mapstructure:"kubeconfig"`
	Context       string        `mapstructure:"context"`
	Host          string        `mapstructure:"host"`
	TokenFile     string        `mapstructure:"token-file"`
	CAFile        string        `mapstructure:"ca-file"`
	Insecure      bool          `mapstructure:"insecure"`
	Namespace     string        `mapstructure:"namespace"`
}

// Storage keeps console state on disk under Dir, or in memory when Dir is empty.
type Storage struct {
	Dir string `mapstructure:"dir"`
}

type Explorer struct {
	DefaultURL string        `mapstructure:"default-url"`
	Debounce   time.Duration `mapstructure:"debounce"`
}

type Wizard struct {
	SeedDelay time.Duration `mapstructure:"seed-delay"`
}

type Matching struct {
	Mode string `mapstructure:"mode"`
}

type GraphQL struct {
	Pretty     bool `mapstructure:"pretty"`
	Playground bool `mapstructure:"playground"`
	GraphiQL   bool `mapstructure:"graphiql"`
}

type Tracing struct {
	Enabled     bool   `mapstructure:"enabled"`
	Collector   string `mapstructure:"collector"`
	ServiceName string `mapstructure:"service-name"`
}

var defaults = map[string]any{
	"log-level":              "info",
	"shutdown-timeout":       10 * time.Second,
	"server.address":         "0.0.0.0",
	"server.port":            8080,
	"server.metrics-address": ":9090",
	"server.health-address":  ":8081",
	"backend.kind":           "memory",
	"backend.cluster-name":   "local",
	"backend.manifests-dir":  "",
	"backend.watch":          true,
	"backend.watch-debounce": 300 * time.Millisecond,
	"backend.remote-url":     "",
	"backend.kubeconfig":     "",
	"backend.context":        "",
	"backend.host":           "",
	"backend.token-file":     "",
	"backend.ca-file":        "",
	"backend.insecure":       false,
	"backend.namespace":      "",
	"storage.dir":            "",
	"explorer.default-url":   "http://localhost:8080/graphql",
	"explorer.debounce":      time.Second,
	"wizard.seed-delay":      50 * time.Millisecond,
	"matching.mode":          "exact",
	"graphql.pretty":         true,
	"graphql.playground":     false,
	"graphql.graphiql":       true,
	"tracing.enabled":        false,
	"tracing.collector":      "localhost:4317",
	"tracing.service-name":   "graphql-console",
}

var ErrReadConfig = errors.New("failed to read config file")

// NewViper returns a viper instance with the defaults set and environment overrides enabled.
// Nested keys map to variables by replacing dots and dashes, e.g. explorer.default-url is
// CONSOLE_EXPLORER_DEFAULT_URL.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads file when set and decodes everything v knows into a Config.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Join(ErrReadConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/explorer"
)

func complete(t *testing.T, args ...string) (*CompletedOptions, error) {
	t.Helper()
	o := NewOptions()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	o.AddFlags(fs)
	require.NoError(t, fs.Parse(args))

	completed, err := o.Complete()
	if err != nil {
		return nil, err
	}
	return completed, completed.Validate()
}

func TestDefaults(t *testing.T) {
	o, err := complete(t)
	require.NoError(t, err)

	assert.Equal(t, binding.MatchExact, o.MatchMode)
	assert.Equal(t, zerolog.InfoLevel, o.Level)
	assert.Equal(t, backend.KindMemory, o.Backend.Kind)
	assert.Equal(t, explorer.DefaultEndpoint, o.Explorer.DefaultURL)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte("matching:\n  mode: substring\nserver:\n  port: 9000\n"), 0o644))

	o, err := complete(t, "--config", path, "--server-port", "9100", "--explorer-debounce", "2s")
	require.NoError(t, err)

	assert.Equal(t, binding.MatchSubstring, o.MatchMode)
	assert.Equal(t, 9100, o.Server.Port)
	assert.Equal(t, 2*time.Second, o.Explorer.Debounce)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		err      error
		contains []string
	}{
		{name: "remote_ok", args: []string{"--backend-kind", "remote", "--backend-remote-url", "http://console:8080"}},
		{name: "kube_ok", args: []string{"--backend-kind", "kube"}},
		{name: "unknown_kind", args: []string{"--backend-kind", "etcd"}, err: backend.ErrUnknownKind},
		{name: "remote_without_url", args: []string{"--backend-kind", "remote"}, err: backend.ErrInvalidConfig},
		{name: "remote_relative_url", args: []string{"--backend-kind", "remote", "--backend-remote-url", "console"}, err: backend.ErrInvalidConfig},
		{name: "match_mode", args: []string{"--matching-mode", "fuzzy"}, err: binding.ErrUnknownMatchMode},
		{name: "default_url", args: []string{"--explorer-default-url", "localhost:8080"}, err: explorer.ErrInvalidEndpoint},
		{name: "port", args: []string{"--server-port", "0"}, contains: []string{"--server-port"}},
		{name: "log_level", args: []string{"--log-level", "loud"}, contains: []string{"--log-level"}},
		{name: "negative_delay", args: []string{"--wizard-seed-delay=-1s"}, contains: []string{"--wizard-seed-delay"}},
		{
			name:     "aggregated",
			args:     []string{"--server-port=-1", "--log-level", "loud"},
			contains: []string{"--server-port", "--log-level"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := complete(t, tt.args...)
			if tt.err == nil && tt.contains == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd/api"
)

const kubeconfigData = `
apiVersion: v1
kind: Config
current-context: test-context
contexts:
- name: test-context
  context:
    cluster: test-cluster
    user: test-user
- name: cert-context
  context:
    cluster: test-cluster
    user: cert-user
clusters:
- name: test-cluster
  cluster:
    server: https://test.example.com
users:
- name: test-user
  user:
    token: kubeconfig-token
- name: cert-user
  user:
    client-certificate-data: Y2VydA==
    client-key-data: a2V5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildConfig(t *testing.T) {
	kubeconfig := writeFile(t, "kubeconfig", kubeconfigData)
	caFile := writeFile(t, "ca.crt", "ca-bytes")

	tests := []struct {
		name        string
		conn        Connection
		wantConfig  func(*testing.T, *rest.Config)
		errContains string
	}{
		{
			name: "kubeconfig_current_context",
			conn: Connection{Kubeconfig: kubeconfig},
			wantConfig: func(t *testing.T, c *rest.Config) {
				assert.Equal(t, "https://test.example.com", c.Host)
				assert.Equal(t, "kubeconfig-token", c.BearerToken)
			},
		},
		{
			name: "kubeconfig_named_context",
			conn: Connection{Kubeconfig: kubeconfig, Context: "cert-context"},
			wantConfig: func(t *testing.T, c *rest.Config) {
				assert.Equal(t, []byte("cert"), c.TLSClientConfig.CertData)
				assert.Equal(t, []byte("key"), c.TLSClientConfig.KeyData)
			},
		},
		{
			name: "host_with_token_and_ca",
			conn: Connection{Host: "https://api.example.com", Token: "abc", CAFile: caFile, Insecure: true},
			wantConfig: func(t *testing.T, c *rest.Config) {
				assert.Equal(t, "https://api.example.com", c.Host)
				assert.Equal(t, "abc", c.BearerToken)
				assert.Equal(t, []byte("ca-bytes"), c.TLSClientConfig.CAData)
				assert.False(t, c.TLSClientConfig.Insecure, "a CA disables insecure mode")
			},
		},
		{
			name: "host_with_kubeconfig_credentials",
			conn: Connection{Host: "https://api.example.com", Kubeconfig: kubeconfig},
			wantConfig: func(t *testing.T, c *rest.Config) {
				assert.Equal(t, "https://api.example.com", c.Host)
				assert.Equal(t, "kubeconfig-token", c.BearerToken)
			},
		},
		{
			name:        "missing_ca_file",
			conn:        Connection{Host: "https://api.example.com", CAFile: filepath.Join(t.TempDir(), "missing")},
			errContains: "failed to read CA file",
		},
		{
			name:        "missing_kubeconfig",
			conn:        Connection{Kubeconfig: filepath.Join(t.TempDir(), "missing")},
			errContains: "failed to load kubeconfig",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := BuildConfig(tt.conn)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.wantConfig(t, config)
		})
	}
}

func TestConfigureFromKubeconfig(t *testing.T) {
	t.Run("unknown_context", func(t *testing.T) {
		err := ConfigureFromKubeconfig(&rest.Config{}, []byte(kubeconfigData), "nope")
		assert.ErrorIs(t, err, ErrContextNotFound)
	})

	t.Run("no_current_context", func(t *testing.T) {
		err := ConfigureFromKubeconfig(&rest.Config{}, []byte("apiVersion: v1\nkind: Config\n"), "")
		assert.ErrorIs(t, err, ErrNoContext)
	})
}

func TestExtractAuthFromKubeconfig(t *testing.T) {
	tokenFile := writeFile(t, "token", "file-token\n")

	tests := []struct {
		name     string
		authInfo *api.AuthInfo
		check    func(*testing.T, *rest.Config)
		err      error
	}{
		{
			name:     "token",
			authInfo: &api.AuthInfo{Token: "t"},
			check:    func(t *testing.T, c *rest.Config) { assert.Equal(t, "t", c.BearerToken) },
		},
		{
			name:     "token_file",
			authInfo: &api.AuthInfo{TokenFile: tokenFile},
			check:    func(t *testing.T, c *rest.Config) { assert.Equal(t, "file-token", c.BearerToken) },
		},
		{
			name:     "client_cert_files",
			authInfo: &api.AuthInfo{ClientCertificate: "/tls.crt", ClientKey: "/tls.key"},
			check: func(t *testing.T, c *rest.Config) {
				assert.Equal(t, "/tls.crt", c.TLSClientConfig.CertFile)
				assert.Equal(t, "/tls.key", c.TLSClientConfig.KeyFile)
			},
		},
		{
			name:     "basic_auth",
			authInfo: &api.AuthInfo{Username: "admin", Password: "secret"},
			check: func(t *testing.T, c *rest.Config) {
				assert.Equal(t, "admin", c.Username)
				assert.Equal(t, "secret", c.Password)
			},
		},
		{
			name:     "nothing_usable",
			authInfo: &api.AuthInfo{},
			err:      ErrNoAuthMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &rest.Config{}
			err := ExtractAuthFromKubeconfig(config, tt.authInfo)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

var (
	ErrNoAuthMethod    = errors.New("no valid authentication method found in kubeconfig")
	ErrNoContext       = errors.New("no current context in kubeconfig")
	ErrContextNotFound = errors.New("context not found in kubeconfig")
)

// Connection describes how the console reaches the Kubernetes API server that stores the
// gateway resources. With neither Kubeconfig nor Host set, the in-cluster config is used.
type Connection struct {
	Kubeconfig string
	Context    string
	Host       string
	Token      string
	TokenFile  string
	CAFile     string
	Insecure   bool
}

// BuildConfig creates a rest.Config from conn. When both Host and Kubeconfig are set the
// kubeconfig only contributes credentials.
func BuildConfig(conn Connection) (*rest.Config, error) {
	switch {
	case conn.Kubeconfig != "" && conn.Host == "":
		loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			&clientcmd.ClientConfigLoadingRules{ExplicitPath: conn.Kubeconfig},
			&clientcmd.ConfigOverrides{CurrentContext: conn.Context},
		)
		config, err := loader.ClientConfig()
		if err != nil {
			return nil, errors.Join(errors.New("failed to load kubeconfig"), err)
		}
		return config, nil

	case conn.Host != "":
		config := &rest.Config{
			Host: conn.Host,
			TLSClientConfig: rest.TLSClientConfig{
				Insecure: conn.Insecure,
			},
		}
		if conn.CAFile != "" {
			caData, err := os.ReadFile(conn.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA file: %w", err)
			}
			config.TLSClientConfig.CAData = caData
			config.TLSClientConfig.Insecure = false
		}

		switch {
		case conn.Token != "":
			config.BearerToken = conn.Token
		case conn.TokenFile != "":
			config.BearerTokenFile = conn.TokenFile
		case conn.Kubeconfig != "":
			data, err := os.ReadFile(conn.Kubeconfig)
			if err != nil {
				return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
			}
			if err := ConfigureFromKubeconfig(config, data, conn.Context); err != nil {
				return nil, fmt.Errorf("failed to configure from kubeconfig: %w", err)
			}
		}
		return config, nil

	default:
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, errors.Join(errors.New("failed to load in-cluster config"), err)
		}
		return config, nil
	}
}

// ConfigureFromKubeconfig copies the credentials of a kubeconfig context onto config.
// An empty contextName selects the current context.
func ConfigureFromKubeconfig(config *rest.Config, kubeconfigData []byte, contextName string) error {
	clientConfig, err := clientcmd.NewClientConfigFromBytes(kubeconfigData)
	if err != nil {
		return errors.Join(errors.New("failed to parse kubeconfig"), err)
	}

	rawConfig, err := clientConfig.RawConfig()
	if err != nil {
		return errors.Join(errors.New("failed to get raw kubeconfig"), err)
	}

	if contextName == "" {
		contextName = rawConfig.CurrentContext
	}
	if contextName == "" {
		return ErrNoContext
	}

	kubeContext, exists := rawConfig.Contexts[contextName]
	if !exists {
		return fmt.Errorf("%w: %s", ErrContextNotFound, contextName)
	}

	authInfo, exists := rawConfig.AuthInfos[kubeContext.AuthInfo]
	if !exists {
		return errors.New("auth info not found in kubeconfig")
	}

	return ExtractAuthFromKubeconfig(config, authInfo)
}

// ExtractAuthFromKubeconfig extracts authentication info from kubeconfig AuthInfo
func ExtractAuthFromKubeconfig(config *rest.Config, authInfo *api.AuthInfo) error {
	if authInfo.Token != "" {
		config.BearerToken = authInfo.Token
		return nil
	}

	if authInfo.TokenFile != "" {
		token, err := os.ReadFile(authInfo.TokenFile)
		if err != nil {
			return fmt.Errorf("failed to read token file: %w", err)
		}
		config.BearerToken = strings.TrimSpace(string(token))
		return nil
	}

	if len(authInfo.ClientCertificateData) > 0 && len(authInfo.ClientKeyData) > 0 {
		config.TLSClientConfig.CertData = authInfo.ClientCertificateData
		config.TLSClientConfig.KeyData = authInfo.ClientKeyData
		return nil
	}

	if authInfo.ClientCertificate != "" && authInfo.ClientKey != "" {
		config.TLSClientConfig.CertFile = authInfo.ClientCertificate
		config.TLSClientConfig.KeyFile = authInfo.ClientKey
		return nil
	}

	if authInfo.Username != "" && authInfo.Password != "" {
		config.Username = authInfo.Username
		config.Password = authInfo.Password
		return nil
	}

	return ErrNoAuthMethod
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/memory"
	"github.com/solo-io/graphql-console/backend/remote"
)

var errNoSource = errors.New("one of --manifests or --remote-url is required")

// clientFlags select the control plane the offline commands read from: manifests on disk or a
// running console.
type clientFlags struct {
	manifests string
	remoteURL string
	api       string
}

func (f *clientFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.manifests, "manifests", f.manifests, "file or directory of GraphQLApi and Upstream manifests")
	fs.StringVar(&f.remoteURL, "remote-url", os.Getenv("CONSOLE_BACKEND_REMOTE_URL"), "base URL of a running console")
	fs.StringVar(&f.api, "api", f.api, "GraphQL API as namespace/name")
}

func (f *clientFlags) client() (backend.Client, error) {
	switch {
	case f.remoteURL != "":
		c, err := remote.New(log, f.remoteURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case f.manifests != "":
		b := memory.New(log)
		if err := b.LoadPath(f.manifests); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, errNoSource
}

func (f *clientFlags) ref() (v1beta1.ClusterObjectRef, error) {
	namespace, name, ok := strings.Cut(f.api, "/")
	ref := v1beta1.ClusterObjectRef{Name: name, Namespace: namespace}
	if !ok {
		return ref, fmt.Errorf("%w: --api %q must be namespace/name", v1beta1.ErrInvalidRef, f.api)
	}
	return ref, ref.Validate()
}

func (f *clientFlags) graphqlApi(ctx context.Context) (backend.Client, *v1beta1.GraphQLApi, error) {
	ref, err := f.ref()
	if err != nil {
		return nil, nil, err
	}
	c, err := f.client()
	if err != nil {
		return nil, nil, err
	}
	api, err := c.GetGraphqlApi(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return c, api, nil
}

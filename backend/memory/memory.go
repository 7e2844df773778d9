// Package memory is an in-process backend seeded from manifests on disk.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/platform-mesh/golang-commons/logger"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/manifest"
	"github.com/solo-io/graphql-console/common/watcher"
	"github.com/solo-io/graphql-console/resolver/conversion"
)

var _ backend.Client = (*Backend)(nil)

type Option func(*Backend)

// WithClusterName sets the cluster name reported on every stored API.
func WithClusterName(name string) Option {
	return func(b *Backend) { b.clusterName = name }
}

func WithGraphQLApis(apis ...v1beta1.GraphQLApi) Option {
	return func(b *Backend) {
		for i := range apis {
			b.putAPI(apis[i].DeepCopy())
		}
	}
}

func WithUpstreams(ups ...v1beta1.Upstream) Option {
	return func(b *Backend) {
		for _, up := range ups {
			b.putUpstream(up)
		}
	}
}

// Backend keeps resources in memory. Resources loaded from a file are forgotten when the
// file is deleted or no longer declares them.
type Backend struct {
	log         *logger.Logger
	clusterName string

	mu        sync.RWMutex
	apis      map[string]*v1beta1.GraphQLApi
	upstreams map[string]v1beta1.Upstream
	sources   map[string][]string
}

func New(log *logger.Logger, opts ...Option) *Backend {
	b := &Backend{
		log:       log,
		apis:      map[string]*v1beta1.GraphQLApi{},
		upstreams: map[string]v1beta1.Upstream{},
		sources:   map[string][]string{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func apiKey(namespace, name string) string      { return "api/" + namespace + "/" + name }
func upstreamKey(namespace, name string) string { return "upstream/" + namespace + "/" + name }

// callers hold b.mu
func (b *Backend) putAPI(api *v1beta1.GraphQLApi) string {
	api.Metadata.ClusterName = b.clusterName
	if api.Metadata.ResourceVersion == "" {
		api.Metadata.ResourceVersion = "1"
	}
	key := apiKey(api.Metadata.Namespace, api.Metadata.Name)
	b.apis[key] = api
	return key
}

func (b *Backend) putUpstream(up v1beta1.Upstream) string {
	up.Metadata.ClusterName = b.clusterName
	key := upstreamKey(up.Metadata.Namespace, up.Metadata.Name)
	b.upstreams[key] = up
	return key
}

// LoadPath loads every manifest file at path, which may be a file or a directory.
// Failures of individual files are aggregated; the files that load are kept.
func (b *Backend) LoadPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read manifests: %w", err)
	}
	if !info.IsDir() {
		return b.loadFile(path)
	}

	var result *multierror.Error
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !watcher.ManifestFiles(p) {
			return nil
		}
		if err := b.loadFile(p); err != nil {
			result = multierror.Append(result, err)
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (b *Backend) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	objs, err := manifest.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.forget(path)
	var keys []string
	for i := range objs.GraphQLApis {
		keys = append(keys, b.putAPI(&objs.GraphQLApis[i]))
	}
	for _, up := range objs.Upstreams {
		keys = append(keys, b.putUpstream(up))
	}
	b.sources[path] = keys

	b.log.Info().Str("path", path).Int("graphqlApis", len(objs.GraphQLApis)).Int("upstreams", len(objs.Upstreams)).Msg("loaded manifests")
	return nil
}

// callers hold b.mu
func (b *Backend) forget(path string) {
	for _, key := range b.sources[path] {
		delete(b.apis, key)
		delete(b.upstreams, key)
	}
	delete(b.sources, path)
}

// Watch reloads manifests below path until ctx is done.
func (b *Backend) Watch(ctx context.Context, path string, debounce time.Duration) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch manifests: %w", err)
	}
	w, err := watcher.NewFileWatcher(b, watcher.ManifestFiles, b.log)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.WatchDirectory(ctx, path, debounce)
	}
	return w.WatchSingleFile(ctx, path, debounce)
}

func (b *Backend) OnFileChanged(path string) {
	if err := b.loadFile(path); err != nil {
		b.log.Error().Err(err).Str("path", path).Msg("failed to reload manifests")
	}
}

func (b *Backend) OnFileDeleted(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forget(path)
	b.log.Info().Str("path", path).Msg("removed manifests")
}

func (b *Backend) GetGraphqlApi(_ context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	api, ok := b.apis[apiKey(ref.Namespace, ref.Name)]
	if !ok || (ref.ClusterName != "" && ref.ClusterName != b.clusterName) {
		return nil, backend.NotFound(ref)
	}
	return api.DeepCopy(), nil
}

func (b *Backend) ListGraphqlApis(_ context.Context) ([]v1beta1.GraphQLApi, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]v1beta1.GraphQLApi, 0, len(b.apis))
	for _, api := range b.apis {
		out = append(out, *api.DeepCopy())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Metadata.Namespace != out[j].Metadata.Namespace {
			return out[i].Metadata.Namespace < out[j].Metadata.Namespace
		}
		return out[i].Metadata.Name < out[j].Metadata.Name
	})
	return out, nil
}

// UpdateGraphqlApi replaces a stored API. A non-empty resource version must match the stored one.
func (b *Backend) UpdateGraphqlApi(_ context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error) {
	ref := api.Ref()
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := apiKey(ref.Namespace, ref.Name)
	current, ok := b.apis[key]
	if !ok {
		return nil, backend.NotFound(ref)
	}
	if v := api.Metadata.ResourceVersion; v != "" && v != current.Metadata.ResourceVersion {
		return nil, fmt.Errorf("%w: %s has version %s, update has %s", backend.ErrConflict, ref, current.Metadata.ResourceVersion, v)
	}

	version, _ := strconv.Atoi(current.Metadata.ResourceVersion)
	stored := api.DeepCopy()
	stored.Metadata.ClusterName = b.clusterName
	stored.Metadata.ResourceVersion = strconv.Itoa(version + 1)
	b.apis[key] = stored

	b.log.Debug().Str("graphqlApi", ref.String()).Str("resourceVersion", stored.Metadata.ResourceVersion).Msg("updated graphql api")
	return stored.DeepCopy(), nil
}

func (b *Backend) ListUpstreams(_ context.Context) ([]v1beta1.Upstream, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]v1beta1.Upstream, 0, len(b.upstreams))
	for _, up := range b.upstreams {
		out = append(out, up)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref().String() < out[j].Ref().String() })
	return out, nil
}

func (b *Backend) ValidateResolverYaml(_ context.Context, yaml string, kind v1beta1.ResolverKind) error {
	return conversion.ValidateResolverYAML(yaml, kind)
}

func (b *Backend) ValidateSchemaDefinition(ctx context.Context, req v1beta1.ValidateSchemaDefinitionRequest) error {
	return backend.ValidateSchemaDefinition(ctx, b, req)
}

func (b *Backend) UpsertResolver(ctx context.Context, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error) {
	return backend.UpsertResolver(ctx, b, req)
}

func (b *Backend) DeleteResolver(ctx context.Context, req v1beta1.DeleteResolverRequest) (*v1beta1.GraphQLApi, error) {
	return backend.DeleteResolver(ctx, b, req)
}

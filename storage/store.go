// Package storage holds small per-user values such as the explorer endpoint of an API.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/solo-io/graphql-console/apis/v1beta1"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Store is a last-write-wins key/value store.
type Store interface {
	// Get returns false when key has no value.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove succeeds when key has no value.
	Remove(ctx context.Context, key string) error
}

// Key addresses a value belonging to one GraphQL API.
type Key struct {
	APIName        string
	APINamespace   string
	APIClusterName string
	SubKey         string
}

// KeyFor scopes subKey to the API referenced by ref.
func KeyFor(ref v1beta1.ClusterObjectRef, subKey string) Key {
	return Key{APIName: ref.Name, APINamespace: ref.Namespace, APIClusterName: ref.ClusterName, SubKey: subKey}
}

// String renders "<apiName>/<apiNamespace>/<apiClusterName>:<subKey>".
func (k Key) String() string {
	return k.prefix() + k.SubKey
}

func (k Key) prefix() string {
	return strings.Join([]string{k.APIName, k.APINamespace, k.APIClusterName}, "/") + ":"
}

// Scoped is a Store bound to one API. Keys passed to it are sub keys.
type Scoped struct {
	store Store
	base  Key
}

var _ Store = (*Scoped)(nil)

func NewScoped(store Store, ref v1beta1.ClusterObjectRef) *Scoped {
	return &Scoped{store: store, base: KeyFor(ref, "")}
}

func (s *Scoped) key(subKey string) (string, error) {
	if subKey == "" {
		return "", errors.Join(ErrInvalidKey, errors.New("empty sub key"))
	}
	k := s.base
	k.SubKey = subKey
	return k.String(), nil
}

func (s *Scoped) Get(ctx context.Context, subKey string) (string, bool, error) {
	key, err := s.key(subKey)
	if err != nil {
		return "", false, err
	}
	return s.store.Get(ctx, key)
}

func (s *Scoped) Set(ctx context.Context, subKey, value string) error {
	key, err := s.key(subKey)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, value)
}

func (s *Scoped) Remove(ctx context.Context, subKey string) error {
	key, err := s.key(subKey)
	if err != nil {
		return err
	}
	return s.store.Remove(ctx, key)
}

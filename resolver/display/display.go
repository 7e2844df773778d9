// Package display renders a stored resolver as the YAML document users edit.
package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"

	"github.com/solo-io/graphql-console/apis/v1beta1"
)

const (
	RestResolverKey = "restResolver"
	GrpcResolverKey = "grpcResolver"
	StatPrefixKey   = "statPrefix"
	UpstreamRefKey  = "upstreamRef"
)

// Wire pair lists and the flat mapping they are shown as.
var renamedMaps = map[string]string{
	"headersMap":         "headers",
	"queryParamsMap":     "qParams",
	"requestMetadataMap": "requestMetadata",
	"settersMap":         "setters",
}

// ResolverKey returns the document key holding the body of the given resolver kind.
func ResolverKey(kind v1beta1.ResolverType) string {
	if kind == v1beta1.ResolverTypeGRPC {
		return GrpcResolverKey
	}
	return RestResolverKey
}

func otherKey(kind v1beta1.ResolverType) string {
	if kind == v1beta1.ResolverTypeGRPC {
		return RestResolverKey
	}
	return GrpcResolverKey
}

// ToDisplayYAML renders res for editing as kind. The result carries no upstream reference,
// no inactive resolver and no empty sections, and renders identically when parsed and
// passed through TrimDocument again.
func ToDisplayYAML(res v1beta1.Resolution, kind v1beta1.ResolverType) (string, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to encode resolver: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to decode resolver: %w", err)
	}

	return Marshal(TrimDocument(doc, kind))
}

// TrimDocument applies the display trimming to an already decoded document.
func TrimDocument(doc map[string]any, kind v1beta1.ResolverType) map[string]any {
	out := maps.Clone(doc)
	if out == nil {
		out = map[string]any{}
	}

	delete(out, otherKey(kind))
	if body, ok := out[ResolverKey(kind)].(map[string]any); ok {
		body = maps.Clone(body)
		delete(body, UpstreamRefKey)
		out[ResolverKey(kind)] = body
	}

	trimmed, _ := trim(out).(map[string]any)
	if trimmed == nil {
		return map[string]any{}
	}
	return trimmed
}

// trim renames wire pair lists and drops nulls, empty strings and empty containers.
func trim(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := map[string]any{}
		for k, child := range t {
			if flat, ok := renamedMaps[k]; ok {
				if m, ok := pairsToMap(child); ok {
					k, child = flat, m
				}
			}
			if c := trim(child); !isEmpty(c) {
				out[k] = c
			}
		}
		return out
	case []any:
		var out []any
		for _, child := range t {
			if c := trim(child); !isEmpty(c) {
				out = append(out, c)
			}
		}
		return out
	default:
		return v
	}
}

func pairsToMap(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(list))
	for _, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		key, ok := pair[0].(string)
		if !ok {
			return nil, false
		}
		out[key] = pair[1]
	}
	return out, true
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Marshal renders doc as two-space indented YAML with sorted keys.
func Marshal(doc map[string]any) (string, error) {
	if len(doc) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to render resolver YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render resolver YAML: %w", err)
	}
	return buf.String(), nil
}

const restPlaceholder = `restResolver:
  request:
    headers:
      ":method": GET
      ":path": /api/v1/{$parent.id}
  response:
    resultRoot: data
  spanName: example-span
`

const grpcPlaceholder = `grpcResolver:
  requestTransform:
    serviceName: example.ExampleService
    methodName: ExampleMethod
    outgoingMessageJson:
      id: "{$parent.id}"
    requestMetadata:
      key: value
  spanName: example-span
`

// Placeholder is the document a new resolver of kind starts from.
func Placeholder(kind v1beta1.ResolverType) string {
	if kind == v1beta1.ResolverTypeGRPC {
		return grpcPlaceholder
	}
	return restPlaceholder
}

// ForResolver seeds the editor: the display YAML of an existing resolver, or the placeholder
// when there is none or nothing is left after trimming.
func ForResolver(res *v1beta1.Resolution, kind v1beta1.ResolverType) (string, error) {
	if res == nil || res.Type() == "" {
		return Placeholder(kind), nil
	}
	out, err := ToDisplayYAML(*res, kind)
	if err != nil {
		return "", err
	}
	if out == "" {
		return Placeholder(kind), nil
	}
	return out, nil
}

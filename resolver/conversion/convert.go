// Package conversion turns edited resolver YAML back into stored resolver configuration.
// It backs the validation and upsert operations of every backend.
package conversion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/resolver/display"
)

const (
	ConvertErrorPrefix = "failed to convert options YAML to JSON: "
	InvalidErrorPrefix = "invalid options YAML: "
)

var (
	ErrConvertYAML = errors.New("failed to convert options YAML to JSON")
	ErrInvalidYAML = errors.New("invalid options YAML")
)

// ConversionError carries one of the two messages the resolver editor knows how to shorten.
type ConversionError struct {
	kind error
	err  error
}

func (e *ConversionError) Error() string {
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *ConversionError) Is(target error) bool {
	return target == e.kind
}

func (e *ConversionError) Unwrap() error {
	return e.err
}

func convertError(err error) error {
	return &ConversionError{kind: ErrConvertYAML, err: err}
}

func invalidError(format string, args ...any) error {
	return &ConversionError{kind: ErrInvalidYAML, err: fmt.Errorf(format, args...)}
}

// Display names of wire pair lists, reversed.
var flatMaps = map[string]string{
	"headers":         "headersMap",
	"qParams":         "queryParamsMap",
	"queryParams":     "queryParamsMap",
	"requestMetadata": "requestMetadataMap",
	"setters":         "settersMap",
}

var rootProperties = map[v1beta1.ResolverType][]string{
	v1beta1.ResolverTypeREST: {"request", "response", "spanName"},
	v1beta1.ResolverTypeGRPC: {"requestTransform", "spanName"},
}

// ParseResolverYAML converts an edited document into a resolution of the given kind. The
// document may wrap the body in restResolver/grpcResolver or hold the body directly. Any
// upstreamRef in the document is ignored.
func ParseResolverYAML(text string, kind v1beta1.ResolverKind) (v1beta1.Resolution, error) {
	resolverType := kind.ResolverType()

	raw, err := yaml.YAMLToJSON([]byte(text))
	if err != nil {
		return v1beta1.Resolution{}, convertError(err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return v1beta1.Resolution{}, convertError(err)
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return v1beta1.Resolution{}, invalidError("configuration must be an object with the properties %s", quoted(rootProperties[resolverType]))
	}

	root = display.TrimDocument(root, resolverType)

	var statPrefix *v1beta1.StringValue
	if sp, ok := root[display.StatPrefixKey]; ok {
		statPrefix, err = parseStatPrefix(sp)
		if err != nil {
			return v1beta1.Resolution{}, err
		}
		delete(root, display.StatPrefixKey)
	}

	body := root
	if wrapped, ok := root[display.ResolverKey(resolverType)]; ok {
		body, ok = wrapped.(map[string]any)
		if !ok {
			return v1beta1.Resolution{}, invalidError("%q must be an object", display.ResolverKey(resolverType))
		}
		delete(root, display.ResolverKey(resolverType))
		if len(root) > 0 {
			return v1beta1.Resolution{}, invalidError("unexpected properties next to %q: %s", display.ResolverKey(resolverType), quoted(keys(root)))
		}
	}
	delete(body, display.UpstreamRefKey)

	if len(body) == 0 {
		return v1beta1.Resolution{}, invalidError("configuration is empty, start with the properties %s", quoted(rootProperties[resolverType]))
	}

	wire, err := toWire(body)
	if err != nil {
		return v1beta1.Resolution{}, err
	}

	res := v1beta1.Resolution{StatPrefix: statPrefix}
	switch resolverType {
	case v1beta1.ResolverTypeGRPC:
		res.GrpcResolver = &v1beta1.GrpcResolver{}
		err = strictDecode(wire, res.GrpcResolver)
	default:
		res.RestResolver = &v1beta1.RestResolver{}
		err = strictDecode(wire, res.RestResolver)
	}
	if err != nil {
		return v1beta1.Resolution{}, invalidError("%s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return res, nil
}

// ValidateResolverYAML reports whether text converts into a resolver of kind.
func ValidateResolverYAML(text string, kind v1beta1.ResolverKind) error {
	_, err := ParseResolverYAML(text, kind)
	return err
}

func parseStatPrefix(v any) (*v1beta1.StringValue, error) {
	switch t := v.(type) {
	case string:
		return &v1beta1.StringValue{Value: t}, nil
	case map[string]any:
		if s, ok := t["value"].(string); ok && len(t) == 1 {
			return &v1beta1.StringValue{Value: s}, nil
		}
	}
	return nil, invalidError("%q must be a string", display.StatPrefixKey)
}

// toWire restores pair lists from flat mappings and encodes the body as JSON.
func toWire(body map[string]any) ([]byte, error) {
	restored, err := restoreMaps(body, "")
	if err != nil {
		return nil, err
	}
	return json.Marshal(restored)
}

func restoreMaps(v any, path string) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}

	out := make(map[string]any, len(m))
	for k, child := range m {
		childPath := join(path, k)
		if wireKey, ok := flatMaps[k]; ok {
			pairs, err := toPairs(child, childPath)
			if err != nil {
				return nil, err
			}
			out[wireKey] = pairs
			continue
		}
		// Free-form JSON payloads keep their shape.
		if k == "body" || k == "outgoingMessageJson" {
			out[k] = child
			continue
		}
		restored, err := restoreMaps(child, childPath)
		if err != nil {
			return nil, err
		}
		out[k] = restored
	}
	return out, nil
}

func toPairs(v any, path string) ([][2]string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalidError("%q must be a mapping of strings", path)
	}

	var nonString []string
	pairs := make([][2]string, 0, len(m))
	for _, k := range keys(m) {
		s, ok := m[k].(string)
		if !ok {
			nonString = append(nonString, k)
			continue
		}
		pairs = append(pairs, [2]string{k, s})
	}
	if len(nonString) > 0 {
		return nil, invalidError("%s at %q should be strings", quoted(nonString), path)
	}
	return pairs, nil
}

func strictDecode(data []byte, into any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func quoted(items []string) string {
	return `"` + strings.Join(items, `", "`) + `"`
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

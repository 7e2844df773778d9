// Package manifest converts between the control plane's resource manifests and the console's
// resource types. Manifests hold maps where the console holds ordered [key, value] lists.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/solo-io/graphql-console/apis/v1beta1"
)

var (
	GraphQLApiGVR = schema.GroupVersionResource{Group: v1beta1.GraphQLGroup, Version: v1beta1.GraphQLVersion, Resource: v1beta1.GraphQLResource}
	GraphQLApiGVK = schema.GroupVersionKind{Group: v1beta1.GraphQLGroup, Version: v1beta1.GraphQLVersion, Kind: v1beta1.GraphQLKind}
	UpstreamGVR   = schema.GroupVersionResource{Group: v1beta1.GlooGroup, Version: v1beta1.GlooVersion, Resource: v1beta1.UpstreamResource}
	UpstreamGVK   = schema.GroupVersionKind{Group: v1beta1.GlooGroup, Version: v1beta1.GlooVersion, Kind: v1beta1.UpstreamKind}
)

var (
	ErrDecodeManifest = errors.New("failed to decode manifest")
	ErrConvertObject  = errors.New("failed to convert object")
)

// Manifest map fields and the pair-list fields they become.
var listFields = map[string]string{
	"resolutions":     "resolutionsMap",
	"headers":         "headersMap",
	"queryParams":     "queryParamsMap",
	"setters":         "settersMap",
	"requestMetadata": "requestMetadataMap",
	"typeMerge":       "typeMergeMap",
	"args":            "argsMap",
}

// Manifest repeated fields and their console names.
var renamedFields = map[string]string{
	"subschemas":         "subschemasList",
	"allowedQueryHashes": "allowedQueryHashesList",
}

// Fields whose contents are user payloads and never renamed.
var opaqueFields = map[string]bool{
	"body":                true,
	"outgoingMessageJson": true,
}

// Objects is the result of decoding a manifest stream.
type Objects struct {
	GraphQLApis []v1beta1.GraphQLApi
	Upstreams   []v1beta1.Upstream
}

// Decode reads every YAML or JSON document in r. Documents of other kinds are skipped.
func Decode(r io.Reader) (Objects, error) {
	var out Objects
	dec := utilyaml.NewYAMLOrJSONDecoder(r, 4096)
	for {
		obj := &unstructured.Unstructured{}
		if err := dec.Decode(&obj.Object); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, errors.Join(ErrDecodeManifest, err)
		}
		if len(obj.Object) == 0 {
			continue
		}

		switch obj.GroupVersionKind() {
		case GraphQLApiGVK:
			api, err := GraphQLApiFromUnstructured(obj)
			if err != nil {
				return out, err
			}
			out.GraphQLApis = append(out.GraphQLApis, *api)
		case UpstreamGVK:
			out.Upstreams = append(out.Upstreams, UpstreamFromUnstructured(obj))
		}
	}
}

// GraphQLApiFromUnstructured converts a graphqlapis.graphql.gloo.solo.io object.
func GraphQLApiFromUnstructured(obj *unstructured.Unstructured) (*v1beta1.GraphQLApi, error) {
	spec, _, err := unstructured.NestedMap(obj.Object, "spec")
	if err != nil {
		return nil, fmt.Errorf("%w %s/%s: %w", ErrConvertObject, obj.GetNamespace(), obj.GetName(), err)
	}

	api := &v1beta1.GraphQLApi{Metadata: metaFrom(obj)}
	raw, err := json.Marshal(toConsole(spec))
	if err != nil {
		return nil, fmt.Errorf("%w %s/%s: %w", ErrConvertObject, obj.GetNamespace(), obj.GetName(), err)
	}
	if err := json.Unmarshal(raw, &api.Spec); err != nil {
		return nil, fmt.Errorf("%w %s/%s: %w", ErrConvertObject, obj.GetNamespace(), obj.GetName(), err)
	}

	if status, ok, _ := unstructured.NestedMap(obj.Object, "status"); ok {
		api.Status = &v1beta1.GraphQLApiStatus{}
		api.Status.State, _, _ = unstructured.NestedString(status, "state")
		api.Status.Reason, _, _ = unstructured.NestedString(status, "reason")
	}
	return api, nil
}

// GraphQLApiToUnstructured renders api as a manifest object.
func GraphQLApiToUnstructured(api *v1beta1.GraphQLApi) (*unstructured.Unstructured, error) {
	raw, err := json.Marshal(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConvertObject, api.Ref(), err)
	}
	var spec map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConvertObject, api.Ref(), err)
	}

	obj := &unstructured.Unstructured{Object: map[string]any{}}
	obj.SetGroupVersionKind(GraphQLApiGVK)
	obj.SetName(api.Metadata.Name)
	obj.SetNamespace(api.Metadata.Namespace)
	obj.SetResourceVersion(api.Metadata.ResourceVersion)
	obj.SetLabels(api.Metadata.Labels)
	obj.Object["spec"] = fromConsole(spec)
	return obj, nil
}

func UpstreamFromUnstructured(obj *unstructured.Unstructured) v1beta1.Upstream {
	up := v1beta1.Upstream{Metadata: metaFrom(obj)}
	spec, _, _ := unstructured.NestedMap(obj.Object, "spec")
	for _, k := range sortedKeys(spec) {
		switch k {
		case "kube", "static", "aws", "azure", "consul", "pipe", "gcp", "awsEc2":
			up.Type = k
		}
	}
	return up
}

func metaFrom(obj *unstructured.Unstructured) v1beta1.ObjectMeta {
	return v1beta1.ObjectMeta{
		Name:            obj.GetName(),
		Namespace:       obj.GetNamespace(),
		ResourceVersion: obj.GetResourceVersion(),
		Labels:          obj.GetLabels(),
	}
}

// toConsole renames manifest fields to console fields, turning maps into sorted pair lists.
func toConsole(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		if list, ok := v.([]any); ok {
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = toConsole(item)
			}
			return out
		}
		return v
	}

	out := make(map[string]any, len(m))
	for k, child := range m {
		switch {
		case opaqueFields[k]:
			out[k] = child
		case k == "statPrefix":
			if s, ok := child.(string); ok {
				out[k] = map[string]any{"value": s}
			} else {
				out[k] = child
			}
		case listFields[k] != "":
			if entries, ok := child.(map[string]any); ok {
				pairs := make([]any, 0, len(entries))
				for _, name := range sortedKeys(entries) {
					pairs = append(pairs, []any{name, toConsole(entries[name])})
				}
				out[listFields[k]] = pairs
				continue
			}
			out[listFields[k]] = toConsole(child)
		case renamedFields[k] != "":
			out[renamedFields[k]] = toConsole(child)
		default:
			out[k] = toConsole(child)
		}
	}
	return out
}

// fromConsole reverses toConsole.
func fromConsole(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		if list, ok := v.([]any); ok {
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = fromConsole(item)
			}
			return out
		}
		return v
	}

	out := make(map[string]any, len(m))
	for k, child := range m {
		switch {
		case opaqueFields[k]:
			out[k] = child
		case k == "statPrefix":
			if sv, ok := child.(map[string]any); ok {
				out[k] = sv["value"]
			} else {
				out[k] = child
			}
		case manifestListField(k) != "":
			entries := map[string]any{}
			pairs, _ := child.([]any)
			for _, p := range pairs {
				pair, ok := p.([]any)
				if !ok || len(pair) != 2 {
					continue
				}
				if name, ok := pair[0].(string); ok {
					entries[name] = fromConsole(pair[1])
				}
			}
			out[manifestListField(k)] = entries
		case manifestRenamedField(k) != "":
			out[manifestRenamedField(k)] = fromConsole(child)
		default:
			out[k] = fromConsole(child)
		}
	}
	return out
}

func manifestListField(consoleName string) string {
	for manifestName, c := range listFields {
		if c == consoleName {
			return manifestName
		}
	}
	return ""
}

func manifestRenamedField(consoleName string) string {
	for manifestName, c := range renamedFields {
		if c == consoleName {
			return manifestName
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package v1beta1

import (
	"errors"
	"fmt"
	"strings"
)

// ResolverType is the resolver flavour a user picks in the resolver wizard.
type ResolverType string

const (
	ResolverTypeREST ResolverType = "REST"
	ResolverTypeGRPC ResolverType = "gRPC"
)

// ResolverKind is the enum the validation endpoint expects.
type ResolverKind string

const (
	ResolverKindREST ResolverKind = "REST_RESOLVER"
	ResolverKindGRPC ResolverKind = "GRPC_RESOLVER"
)

var ErrUnknownResolverType = errors.New("unknown resolver type")

// ParseResolverType accepts both the wizard spelling ("REST", "gRPC") and the enum
// spelling ("REST_RESOLVER", "GRPC_RESOLVER"), case-insensitively.
func ParseResolverType(s string) (ResolverType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REST", string(ResolverKindREST):
		return ResolverTypeREST, nil
	case "GRPC", string(ResolverKindGRPC):
		return ResolverTypeGRPC, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResolverType, s)
}

// Kind maps the wizard type onto the validation enum.
func (t ResolverType) Kind() ResolverKind {
	if t == ResolverTypeGRPC {
		return ResolverKindGRPC
	}
	return ResolverKindREST
}

// ResolverType maps the validation enum back onto the wizard type.
func (k ResolverKind) ResolverType() ResolverType {
	if k == ResolverKindGRPC {
		return ResolverTypeGRPC
	}
	return ResolverTypeREST
}

// ResourceRef points at a namespaced resource such as an upstream.
type ResourceRef struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

func (r ResourceRef) String() string {
	return r.Name + "::" + r.Namespace
}

// StringValue mirrors a wrapped protobuf string.
type StringValue struct {
	Value string `json:"value"`
}

type RequestTemplate struct {
	HeadersMap     KeyValueList `json:"headersMap,omitempty"`
	QueryParamsMap KeyValueList `json:"queryParamsMap,omitempty"`
	Body           any          `json:"body,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (r *RequestTemplate) IsEmpty() bool {
	return r == nil || (len(r.HeadersMap) == 0 && len(r.QueryParamsMap) == 0 && r.Body == nil)
}

type ResponseTemplate struct {
	ResultRoot string       `json:"resultRoot,omitempty"`
	SettersMap KeyValueList `json:"settersMap,omitempty"`
}

func (r *ResponseTemplate) IsEmpty() bool {
	return r == nil || (r.ResultRoot == "" && len(r.SettersMap) == 0)
}

// RestResolver resolves a field with an HTTP call. Path templates interpolate parent
// values with {$parent.<field>}.
type RestResolver struct {
	UpstreamRef *ResourceRef      `json:"upstreamRef,omitempty"`
	Request     *RequestTemplate  `json:"request,omitempty"`
	Response    *ResponseTemplate `json:"response,omitempty"`
	SpanName    string            `json:"spanName,omitempty"`
}

type GrpcRequestTemplate struct {
	OutgoingMessageJSON any          `json:"outgoingMessageJson,omitempty"`
	ServiceName         string       `json:"serviceName,omitempty"`
	MethodName          string       `json:"methodName,omitempty"`
	RequestMetadataMap  KeyValueList `json:"requestMetadataMap,omitempty"`
}

func (r *GrpcRequestTemplate) IsEmpty() bool {
	return r == nil || (r.OutgoingMessageJSON == nil && r.ServiceName == "" && r.MethodName == "" && len(r.RequestMetadataMap) == 0)
}

type GrpcResolver struct {
	UpstreamRef      *ResourceRef         `json:"upstreamRef,omitempty"`
	RequestTransform *GrpcRequestTemplate `json:"requestTransform,omitempty"`
	SpanName         string               `json:"spanName,omitempty"`
}

// Resolution binds one schema field to a backend call. Exactly one resolver is set.
type Resolution struct {
	RestResolver *RestResolver `json:"restResolver,omitempty"`
	GrpcResolver *GrpcResolver `json:"grpcResolver,omitempty"`
	StatPrefix   *StringValue  `json:"statPrefix,omitempty"`
}

// Type returns the active resolver flavour, or "" when neither is set.
func (r *Resolution) Type() ResolverType {
	switch {
	case r == nil:
		return ""
	case r.GrpcResolver != nil:
		return ResolverTypeGRPC
	case r.RestResolver != nil:
		return ResolverTypeREST
	}
	return ""
}

// UpstreamRef returns the upstream of whichever resolver is active.
func (r *Resolution) UpstreamRef() *ResourceRef {
	switch r.Type() {
	case ResolverTypeGRPC:
		return r.GrpcResolver.UpstreamRef
	case ResolverTypeREST:
		return r.RestResolver.UpstreamRef
	}
	return nil
}

// SetUpstreamRef sets the upstream on the active resolver.
func (r *Resolution) SetUpstreamRef(ref ResourceRef) {
	switch r.Type() {
	case ResolverTypeGRPC:
		r.GrpcResolver.UpstreamRef = &ref
	case ResolverTypeREST:
		r.RestResolver.UpstreamRef = &ref
	}
}

// ResolutionEntry is one element of a local executor's resolutionsMap.
type ResolutionEntry = Entry[Resolution]

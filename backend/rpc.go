package backend

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/platform-mesh/golang-commons/logger"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/resolver/conversion"
	"github.com/solo-io/graphql-console/schema/model"
)

// RPCPath prefixes the JSON endpoints through which one console serves Client to another.
// The method name follows the prefix, e.g. /api/rpc/GetGraphqlApi.
const RPCPath = "/api/rpc/"

const (
	MethodGetGraphqlApi            = "GetGraphqlApi"
	MethodListGraphqlApis          = "ListGraphqlApis"
	MethodUpdateGraphqlApi         = "UpdateGraphqlApi"
	MethodListUpstreams            = "ListUpstreams"
	MethodValidateResolverYaml     = "ValidateResolverYaml"
	MethodValidateSchemaDefinition = "ValidateSchemaDefinition"
	MethodUpsertResolver           = "UpsertResolver"
	MethodDeleteResolver           = "DeleteResolver"
)

const (
	CodeNotFound        = "NotFound"
	CodeConflict        = "Conflict"
	CodeInvalidArgument = "InvalidArgument"
	CodeUnavailable     = "Unavailable"
	CodeInternal        = "Internal"
)

var invalidArgument = []error{
	v1beta1.ErrInvalidRef,
	v1beta1.ErrNotExecutable,
	v1beta1.ErrNotStitched,
	v1beta1.ErrInvalidUpstreamValue,
	v1beta1.ErrUnknownResolverType,
	conversion.ErrConvertYAML,
	conversion.ErrInvalidYAML,
	conversion.ErrFieldNotFound,
	conversion.ErrMissingResolverName,
	conversion.ErrUndefinedResolver,
	conversion.ErrMissingUpstreamRef,
	model.ErrParseSchema,
}

// RPCError is the error body of a failed RPC.
type RPCError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

func (e *RPCError) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrNotFound
	case CodeConflict:
		return target == ErrConflict
	case CodeUnavailable:
		return target == ErrUnavailable
	}
	return false
}

// ErrorCode classifies err for the wire.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	}
	for _, target := range invalidArgument {
		if errors.Is(err, target) {
			return CodeInvalidArgument
		}
	}
	return CodeInternal
}

func HTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ListResponse wraps list results so the body is always an object.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

type GetGraphqlApiRequest struct {
	Ref v1beta1.ClusterObjectRef `json:"graphqlApiRef"`
}

type rpcHandler struct {
	client Client
	log    *logger.Logger
}

// RPCHandler serves client under the methods above. Mount it at RPCPath.
func RPCHandler(client Client, log *logger.Logger) http.Handler {
	h := &rpcHandler{client: client, log: log}
	r := chi.NewRouter()
	r.Post("/{method}", h.serve)
	return r
}

func (h *rpcHandler) serve(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	ctx := r.Context()
	decode := func(v any) error {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return &RPCError{Code: CodeInvalidArgument, Message: "malformed request body: " + err.Error()}
		}
		return nil
	}

	var (
		out any
		err error
	)
	switch method {
	case MethodGetGraphqlApi:
		var in GetGraphqlApiRequest
		if err = decode(&in); err == nil {
			out, err = h.client.GetGraphqlApi(ctx, in.Ref)
		}
	case MethodListGraphqlApis:
		var items []v1beta1.GraphQLApi
		items, err = h.client.ListGraphqlApis(ctx)
		out = ListResponse[v1beta1.GraphQLApi]{Items: items}
	case MethodUpdateGraphqlApi:
		var in v1beta1.GraphQLApi
		if err = decode(&in); err == nil {
			out, err = h.client.UpdateGraphqlApi(ctx, &in)
		}
	case MethodListUpstreams:
		var items []v1beta1.Upstream
		items, err = h.client.ListUpstreams(ctx)
		out = ListResponse[v1beta1.Upstream]{Items: items}
	case MethodValidateResolverYaml:
		var in v1beta1.ValidateResolverYamlRequest
		if err = decode(&in); err == nil {
			resp := v1beta1.ValidateResolverYamlResponse{Valid: true}
			if verr := h.client.ValidateResolverYaml(ctx, in.Yaml, in.ResolverType); verr != nil {
				resp = v1beta1.ValidateResolverYamlResponse{Message: verr.Error()}
			}
			out = resp
		}
	case MethodValidateSchemaDefinition:
		var in v1beta1.ValidateSchemaDefinitionRequest
		if err = decode(&in); err == nil {
			err = h.client.ValidateSchemaDefinition(ctx, in)
			out = struct{}{}
		}
	case MethodUpsertResolver:
		var in v1beta1.UpsertResolverRequest
		if err = decode(&in); err == nil {
			out, err = h.client.UpsertResolver(ctx, in)
		}
	case MethodDeleteResolver:
		var in v1beta1.DeleteResolverRequest
		if err = decode(&in); err == nil {
			out, err = h.client.DeleteResolver(ctx, in)
		}
	default:
		WriteError(w, &RPCError{Code: CodeNotFound, Message: "unknown method " + method})
		return
	}

	if err != nil {
		h.log.Debug().Err(err).Str("method", method).Msg("rpc failed")
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an RPCError with the matching status.
func WriteError(w http.ResponseWriter, err error) {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		rpcErr = &RPCError{Code: ErrorCode(err), Message: err.Error()}
	}
	WriteJSON(w, HTTPStatus(rpcErr.Code), rpcErr)
}

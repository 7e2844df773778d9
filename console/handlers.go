package console

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/resolver/display"
	"github.com/solo-io/graphql-console/resolver/wizard"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/explorer"
	"github.com/solo-io/graphql-console/schema/model"
)

var errFieldValidation = errors.New("resolver is incomplete")

type SchemaResponse struct {
	Types     []string           `json:"types"`
	Enums     []model.EnumGroup  `json:"enums"`
	Rows      []binding.FieldRow `json:"rows"`
	MatchMode binding.MatchMode  `json:"matchMode"`
}

type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type ResolverYAMLResponse struct {
	ResolverName string               `json:"resolverName"`
	ResolverType v1beta1.ResolverType `json:"resolverType"`
	Exists       bool                 `json:"exists"`
	Yaml         string               `json:"yaml"`
}

// UpsertResolverBody is what the resolver editor submits. Upstream is "name::namespace".
type UpsertResolverBody struct {
	TypeName     string               `json:"typeName"`
	FieldName    string               `json:"fieldName"`
	ResolverType v1beta1.ResolverType `json:"resolverType"`
	Upstream     string               `json:"upstream"`
	Yaml         string               `json:"yaml"`
}

type EndpointResponse struct {
	URL     string                `json:"url"`
	Pending string                `json:"pending,omitempty"`
	Probe   *explorer.ProbeResult `json:"probe,omitempty"`
}

type EndpointBody struct {
	URL string `json:"url"`
}

type Annotation struct {
	TypeName     string `json:"typeName"`
	FieldName    string `json:"fieldName"`
	ResolverName string `json:"resolverName"`
}

func (s *Server) listGraphqlApis(w http.ResponseWriter, r *http.Request) {
	items, err := s.client.ListGraphqlApis(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, backend.ListResponse[v1beta1.GraphQLApi]{Items: items})
}

func (s *Server) listUpstreams(w http.ResponseWriter, r *http.Request) {
	items, err := s.client.ListUpstreams(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, backend.ListResponse[v1beta1.Upstream]{Items: items})
}

func (s *Server) getGraphqlApi(w http.ResponseWriter, r *http.Request) {
	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}
	backend.WriteJSON(w, http.StatusOK, api)
}

// getSchema lists every object-type field with the resolver bound to it. ?match overrides the
// configured match mode.
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	mode := s.cfg.MatchMode
	if raw := r.URL.Query().Get("match"); raw != "" {
		parsed, err := binding.ParseMatchMode(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		mode = parsed
	}

	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}
	m, err := s.models.Get(api.SchemaDefinition())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	backend.WriteJSON(w, http.StatusOK, SchemaResponse{
		Types:     m.TypeNames(),
		Enums:     m.Enums,
		Rows:      binding.Annotate(m, api.Resolutions(), mode),
		MatchMode: mode,
	})
}

// validateSchema checks the posted schema. Without a schema or a resolver the stored schema of
// the API is checked. Rejections are answered with valid=false.
func (s *Server) validateSchema(w http.ResponseWriter, r *http.Request) {
	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}
	var req v1beta1.ValidateSchemaDefinitionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	switch {
	case req.Resolver != nil:
		req.Resolver.APIRef = api.Ref()
	case req.SchemaDefinition == "":
		req.SchemaDefinition = api.SchemaDefinition()
		req.Resolutions = api.Resolutions()
	}

	err := s.client.ValidateSchemaDefinition(r.Context(), req)
	if err != nil && errorCode(err) != backend.CodeInvalidArgument {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, validation(err))
}

func (s *Server) validateResolver(w http.ResponseWriter, r *http.Request) {
	var req v1beta1.ValidateResolverYamlRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ResolverType == "" {
		req.ResolverType = v1beta1.ResolverKindREST
	}
	err := s.client.ValidateResolverYaml(r.Context(), req.Yaml, req.ResolverType)
	if err != nil && errorCode(err) != backend.CodeInvalidArgument {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, validation(err))
}

func validation(err error) ValidationResponse {
	if err != nil {
		return ValidationResponse{Message: err.Error()}
	}
	return ValidationResponse{Valid: true}
}

func resolverName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "resolver"))
	if err != nil {
		return "", errors.Join(ErrMalformedBody, err)
	}
	return name, nil
}

// resolverYAML renders a resolver for the editor as ?type, falling back to the stored resolver
// type and then to REST. Unknown resolvers get the placeholder document.
func (s *Server) resolverYAML(w http.ResponseWriter, r *http.Request) {
	name, err := resolverName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}

	var current *v1beta1.Resolution
	if res, found := api.Resolution(name); found {
		current = &res
	}

	kind := v1beta1.ResolverTypeREST
	if raw := r.URL.Query().Get("type"); raw != "" {
		kind, err = v1beta1.ParseResolverType(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	} else if current != nil && current.Type() != "" {
		kind = current.Type()
	}

	text, err := display.ForResolver(current, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, ResolverYAMLResponse{
		ResolverName: name,
		ResolverType: kind,
		Exists:       current != nil,
		Yaml:         text,
	})
}

// upsertResolver runs the submitted values through the resolver wizard, so the configuration
// is validated and the resulting schema is checked before anything is stored.
func (s *Server) upsertResolver(w http.ResponseWriter, r *http.Request) {
	name, err := resolverName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}
	var body UpsertResolverBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	target := wizard.Target{
		APIRef:       api.Ref(),
		TypeName:     body.TypeName,
		FieldName:    body.FieldName,
		ResolverName: name,
	}
	if res, found := api.Resolution(name); found {
		target.Current = &res
	}

	wz := wizard.New(s.client, target, wizard.WithSeedDelay(0), wizard.WithLogger(s.log))
	defer wz.Cancel()

	if err := errors.Join(
		wz.SetResolverType(body.ResolverType),
		wz.SetUpstream(body.Upstream),
		wz.SetResolverConfig(body.Yaml),
	); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := wz.FieldErrors(); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errFieldValidation, err))
		return
	}
	if valid, msg := wz.Validate(r.Context()); !valid {
		s.writeError(w, r, &backend.RPCError{Code: backend.CodeInvalidArgument, Message: msg})
		return
	}

	updated, err := wz.Submit(r.Context())
	if err != nil {
		if msg := wz.Message(); msg != "" {
			var rpcErr *backend.RPCError
			if !errors.As(err, &rpcErr) {
				err = &backend.RPCError{Code: errorCode(err), Message: msg}
			}
		}
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteResolver(w http.ResponseWriter, r *http.Request) {
	name, err := resolverName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	updated, err := s.client.DeleteResolver(r.Context(), v1beta1.DeleteResolverRequest{
		APIRef:       ref,
		TypeName:     q.Get("typeName"),
		FieldName:    q.Get("fieldName"),
		ResolverName: name,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info().Str("graphqlApi", ref.String()).Str("resolver", name).Msg("resolver deleted")
	backend.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) listSubGraphs(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.subgraphs.List(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, backend.ListResponse[v1beta1.SubGraph]{Items: items})
}

func (s *Server) addSubGraph(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var sg v1beta1.SubGraph
	if err := decode(r, &sg); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.subgraphs.Add(r.Context(), ref, sg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusCreated, updated)
}

func (s *Server) removeSubGraph(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.subgraphs.Remove(r.Context(), ref,
		chi.URLParam(r, "subgraphName"), chi.URLParam(r, "subgraphNamespace"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) getEndpoint(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sel := s.selector(ref)
	current, err := sel.Current(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := EndpointResponse{URL: current}
	if pending, ok := sel.Pending(); ok {
		resp.Pending = pending
	}
	if probe, ok := sel.LastProbe(); ok && probe.URL == current {
		resp.Probe = &probe
	}
	backend.WriteJSON(w, http.StatusOK, resp)
}

// putEndpoint proposes a new live endpoint. The proposal is committed after the debounce
// period, or at once with ?flush=true.
func (s *Server) putEndpoint(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body EndpointBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	sel := s.selector(ref)
	if err := sel.Propose(body.URL); err != nil {
		s.writeError(w, r, err)
		return
	}

	flush, _ := strconv.ParseBool(r.URL.Query().Get("flush"))
	if !flush {
		pending, _ := sel.Pending()
		backend.WriteJSON(w, http.StatusAccepted, EndpointResponse{URL: body.URL, Pending: pending})
		return
	}
	probe, err := sel.Flush(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, EndpointResponse{URL: probe.URL, Probe: &probe})
}

func (s *Server) probe(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := s.selector(ref).Current(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	backend.WriteJSON(w, http.StatusOK, s.explorer.Probe(r.Context(), current))
}

// proxy forwards a GraphQL request to the live endpoint and relays its answer unchanged.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req explorer.Request
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := s.selector(ref).Current(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.explorer.Forward(r.Context(), current, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func (s *Server) annotations(w http.ResponseWriter, r *http.Request) {
	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}
	m, err := s.mocks.Get(api.SchemaDefinition())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]Annotation, 0, len(m.Annotations))
	for id, name := range m.Annotations {
		items = append(items, Annotation{TypeName: id.Type, FieldName: id.Field, ResolverName: name})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].TypeName != items[j].TypeName {
			return items[i].TypeName < items[j].TypeName
		}
		return items[i].FieldName < items[j].FieldName
	})
	backend.WriteJSON(w, http.StatusOK, backend.ListResponse[Annotation]{Items: items})
}

// mock serves the schema of the API with mocked values.
func (s *Server) mock(w http.ResponseWriter, r *http.Request) {
	api, ok := s.withAPI(w, r)
	if !ok {
		return
	}
	m, err := s.mocks.Get(api.SchemaDefinition())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	explorer.NewHandler(m, s.cfg.GraphQL).ServeHTTP(w, r)
}

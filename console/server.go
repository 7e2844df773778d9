// Package console serves the HTTP API behind the GraphQL pages of the gateway console.
package console

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/resolver/wizard"
	"github.com/solo-io/graphql-console/schema/binding"
	"github.com/solo-io/graphql-console/schema/explorer"
	"github.com/solo-io/graphql-console/schema/model"
	"github.com/solo-io/graphql-console/storage"
	"github.com/solo-io/graphql-console/subgraph"
)

var ErrMalformedBody = errors.New("malformed request body")

type Config struct {
	MatchMode        binding.MatchMode
	DefaultEndpoint  string
	EndpointDebounce time.Duration
	GraphQL          explorer.HandlerConfig
	ModelCacheSize   int
}

type Server struct {
	log       *logger.Logger
	cfg       Config
	client    backend.Client
	store     storage.Store
	models    *model.Cache
	mocks     *explorer.MockCache
	subgraphs *subgraph.Manager
	explorer  *explorer.Client

	mu        sync.Mutex
	selectors map[string]*explorer.EndpointSelector
}

type Option func(*Server)

// WithExplorerClient replaces the client used to reach live GraphQL endpoints.
func WithExplorerClient(c *explorer.Client) Option {
	return func(s *Server) { s.explorer = c }
}

func New(log *logger.Logger, client backend.Client, store storage.Store, cfg Config, opts ...Option) *Server {
	if cfg.MatchMode == "" {
		cfg.MatchMode = binding.MatchExact
	}
	if cfg.DefaultEndpoint == "" {
		cfg.DefaultEndpoint = explorer.DefaultEndpoint
	}
	s := &Server{
		log:       log.ComponentLogger("console"),
		cfg:       cfg,
		client:    client,
		store:     store,
		models:    model.NewCache(cfg.ModelCacheSize),
		mocks:     explorer.NewMockCache(cfg.ModelCacheSize),
		subgraphs: subgraph.NewManager(client, log),
		selectors: map[string]*explorer.EndpointSelector{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.explorer == nil {
		s.explorer = explorer.NewClient(s.log)
	}
	return s
}

// Handler routes the console API, the backend RPC endpoints and the health and metrics
// endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.logRequests)

	r.Get("/healthz", ok)
	r.Get("/readyz", ok)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Mount("/rpc", backend.RPCHandler(s.client, s.log))
		r.Get("/graphqlapis", s.listGraphqlApis)
		r.Get("/upstreams", s.listUpstreams)

		r.Route("/graphqlapis/{namespace}/{name}", func(r chi.Router) {
			r.Get("/", s.getGraphqlApi)
			r.Get("/schema", s.getSchema)
			r.Post("/schema/validate", s.validateSchema)

			r.Post("/resolvers/validate", s.validateResolver)
			r.Get("/resolvers/{resolver}/yaml", s.resolverYAML)
			r.Put("/resolvers/{resolver}", s.upsertResolver)
			r.Delete("/resolvers/{resolver}", s.deleteResolver)

			r.Get("/subgraphs", s.listSubGraphs)
			r.Post("/subgraphs", s.addSubGraph)
			r.Delete("/subgraphs/{subgraphNamespace}/{subgraphName}", s.removeSubGraph)

			r.Get("/explorer/endpoint", s.getEndpoint)
			r.Put("/explorer/endpoint", s.putEndpoint)
			r.Get("/explorer/probe", s.probe)
			r.Post("/explorer/proxy", s.proxy)
			r.Get("/explorer/annotations", s.annotations)
			r.Handle("/explorer/mock", http.HandlerFunc(s.mock))
		})
	})
	return r
}

// Close drops pending endpoint proposals.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, sel := range s.selectors {
		sel.Close()
		delete(s.selectors, key)
	}
	return nil
}

func (s *Server) selector(ref v1beta1.ClusterObjectRef) *explorer.EndpointSelector {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ref.String()
	if sel, ok := s.selectors[key]; ok {
		return sel
	}
	sel := explorer.NewEndpointSelector(storage.NewScoped(s.store, ref), s.explorer,
		explorer.WithDefaultEndpoint(s.cfg.DefaultEndpoint),
		explorer.WithDebounce(s.cfg.EndpointDebounce),
		explorer.WithSelectorLogger(s.log),
	)
	s.selectors[key] = sel
	return sel
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("requestId", middleware.GetReqID(r.Context())).
			Msg("request served")
	})
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func apiRef(r *http.Request) (v1beta1.ClusterObjectRef, error) {
	ref := v1beta1.ClusterObjectRef{
		Name:        chi.URLParam(r, "name"),
		Namespace:   chi.URLParam(r, "namespace"),
		ClusterName: r.URL.Query().Get("cluster"),
	}
	return ref, ref.Validate()
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(ErrMalformedBody, err)
	}
	return nil
}

var invalidArgument = []error{
	ErrMalformedBody,
	binding.ErrUnknownMatchMode,
	explorer.ErrInvalidEndpoint,
	explorer.ErrBuildSchema,
	subgraph.ErrSelfReference,
	wizard.ErrNotValidated,
	wizard.ErrNothingChanged,
	errFieldValidation,
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, explorer.ErrEndpointUnreachable):
		return backend.CodeUnavailable
	case errors.Is(err, subgraph.ErrSubGraphNotFound):
		return backend.CodeNotFound
	case errors.Is(err, subgraph.ErrDuplicateSubGraph):
		return backend.CodeConflict
	}
	for _, target := range invalidArgument {
		if errors.Is(err, target) {
			return backend.CodeInvalidArgument
		}
	}
	return backend.ErrorCode(err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rpcErr *backend.RPCError
	if !errors.As(err, &rpcErr) {
		rpcErr = &backend.RPCError{Code: errorCode(err), Message: err.Error()}
	}
	status := backend.HTTPStatus(rpcErr.Code)
	event := s.log.Debug()
	if status >= http.StatusInternalServerError {
		event = s.log.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	backend.WriteJSON(w, status, rpcErr)
}

func (s *Server) withAPI(w http.ResponseWriter, r *http.Request) (*v1beta1.GraphQLApi, bool) {
	ref, err := apiRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	api, err := s.client.GetGraphqlApi(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return api, true
}

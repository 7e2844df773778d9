package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/platform-mesh/golang-commons/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/solo-io/graphql-console/common/metrics"
	"github.com/solo-io/graphql-console/storage"
)

const (
	DefaultEndpoint = "http://localhost:8080/graphql"
	DefaultDebounce = time.Second

	// EndpointKey is the sub key holding the chosen endpoint of an API.
	EndpointKey = "url"
)

// ProbeHints tell the operator how to reach the gateway when the probe fails.
var ProbeHints = []string{
	"kubectl port-forward -n gloo-system deploy/gateway-proxy 8080",
	"glooctl proxy url",
}

var (
	ErrInvalidEndpoint     = errors.New("invalid GraphQL endpoint")
	ErrEndpointUnreachable = errors.New("GraphQL endpoint unreachable")
)

// ValidateEndpoint accepts absolute http and https URLs.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Join(ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", ErrInvalidEndpoint, raw)
	}
	return nil
}

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response is what the live endpoint answered, passed through untouched.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type ProbeResult struct {
	URL     string   `json:"url"`
	OK      bool     `json:"ok"`
	Status  int      `json:"status,omitempty"`
	Message string   `json:"message,omitempty"`
	Hints   []string `json:"hints,omitempty"`
}

type Prober interface {
	Probe(ctx context.Context, endpoint string) ProbeResult
}

// Client talks to live GraphQL endpoints.
type Client struct {
	log  *logger.Logger
	http *http.Client
}

var _ Prober = (*Client)(nil)

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{log: log, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) post(ctx context.Context, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, errors.Join(ErrInvalidEndpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrEndpointUnreachable, err)
	}
	return resp, nil
}

// Probe checks that endpoint accepts a POST. Failures are reported in the result, never as an error.
func (c *Client) Probe(ctx context.Context, endpoint string) ProbeResult {
	ctx, span := otel.Tracer("").Start(ctx, "Explorer.Probe", trace.WithAttributes(attribute.String("url", endpoint)))
	defer span.End()

	result := ProbeResult{URL: endpoint}
	resp, err := c.post(ctx, endpoint, nil)
	if err == nil {
		resp.Body.Close() //nolint:errcheck
		result.Status = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err = errors.New(http.StatusText(resp.StatusCode))
		}
	}

	metrics.EndpointProbes.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.log.Debug().Err(err).Str("url", endpoint).Msg("endpoint probe failed")
		result.Message = err.Error()
		result.Hints = ProbeHints
		return result
	}
	result.OK = true
	return result
}

// Forward posts req to endpoint. Only transport failures are errors; any HTTP answer is returned.
func (c *Client) Forward(ctx context.Context, endpoint string, req Request) (*Response, error) {
	ctx, span := otel.Tracer("").Start(ctx, "Explorer.Forward", trace.WithAttributes(
		attribute.String("url", endpoint),
		attribute.String("operationName", req.OperationName),
	))
	defer span.End()

	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	resp, err := c.post(ctx, endpoint, bytes.NewReader(body))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrEndpointUnreachable, err)
	}
	return &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: data}, nil
}

type SelectorOption func(*EndpointSelector)

func WithDebounce(d time.Duration) SelectorOption {
	return func(s *EndpointSelector) { s.debounce = d }
}

func WithDefaultEndpoint(endpoint string) SelectorOption {
	return func(s *EndpointSelector) { s.defaultURL = endpoint }
}

func WithSelectorLogger(log *logger.Logger) SelectorOption {
	return func(s *EndpointSelector) { s.log = log }
}

// EndpointSelector holds the live endpoint chosen for one API. Proposed URLs are committed
// and probed once no newer proposal arrived for the debounce period.
type EndpointSelector struct {
	store      storage.Store
	prober     Prober
	defaultURL string
	debounce   time.Duration
	log        *logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	gen     int
	probe   *ProbeResult
}

// NewEndpointSelector keeps its value under EndpointKey in store, which is expected to be
// scoped to one API.
func NewEndpointSelector(store storage.Store, prober Prober, opts ...SelectorOption) *EndpointSelector {
	s := &EndpointSelector{
		store:      store,
		prober:     prober,
		defaultURL: DefaultEndpoint,
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the committed endpoint, or the default when none was chosen.
func (s *EndpointSelector) Current(ctx context.Context) (string, error) {
	v, ok, err := s.store.Get(ctx, EndpointKey)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		return s.defaultURL, nil
	}
	return v, nil
}

// Pending returns a proposal that has not been committed yet.
func (s *EndpointSelector) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.timer != nil
}

func (s *EndpointSelector) LastProbe() (ProbeResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.probe == nil {
		return ProbeResult{}, false
	}
	return *s.probe, true
}

// Propose replaces any pending proposal and restarts the debounce period.
func (s *EndpointSelector) Propose(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if err := ValidateEndpoint(endpoint); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	s.pending = endpoint
	gen := s.gen
	if s.debounce <= 0 {
		s.timer = nil
		go s.fire(gen, endpoint)
		return nil
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen, endpoint) })
	return nil
}

func (s *EndpointSelector) fire(gen int, endpoint string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if err := s.commit(context.Background(), gen, endpoint); err != nil && s.log != nil {
		s.log.Error().Err(err).Str("url", endpoint).Msg("failed to store GraphQL endpoint")
	}
}

// Flush commits a pending proposal immediately and returns the probe of the committed
// endpoint.
func (s *EndpointSelector) Flush(ctx context.Context) (ProbeResult, error) {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		current, err := s.Current(ctx)
		if err != nil {
			return ProbeResult{}, err
		}
		return s.prober.Probe(ctx, current), nil
	}
	s.stop()
	gen, endpoint := s.gen, s.pending
	s.mu.Unlock()

	if err := s.commit(ctx, gen, endpoint); err != nil {
		return ProbeResult{}, err
	}
	probe, _ := s.LastProbe()
	return probe, nil
}

func (s *EndpointSelector) commit(ctx context.Context, gen int, endpoint string) error {
	if err := s.store.Set(ctx, EndpointKey, endpoint); err != nil {
		return err
	}
	result := s.prober.Probe(ctx, endpoint)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.pending = ""
	}
	s.probe = &result
	return nil
}

// Close drops a pending proposal.
func (s *EndpointSelector) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	s.pending = ""
}

// callers hold s.mu
func (s *EndpointSelector) stop() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

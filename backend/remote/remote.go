// Package remote implements the backend client against another console's RPC endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/platform-mesh/golang-commons/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/backend"
)

var _ backend.Client = (*Client)(nil)

const defaultTimeout = 30 * time.Second

type Client struct {
	log     *logger.Logger
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func New(log *logger.Logger, baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.Wrap(backend.ErrInvalidConfig, "remote backend requires a url")
	}
	c := &Client{
		log:     log,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call posts in as JSON to method and decodes the response into out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	body := []byte("{}")
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return errors.Wrapf(err, "failed to encode %s request", method)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+backend.RPCPath+method, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(stderrors.Join(backend.ErrUnavailable, err), "%s request failed", method)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s response", method)
	}

	if resp.StatusCode >= 300 {
		rpcErr := &backend.RPCError{}
		if json.Unmarshal(data, rpcErr) != nil || rpcErr.Message == "" {
			rpcErr = &backend.RPCError{Code: backend.CodeInternal, Message: strings.TrimSpace(string(data))}
		}
		c.log.Debug().Str("method", method).Int("status", resp.StatusCode).Str("code", rpcErr.Code).Msg("remote call failed")
		return rpcErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", method)
	}
	return nil
}

func (c *Client) GetGraphqlApi(ctx context.Context, ref v1beta1.ClusterObjectRef) (*v1beta1.GraphQLApi, error) {
	out := &v1beta1.GraphQLApi{}
	if err := c.call(ctx, backend.MethodGetGraphqlApi, backend.GetGraphqlApiRequest{Ref: ref}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListGraphqlApis(ctx context.Context) ([]v1beta1.GraphQLApi, error) {
	var out backend.ListResponse[v1beta1.GraphQLApi]
	if err := c.call(ctx, backend.MethodListGraphqlApis, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) UpdateGraphqlApi(ctx context.Context, api *v1beta1.GraphQLApi) (*v1beta1.GraphQLApi, error) {
	out := &v1beta1.GraphQLApi{}
	if err := c.call(ctx, backend.MethodUpdateGraphqlApi, api, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUpstreams(ctx context.Context) ([]v1beta1.Upstream, error) {
	var out backend.ListResponse[v1beta1.Upstream]
	if err := c.call(ctx, backend.MethodListUpstreams, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ValidateResolverYaml returns the remote validation message as the error text so callers
// can shorten it the same way as a local failure.
func (c *Client) ValidateResolverYaml(ctx context.Context, yaml string, kind v1beta1.ResolverKind) error {
	var out v1beta1.ValidateResolverYamlResponse
	err := c.call(ctx, backend.MethodValidateResolverYaml, v1beta1.ValidateResolverYamlRequest{Yaml: yaml, ResolverType: kind}, &out)
	if err != nil {
		return err
	}
	if !out.Valid {
		return &backend.RPCError{Code: backend.CodeInvalidArgument, Message: out.Message}
	}
	return nil
}

func (c *Client) ValidateSchemaDefinition(ctx context.Context, req v1beta1.ValidateSchemaDefinitionRequest) error {
	return c.call(ctx, backend.MethodValidateSchemaDefinition, req, nil)
}

func (c *Client) UpsertResolver(ctx context.Context, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error) {
	out := &v1beta1.GraphQLApi{}
	if err := c.call(ctx, backend.MethodUpsertResolver, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteResolver(ctx context.Context, req v1beta1.DeleteResolverRequest) (*v1beta1.GraphQLApi, error) {
	out := &v1beta1.GraphQLApi{}
	if err := c.call(ctx, backend.MethodDeleteResolver, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

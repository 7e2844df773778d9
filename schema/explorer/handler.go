package explorer

import (
	"net/http"

	"github.com/graphql-go/handler"
)

type HandlerConfig struct {
	Pretty     bool
	Playground bool
	GraphiQL   bool
}

// NewHandler serves GraphQL over HTTP against the mock schema, with GraphiQL when enabled.
func NewHandler(m *MockSchema, config HandlerConfig) http.Handler {
	return handler.New(&handler.Config{
		Schema:     m.Schema,
		Pretty:     config.Pretty,
		Playground: config.Playground,
		GraphiQL:   config.GraphiQL,
	})
}

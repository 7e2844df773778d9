package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	openmfpcontext "github.com/platform-mesh/golang-commons/context"
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/platform-mesh/golang-commons/traces"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/solo-io/graphql-console/backend"
	"github.com/solo-io/graphql-console/backend/kube"
	"github.com/solo-io/graphql-console/backend/memory"
	"github.com/solo-io/graphql-console/backend/remote"
	"github.com/solo-io/graphql-console/common/auth"
	"github.com/solo-io/graphql-console/console"
	"github.com/solo-io/graphql-console/console/options"
	"github.com/solo-io/graphql-console/schema/explorer"
	"github.com/solo-io/graphql-console/storage"
)

func newServeCmd() *cobra.Command {
	o := options.NewOptions()
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the console API",
		Example: "console serve --backend-kind memory --backend-manifests-dir ./manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			completed, err := o.Complete()
			if err != nil {
				return err
			}
			if err := completed.Validate(); err != nil {
				return err
			}
			return serve(completed)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func serve(o *options.CompletedOptions) error {
	log, err := setupLogger(o.Level.String())
	if err != nil {
		return err
	}
	log.Info().Str("LogLevel", log.GetLevel().String()).Str("backend", o.Backend.Kind).Msg("Starting the console...")

	ctx, _, shutdown := openmfpcontext.StartContext(log, o.Config, o.ShutdownTimeout)
	defer shutdown()

	tracingShutdown, err := initializeTracing(ctx, o)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracingShutdown(ctx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown TracerProvider")
		}
	}()

	client, background, err := newBackend(log, o)
	if err != nil {
		return err
	}
	store, err := newStore(o)
	if err != nil {
		return err
	}

	srv := console.New(log, backend.Instrument(client, o.Backend.Kind), store, console.Config{
		MatchMode:        o.MatchMode,
		DefaultEndpoint:  o.Explorer.DefaultURL,
		EndpointDebounce: o.Explorer.Debounce,
		GraphQL: explorer.HandlerConfig{
			Pretty:     o.GraphQL.Pretty,
			Playground: o.GraphQL.Playground,
			GraphiQL:   o.GraphQL.GraphiQL,
		},
	})

	return runServers(ctx, log, o, srv, background...)
}

func tracesConfig(o *options.CompletedOptions) traces.Config {
	return traces.Config{
		ServiceName:       o.Tracing.ServiceName,
		ServiceVersion:    version,
		CollectorEndpoint: o.Tracing.Collector,
	}
}

func initializeTracing(ctx context.Context, o *options.CompletedOptions) (func(ctx context.Context) error, error) {
	if o.Tracing.Enabled {
		shutdown, err := traces.InitProvider(ctx, tracesConfig(o))
		if err != nil {
			return nil, fmt.Errorf("unable to start gRPC-Sidecar TracerProvider: %w", err)
		}
		return shutdown, nil
	}

	shutdown, err := traces.InitLocalProvider(ctx, tracesConfig(o), false)
	if err != nil {
		return nil, fmt.Errorf("unable to start local TracerProvider: %w", err)
	}
	return shutdown, nil
}

// newBackend builds the configured control plane client and the loops it needs to run.
func newBackend(log *logger.Logger, o *options.CompletedOptions) (backend.Client, []func(context.Context) error, error) {
	cfg := o.Backend
	switch cfg.Kind {
	case backend.KindMemory:
		b := memory.New(log, memory.WithClusterName(cfg.ClusterName))
		if cfg.ManifestsDir == "" {
			return b, nil, nil
		}
		if err := b.LoadPath(cfg.ManifestsDir); err != nil {
			log.Warn().Err(err).Str("path", cfg.ManifestsDir).Msg("some manifests failed to load")
		}
		if !cfg.Watch {
			return b, nil, nil
		}
		return b, []func(context.Context) error{func(ctx context.Context) error {
			return b.Watch(ctx, cfg.ManifestsDir, cfg.WatchDebounce)
		}}, nil

	case backend.KindKube:
		restCfg, err := auth.BuildConfig(auth.Connection{
			Kubeconfig: cfg.Kubeconfig,
			Context:    cfg.Context,
			Host:       cfg.Host,
			TokenFile:  cfg.TokenFile,
			CAFile:     cfg.CAFile,
			Insecure:   cfg.Insecure,
		})
		if err != nil {
			return nil, nil, errors.Join(backend.ErrInvalidConfig, err)
		}
		b, err := kube.NewForConfig(log, restCfg, cfg.ClusterName, cfg.Namespace)
		return b, nil, err

	case backend.KindRemote:
		b, err := remote.New(log, cfg.RemoteURL)
		return b, nil, err
	}
	return nil, nil, fmt.Errorf("%w %q", backend.ErrUnknownKind, cfg.Kind)
}

func newStore(o *options.CompletedOptions) (storage.Store, error) {
	if o.Storage.Dir == "" {
		return storage.NewMemory(), nil
	}
	return storage.NewFile(o.Storage.Dir)
}

func createServers(o *options.CompletedOptions, handler http.Handler) []*http.Server {
	servers := []*http.Server{{
		Addr:    net.JoinHostPort(o.Server.Address, strconv.Itoa(o.Server.Port)),
		Handler: handler,
	}}

	if o.Server.MetricsAddress != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{Addr: o.Server.MetricsAddress, Handler: metricsMux})
	}

	if o.Server.HealthAddress != "" {
		healthMux := http.NewServeMux()
		healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		healthMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		servers = append(servers, &http.Server{Addr: o.Server.HealthAddress, Handler: healthMux})
	}

	return servers
}

func shutdownServers(ctx context.Context, log *logger.Logger, servers ...*http.Server) {
	log.Info().Msg("Shutting down HTTP servers...")

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("HTTP server shutdown failed")
		}
	}
}

func runServers(ctx context.Context, log *logger.Logger, o *options.CompletedOptions, srv *console.Server, background ...func(context.Context) error) error {
	servers := createServers(o, srv.Handler())

	eg, egCtx := errgroup.WithContext(ctx)

	for _, server := range servers {
		eg.Go(func() error {
			log.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s error: %w", server.Addr, err)
			}
			return nil
		})
	}

	for _, run := range background {
		eg.Go(func() error {
			if err := run(egCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
		defer cancel()

		shutdownServers(shutdownCtx, log, servers...)

		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing console services")
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Server shut down successfully")
	return nil
}

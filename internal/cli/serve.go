package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/mentalreset/internal/api"
	"example.com/mentalreset/internal/auth"
	"example.com/mentalreset/internal/config"
	"example.com/mentalreset/internal/domain"
	"example.com/mentalreset/internal/drafts"
	"example.com/mentalreset/internal/outbox"
	"example.com/mentalreset/internal/planner"
	httptransport "example.com/mentalreset/internal/transport/http"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Address string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the mental reset HTTP API until SIGINT or SIGTERM.

When OUTBOX_ENABLED is set the outbox dispatcher runs alongside the server
and publishes saved sessions to Kafka.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "addr", "", "override HTTP_ADDRESS")
	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if opts.Address != "" {
		cfg.HTTPAddress = opts.Address
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signalContext(parent)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), app.router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("mentalreset listening", zap.String("addr", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	if cfg.OutboxEnabled {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, outbox.WithProducerLogger(logger.Named("kafka")))
		defer producer.Close()

		dispatcher := outbox.NewDispatcher(app.backend.pool, producer,
			outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL),
			cfg.OutboxPollInterval, cfg.OutboxBatchSize,
			outbox.WithLogger(logger.Named("outbox")))
		g.Go(func() error {
			dispatcher.Start(gctx)
			return nil
		})
	}

	err = g.Wait()
	logger.Info("mentalreset stopped")
	return err
}

// app is the assembled HTTP service.
type app struct {
	router      http.Handler
	backend     *backend
	closeDrafts func()
	unsubscribe func()
}

func (a *app) Close() {
	a.unsubscribe()
	a.closeDrafts()
	a.backend.Close()
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, closeDrafts, err := openDraftStore(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}

	cleanup := func() {
		closeDrafts()
		b.Close()
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		cleanup()
		return nil, err
	}
	policy, err := domain.PolicyFor(cfg.SelectionPolicy, cfg.ActivityLimit)
	if err != nil {
		cleanup()
		return nil, err
	}

	sessions := auth.NewSessions(verifier, logger.Named("auth"))
	unsubscribe := drafts.DiscardOnSignOut(sessions, store, logger.Named("drafts"))

	p := planner.New(store, policy, domain.NewGateway(b.repo),
		planner.WithSignInRoute(cfg.SignInRoute),
		planner.WithLogger(logger.Named("planner")))

	router := httptransport.NewRouter(logger, cfg.CORSOrigins)
	router.Use(auth.NewMiddleware(sessions).Wrap)
	api.NewHandler(p, sessions, api.Options{
		SignInRoute: cfg.SignInRoute,
		Logger:      logger,
		HealthCheck: b.Ping,
	}).RegisterRoutes(router)

	return &app{
		router:      router,
		backend:     b,
		closeDrafts: closeDrafts,
		unsubscribe: unsubscribe,
	}, nil
}

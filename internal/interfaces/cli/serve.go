package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/patent2rag/internal/interfaces/grpc"
	"github.com/turtacn/patent2rag/internal/interfaces/grpc/services"
	httpserver "github.com/turtacn/patent2rag/internal/interfaces/http"
	"github.com/turtacn/patent2rag/internal/interfaces/http/handlers"
	"github.com/turtacn/patent2rag/internal/interfaces/http/middleware"
)

// rateLimitSweep is how often idle rate-limit buckets are dropped.
const rateLimitSweep = time.Minute

type serveOptions struct {
	httpPort int
	grpcPort int
	noGRPC   bool
}

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC conversion APIs",
		Long: "Run the HTTP API (/api/v1/convert, /healthz, /readyz, /metrics) and the\n" +
			"patent2rag.v1.Converter gRPC service. Configured sinks receive documents\n" +
			"converted with ?publish=true. The config file is watched and chunk size\n" +
			"defaults are reloaded without a restart.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if opts.httpPort > 0 {
				cliCtx.Config.Server.Port = opts.httpPort
			}
			if opts.grpcPort > 0 {
				cliCtx.Config.GRPC.Port = opts.grpcPort
			}
			return runServe(cmd.Context(), cliCtx, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.httpPort, "http-port", 0, "HTTP port (overrides config)")
	f.IntVar(&opts.grpcPort, "grpc-port", 0, "gRPC port (overrides config)")
	f.BoolVar(&opts.noGRPC, "no-grpc", false, "serve HTTP only")
	return cmd
}

func runServe(ctx context.Context, cliCtx *CLIContext, opts *serveOptions) error {
	cfg, log := cliCtx.Config, cliCtx.Logger
	log.Info("Starting patent2rag server",
		logging.String("version", Version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.GRPC.Port))

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var publisher handlers.Publisher
	if p := a.publisher(); p != nil {
		publisher = p
	}

	if cliCtx.ConfigPath != "" {
		config.Watch(cliCtx.ConfigPath, func(next *config.Config) {
			a.converter.SetPipeline(next.Pipeline)
			log.Info("Pipeline defaults reloaded",
				logging.Int("target_tokens", next.Pipeline.TargetTokens),
				logging.Int("overlap_tokens", next.Pipeline.OverlapTokens))
		}, func(err error) {
			log.Warn("Ignoring invalid config change", logging.Err(err))
		})
	}

	var grpcSrv *grpcserver.Server
	if !opts.noGRPC {
		grpcSrv, err = grpcserver.NewServer(cfg.GRPC,
			grpcserver.WithLogger(log),
			grpcserver.WithMetrics(a.metrics))
		if err != nil {
			return err
		}
		grpcSrv.RegisterService(&services.ConverterServiceDesc, services.NewConverterService(a.converter, publisher, log))
	}

	g, gctx := errgroup.WithContext(ctx)

	var limiter middleware.RateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		tb := middleware.NewTokenBucketLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		limiter = tb
		g.Go(func() error {
			ticker := time.NewTicker(rateLimitSweep)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					tb.Sweep(rateLimitSweep)
				}
			}
		})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ConvertHandler:   handlers.NewConvertHandler(a.converter, publisher, cfg.Pipeline.MaxFileBytes, log),
		HealthHandler:    handlers.NewHealthHandler(Version, a.checkers...),
		RateLimiter:      limiter,
		Logger:           log,
		Metrics:          a.metrics,
		MetricsCollector: a.collector,
	})
	httpSrv := httpserver.NewServer(cfg.Server, router, log)
	g.Go(httpSrv.Start)
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down servers")
		shutdownCtx := context.WithoutCancel(gctx)
		if grpcSrv != nil {
			if err := grpcSrv.Stop(shutdownCtx); err != nil {
				log.Warn("gRPC shutdown failed", logging.Err(err))
			}
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

//Personal.AI order the ending

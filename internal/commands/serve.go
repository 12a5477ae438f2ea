package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evalgo.org/oscbridge/internal/admin"
	"evalgo.org/oscbridge/internal/config"
	"evalgo.org/oscbridge/internal/logging"
	"evalgo.org/oscbridge/internal/metrics"
	"evalgo.org/oscbridge/internal/oscnet"
	"evalgo.org/oscbridge/internal/player"
	"evalgo.org/oscbridge/internal/router"
	"evalgo.org/oscbridge/internal/version"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the OSC listener",
		Long: `Listen for OSC messages and forward them to the configured VLC
HTTP interfaces. Repeat --vlc for every player; repeat --pwd once per player,
or give it once when every player shares the same password.`,
		Example: `  oscbridge serve --vlc http://192.168.1.20:8080 --vlc http://192.168.1.21:8080 --pwd secret`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "UDP host:port to receive OSC messages on (default: 127.0.0.1:5005)")
	cmd.Flags().Float64("rate-limit", 0, "max OSC messages accepted per second (0: unlimited)")
	cmd.Flags().StringArray("vlc", nil, "URL of a VLC web interface (repeatable)")
	cmd.Flags().StringArray("pwd", nil, "VLC web interface password (repeatable)")
	cmd.Flags().Duration("timeout", 0, "timeout of each VLC request (default: 500ms)")
	cmd.Flags().Int("max-concurrency", 0, "max concurrent requests per broadcast (0: one per player)")
	cmd.Flags().String("admin", "", "host:port of the health and metrics server (disabled when empty)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	return serve(ctx, cfg, logger)
}

// serve runs the bridge until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("oscbridge_start", slog.String("version", version.Version))

	m := metrics.New()

	targets, err := player.NewTargets(cfg.Targets.Endpoints(), player.Options{
		Timeout: cfg.Targets.Timeout,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize targets: %w", err)
	}

	group, err := player.GroupOf(targets, cfg.Targets.MaxConcurrency)
	if err != nil {
		return fmt.Errorf("failed to initialize targets: %w", err)
	}

	for _, t := range targets {
		logger.Info("target_mapped",
			slog.String("address", fmt.Sprintf("/%d/*", t.ID())),
			slog.String("url", t.URL()),
			slog.Bool("auth", t.HasPassword()),
		)
	}

	commands := router.DefaultCommands()
	rt := router.New(router.NewResolver(group), commands, router.Config{
		Logger:  logger,
		Metrics: m,
	})

	listener := oscnet.NewListener(cfg.OSC.ListenAddr, rt, oscnet.ListenerDeps{
		Logger:  logger,
		Metrics: m,
		Limiter: oscnet.NewLimiter(cfg.OSC.RateLimit, cfg.OSC.RateBurst),
	})
	if err := listener.Start(ctx); err != nil {
		return err
	}

	var adminSrv *admin.Server
	if cfg.Admin.ListenAddr != "" {
		adminSrv = admin.New(cfg.Admin.ListenAddr, admin.Deps{
			Targets:  targets,
			Commands: commands.Names(),
			OSCAddr:  listener.Addr().String(),
			Metrics:  m,
			Logger:   logger,
		})
		if err := adminSrv.Start(); err != nil {
			_ = listener.Stop(cfg.OSC.ShutdownTimeout)
			return err
		}
	}

	<-ctx.Done()
	logger.Info("oscbridge_stopping", slog.String("reason", context.Cause(ctx).Error()))

	var shutdownErr error
	if err := listener.Stop(cfg.OSC.ShutdownTimeout); err != nil {
		logger.Warn("osc_listener_stop_failed", slog.String("error", err.Error()))
		shutdownErr = err
	}

	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Admin.ShutdownTimeout)
		defer cancel()
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("admin_server_stop_failed", slog.String("error", err.Error()))
			shutdownErr = err
		}
	}

	return shutdownErr
}

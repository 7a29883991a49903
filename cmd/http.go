package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tundeajayi/coinshelf/internal/api"
	"github.com/tundeajayi/coinshelf/internal/config"
	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/notify"
	"github.com/tundeajayi/coinshelf/internal/payment"
	"github.com/tundeajayi/coinshelf/internal/service"
	"github.com/tundeajayi/coinshelf/internal/store"
	"github.com/tundeajayi/coinshelf/internal/worker"
)

func HTTPCommand(ctx context.Context) *cobra.Command {
	var addr int
	var env string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "run the coinshelf http server and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

			var handler slog.Handler

			switch env {
			case "dev":
				handler = slog.Handler(slog.NewTextHandler(os.Stderr, nil))
			case "prod":
				handler = slog.Handler(slog.NewJSONHandler(os.Stderr, nil))
			default:
				return fmt.Errorf("environment can only be dev or prod")
			}

			baseLogger := slog.New(handler).With(
				slog.String("app", "coinshelf"),
				slog.String("runtime", runtime.Version()),
				slog.String("os", runtime.GOOS),
				slog.String("architecture", runtime.GOARCH),
				slog.String("version", "1.0"),
			)

			viper.SetConfigFile("internal/config/.env")
			viper.AutomaticEnv()

			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading in config: %v", err)
			}

			var cfg config.Config

			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("error unmarshalling config: %v", err)
			}

			if cfg.Reaper_interval_min <= 0 {
				cfg.Reaper_interval_min = 5
			}

			if cfg.Pending_timeout_min <= 0 {
				cfg.Pending_timeout_min = 15
			}

			log := logger.NewSlogLogger(baseLogger)

			db, err := store.NewPostgresStore(cfg.Db_conn)

			if err != nil {
				return err
			}

			if err := db.Migrate(ctx); err != nil {
				return err
			}

			var notifier notify.Notifier = notify.NoopNotifier{}

			if cfg.Rabbit_mq_conn != "" {
				conn, err := amqp.Dial(cfg.Rabbit_mq_conn)

				if err != nil {
					return fmt.Errorf("error connecting to rabbitmq: %v", err)
				}

				defer conn.Close()

				notifier, err = notify.NewAMQPNotifier(conn)

				if err != nil {
					return err
				}
			}

			provider := payment.NewStripeProvider(cfg.Stripe_secret, cfg.Host)
			splitter := service.NewRevenueSplitter(db, log)
			purchases := service.NewPurchaseService(db, splitter, notifier, log)
			topups := service.NewTopUpService(db, provider, log)

			scheduler := worker.NewReleaseScheduler(db, notifier, log)
			reaper := worker.NewExpiryReaper(
				db,
				provider,
				log,
				time.Duration(cfg.Reaper_interval_min)*time.Minute,
				time.Duration(cfg.Pending_timeout_min)*time.Minute,
			)

			scheduler.Start(ctx)
			defer scheduler.Stop()
			reaper.Start(ctx)
			defer reaper.Stop()

			r := chi.NewRouter()
			r.Use(middleware.Recoverer)

			r.Handle("/metrics", promhttp.Handler())

			r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("woosh! 🚀🚀\n"))
			})

			server := api.New(r, log, db, purchases, topups, &cfg)
			server.RegisterRoutes()

			httpServer := &http.Server{
				Addr:        fmt.Sprintf(":%d", addr),
				Handler:     r,
				IdleTimeout: 15 * time.Minute,
			}
			errCh := make(chan error, 1)

			log.Info("server startup", "status", fmt.Sprintf("server starting on port: %d", addr))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err

			case <-sig:
				log.Info("server shutdown", "status", "kill signal recieved")
				ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return fmt.Errorf("error shutting down server: %v", err)
				}

				log.Info("server shutdown", "status", "shutdown complete...")
				return nil
			}
		},
	}

	cmd.Flags().IntVarP(&addr, "addr", "a", 8080, "server address")
	cmd.Flags().StringVarP(&env, "env", "e", "dev", "current working environment")

	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tundeajayi/coinshelf/internal/config"
	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/notify"
	"github.com/tundeajayi/coinshelf/internal/store"
	"github.com/tundeajayi/coinshelf/internal/worker"
)

// SweepCommand runs a single release sweep and exits, for catching up
// after downtime without waiting for the midnight timer.
func SweepCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "run one release sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

			viper.SetConfigFile("internal/config/.env")
			viper.AutomaticEnv()

			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading in config: %v", err)
			}

			var cfg config.Config

			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("error unmarshalling config: %v", err)
			}

			db, err := store.NewPostgresStore(cfg.Db_conn)

			if err != nil {
				return err
			}

			scheduler := worker.NewReleaseScheduler(db, notify.NoopNotifier{}, log)

			return scheduler.Sweep(ctx)
		},
	}
}

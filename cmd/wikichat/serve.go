package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xaenox/wikichat/internal/bot"
	"github.com/xaenox/wikichat/internal/classifier"
	"github.com/xaenox/wikichat/internal/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var trainIfMissing bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when a token is configured, the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cfg, logger, true)
			if err != nil {
				logger.Error("Failed to start", zap.Error(err))
				return err
			}
			defer a.Close()

			err = a.engine.Reload(ctx)
			if errors.Is(err, classifier.ErrModelNotTrained) && trainIfMissing {
				logger.Info("No usable snapshot, training a new model")
				err = a.engine.Train(ctx)
			}
			if err != nil {
				logger.Error("Intent model unavailable", zap.Error(err))
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.New(cfg.Server.Addr, a.service, logger).Run(ctx)
			})
			if cfg.Telegram.Token != "" {
				b, err := bot.New(cfg.Telegram.Token, a.service, logger)
				if err != nil {
					logger.Error("Failed to create bot", zap.Error(err))
					return err
				}
				g.Go(func() error { return b.Start(ctx) })
			}
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&trainIfMissing, "train-if-missing", true, "train and persist a model when no usable snapshot exists")
	return cmd
}

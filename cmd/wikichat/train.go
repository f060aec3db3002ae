package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the intent classifier and persist its snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg, logger, false)
			if err != nil {
				logger.Error("Failed to start", zap.Error(err))
				return err
			}
			defer a.Close()

			if err := a.engine.Train(cmd.Context()); err != nil {
				logger.Error("Training failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().Int("epochs", 0, "number of training epochs")
	cmd.Flags().Float64("learning-rate", 0, "Adam learning rate")
	cmd.Flags().Int("batch-size", 0, "mini-batch size")
	v.BindPFlag("classifier.epochs", cmd.Flags().Lookup("epochs"))
	v.BindPFlag("classifier.learning_rate", cmd.Flags().Lookup("learning-rate"))
	v.BindPFlag("classifier.batch_size", cmd.Flags().Lookup("batch-size"))
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict [utterance]",
		Short: "Print the intent predicted for an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg, logger, false)
			if err != nil {
				logger.Error("Failed to start", zap.Error(err))
				return err
			}
			defer a.Close()

			tag, err := a.engine.PredictIntent(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				logger.Error("Prediction failed", zap.Error(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag)
			return nil
		},
	}
}

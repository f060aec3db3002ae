package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xaenox/wikichat/internal/webloader"
	"go.uber.org/zap"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [url]",
		Short: "Scrape a Wikipedia page into the on-disk document store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := webloader.DefaultURL
			if len(args) == 1 {
				url = args[0]
			}

			a, err := newApp(cfg, logger, true)
			if err != nil {
				logger.Error("Failed to start", zap.Error(err))
				return err
			}
			defer a.Close()

			id, err := a.service.Index(cmd.Context(), url)
			if err != nil {
				logger.Error("Indexing failed", zap.Error(err), zap.String("url", url))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xaenox/wikichat/pkg/config"
	"go.uber.org/zap"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wikichat",
	Short: "Small talk and Wikipedia answers behind one intent classifier",
	Long: `WikiChat routes every message through a bag-of-words intent classifier.
Small-talk intents get a canned response; questions about the indexed
Wikipedia page are answered with its closest sentence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if v.GetBool("debug") {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		cfgFile = config.ResolvePath(cfgFile)
		cfg, err = config.LoadConfig(v, cfgFile)
		if err != nil {
			logger.Error("Failed to load config", zap.Error(err), zap.String("path", cfgFile))
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, default ./config.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable development logging")
	rootCmd.PersistentFlags().String("corpus", "", "intent corpus file (JSON or YAML)")
	rootCmd.PersistentFlags().String("snapshot", "", "model snapshot path for the file backend")

	v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	v.BindPFlag("classifier.corpus_path", rootCmd.PersistentFlags().Lookup("corpus"))
	v.BindPFlag("snapshot.path", rootCmd.PersistentFlags().Lookup("snapshot"))

	rootCmd.AddCommand(newServeCmd(), newTrainCmd(), newPredictCmd(), newIndexCmd())
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "topicrank",
	Short: "Re-rank web search results around one topic",
	Long: `Topicrank searches the web for a query, re-ranks the results by how
relevant they are to a configured topic (Brawl Stars by default), suggests
related keywords and extracts a short cited summary.

Pipeline: search → fetch → score → suggest → summarize`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

var (
	verbose    bool
	configPath string

	logger    = zerolog.Nop()
	logCloser io.Closer
)

func init() {
	rootCmd.Version = "0.1.0"
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $TOPICRANK_HOME/config.yaml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, logCloser = logging.New(cfg.Log, verbose)
	return nil
}

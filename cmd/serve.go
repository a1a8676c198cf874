package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Runs an HTTP server exposing GET /api/search?q=, /healthz and /metrics.
Runs are saved to history when serve.save_history is set.`,
	RunE: runServe,
}

var (
	serveAddr   string
	serveNoSave bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoSave, "no-save", false, "Do not store served runs in history")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	m := metrics.New()
	p, err := newPipeline(cfg, "", m)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(logger), server.WithMetrics(m)}
	if cfg.Serve.SaveHistory && !serveNoSave {
		db, repo, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, server.WithHistory(repo))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(p, opts...).ListenAndServe(ctx, addr)
}

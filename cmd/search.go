package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/topicrank/internal/metrics"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the web and re-rank results by topic relevance",
	Long: `Runs the full pipeline for a query: web search, page fetch, topic scoring,
related keyword suggestions and a short extractive summary. Each run is
saved to the local history unless --no-save is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchLimit    int
	searchExplain  bool
	searchNoSave   bool
	searchProvider string
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum search results to rank (0 = use config)")
	searchCmd.Flags().BoolVar(&searchExplain, "explain", false, "Show score breakdown and sub-pages")
	searchCmd.Flags().BoolVar(&searchNoSave, "no-save", false, "Do not store this run in history")
	searchCmd.Flags().StringVar(&searchProvider, "provider", "", "Override search provider (google, searxng, feed, file)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if searchLimit > 0 {
		cfg.Search.Limit = searchLimit
	}

	p, err := newPipeline(cfg, searchProvider, metrics.New())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := p.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(res.Pages) == 0 {
		fmt.Printf("No results found for '%s'\n", query)
	} else {
		fmt.Printf("\n%s '%s' (%d results, %s)\n\n",
			headerStyle.Render("SEARCH:"), res.Query, len(res.Pages), res.Elapsed.Round(time.Millisecond))
		printPages(res.Pages, searchExplain)
	}
	printSuggestions(res.Suggestions)
	printSummary(res.Summary)

	if searchNoSave {
		return nil
	}
	db, repo, err := openHistory()
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable, run not saved")
		return nil
	}
	defer db.Close()
	id, err := repo.Save(res)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to save run")
		return nil
	}
	fmt.Printf("\n%s\n", labelStyle.Render(fmt.Sprintf("Saved as run %d", id)))
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/julienpequegnot/topicrank/internal/page"
)

var rankCmd = &cobra.Command{
	Use:   "rank <query>",
	Short: "Rank already-crawled pages offline",
	Long: `Scores, sorts, suggests and summarizes pages supplied by an external
crawler. The pages file is a JSON array of objects with url, title, content,
engineRank and an optional html field used for sub-page mining.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

var (
	rankPages   string
	rankJSON    bool
	rankExplain bool
)

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().StringVar(&rankPages, "pages", "", "JSON file with crawled pages (required)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print the result as JSON")
	rankCmd.Flags().BoolVar(&rankExplain, "explain", false, "Show score breakdown and sub-pages")
	rankCmd.MarkFlagRequired("pages")
}

type crawledPage struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	EngineRank int    `json:"engineRank"`
	HTML       string `json:"html,omitempty"`
}

func loadCrawledPages(path string) ([]*page.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var crawled []crawledPage
	if err := json.Unmarshal(data, &crawled); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	pages := make([]*page.Page, 0, len(crawled))
	for i, c := range crawled {
		p := page.New(c.URL, c.Title)
		p.Content = c.Content
		p.EngineRank = c.EngineRank
		if p.EngineRank == 0 {
			p.EngineRank = i + 1
		}
		if c.HTML != "" {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.HTML))
			if err != nil {
				logger.Debug().Err(err).Str("url", c.URL).Msg("skipping unparsable html")
			} else {
				p.Links = doc
			}
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func runRank(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pages, err := loadCrawledPages(rankPages)
	if err != nil {
		return err
	}

	p, err := newOfflinePipeline(cfg)
	if err != nil {
		return err
	}
	res := p.Rank(context.Background(), query, pages)

	if rankJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("\n%s '%s' (%d pages)\n\n", headerStyle.Render("RANK:"), res.Query, len(res.Pages))
	printPages(res.Pages, rankExplain)
	printSuggestions(res.Suggestions)
	printSummary(res.Summary)
	return nil
}

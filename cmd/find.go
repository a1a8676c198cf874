package cmd

import (
	"fmt"
	"strings"

	"github.com/julienpequegnot/topicrank/internal/history"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <terms>",
	Short: "Search stored results by content",
	Long:  `Full-text search across the titles and content of every page seen in past runs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFind,
}

var (
	findLimit    int
	findUseScore bool
)

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().IntVarP(&findLimit, "limit", "l", 20, "Maximum results to show")
	findCmd.Flags().BoolVar(&findUseScore, "ranked", false, "Rank by combined text match and topic score")
}

func runFind(cmd *cobra.Command, args []string) error {
	terms := strings.Join(args, " ")

	db, repo, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	var results []history.SearchResult
	if findUseScore {
		results, err = repo.SearchWithScore(terms, findLimit)
	} else {
		results, err = repo.Search(terms, findLimit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No results found for '%s'\n", terms)
		return nil
	}

	fmt.Printf("\n%s '%s' (%d results)\n\n", headerStyle.Render("FIND:"), terms, len(results))

	for _, r := range results {
		fmt.Printf("%s %s\n", idStyle.Render(fmt.Sprintf("[run %d]", r.RunID)), r.Title)
		fmt.Printf("    %s • %s", keywordStyle.Render(r.Query), scoreStyle.Render(fmt.Sprintf("%.0f", r.TopicScore)))
		fmt.Printf(" • %s\n", urlStyle.Render(r.URL))

		if r.Snippet != "" {
			snippet := strings.ReplaceAll(r.Snippet, "<b>", "")
			snippet = strings.ReplaceAll(snippet, "</b>", "")
			fmt.Printf("    %s\n", snippetStyle.Render(snippet))
		}
		fmt.Println()
	}

	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/topicrank/internal/history"
	"github.com/julienpequegnot/topicrank/internal/trends"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show details of a past run",
	Long:  `Display a stored run with its ranked pages, sub-pages, suggestions and summary.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID: %s", args[0])
	}

	db, repo, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repo.Get(id)
	if errors.Is(err, history.ErrRunNotFound) {
		return fmt.Errorf("run not found: %d", id)
	}
	if err != nil {
		return err
	}

	divider := labelStyle.Render(strings.Repeat("━", 70))

	fmt.Println(divider)
	fmt.Println(headerStyle.Render(run.Query))
	fmt.Println(divider)

	fmt.Printf("%s %s\n", labelStyle.Render("Search term:"), run.SearchTerm)
	fmt.Printf("%s %s\n", labelStyle.Render("Run at:"), run.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("%s %s\n\n", labelStyle.Render("Elapsed:"), run.Elapsed)

	printPages(run.Pages, true)
	printSuggestions(run.Suggestions)

	fmt.Printf("\n%s\n", headerStyle.Render("SUMMARY:"))
	fmt.Println(snippetStyle.Render(run.Summary))

	if similar := similarRuns(repo, id); len(similar) > 0 {
		fmt.Printf("\n%s\n", labelStyle.Render("SIMILAR RUNS:"))
		for _, other := range similar {
			fmt.Printf("  %s %s\n", idStyle.Render(fmt.Sprintf("[%d]", other.ID)), other.Query)
		}
	}

	fmt.Println()
	return nil
}

// similarRuns finds stored runs whose suggestion keywords overlap run id's.
func similarRuns(repo *history.Repository, id int64) []*history.Run {
	suggestions, err := repo.Suggestions(time.Time{})
	if err != nil {
		return nil
	}
	analyzer := trends.NewAnalyzer()
	for _, s := range suggestions {
		analyzer.AddRun(s.RunID, []string{s.Keyword}, s.CreatedAt)
	}

	var out []*history.Run
	for _, otherID := range analyzer.Similar(id, 3) {
		if other, err := repo.Get(otherID); err == nil {
			out = append(out, other)
		}
	}
	return out
}

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/julienpequegnot/topicrank/internal/trends"
	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show trending related keywords",
	Long:  `Analyzes the suggestions of past runs to find keywords that keep coming up recently.`,
	RunE:  runTrends,
}

var (
	trendsDays  int
	trendsLimit int
)

func init() {
	rootCmd.AddCommand(trendsCmd)
	trendsCmd.Flags().IntVar(&trendsDays, "days", 30, "Time window in days")
	trendsCmd.Flags().IntVarP(&trendsLimit, "limit", "l", 10, "Maximum trends to show")
}

func runTrends(cmd *cobra.Command, args []string) error {
	db, repo, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	// Older runs still count toward totals.
	suggestions, err := repo.Suggestions(time.Now().AddDate(0, 0, -10*trendsDays))
	if err != nil {
		return err
	}

	if len(suggestions) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	analyzer := trends.NewAnalyzer()
	for _, s := range suggestions {
		analyzer.AddRun(s.RunID, []string{s.Keyword}, s.CreatedAt)
	}

	list := analyzer.Trends(trendsDays, trendsLimit)
	if len(list) == 0 {
		fmt.Println("No trending keywords found.")
		return nil
	}

	fmt.Printf("\n%s (last %d days)\n\n", headerStyle.Render("TRENDING KEYWORDS"), trendsDays)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	maxScore := list[0].Score

	for i, trend := range list {
		barWidth := int((trend.Score / maxScore) * 20)
		bar := strings.Repeat("█", barWidth)

		fmt.Printf("%2d. %-20s %s %.1f (%d runs, %d recent)\n",
			i+1,
			trend.Keyword,
			barStyle.Render(bar),
			trend.Score,
			trend.Count,
			len(trend.RecentRuns))
	}

	fmt.Println()
	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past search runs",
	Long:  `List stored search runs, newest first.`,
	RunE:  runHistory,
}

var (
	historyTop    int
	historyOffset int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyTop, "top", "n", 20, "Number of runs to show")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "Skip this many runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, repo, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repo.List(historyTop, historyOffset)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs found. Run 'topicrank search <query>' first.")
		return nil
	}

	tableHeader := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	fmt.Println(tableHeader.Render(fmt.Sprintf(" %-4s  %-16s  %-7s  %-4s  %s", "#", "DATE", "RESULTS", "SUM", "QUERY")))
	fmt.Println(strings.Repeat("─", 80))

	for _, r := range runs {
		sufficient := "-"
		if r.Sufficient {
			sufficient = "✓"
		}

		query := r.Query
		if runes := []rune(query); len(runes) > 40 {
			query = string(runes[:37]) + "..."
		}

		fmt.Printf(" %s  %s  %-7d  %-4s  %s\n",
			idStyle.Render(fmt.Sprintf("%-4d", r.ID)),
			dateStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
			r.ResultCount,
			sufficient,
			query,
		)
	}

	return nil
}

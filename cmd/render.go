package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/summary"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	snippetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func printPages(pages []*page.Page, explain bool) {
	for i, p := range pages {
		fmt.Printf("%s %s %s\n",
			idStyle.Render(fmt.Sprintf("%2d.", i+1)),
			scoreStyle.Render(fmt.Sprintf("%6.1f", p.TopicScore)),
			p.Title)
		fmt.Printf("           %s\n", urlStyle.Render(p.URL))
		if explain {
			if p.ScoreDetails != "" {
				fmt.Printf("           %s\n", labelStyle.Render(p.ScoreDetails))
			}
			for _, sub := range p.SubPages {
				fmt.Printf("           ↳ %s %s (%s)\n",
					scoreStyle.Render(fmt.Sprintf("%.0f", sub.TopicScore)), sub.Title, sub.URL)
			}
		}
	}
}

func printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	rendered := make([]string, len(suggestions))
	for i, s := range suggestions {
		rendered[i] = keywordStyle.Render(s)
	}
	fmt.Printf("\n%s\n  %s\n", headerStyle.Render("RELATED:"), strings.Join(rendered, " · "))
}

func printSummary(s summary.Summary) {
	fmt.Printf("\n%s\n", headerStyle.Render("SUMMARY:"))
	fmt.Println(snippetStyle.Render(s.Body))
	for _, c := range s.Citations {
		fmt.Printf("  %s %s\n", idStyle.Render(fmt.Sprintf("[%d]", c.Rank)), urlStyle.Render(c.URL))
	}
}

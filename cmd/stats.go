package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/stats"
	"github.com/abhisek/kioku/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			agg := e.eng.Stats.Aggregate()
			row := func(label string, value any) {
				lipgloss.Fprintf(out, "%s %s\n",
					theme.Label.Render(fmt.Sprintf("%-16s", label)),
					theme.Value.Render(fmt.Sprint(value)))
			}

			lipgloss.Fprintln(out, theme.Heading.Render("Statistics"))
			row("Tier", e.eng.Tier().Label())
			row("Sessions", agg.TotalSessions)
			row("Answered", agg.TotalAnswered)
			row("Correct", agg.CorrectAnswers)
			row("Accuracy", fmt.Sprintf("%.1f%%", agg.Accuracy()*100))
			row("Study time", formatSeconds(agg.TotalTime))
			row("Avg session", agg.AverageSessionTime().String())
			row("Streak", fmt.Sprintf("%d (best %d)", agg.CurrentStreak, agg.MaxStreak))
			row("Due now", len(e.eng.Due()))
			row("Weak items", len(e.eng.Notebook.IDs()))

			if len(agg.RecentSessions) > 0 {
				fmt.Fprintln(out)
				lipgloss.Fprintln(out, theme.Heading.Render("Recent sessions"))
				recent := agg.RecentSessions
				if len(recent) > 10 {
					recent = recent[len(recent)-10:]
				}
				for i := len(recent) - 1; i >= 0; i-- {
					s := recent[i]
					fmt.Fprintf(out, "%s  %3d/%-3d  %s\n",
						s.Date.Local().Format("2006-01-02 15:04"), s.Correct, s.Total, formatSeconds(s.Time))
				}
			}
			return nil
		})
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Per-item accuracy analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		filterArg, _ := f.GetString("filter")
		sortArg, _ := f.GetString("sort")
		category, _ := f.GetString("category")
		limit, _ := f.GetInt("limit")

		filter, err := stats.ParseFilter(filterArg)
		if err != nil {
			return err
		}
		key, err := stats.ParseSortKey(sortArg)
		if err != nil {
			return err
		}

		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			ids := e.eng.Catalog.IDs()
			if category != "" {
				ids = e.eng.Catalog.ByCategory(category)
				if len(ids) == 0 {
					return fmt.Errorf("no items in category %q", category)
				}
			}

			o := e.eng.Stats.Overview(ids)
			lipgloss.Fprintln(out, theme.Heading.Render("Item analytics"))
			fmt.Fprintf(out, "%d items, %d attempted, %d good, %d poor, mean accuracy %.1f%%\n\n",
				o.Items, o.Attempted, o.Good, o.Poor, o.MeanAccuracy)

			rows := e.eng.Stats.Analyze(ids, filter, key)
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			t := grid("Item", "Correct", "Accuracy", "Grade", "Question")
			for _, s := range rows {
				it, _ := e.eng.Catalog.Get(s.ItemID)
				grade := string(s.Grade())
				switch s.Grade() {
				case stats.GradeGood:
					grade = theme.Correct.Render(grade)
				case stats.GradePoor:
					grade = theme.Incorrect.Render(grade)
				}
				t.Row(fmt.Sprintf("#%d", s.ItemID), fmt.Sprintf("%d/%d", s.CorrectAttempts, s.TotalAttempts),
					fmt.Sprintf("%.1f%%", s.Accuracy()), grade, truncate(it.Question, 50))
			}
			lipgloss.Fprintln(out, t.String())
			return nil
		})
	},
}

func init() {
	f := analyticsCmd.Flags()
	f.String("filter", string(stats.FilterAttempted), "Filter: all, attempted, good or poor")
	f.String("sort", string(stats.SortAccuracy), "Sort: number, attempts or accuracy")
	f.String("category", "", "Restrict to one category")
	f.IntP("limit", "n", 0, "Number of rows to show (0 = all)")
}

func formatSeconds(secs int) string {
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

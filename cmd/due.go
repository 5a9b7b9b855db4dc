package cmd

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/ui/theme"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List items due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			due := e.eng.Due()
			if len(due) == 0 {
				fmt.Fprintln(out, "Nothing due. Run `kioku schedule` to see what comes next.")
				return nil
			}

			lipgloss.Fprintln(out, theme.Heading.Render(fmt.Sprintf("%d due", len(due))))
			now := e.eng.Now()
			for _, id := range due {
				rs, _ := e.eng.Scheduler.State(id)
				it, _ := e.eng.Catalog.Get(id)
				overdue := ""
				if d := rs.OverdueDays(now); d >= 1 {
					overdue = fmt.Sprintf(" (%.0fd overdue)", d)
				}
				lipgloss.Fprintf(out, "%s  L%d%s  %s\n",
					theme.Label.Render(fmt.Sprintf("#%-5d", id)), rs.Level, overdue, truncate(it.Question, 60))
			}
			return nil
		})
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show upcoming reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withEnv(cmd, func(e *env) error {
			if !cmd.Flags().Changed("limit") {
				limit = e.cfg.Study.UpcomingLimit
			}
			printSchedule(cmd.OutOrStdout(), e, limit)
			return nil
		})
	},
}

func init() {
	scheduleCmd.Flags().IntP("limit", "n", 10, "Number of reviews to show (0 = all)")
}

func printSchedule(out io.Writer, e *env, limit int) {
	ids := e.eng.Catalog.IDs()
	p := e.eng.Scheduler.Partitions(ids)
	lipgloss.Fprintln(out, theme.Heading.Render("Review schedule"))
	lipgloss.Fprintf(out, "%s %d   %s %d   %s %d   %s %d   %s %d\n\n",
		theme.Label.Render("due"), len(e.eng.Due()),
		theme.Label.Render("mastered"), len(p.Mastered),
		theme.Label.Render("learning"), len(p.Learning),
		theme.Label.Render("struggling"), len(p.Struggling),
		theme.Label.Render("new"), len(e.eng.Scheduler.Unanswered(ids)))

	upcoming := e.eng.Upcoming(limit)
	if len(upcoming) == 0 {
		fmt.Fprintln(out, "No upcoming reviews.")
		return
	}
	now := e.eng.Now()
	t := grid("Item", "Due", "In", "Level", "Question")
	for _, rs := range upcoming {
		it, _ := e.eng.Catalog.Get(rs.ItemID)
		t.Row(fmt.Sprintf("#%d", rs.ItemID), rs.NextReview.Local().Format("2006-01-02"),
			fmt.Sprintf("%dd", rs.DaysUntilReview(now)), fmt.Sprintf("L%d", rs.Level), truncate(it.Question, 50))
	}
	lipgloss.Fprintln(out, t.String())
}

// grid is a borderless table whose header row is styled as a heading.
func grid(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return s.Inherit(theme.Label)
			}
			return s
		})
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// itemLine renders one catalog item for listings.
func itemLine(it catalog.Item, width int) string {
	return fmt.Sprintf("#%-5d %-4s %s", it.Number, it.Group(), truncate(it.Question, width))
}

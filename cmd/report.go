package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/critique"
	"github.com/abhisek/kioku/internal/ui/theme"
)

var reportCmd = &cobra.Command{
	Use:   "report [day]",
	Short: "Critique a study day (today, yesterday or YYYY-MM-DD)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := "today"
		if len(args) == 1 {
			arg = args[0]
		}
		cached, _ := cmd.Flags().GetBool("cached")

		return withEnv(cmd, func(e *env) error {
			day, err := parseDay(arg, e.eng.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			key := day.Format(critique.DayLayout)

			if cached {
				r, ok := e.eng.Reports.Get(key)
				if !ok {
					return fmt.Errorf("no stored report for %s", key)
				}
				printDaily(out, key, r)
				return nil
			}

			r, err := e.eng.DailyReport(cmd.Context(), day)
			if err != nil {
				return err
			}
			if r.Stats.Total == 0 {
				fmt.Fprintf(out, "No answers recorded on %s.\n", key)
				return nil
			}
			printDaily(out, key, r)
			return nil
		})
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored daily reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			days := e.eng.Reports.Days()
			if len(days) == 0 {
				fmt.Fprintln(out, "No stored reports. Run `kioku report` after studying.")
				return nil
			}
			for _, d := range days {
				r, _ := e.eng.Reports.Get(d)
				fmt.Fprintf(out, "%s  score %3d  %3d/%-3d answered  %s\n",
					d, r.OverallScore, r.Stats.Correct, r.Stats.Total, r.Source)
			}
			return nil
		})
	},
}

func init() {
	reportCmd.Flags().Bool("cached", false, "Show the stored report instead of analyzing again")
	reportCmd.AddCommand(reportListCmd)
}

// parseDay resolves a day argument in now's location.
func parseDay(arg string, now time.Time) (time.Time, error) {
	switch strings.ToLower(arg) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}
	d, err := time.ParseInLocation(critique.DayLayout, arg, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (want today, yesterday or YYYY-MM-DD)", arg)
	}
	return d, nil
}

func printDaily(out io.Writer, day string, r critique.DailyCritique) {
	lipgloss.Fprintln(out, theme.Heading.Render(fmt.Sprintf("Daily report %s  score %d/100", day, r.OverallScore)))
	s := r.Stats
	fmt.Fprintf(out, "%d answered, %d correct (%d%%), avg %ds, %d with reasoning\n",
		s.Total, s.Correct, s.Accuracy, s.AverageSeconds, s.WithReasoning)
	if r.Source != critique.SourceLLM {
		lipgloss.Fprintln(out, theme.Hint.Render("offline analysis"))
	}

	para := func(title, text string) {
		if text == "" {
			return
		}
		fmt.Fprintln(out)
		if title != "" {
			lipgloss.Fprintln(out, theme.Label.Render(title))
		}
		fmt.Fprintln(out, text)
	}
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(out)
		lipgloss.Fprintln(out, theme.Label.Render(title))
		for _, it := range items {
			fmt.Fprintf(out, "  • %s\n", it)
		}
	}

	para("Summary", r.PerformanceSummary)
	list("Thinking patterns", r.ThinkingPatterns)
	list("Strengths", r.StrengthAreas)
	list("Weaknesses", r.WeaknessAreas)
	para("Mistakes", r.MistakeAnalysis)
	list("Suggestions", r.ImprovementSuggestions)
	para("Tomorrow", r.TomorrowFocus)
	para("Efficiency", r.StudyEfficiency)
	para("", r.MotivationalMessage)
}

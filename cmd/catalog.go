package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cmd, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Heading.Render(fmt.Sprintf("%d questions", cat.Len())))
		for _, c := range cat.Categories() {
			fmt.Fprintf(out, "%-12s %4d\n", c.Name, c.Count)
		}
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search question text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cmd, cfg)
		if err != nil {
			return err
		}

		ids := cat.Search(args[0], catalog.SearchScope(scope))
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No matches.")
			return nil
		}
		for _, id := range ids {
			it, _ := cat.Get(id)
			fmt.Fprintln(out, itemLine(it, 60))
		}
		fmt.Fprintf(out, "\n%d matches. Study them with `kioku study search --search %q`.\n", len(ids), args[0])
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one question with its answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid number %q", args[0])
		}
		return withEnv(cmd, func(e *env) error {
			it, ok := e.eng.Catalog.Get(id)
			if !ok {
				return fmt.Errorf("no question #%d", id)
			}

			out := cmd.OutOrStdout()
			lipgloss.Fprintln(out, theme.Heading.Render(fmt.Sprintf("#%d  %s", it.Number, it.Group())))
			fmt.Fprintln(out, it.Question)
			fmt.Fprintln(out)
			lipgloss.Fprintf(out, "%s %s  %s\n", theme.Label.Render("Answer:"), it.Result, it.Answer)
			if it.Explanation != "" {
				fmt.Fprintln(out, it.Explanation)
			}

			s := e.eng.Stats.Item(id)
			if s.Attempted() {
				lipgloss.Fprintf(out, "%s %d/%d (%.1f%%)\n",
					theme.Label.Render("Attempts:"), s.CorrectAttempts, s.TotalAttempts, s.Accuracy())
			}
			if rs, ok := e.eng.Scheduler.State(id); ok {
				lipgloss.Fprintf(out, "%s level %d, next %s\n",
					theme.Label.Render("Review:"), rs.Level, rs.NextReview.Local().Format("2006-01-02"))
			}
			if e.eng.Notebook.Contains(id) {
				lipgloss.Fprintln(out, theme.Flagged.Render("Flagged as a weakness"))
			}
			if memo := e.eng.Notebook.Memo(id); memo != "" {
				lipgloss.Fprintf(out, "%s %s\n", theme.Label.Render("Memo:"), memo)
			}
			return nil
		})
	},
}

func init() {
	catalogSearchCmd.Flags().String("scope", string(catalog.ScopeAll), "Search scope: all, question or answer")

	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}

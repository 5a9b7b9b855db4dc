package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/ui/theme"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "List saved study sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			modes := e.eng.Sessions.SavedModes()
			if len(modes) == 0 {
				fmt.Fprintln(out, "No saved sessions.")
				return nil
			}

			lipgloss.Fprintln(out, theme.Heading.Render("Saved sessions"))
			for _, m := range modes {
				p, _ := e.eng.Sessions.Saved(m)
				fmt.Fprintf(out, "%-9s %3d/%-3d  %d correct  started %s\n",
					m, p.CurrentIndex+1, p.Len(), p.SessionCorrect,
					p.StartTime.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var progressDiscardCmd = &cobra.Command{
	Use:   "discard <mode>",
	Short: "Discard the saved session of a mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := session.ParseMode(args[0])
		if err != nil {
			return err
		}
		return withEnv(cmd, func(e *env) error {
			if !e.eng.Sessions.Discard(mode) {
				return fmt.Errorf("no saved %s session", mode)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded the saved %s session.\n", mode)
			return nil
		})
	},
}

func init() {
	progressCmd.AddCommand(progressDiscardCmd)
}

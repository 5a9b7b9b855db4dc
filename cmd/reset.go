package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/engine"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Back up and clear all learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed(cmd, "Clear all progress, statistics, weaknesses and memos?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return withEnv(cmd, func(e *env) error {
			b, err := e.eng.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Learner data cleared. Backup #%d saved; `kioku restore` brings it back.\n", b.ID)
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore learner data from the latest backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed(cmd, "Replace the current learner data with the latest backup?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return withEnv(cmd, func(e *env) error {
			b, err := e.eng.Restore(cmd.Context())
			if errors.Is(err, engine.ErrNoBackup) {
				return errors.New("no backup found")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup #%d from %s.\n",
				b.ID, b.Timestamp.Local().Format("2006-01-02 15:04"))
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	restoreCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// confirmed asks a yes/no question on the command's input unless --yes is set.
func confirmed(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	return ask(cmd.InOrStdin(), cmd.OutOrStdout(), question)
}

func ask(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

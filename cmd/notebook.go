package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/engine"
)

var weaknessCmd = &cobra.Command{
	Use:     "weakness",
	Aliases: []string{"weak"},
	Short:   "Manage the weakness notebook",
}

var weaknessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flagged items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			ids := e.eng.Notebook.IDs()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No weak items flagged.")
				return nil
			}
			listItems(out, e.eng, ids)
			return nil
		})
	},
}

var weaknessAddCmd = &cobra.Command{
	Use:   "add <number>...",
	Short: "Flag items as weaknesses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(e *env) error {
			if err := checkIDs(e.eng, ids); err != nil {
				return err
			}
			n := 0
			for _, id := range ids {
				if e.eng.Notebook.Flag(id) {
					n++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flagged %d item(s).\n", n)
			return nil
		})
	},
}

var weaknessRemoveCmd = &cobra.Command{
	Use:     "remove <number>...",
	Aliases: []string{"rm"},
	Short:   "Unflag items",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(e *env) error {
			n := 0
			for _, id := range ids {
				if e.eng.Notebook.Unflag(id) {
					n++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unflagged %d item(s).\n", n)
			return nil
		})
	},
}

var memoCmd = &cobra.Command{
	Use:   "memo",
	Short: "Manage per-question memos",
}

var memoSetCmd = &cobra.Command{
	Use:   "set <number> <text>...",
	Short: "Set the memo of a question (empty text clears it)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[:1])
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		return withEnv(cmd, func(e *env) error {
			if err := checkIDs(e.eng, ids); err != nil {
				return err
			}
			e.eng.Notebook.SetMemo(ids[0], text)
			if strings.TrimSpace(text) == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared memo for #%d.\n", ids[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved memo for #%d.\n", ids[0])
			}
			return nil
		})
	},
}

var memoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions with memos",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			ids := e.eng.Notebook.MemoIDs()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No memos.")
				return nil
			}
			for _, id := range ids {
				it, _ := e.eng.Catalog.Get(id)
				fmt.Fprintln(out, itemLine(it, 60))
				fmt.Fprintf(out, "       %s\n", e.eng.Notebook.Memo(id))
			}
			return nil
		})
	},
}

func init() {
	weaknessCmd.AddCommand(weaknessListCmd)
	weaknessCmd.AddCommand(weaknessAddCmd)
	weaknessCmd.AddCommand(weaknessRemoveCmd)

	memoCmd.AddCommand(memoSetCmd)
	memoCmd.AddCommand(memoListCmd)
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(strings.TrimPrefix(a, "#"))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func checkIDs(eng *engine.Engine, ids []int) error {
	for _, id := range ids {
		if _, ok := eng.Catalog.Get(id); !ok {
			return fmt.Errorf("no question #%d", id)
		}
	}
	return nil
}

func listItems(out io.Writer, eng *engine.Engine, ids []int) {
	for _, id := range ids {
		if it, ok := eng.Catalog.Get(id); ok {
			fmt.Fprintln(out, itemLine(it, 60))
		}
	}
}

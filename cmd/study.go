package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/session"
)

var studyCmd = &cobra.Command{
	Use:   "study <mode>",
	Short: "Start or resume a study session",
	Long: "Start or resume a study session in the TUI.\n\n" +
		"Modes: " + modeList() + "\n\n" +
		"category needs --category, search needs --search.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: modeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := studyRequest(cmd, args[0])
		if err != nil {
			return err
		}
		return runApp(cmd, &req)
	},
}

func init() {
	f := studyCmd.Flags()
	f.String("category", "", "Category to study (category mode)")
	f.String("search", "", "Text to search for (search mode)")
	f.String("scope", string(catalog.ScopeAll), "Search scope: all, question or answer")
	f.Bool("resume", true, "Continue the saved session for this mode")
	f.Bool("restart", false, "Discard the saved session and start over")
	f.Bool("shuffle", false, "Shuffle the item order")
	f.Bool("reflect", true, "Ask for reasoning before each answer")
}

func studyRequest(cmd *cobra.Command, modeArg string) (engine.StudyRequest, error) {
	mode, err := session.ParseMode(modeArg)
	if err != nil {
		return engine.StudyRequest{}, err
	}

	f := cmd.Flags()
	req := engine.StudyRequest{Mode: mode}
	req.Category, _ = f.GetString("category")
	req.Query, _ = f.GetString("search")
	req.Resume, _ = f.GetBool("resume")
	req.Restart, _ = f.GetBool("restart")
	req.Shuffle, _ = f.GetBool("shuffle")
	if req.Restart {
		req.Resume = false
	}

	scope, _ := f.GetString("scope")
	switch s := catalog.SearchScope(scope); s {
	case catalog.ScopeAll, catalog.ScopeQuestion, catalog.ScopeAnswer:
		req.Scope = s
	default:
		return engine.StudyRequest{}, fmt.Errorf("unknown scope %q (want all, question or answer)", scope)
	}
	return req, nil
}

// studyError turns session sentinels into actionable messages.
func studyError(mode session.Mode, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionInFlight):
		return fmt.Errorf("a %s session is saved; pass --resume to continue or --restart to start over", mode)
	case errors.Is(err, session.ErrNoItems):
		return fmt.Errorf("nothing to study in %s mode", mode)
	}
	return err
}

func modeNames() []string {
	out := make([]string, len(session.Modes))
	for i, m := range session.Modes {
		out[i] = string(m)
	}
	return out
}

func modeList() string {
	return strings.Join(modeNames(), ", ")
}

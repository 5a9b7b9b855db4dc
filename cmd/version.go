package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is stamped with -ldflags "-X github.com/abhisek/kioku/cmd.version=...".
var version = ""

// buildVersion returns the stamped version, else the module version and VCS
// revision recorded by the go tool.
func buildVersion() (v, rev string) {
	v = version
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return cmpOr(v, "devel"), ""
	}
	if v == "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			rev = s.Value[:7]
		}
	}
	return cmpOr(v, "devel"), rev
}

func cmpOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kioku version",
	Run: func(cmd *cobra.Command, args []string) {
		v, rev := buildVersion()
		if rev != "" {
			v += " (" + rev + ")"
		}
		fmt.Fprintln(cmd.OutOrStdout(), "kioku", v)
	},
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/llm"
	"github.com/abhisek/kioku/internal/store"
	"github.com/abhisek/kioku/internal/ui/theme"
)

const stampLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM critique requests",
}

// withEvents runs fn against the event log of the configured database.
func withEvents(cmd *cobra.Command, fn func(store.EventRepo, io.Writer) error) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s.EventRepo(), cmd.OutOrStdout())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			all, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			var rows []store.LLMRequestEventRecord
			for i := len(all) - 1; i >= 0 && (limit <= 0 || len(rows) < limit); i-- {
				if purpose == "" || all[i].Purpose == purpose {
					rows = append(rows, all[i])
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No LLM requests logged.")
				return nil
			}

			t := grid("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
			for _, e := range rows {
				ok := "yes"
				if !e.Success {
					ok = "no"
				}
				t.Row(strconv.Itoa(e.ID), e.Timestamp.Local().Format(stampLayout), e.Purpose,
					truncate(e.Model, 28), strconv.Itoa(e.InputTokens), strconv.Itoa(e.OutputTokens),
					strconv.FormatInt(e.LatencyMs, 10), ok)
			}
			lipgloss.Fprintln(out, t.String())
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one logged request with its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}
		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			e, err := events.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("no LLM request with ID %d", id)
			}
			printLLMEvent(out, e)
			return nil
		})
	},
}

func printLLMEvent(out io.Writer, e *store.LLMRequestEventRecord) {
	status := theme.Correct.Render("ok")
	if !e.Success {
		status = theme.Incorrect.Render("failed: " + e.ErrorMessage)
	}
	lipgloss.Fprintln(out, theme.Heading.Render(fmt.Sprintf("Request %d", e.ID)))
	for _, kv := range [][2]string{
		{"Time", e.Timestamp.Local().Format(stampLayout)},
		{"Backend", e.Provider + " / " + e.Model},
		{"Purpose", e.Purpose},
		{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Status", status},
	} {
		lipgloss.Fprintln(out, theme.Label.Render(fmt.Sprintf("%-9s", kv[0]))+kv[1])
	}
	for _, part := range [][2]string{{"Request", e.RequestBody}, {"Response", e.ResponseBody}} {
		body := strings.TrimSpace(part[1])
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(out)
		lipgloss.Fprintln(out, theme.Heading.Render(part[0]))
		fmt.Fprintln(out, body)
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			ctx := cmd.Context()
			byPurpose, err := events.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}
			byModel, err := events.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			lipgloss.Fprintln(out, theme.Heading.Render("Usage by purpose"))
			lipgloss.Fprintln(out, purposeTable(byPurpose))
			fmt.Fprintln(out)
			lipgloss.Fprintln(out, theme.Heading.Render("Estimated cost (USD)"))
			t, unpriced := costTable(byModel)
			lipgloss.Fprintln(out, t)
			if len(unpriced) > 0 {
				fmt.Fprintf(out, "\nNo price for: %s\n", strings.Join(unpriced, ", "))
			}
			return nil
		})
	},
}

func purposeTable(usage []store.LLMUsageStats) string {
	t := grid("Purpose", "Calls", "Input", "Output", "Avg ms")
	var total store.LLMUsageStats
	for _, u := range usage {
		t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	t.Row("total", strconv.Itoa(total.Calls), strconv.Itoa(total.InputTokens), strconv.Itoa(total.OutputTokens), "")
	return t.String()
}

// costTable prices each model. Models without a known price show "?", are
// returned as unpriced, and mark the total as partial.
func costTable(usage []store.LLMModelUsage) (string, []string) {
	t := grid("Model", "Calls", "Input", "Output", "Cost")
	var sum float64
	var unpriced []string
	for _, m := range usage {
		cost := "?"
		if p := llm.LookupCost(m.Model); p != nil {
			c := p.Cost(m.InputTokens, m.OutputTokens)
			sum += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, m.Model)
		}
		t.Row(truncate(m.Model, 32), strconv.Itoa(m.Calls), strconv.Itoa(m.InputTokens), strconv.Itoa(m.OutputTokens), cost)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	t.Row(label, "", "", "", formatCost(sum))
	return t.String(), unpriced
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "",
		fmt.Sprintf("Only show one purpose (%s or %s)", llm.PurposeCritique, llm.PurposeDailyReport))

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

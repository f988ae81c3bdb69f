package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/cli"
	"agentic/gateway/pkg/config"
)

var exchangesFlags struct {
	sessionID string
	since     string
	limit     int
	format    string
}

var exchangesCmd = &cobra.Command{
	Use:   "exchanges",
	Short: "Query the exchange audit trail",
	Long: `Print recorded exchanges from the audit store named in the config.

Only the sqlite backend outlives the server process; a memory store is
always empty here.

Examples:
  # Last 100 exchanges
  gateway exchanges --config config.yaml

  # One session over the last day, as CSV
  gateway exchanges --config config.yaml --session <id> --since 24h --format csv`,
	RunE: queryExchanges,
}

func init() {
	rootCmd.AddCommand(exchangesCmd)

	exchangesCmd.Flags().StringVar(&exchangesFlags.sessionID, "session", "", "only exchanges of this session")
	exchangesCmd.Flags().StringVar(&exchangesFlags.since, "since", "", "only exchanges after this time (RFC3339 or a duration such as 24h)")
	exchangesCmd.Flags().IntVar(&exchangesFlags.limit, "limit", audit.DefaultQueryLimit, "maximum number of exchanges")
	exchangesCmd.Flags().StringVar(&exchangesFlags.format, "format", "text", "output format: text, json, csv")
}

func queryExchanges(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(exchangesFlags.format))
	if err != nil {
		return err
	}

	since, err := parseSince(exchangesFlags.since, time.Now())
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	store, err := audit.Open(cfg.Audit)
	if err != nil {
		return cli.NewCommandError("exchanges", err)
	}
	defer store.Close()

	records, err := store.Query(context.Background(), &audit.Query{
		SessionID: exchangesFlags.sessionID,
		Since:     since,
		Limit:     exchangesFlags.limit,
	})
	if err != nil {
		return cli.NewCommandError("exchanges", err)
	}

	if exchangesFlags.format == string(cli.FormatJSON) {
		return formatter.FormatTo(cmd.OutOrStdout(), records)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), exchangeTable(records))
}

// parseSince accepts an RFC3339 timestamp or a duration back from now.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want RFC3339 or a duration", value)
	}
	return t, nil
}

type exchangeTable []*audit.Record

func (t exchangeTable) Header() []string {
	return []string{"started", "session", "transport", "model", "outcome", "frames", "bytes", "duration"}
}

func (t exchangeTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.StartedAt.UTC().Format(time.RFC3339),
			r.SessionID,
			r.Transport,
			r.Model,
			r.Outcome,
			strconv.Itoa(r.Frames),
			strconv.Itoa(r.ResponseBytes),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/voicebridge/pkg/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List live call sessions",
	Long: `List every in-flight call transaction in the session store.
Join tokens are live credentials and are never printed.`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRANSACTION\tMEETING\tATTENDEE\tLEG\tSTATE\tAGE")
	count := 0
	err = store.List(cmd.Context(), func(txID string, m session.Metadata) bool {
		age := "-"
		if m.StoredAt > 0 {
			age = time.Since(time.UnixMilli(m.StoredAt)).Round(time.Second).String()
		}
		state := m.State
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			txID, m.MeetingID, orDash(m.AttendeeID), orDash(m.LegCallID), state, age)
		count++
		return true
	})
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("no live sessions")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

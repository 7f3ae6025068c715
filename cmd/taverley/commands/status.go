package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mxtrix/Happy-Little-Taverley/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session history",
	Long: `Display rotation history from the session database.

Shows accumulated work time per task and the most recent switches
(default: 5).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		last, _ := cmd.Flags().GetInt("last")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		database, err := openState(cfg)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer func() { _ = database.Close() }()

		st, err := state.New(database)
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}

		return showStatus(st, last)
	},
}

func init() {
	statusCmd.Flags().IntP("last", "n", 5, "Show last N switches")
	rootCmd.AddCommand(statusCmd)
}

func showStatus(st *state.State, last int) error {
	summary, err := st.GetSummary()
	if err != nil {
		return fmt.Errorf("loading summary: %w", err)
	}

	if summary.Switches == 0 && summary.WorkSessions == 0 {
		fmt.Println("No session history found.")
		return nil
	}

	fmt.Printf("Session Summary\n")
	fmt.Printf("===============\n\n")
	fmt.Printf("Switches:  %d total (%d refused)\n", summary.Switches, summary.FailedSwitches)
	fmt.Printf("Sessions:  %d\n", summary.WorkSessions)
	fmt.Printf("Worked:    %s\n", summary.TotalWork.Round(time.Second))

	totals, err := st.TaskTotals()
	if err != nil {
		return fmt.Errorf("loading task totals: %w", err)
	}
	if len(totals) > 0 {
		fmt.Printf("\nWork per task:\n")
		for _, tt := range totals {
			fmt.Printf("  %-24s %3d session(s)  %s\n", tt.Task, tt.Sessions, tt.Total.Round(time.Second))
		}
	}

	switches, err := st.RecentSwitches(last)
	if err != nil {
		return fmt.Errorf("loading switches: %w", err)
	}
	if len(switches) > 0 {
		fmt.Printf("\nLast %d switches:\n", len(switches))
		for _, sw := range switches {
			outcome := "ok"
			if !sw.OK {
				outcome = "refused"
			}
			fmt.Printf("  [%s] %s -> %s (%s, %s)\n",
				sw.At.Format("2006-01-02 15:04"), sw.FromTask, sw.ToTask, sw.Reason, outcome)
		}
	}

	return nil
}

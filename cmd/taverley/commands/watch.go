package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/orchestrator"
	"github.com/mxtrix/Happy-Little-Taverley/internal/state"
	"github.com/mxtrix/Happy-Little-Taverley/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the rotation with a live dashboard",
	Long: `Start the rotation and watch it in a terminal dashboard.

The dashboard shows the current task, each task's active flag and
accumulated work timer, and a scrolling event log. Quit with q; the
rotation stops when the dashboard closes.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("random", false, "Pick the next task at random")
	watchCmd.Flags().Int("max-switches", 0, "Stop after N completed switches (0 = run forever)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	random, _ := cmd.Flags().GetBool("random")
	maxSwitches, _ := cmd.Flags().GetInt("max-switches")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.Component("watch")

	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	defer closeClient()

	reg, err := buildRegistry(cfg, cl)
	if err != nil {
		return err
	}

	database, err := openState(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = database.Close() }()

	st, err := state.New(database)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}

	oc := orchestratorConfig(cfg)
	if random {
		oc.Mode = orchestrator.ModeRandom
	}
	oc.MaxSwitches = maxSwitches

	// Snapshot the roster for the dashboard before the rotation
	// goroutine starts; from here on it reads event snapshots only.
	model := ui.New(orchestrator.SnapshotTasks(reg))
	program := tea.NewProgram(*model, tea.WithAltScreen())

	orch := orchestrator.New(
		orchestrator.WithRegistry(reg),
		orchestrator.WithClient(cl),
		orchestrator.WithState(st),
		orchestrator.WithConfig(oc),
		orchestrator.WithLogger(logging.Component("orchestrator")),
		orchestrator.WithEventHandler(func(e orchestrator.Event) {
			program.Send(ui.EventMsg(e))
		}),
	)

	watchConfig(cmd, orch, func(c *orchestrator.Config) {
		if random {
			c.Mode = orchestrator.ModeRandom
		}
		c.MaxSwitches = maxSwitches
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() {
		runDone <- orch.Run(ctx)
	}()

	// The dashboard owns the foreground; closing it stops the rotation.
	_, uiErr := program.Run()
	cancel()

	runErr := <-runDone
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		if errors.Is(runErr, orchestrator.ErrAllInactive) {
			fmt.Println("Rotation ended: every task went inactive.")
		} else {
			log.Err(runErr).Msg("rotation failed")
			return runErr
		}
	}
	return uiErr
}

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/orchestrator"
	"github.com/mxtrix/Happy-Little-Taverley/internal/rotation"
	"github.com/mxtrix/Happy-Little-Taverley/internal/state"
)

// isInteractive reports whether stdout is a terminal. Override in tests.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// confirmRun prompts the user for confirmation unless bypassed by flags
// or non-TTY context. Returns true if the rotation should start.
func confirmRun(yes bool, log *logging.Logger) (bool, error) {
	if yes {
		return true, nil
	}
	if !isInteractive() {
		log.Info("non-TTY: auto-confirming")
		return true, nil
	}
	fmt.Print("Start rotation? [y/N]: ")
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		ans := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(ans, "y") || strings.EqualFold(ans, "yes") {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read stdin: %w", err)
	}
	return false, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the task rotation",
	Long: `Start rotating through the configured tasks.

Before starting, taverley displays the task roster with each task's
eligibility against the account's current levels. In interactive
terminals a confirmation prompt is shown; use --yes to skip it. In
non-TTY environments (cron, daemon, CI) confirmation is auto-skipped.

Use --dry-run to display the roster and exit without doing anything.

Flags:
  --random           Pick the next task at random instead of cycling
                     in order. Overrides rotation.mode from the config.
  --max-switches N   Stop after N completed switches (0 = run forever).
  --yes / -y         Skip the confirmation prompt.
  --dry-run          Show the roster and exit without running.

Examples:
  taverley run                    # Interactive: roster + prompt
  taverley run --yes              # Skip confirmation
  taverley run --dry-run          # Preview only
  taverley run --random           # Random rotation order
  taverley run --max-switches 10  # Bounded session`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "Show the roster and exit without running")
	runCmd.Flags().Bool("random", false, "Pick the next task at random")
	runCmd.Flags().Int("max-switches", 0, "Stop after N completed switches (0 = run forever)")
	runCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	random, _ := cmd.Flags().GetBool("random")
	maxSwitches, _ := cmd.Flags().GetInt("max-switches")
	yes, _ := cmd.Flags().GetBool("yes")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\ninterrupt received, shutting down...")
		cancel()
	}()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.Component("run")
	log.Info("starting taverley run")

	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	defer closeClient()

	reg, err := buildRegistry(cfg, cl)
	if err != nil {
		return err
	}

	displayRoster(os.Stdout, reg, cl)

	if dryRun {
		fmt.Println("[dry-run] Rotation not started.")
		return nil
	}

	proceed, err := confirmRun(yes, log)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Println("Cancelled.")
		return nil
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

	orch := orchestrator.New(
		orchestrator.WithRegistry(reg),
		orchestrator.WithClient(cl),
		orchestrator.WithState(st),
		orchestrator.WithConfig(oc),
		orchestrator.WithLogger(logging.Component("orchestrator")),
	)

	watchConfig(cmd, orch, func(c *orchestrator.Config) {
		if random {
			c.Mode = orchestrator.ModeRandom
		}
		c.MaxSwitches = maxSwitches
	})

	start := time.Now()
	runErr := orch.Run(ctx)

	duration := time.Since(start).Round(time.Second)
	switch {
	case errors.Is(runErr, orchestrator.ErrAllInactive):
		fmt.Printf("\nRotation ended after %s: every task went inactive.\n", duration)
		return nil
	case errors.Is(runErr, context.Canceled):
		fmt.Printf("\nRotation stopped after %s.\n", duration)
		return nil
	case runErr != nil:
		return runErr
	}
	fmt.Printf("\nRotation complete after %s.\n", duration)
	return nil
}

// displayRoster prints each configured task with its eligibility
// against the account's current levels.
func displayRoster(w io.Writer, reg *rotation.Registry, cl client.Client) {
	fmt.Fprintf(w, "\n=== Task Roster ===\n")
	for i, t := range reg.Tasks() {
		marker := " "
		if i == reg.CurrentIndex() {
			marker = ">"
		}
		eligibility := "ok"
		if !t.CanDo(cl) {
			eligibility = fmt.Sprintf("needs %s %d (have %d)",
				t.Skill, t.RequiredLevel, cl.SkillLevel(t.Skill))
		}
		fmt.Fprintf(w, " %s %d. %-24s %-12s lvl %2d  %s\n",
			marker, i+1, t.Name, t.Skill, t.RequiredLevel, eligibility)
	}
	fmt.Fprintln(w)
}

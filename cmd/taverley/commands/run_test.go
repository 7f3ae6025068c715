package commands

import (
	"strings"
	"testing"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/config"
	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/orchestrator"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Client.Skills = map[string]int{"woodcutting": 40, "fishing": 10}
	cfg.Tasks = []config.TaskConfig{
		{Name: "chop-oaks", Skill: "woodcutting", RequiredLevel: 15},
		{Name: "fly-fish", Skill: "fishing", RequiredLevel: 20},
	}
	return cfg
}

func TestConfirmRunYesFlag(t *testing.T) {
	log := logging.Component("test")

	proceed, err := confirmRun(true, log)
	if err != nil {
		t.Fatalf("confirmRun: %v", err)
	}
	if !proceed {
		t.Error("--yes should confirm without prompting")
	}
}

func TestConfirmRunNonTTY(t *testing.T) {
	orig := isInteractive
	isInteractive = func() bool { return false }
	defer func() { isInteractive = orig }()

	proceed, err := confirmRun(false, logging.Component("test"))
	if err != nil {
		t.Fatalf("confirmRun: %v", err)
	}
	if !proceed {
		t.Error("non-TTY should auto-confirm")
	}
}

func TestBuildClientSim(t *testing.T) {
	cfg := testConfig()
	cfg.Client.Member = true

	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		t.Fatalf("buildClient: %v", err)
	}
	defer closeClient()

	if got := cl.SkillLevel(game.SkillWoodcutting); got != 40 {
		t.Errorf("sim woodcutting = %d, want 40", got)
	}
	ms, ok := cl.(client.MembershipSource)
	if !ok || !ms.IsMember() {
		t.Error("expected member sim client")
	}
}

func TestBuildClientUnknownKind(t *testing.T) {
	cfg := testConfig()
	cfg.Client.Kind = "telepathy"

	if _, _, err := buildClient(cfg); err == nil {
		t.Error("expected error for unknown client kind")
	}
}

func TestBuildRegistry(t *testing.T) {
	cfg := testConfig()
	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		t.Fatalf("buildClient: %v", err)
	}
	defer closeClient()

	reg, err := buildRegistry(cfg, cl)
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("registry has %d tasks, want 2", reg.Len())
	}
	if reg.CountActive() != 2 {
		t.Errorf("countActive = %d, want 2", reg.CountActive())
	}
}

func TestBuildRegistryNoTasks(t *testing.T) {
	cfg := config.Default()
	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		t.Fatalf("buildClient: %v", err)
	}
	defer closeClient()

	if _, err := buildRegistry(cfg, cl); err == nil {
		t.Error("expected error with no tasks configured")
	}
}

func TestOrchestratorConfigMapping(t *testing.T) {
	cfg := testConfig()
	cfg.Rotation.Mode = config.ModeRandom
	cfg.Rotation.KeepPreviousActive = false
	cfg.Travel.Timeout = 0 // zero falls back to the default bound

	oc := orchestratorConfig(cfg)
	if oc.Mode != orchestrator.ModeRandom {
		t.Errorf("mode = %q, want random", oc.Mode)
	}
	if oc.KeepPreviousActive {
		t.Error("expected keep_previous_active carried over")
	}
	if oc.Travel.ArrivalTimeout <= 0 {
		t.Error("expected default arrival timeout when unset")
	}
}

func TestDisplayRoster(t *testing.T) {
	cfg := testConfig()
	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		t.Fatalf("buildClient: %v", err)
	}
	defer closeClient()

	reg, err := buildRegistry(cfg, cl)
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}

	var b strings.Builder
	displayRoster(&b, reg, cl)
	out := b.String()

	if !strings.Contains(out, "chop-oaks") {
		t.Error("roster missing eligible task")
	}
	// fly-fish needs level 20, the sim only has 10
	if !strings.Contains(out, "needs fishing 20 (have 10)") {
		t.Errorf("roster missing ineligibility note, got:\n%s", out)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
)

const sampleYAML = `
logging:
  level: debug
  path: ""
  format: text
rotation:
  mode: random
  keep_previous_active: false
  work_interval: 45m
travel:
  timeout: 10s
  poll_interval: 250ms
client:
  kind: sim
  member: true
  skills:
    woodcutting: 61
    fishing: 48
tasks:
  - name: Willow chopping
    skill: woodcutting
    required_level: 30
    area: {min_x: 100, min_y: 100, max_x: 110, max_y: 110}
    anchor: falador
    path:
      - {x: 90, y: 95}
      - {x: 105, y: 105}
  - name: Lobster fishing
    skill: fishing
    required_level: 40
    members_only: true
    area: {min_x: 20, min_y: 0, max_x: 30, max_y: 10}
`

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taverley.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Rotation.Mode != ModeRandom {
		t.Errorf("rotation.mode = %q, want random", cfg.Rotation.Mode)
	}
	if cfg.Rotation.KeepPreviousActive {
		t.Error("keep_previous_active = true, want false")
	}
	if cfg.Rotation.WorkInterval != 45*time.Minute {
		t.Errorf("work_interval = %v, want 45m", cfg.Rotation.WorkInterval)
	}
	if cfg.Travel.PollInterval != 250*time.Millisecond {
		t.Errorf("poll_interval = %v, want 250ms", cfg.Travel.PollInterval)
	}
	if !cfg.Client.Member {
		t.Error("client.member = false, want true")
	}
	if len(cfg.Tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(cfg.Tasks))
	}

	chop := cfg.Tasks[0]
	if chop.Name != "Willow chopping" || chop.RequiredLevel != 30 {
		t.Errorf("unexpected first task: %+v", chop)
	}
	if chop.Area != (game.Rect{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}) {
		t.Errorf("unexpected area: %+v", chop.Area)
	}
	if len(chop.Path) != 2 || chop.Path[1] != (game.Point{X: 105, Y: 105}) {
		t.Errorf("unexpected path: %+v", chop.Path)
	}
	if !cfg.Tasks[1].MembersOnly {
		t.Error("tasks[1].members_only = false, want true")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "tasks: []\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Rotation.Mode != ModeSequential {
		t.Errorf("default rotation.mode = %q, want sequential", cfg.Rotation.Mode)
	}
	if !cfg.Rotation.KeepPreviousActive {
		t.Error("default keep_previous_active = false, want true")
	}
	if cfg.Travel.Timeout != 15*time.Second {
		t.Errorf("default travel.timeout = %v, want 15s", cfg.Travel.Timeout)
	}
	if cfg.Client.Kind != ClientSim {
		t.Errorf("default client.kind = %q, want sim", cfg.Client.Kind)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad rotation mode", "rotation:\n  mode: chaotic\n"},
		{"remote without url", "client:\n  kind: remote\n"},
		{"unknown client kind", "client:\n  kind: telnet\n"},
		{"task missing name", "tasks:\n  - skill: mining\n    required_level: 10\n"},
		{"task unknown skill", "tasks:\n  - name: x\n    skill: sorcery\n    required_level: 10\n"},
		{"task level out of range", "tasks:\n  - name: x\n    skill: mining\n    required_level: 100\n"},
		{"task inverted area", "tasks:\n  - name: x\n    skill: mining\n    required_level: 10\n    area: {min_x: 5, max_x: 1, min_y: 0, max_y: 1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}

func TestRotationTasks(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tasks := cfg.RotationTasks()
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	if tasks[0].Skill != game.SkillWoodcutting {
		t.Errorf("skill = %q, want woodcutting", tasks[0].Skill)
	}
	if tasks[0].Anchor != game.Anchor("falador") {
		t.Errorf("anchor = %q, want falador", tasks[0].Anchor)
	}
	if tasks[1].Anchor.IsSet() {
		t.Error("tasks[1] anchor should be unset")
	}
}

func TestSimSkills(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	skills := cfg.SimSkills()
	if skills[game.SkillWoodcutting] != 61 {
		t.Errorf("woodcutting = %d, want 61", skills[game.SkillWoodcutting])
	}
	if skills[game.SkillFishing] != 48 {
		t.Errorf("fishing = %d, want 48", skills[game.SkillFishing])
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() with missing explicit file should error")
	}
}

func TestWatchFiresOnChange(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	changed := make(chan *Config, 1)
	if err := Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	edited := strings.Replace(sampleYAML, "work_interval: 45m", "work_interval: 5m", 1)
	if err := os.WriteFile(path, []byte(edited), 0644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Rotation.WorkInterval != 5*time.Minute {
			t.Errorf("reloaded work_interval = %v, want 5m", cfg.Rotation.WorkInterval)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not invoked after config edit")
	}
}

func TestWatchSkipsInvalidReload(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	changed := make(chan *Config, 4)
	if err := Watch(path, func(c *Config) {
		changed <- c
	}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	broken := strings.Replace(sampleYAML, "mode: random", "mode: chaotic", 1)
	if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	// The invalid edit must never surface; a following valid edit must.
	fixed := strings.Replace(sampleYAML, "mode: random", "mode: sequential", 1)
	time.Sleep(500 * time.Millisecond)
	if err := os.WriteFile(path, []byte(fixed), 0644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Rotation.Mode != ModeSequential {
			t.Errorf("reloaded mode = %q, want the valid edit only", cfg.Rotation.Mode)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not invoked after the valid edit")
	}
}

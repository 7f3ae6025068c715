package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
)

// fastTravel keeps the arrival poll tight so tests stay quick.
func fastTravel() TravelOptions {
	return TravelOptions{
		ArrivalTimeout: 50 * time.Millisecond,
		PollInterval:   time.Millisecond,
	}
}

func chopTask() Task {
	return Task{
		Name:          "Willow chopping",
		Skill:         game.SkillWoodcutting,
		RequiredLevel: 30,
		Area:          game.Rect{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110},
		Anchor:        game.Anchor("falador"),
		Path: []game.Point{
			{X: 90, Y: 95},
			{X: 98, Y: 102},
			{X: 105, Y: 105},
		},
	}
}

func TestInArea(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(nil)

	sim.SetPosition(game.Point{X: 105, Y: 105})
	if !task.InArea(sim) {
		t.Error("InArea() = false inside the area")
	}

	sim.SetPosition(game.Point{X: 0, Y: 0})
	if task.InArea(sim) {
		t.Error("InArea() = true outside the area")
	}
}

func TestTravelToAlreadyThereIsNoOp(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(nil)
	sim.SetPosition(game.Point{X: 105, Y: 105})

	if !task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Fatal("TravelTo() = false while already in area")
	}

	teleports, walks, blindWalks := sim.Stats()
	if teleports != 0 || walks != 0 || blindWalks != 0 {
		t.Errorf("TravelTo() moved despite being in area: %d/%d/%d", teleports, walks, blindWalks)
	}
}

func TestTravelToTeleportThenWalk(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 90, Y: 95})
	sim.ArrivalDelayPolls = 3

	if !task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Fatal("TravelTo() = false, want true")
	}

	teleports, walks, blindWalks := sim.Stats()
	if teleports != 1 {
		t.Errorf("teleports = %d, want 1", teleports)
	}
	if walks != 1 {
		t.Errorf("walks = %d, want 1", walks)
	}
	if blindWalks != 0 {
		t.Errorf("blindWalks = %d, want 0", blindWalks)
	}
	if got := sim.Position(); got != (game.Point{X: 105, Y: 105}) {
		t.Errorf("final position = %v, want path end", got)
	}
}

func TestTravelToWalkFailureFallsBackToBlindWalk(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 90, Y: 95})
	sim.FailWalks = true

	if !task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Fatal("TravelTo() = false, want true via blind-walk fallback")
	}

	_, walks, blindWalks := sim.Stats()
	if walks != 1 {
		t.Errorf("walks = %d, want 1", walks)
	}
	if blindWalks != 1 {
		t.Errorf("blindWalks = %d, want 1", blindWalks)
	}
}

func TestTravelToNoAnchorSkipsTeleport(t *testing.T) {
	task := chopTask()
	task.Anchor = game.AnchorNone
	sim := client.NewSim(nil)

	if !task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Fatal("TravelTo() = false, want true")
	}

	teleports, _, _ := sim.Stats()
	if teleports != 0 {
		t.Errorf("teleports = %d, want 0 without anchor", teleports)
	}
}

func TestTravelToReportsFailureWhenPathEndsOutside(t *testing.T) {
	task := chopTask()
	// Path that never reaches the area.
	task.Path = []game.Point{{X: 5, Y: 5}}
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 90, Y: 95})

	if task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Error("TravelTo() = true with a path ending outside the area")
	}
}

// A never-confirming teleport must not block past the timeout: the walk
// proceeds anyway and travel still succeeds.
func TestTravelToArrivalTimeoutIsBestEffort(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 90, Y: 95})
	sim.ArrivalDelayPolls = 1 << 30

	start := time.Now()
	ok := task.TravelTo(context.Background(), sim, fastTravel())
	elapsed := time.Since(start)

	if !ok {
		t.Error("TravelTo() = false, want true after poll timeout")
	}
	if elapsed > 2*time.Second {
		t.Errorf("TravelTo() blocked %v, poll should time out quickly", elapsed)
	}
}

func TestTravelToHonorsContextCancel(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 90, Y: 95})
	sim.ArrivalDelayPolls = 1 << 30

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := TravelOptions{ArrivalTimeout: time.Hour, PollInterval: time.Millisecond}
	done := make(chan bool, 1)
	go func() {
		done <- task.TravelTo(ctx, sim, opts)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("TravelTo() did not return after context cancellation")
	}
}

func TestCanDoBoundary(t *testing.T) {
	task := chopTask()
	sim := client.NewSim(map[game.Skill]int{game.SkillWoodcutting: 30})

	if !task.CanDo(sim) {
		t.Error("CanDo() = false at exactly the required level")
	}

	sim.SetSkill(game.SkillWoodcutting, 29)
	if task.CanDo(sim) {
		t.Error("CanDo() = true below the required level")
	}
}

func TestTravelToWithoutPathBlindWalksToCenter(t *testing.T) {
	task := chopTask()
	task.Path = nil
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 90, Y: 90}) // lands short of the area

	if !task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Fatal("TravelTo() = false for a pathless task")
	}

	center := task.Area.Center()
	if got := sim.Position(); got != center {
		t.Errorf("position = %v, want area center %v", got, center)
	}
	teleports, walks, blindWalks := sim.Stats()
	if teleports != 1 || walks != 0 || blindWalks != 1 {
		t.Errorf("stats = (%d teleports, %d walks, %d blind), want (1, 0, 1)",
			teleports, walks, blindWalks)
	}
}

func TestTravelToWithoutPathSkipsWalkWhenLandedInside(t *testing.T) {
	task := chopTask()
	task.Path = nil
	sim := client.NewSim(nil)
	sim.SetAnchor(task.Anchor, game.Point{X: 105, Y: 105})

	if !task.TravelTo(context.Background(), sim, fastTravel()) {
		t.Fatal("TravelTo() = false after landing inside the area")
	}

	_, walks, blindWalks := sim.Stats()
	if walks != 0 || blindWalks != 0 {
		t.Errorf("expected no walking after an in-area landing, got %d walks %d blind", walks, blindWalks)
	}
}

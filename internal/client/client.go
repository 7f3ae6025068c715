// Package client defines the game-client collaborator interfaces the
// rotation core depends on, plus the bundled implementations: an
// in-memory simulator and a websocket bridge to an external helper.
package client

import (
	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
)

// SkillSource reports the player's current level in a skill.
// Levels change over a run, so callers must not cache results.
type SkillSource interface {
	SkillLevel(skill game.Skill) int
}

// PositionSource reports the player's current tile position.
type PositionSource interface {
	Position() game.Point
}

// Traveler performs movement actions in the game world.
type Traveler interface {
	// TeleportTo triggers the teleport for the given anchor.
	TeleportTo(anchor game.Anchor) error
	// DetectArrival reports whether the landmark for the anchor is
	// visible, i.e. the teleport has landed.
	DetectArrival(anchor game.Anchor) bool
	// WalkPath walks the waypoint sequence, reporting success.
	WalkPath(path []game.Point) bool
	// BlindWalkTo walks straight toward the point, ignoring obstacles.
	BlindWalkTo(p game.Point)
}

// Client is the full game-client surface the bot needs.
type Client interface {
	SkillSource
	PositionSource
	Traveler
}

// MembershipSource reports whether the account can enter members-only
// areas. Optional: clients that don't know report false.
type MembershipSource interface {
	IsMember() bool
}

package client

import (
	"sync"

	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
)

// Sim is a deterministic in-memory Client used for dry runs and tests.
// Walks move the player instantly; teleports land after a configurable
// number of arrival polls.
type Sim struct {
	mu sync.Mutex

	skills  map[game.Skill]int
	pos     game.Point
	member  bool
	anchors map[game.Anchor]game.Point

	// FailWalks makes WalkPath report failure without moving, forcing
	// callers onto their blind-walk fallback.
	FailWalks bool

	// ArrivalDelayPolls is how many DetectArrival calls after a teleport
	// return false before the landing is confirmed.
	ArrivalDelayPolls int

	pendingPolls int
	landed       bool

	walkCalls      int
	blindWalkCalls int
	teleportCalls  int
}

// NewSim returns a simulator at the origin with the given skill levels.
func NewSim(skills map[game.Skill]int) *Sim {
	s := &Sim{
		skills:  make(map[game.Skill]int, len(skills)),
		anchors: make(map[game.Anchor]game.Point),
		landed:  true,
	}
	for k, v := range skills {
		s.skills[k] = v
	}
	return s
}

// SetAnchor registers the landing tile for a teleport anchor.
func (s *Sim) SetAnchor(anchor game.Anchor, landing game.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors[anchor] = landing
}

// SetSkill updates a skill level mid-run.
func (s *Sim) SetSkill(skill game.Skill, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills[skill] = level
}

// SetPosition moves the player directly.
func (s *Sim) SetPosition(p game.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = p
}

// SetMember sets the account's membership flag.
func (s *Sim) SetMember(member bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.member = member
}

// SkillLevel implements SkillSource. Unknown skills read as level 1.
func (s *Sim) SkillLevel(skill game.Skill) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lvl, ok := s.skills[skill]; ok {
		return lvl
	}
	return 1
}

// Position implements PositionSource.
func (s *Sim) Position() game.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// IsMember implements MembershipSource.
func (s *Sim) IsMember() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.member
}

// TeleportTo implements Traveler. The player lands at the anchor tile,
// but DetectArrival only confirms after ArrivalDelayPolls polls.
func (s *Sim) TeleportTo(anchor game.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teleportCalls++
	if landing, ok := s.anchors[anchor]; ok {
		s.pos = landing
	}
	s.pendingPolls = s.ArrivalDelayPolls
	s.landed = s.pendingPolls == 0
	return nil
}

// DetectArrival implements Traveler.
func (s *Sim) DetectArrival(anchor game.Anchor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.landed {
		return true
	}
	s.pendingPolls--
	if s.pendingPolls <= 0 {
		s.landed = true
	}
	return s.landed
}

// WalkPath implements Traveler. On success the player ends on the last
// waypoint.
func (s *Sim) WalkPath(path []game.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walkCalls++
	if s.FailWalks || len(path) == 0 {
		return false
	}
	s.pos = path[len(path)-1]
	return true
}

// BlindWalkTo implements Traveler. Always reaches the target.
func (s *Sim) BlindWalkTo(p game.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blindWalkCalls++
	s.pos = p
}

// Stats returns action counters for test assertions.
func (s *Sim) Stats() (teleports, walks, blindWalks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teleportCalls, s.walkCalls, s.blindWalkCalls
}

package game

import (
	"fmt"
	"strings"
)

// Skill identifies a trainable skill.
type Skill string

const (
	SkillWoodcutting Skill = "woodcutting"
	SkillFishing     Skill = "fishing"
	SkillMining      Skill = "mining"
	SkillAgility     Skill = "agility"
	SkillThieving    Skill = "thieving"
	SkillCombat      Skill = "combat"
	SkillCooking     Skill = "cooking"
	SkillFiremaking  Skill = "firemaking"
)

// AllSkills lists every known skill.
func AllSkills() []Skill {
	return []Skill{
		SkillWoodcutting,
		SkillFishing,
		SkillMining,
		SkillAgility,
		SkillThieving,
		SkillCombat,
		SkillCooking,
		SkillFiremaking,
	}
}

// ParseSkill converts a config string into a Skill.
func ParseSkill(s string) (Skill, error) {
	candidate := Skill(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSkills() {
		if candidate == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown skill: %q", s)
}

// MaxLevel is the level cap shared by all skills.
const MaxLevel = 99

// Anchor identifies a teleport destination. The empty value means the
// task has no teleport and is reached by walking only.
type Anchor string

// AnchorNone is the sentinel for "no teleport anchor".
const AnchorNone Anchor = ""

// IsSet reports whether the anchor names a real teleport destination.
func (a Anchor) IsSet() bool {
	return a != AnchorNone
}

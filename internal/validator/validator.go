// Package validator checks a character draft against the builder's legality
// rules. Rules run in a fixed order and the first failure wins.
package validator

import (
	"character-builder/internal/domain"
)

const (
	CodeValid       = 0
	CodeNoCharacter = 1
)

type rule struct {
	message string
	check   func(*domain.RawCharacter) bool
}

var rules = []rule{
	{"No character found", func(c *domain.RawCharacter) bool { return !c.IsEmpty() }},
	{"Missing a name", func(c *domain.RawCharacter) bool { return c.Name != "" }},
	{"Missing a species", func(c *domain.RawCharacter) bool { return c.Species != nil && c.Species.Name != "" }},
	{"Missing class levels", func(c *domain.RawCharacter) bool { return len(c.Classes) > 0 }},
	{"Missing hit points for a class", hasHitPoints},
	{"Missing an ability score", hasAbilityScores},
	{"Missing a background", func(c *domain.RawCharacter) bool { return c.Background != nil && c.Background.Name != "" }},
	{"Missing a background feat", func(c *domain.RawCharacter) bool {
		return c.Background != nil && c.Background.Feat != nil && c.Background.Feat.Name != ""
	}},
}

// Validate returns the first failing rule, coded 1 + its index, or code 0
// when every rule passes. A nil draft reports code 1.
func Validate(c *domain.RawCharacter) domain.ValidationResult {
	if c == nil {
		return domain.ValidationResult{Code: CodeNoCharacter, Message: "No Character Found", IsValid: false}
	}
	for i, r := range rules {
		if !r.check(c) {
			return domain.ValidationResult{Code: i + 1, Message: r.message, IsValid: false}
		}
	}
	return domain.ValidationResult{Code: CodeValid, Message: "All checks passed", IsValid: true}
}

// The first class's level 1 hit points are fixed, so it records one entry
// fewer than its level count.
func hasHitPoints(c *domain.RawCharacter) bool {
	for i, class := range c.Classes {
		want := class.Levels
		if i == 0 {
			want--
		}
		if len(class.HitPoints) != want {
			return false
		}
	}
	return true
}

func hasAbilityScores(c *domain.RawCharacter) bool {
	if len(c.BaseAbilityScores) != len(domain.AbilityScores) {
		return false
	}
	for _, name := range domain.AbilityScores {
		score, ok := c.BaseAbilityScores[name]
		if !ok || score <= 0 {
			return false
		}
	}
	return true
}

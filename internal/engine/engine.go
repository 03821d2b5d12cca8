// Package engine computes a derived character sheet from a draft and the
// reference rule tables.
package engine

import (
	"fmt"
	"strings"

	"character-builder/internal/domain"
)

const (
	baseArmorClass    = 10
	basePassiveScore  = 10
	defaultSpeed      = 30
	travelHoursPerDay = 8
)

// ComputeDerivedSheet expects a draft that already passed validation. It
// returns an error when the draft references rules the tables do not know.
func ComputeDerivedSheet(
	raw domain.RawCharacter,
	classes []domain.ClassInfo,
	archetypes []domain.ArchetypeInfo,
	species []domain.SpeciesInfo,
	equipment []domain.EquipmentInfo,
	enhancedItems []domain.EnhancedItemInfo,
	powers []domain.PowerInfo,
	feats []domain.FeatInfo,
	backgrounds []domain.BackgroundInfo,
	advancements []domain.CharacterAdvancement,
	skills []domain.SkillInfo,
	conditions []domain.ConditionInfo,
) (*domain.DerivedCharacter, error) {
	if raw.Species == nil || raw.Background == nil || raw.Background.Feat == nil {
		return nil, fmt.Errorf("draft is incomplete")
	}

	speciesInfo, ok := findByName(species, raw.Species.Name, func(s domain.SpeciesInfo) string { return s.Name })
	if !ok {
		return nil, fmt.Errorf("unknown species %q", raw.Species.Name)
	}

	classInfos := make([]domain.ClassInfo, len(raw.Classes))
	classNames := make([]string, len(raw.Classes))
	level := 0
	for i, class := range raw.Classes {
		info, ok := findByName(classes, class.Name, func(c domain.ClassInfo) string { return c.Name })
		if !ok {
			return nil, fmt.Errorf("unknown class %q", class.Name)
		}
		name := fmt.Sprintf("%s %d", class.Name, class.Levels)
		if class.Archetype != nil && class.Archetype.Name != "" {
			if _, ok := findByName(archetypes, class.Archetype.Name, func(a domain.ArchetypeInfo) string { return a.Name }); !ok {
				return nil, fmt.Errorf("unknown archetype %q", class.Archetype.Name)
			}
			name = fmt.Sprintf("%s (%s) %d", class.Name, class.Archetype.Name, class.Levels)
		}
		classInfos[i] = info
		classNames[i] = name
		level += class.Levels
	}

	if _, ok := findByName(backgrounds, raw.Background.Name, func(b domain.BackgroundInfo) string { return b.Name }); !ok {
		return nil, fmt.Errorf("unknown background %q", raw.Background.Name)
	}
	if _, ok := findByName(feats, raw.Background.Feat.Name, func(f domain.FeatInfo) string { return f.Name }); !ok {
		return nil, fmt.Errorf("unknown feat %q", raw.Background.Feat.Name)
	}

	abilities := make(map[string]domain.AbilityScore, len(domain.AbilityScores))
	for _, name := range domain.AbilityScores {
		value := raw.BaseAbilityScores[name] + speciesInfo.AbilityScoreIncreases[name]
		abilities[name] = domain.AbilityScore{Value: value, Modifier: modifier(value)}
	}

	proficiency := proficiencyBonus(level, advancements)

	savingThrows := make(map[string]int, len(domain.AbilityScores))
	for _, name := range domain.AbilityScores {
		savingThrows[name] = abilities[name].Modifier
	}
	for _, name := range classInfos[0].SavingThrows {
		if score, ok := abilities[name]; ok {
			savingThrows[name] = score.Modifier + proficiency
		}
	}

	skillScores := make([]domain.SkillScore, 0, len(skills))
	for _, skill := range skills {
		skillScores = append(skillScores, domain.SkillScore{
			Name:     skill.Name,
			Modifier: abilities[skill.BaseAttribute].Modifier,
		})
	}

	hitPoints, err := computeHitPoints(raw.Classes, classInfos, abilities["Constitution"].Modifier)
	if err != nil {
		return nil, err
	}

	speed := speciesInfo.Speed
	if speed == 0 {
		speed = defaultSpeed
	}
	vision := speciesInfo.Vision
	if vision == "" {
		vision = "normal"
	}

	dexterity := abilities["Dexterity"].Modifier
	armorClass, err := computeArmorClass(raw.Equipment, equipment, enhancedItems, dexterity)
	if err != nil {
		return nil, err
	}

	return &domain.DerivedCharacter{
		Name:          raw.Name,
		Species:       speciesInfo.Name,
		Classes:       classNames,
		Level:         level,
		Experience:    raw.Experience,
		AbilityScores: abilities,
		SavingThrows:  savingThrows,
		Skills:        skillScores,
		HitPoints:     hitPoints,
		CombatStats: domain.CombatStats{
			ProficiencyBonus:  proficiency,
			Initiative:        dexterity,
			ArmorClass:        armorClass,
			PassivePerception: basePassiveScore + abilities["Wisdom"].Modifier,
			Vision:            vision,
			Speed: domain.Speed{
				Base: fmt.Sprintf("%dft", speed),
				Hour: fmt.Sprintf("%d miles", speed/10),
				Day:  fmt.Sprintf("%d miles", speed/10*travelHoursPerDay),
			},
		},
		Background:     raw.Background.Name,
		Feat:           raw.Background.Feat.Name,
		Equipment:      append([]domain.EquipmentItem(nil), raw.Equipment...),
		Credits:        raw.Credits,
		BuilderVersion: raw.BuilderVersion,
	}, nil
}

func computeHitPoints(classes []domain.CharacterClass, infos []domain.ClassInfo, constitution int) (domain.HitPoints, error) {
	hp := domain.HitPoints{}
	for i, class := range classes {
		die := infos[i].HitDiceDieType
		if die <= 0 {
			return domain.HitPoints{}, fmt.Errorf("class %q has no hit die", class.Name)
		}
		if i == 0 {
			hp.Maximum += die + constitution
		}
		for _, rolled := range class.HitPoints {
			hp.Maximum += rolled + constitution
		}
		hp.HitDice = append(hp.HitDice, fmt.Sprintf("%dd%d", class.Levels, die))
	}
	return hp, nil
}

func computeArmorClass(items []domain.EquipmentItem, equipment []domain.EquipmentInfo, enhanced []domain.EnhancedItemInfo, dexterity int) (int, error) {
	armor := baseArmorClass
	shields := 0
	for _, item := range items {
		if !item.Equipped {
			continue
		}
		info, ok := findByName(equipment, item.Name, func(e domain.EquipmentInfo) string { return e.Name })
		if !ok {
			if _, ok := findByName(enhanced, item.Name, func(e domain.EnhancedItemInfo) string { return e.Name }); ok {
				continue
			}
			return 0, fmt.Errorf("unknown equipment %q", item.Name)
		}
		switch {
		case strings.EqualFold(info.Category, "shield"):
			shields += info.ArmorClass
		case strings.EqualFold(info.Category, "armor") && info.ArmorClass > armor:
			armor = info.ArmorClass
		}
	}
	return armor + dexterity + shields, nil
}

func proficiencyBonus(level int, advancements []domain.CharacterAdvancement) int {
	for _, adv := range advancements {
		if adv.Level == level {
			return adv.ProficiencyBonus
		}
	}
	return 2 + (level-1)/4
}

func modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

func findByName[T any](items []T, name string, nameOf func(T) string) (T, bool) {
	for _, item := range items {
		if nameOf(item) == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}

package engine

import (
	"testing"

	"character-builder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tables() domain.ReferenceTables {
	return domain.ReferenceTables{
		Classes: []domain.ClassInfo{
			{Name: "Operative", HitDiceDieType: 8, SavingThrows: []string{"Dexterity", "Intelligence"}},
			{Name: "Scout", HitDiceDieType: 8, SavingThrows: []string{"Strength", "Dexterity"}},
		},
		Archetypes: []domain.ArchetypeInfo{{Name: "Gunslinger Practice", ClassName: "Operative"}},
		Species:    []domain.SpeciesInfo{{Name: "Twi'lek", Speed: 30, AbilityScoreIncreases: map[string]int{"Charisma": 2, "Dexterity": 1}}},
		Equipment: []domain.EquipmentInfo{
			{Name: "Combat suit", Category: "Armor", ArmorClass: 11},
			{Name: "Light shield generator", Category: "Shield", ArmorClass: 2},
		},
		Feats:       []domain.FeatInfo{{Name: "Alert"}},
		Backgrounds: []domain.BackgroundInfo{{Name: "Spacer"}},
		CharacterAdvancements: []domain.CharacterAdvancement{
			{Level: 5, ExperiencePoints: 6500, ProficiencyBonus: 3},
		},
		Skills: []domain.SkillInfo{{Name: "Stealth", BaseAttribute: "Dexterity"}},
	}
}

func draft() domain.RawCharacter {
	return domain.RawCharacter{
		LocalID: "local-1",
		Name:    "Kira Vael",
		Species: &domain.Reference{Name: "Twi'lek"},
		Classes: []domain.CharacterClass{
			{Name: "Operative", Levels: 3, HitPoints: []int{6, 5}, Archetype: &domain.Reference{Name: "Gunslinger Practice"}},
			{Name: "Scout", Levels: 2, HitPoints: []int{7, 4}},
		},
		BaseAbilityScores: map[string]int{
			"Strength": 8, "Dexterity": 15, "Constitution": 12,
			"Intelligence": 14, "Wisdom": 11, "Charisma": 13,
		},
		Background:     &domain.Background{Name: "Spacer", Feat: &domain.Reference{Name: "Alert"}},
		Equipment:      []domain.EquipmentItem{{Name: "Combat suit", Quantity: 1, Equipped: true}, {Name: "Light shield generator", Quantity: 1, Equipped: true}},
		BuilderVersion: "2.0.0",
	}
}

func compute(raw domain.RawCharacter, t domain.ReferenceTables) (*domain.DerivedCharacter, error) {
	return ComputeDerivedSheet(raw, t.Classes, t.Archetypes, t.Species, t.Equipment, t.EnhancedItems,
		t.Powers, t.Feats, t.Backgrounds, t.CharacterAdvancements, t.Skills, t.Conditions)
}

func TestComputeDerivedSheet(t *testing.T) {
	sheet, err := compute(draft(), tables())
	require.NoError(t, err)

	assert.Equal(t, 5, sheet.Level)
	assert.Equal(t, []string{"Operative (Gunslinger Practice) 3", "Scout 2"}, sheet.Classes)
	assert.Equal(t, domain.AbilityScore{Value: 16, Modifier: 3}, sheet.AbilityScores["Dexterity"])
	assert.Equal(t, domain.AbilityScore{Value: 8, Modifier: -1}, sheet.AbilityScores["Strength"])
	assert.Equal(t, 3, sheet.CombatStats.ProficiencyBonus)
	assert.Equal(t, 6, sheet.SavingThrows["Dexterity"])
	assert.Equal(t, -1, sheet.SavingThrows["Strength"])
	// 8 at level one, then four rolled levels, all with +1 constitution
	assert.Equal(t, 8+1+6+1+5+1+7+1+4+1, sheet.HitPoints.Maximum)
	assert.Equal(t, []string{"3d8", "2d8"}, sheet.HitPoints.HitDice)
	assert.Equal(t, 11+3+2, sheet.CombatStats.ArmorClass)
	assert.Equal(t, 3, sheet.CombatStats.Initiative)
	assert.Equal(t, 10, sheet.CombatStats.PassivePerception)
	assert.Equal(t, domain.Speed{Base: "30ft", Hour: "3 miles", Day: "24 miles"}, sheet.CombatStats.Speed)
	assert.Equal(t, "normal", sheet.CombatStats.Vision)
	assert.Equal(t, []domain.SkillScore{{Name: "Stealth", Modifier: 3}}, sheet.Skills)
	assert.Equal(t, "2.0.0", sheet.BuilderVersion)
}

func TestComputeDerivedSheetUnknownReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RawCharacter)
	}{
		{"species", func(c *domain.RawCharacter) { c.Species.Name = "Wookiee" }},
		{"class", func(c *domain.RawCharacter) { c.Classes[1].Name = "Berserker" }},
		{"archetype", func(c *domain.RawCharacter) { c.Classes[0].Archetype.Name = "Nope" }},
		{"background", func(c *domain.RawCharacter) { c.Background.Name = "Noble" }},
		{"feat", func(c *domain.RawCharacter) { c.Background.Feat.Name = "Lucky" }},
		{"equipment", func(c *domain.RawCharacter) { c.Equipment[0].Name = "Power armor" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := draft()
			tt.mutate(&raw)

			sheet, err := compute(raw, tables())
			assert.Error(t, err)
			assert.Nil(t, sheet)
		})
	}
}

func TestProficiencyFallback(t *testing.T) {
	assert.Equal(t, 2, proficiencyBonus(1, nil))
	assert.Equal(t, 2, proficiencyBonus(4, nil))
	assert.Equal(t, 3, proficiencyBonus(5, nil))
	assert.Equal(t, 6, proficiencyBonus(17, nil))
}

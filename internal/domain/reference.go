package domain

type ClassInfo struct {
	Name             string   `json:"name"`
	HitDiceDieType   int      `json:"hitDiceDieType"`
	PrimaryAbility   string   `json:"primaryAbility"`
	SavingThrows     []string `json:"savingThrows"`
	ArmorProficiency []string `json:"armorProficiencies,omitempty"`
}

type ArchetypeInfo struct {
	Name      string `json:"name"`
	ClassName string `json:"className"`
}

type SpeciesInfo struct {
	Name                  string         `json:"name"`
	Speed                 int            `json:"speed"`
	Vision                string         `json:"vision,omitempty"`
	AbilityScoreIncreases map[string]int `json:"abilityScoreIncreases,omitempty"`
}

type EquipmentInfo struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	ArmorClass int    `json:"armorClass,omitempty"`
	Cost       int    `json:"cost"`
}

type EnhancedItemInfo struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
}

type PowerInfo struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type FeatInfo struct {
	Name string `json:"name"`
}

type BackgroundInfo struct {
	Name string `json:"name"`
}

type CharacterAdvancement struct {
	Level            int `json:"level"`
	ExperiencePoints int `json:"experiencePoints"`
	ProficiencyBonus int `json:"proficiencyBonus"`
}

type SkillInfo struct {
	Name          string `json:"name"`
	BaseAttribute string `json:"baseAttribute"`
}

type ConditionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ReferenceTables are the read-only rule tables a derived sheet is computed
// from. They are fully materialized before generation.
type ReferenceTables struct {
	Classes               []ClassInfo            `json:"classes"`
	Archetypes            []ArchetypeInfo        `json:"archetypes"`
	Species               []SpeciesInfo          `json:"species"`
	Equipment             []EquipmentInfo        `json:"equipment"`
	EnhancedItems         []EnhancedItemInfo     `json:"enhancedItems"`
	Powers                []PowerInfo            `json:"powers"`
	Feats                 []FeatInfo             `json:"feats"`
	Backgrounds           []BackgroundInfo       `json:"backgrounds"`
	CharacterAdvancements []CharacterAdvancement `json:"characterAdvancements"`
	Skills                []SkillInfo            `json:"skills"`
	Conditions            []ConditionInfo        `json:"conditions"`
}

type AbilityScore struct {
	Value    int `json:"value"`
	Modifier int `json:"modifier"`
}

type Speed struct {
	Base string `json:"base"`
	Hour string `json:"hour"`
	Day  string `json:"day"`
}

type CombatStats struct {
	ProficiencyBonus  int    `json:"proficiencyBonus"`
	Initiative        int    `json:"initiative"`
	ArmorClass        int    `json:"armorClass"`
	PassivePerception int    `json:"passivePerception"`
	Vision            string `json:"vision"`
	Speed             Speed  `json:"speed"`
}

type HitPoints struct {
	Maximum int      `json:"maximum"`
	HitDice []string `json:"hitDice"`
}

type SkillScore struct {
	Name       string `json:"name"`
	Modifier   int    `json:"modifier"`
	Proficient bool   `json:"proficient"`
}

// DerivedCharacter is the computed sheet. It is never persisted.
type DerivedCharacter struct {
	Name           string                  `json:"name"`
	Species        string                  `json:"species"`
	Classes        []string                `json:"classes"`
	Level          int                     `json:"level"`
	Experience     int                     `json:"experience"`
	AbilityScores  map[string]AbilityScore `json:"abilityScores"`
	SavingThrows   map[string]int          `json:"savingThrows"`
	Skills         []SkillScore            `json:"skills"`
	HitPoints      HitPoints               `json:"hitPoints"`
	CombatStats    CombatStats             `json:"combatStats"`
	Background     string                  `json:"background"`
	Feat           string                  `json:"feat"`
	Equipment      []EquipmentItem         `json:"equipment"`
	Credits        int                     `json:"credits"`
	BuilderVersion string                  `json:"builderVersion"`
}

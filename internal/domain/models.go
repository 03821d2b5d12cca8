package domain

import "maps"

// Ability score names, in sheet order.
var AbilityScores = []string{
	"Strength",
	"Dexterity",
	"Constitution",
	"Intelligence",
	"Wisdom",
	"Charisma",
}

type Reference struct {
	Name string `json:"name"`
}

type CharacterClass struct {
	Name      string     `json:"name"`
	Levels    int        `json:"levels"`
	HitPoints []int      `json:"hitPoints"` // first class omits level 1
	Archetype *Reference `json:"archetype,omitempty"`
}

type Background struct {
	Name string     `json:"name"`
	Feat *Reference `json:"feat,omitempty"`
}

type EquipmentItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Equipped bool   `json:"equipped"`
}

// RawCharacter is the editable draft, and the unit of storage and sync.
type RawCharacter struct {
	ID                string           `json:"id,omitempty"` // server assigned
	LocalID           string           `json:"localId"`
	UserID            string           `json:"userId,omitempty"`
	Name              string           `json:"name"`
	Species           *Reference       `json:"species,omitempty"`
	Classes           []CharacterClass `json:"classes"`
	BaseAbilityScores map[string]int   `json:"baseAbilityScores"`
	Background        *Background      `json:"background,omitempty"`
	Equipment         []EquipmentItem  `json:"equipment,omitempty"`
	Credits           int              `json:"credits"`
	Experience        int              `json:"experience"`
	Notes             string           `json:"notes,omitempty"`
	BuilderVersion    string           `json:"builderVersion"`
	ChangedAt         int64            `json:"changedAt"` // epoch ms
}

// IsEmpty reports whether the draft carries no character details at all.
// Identity and stamping fields are ignored.
func (c *RawCharacter) IsEmpty() bool {
	return c.Name == "" &&
		c.Species == nil &&
		len(c.Classes) == 0 &&
		len(c.BaseAbilityScores) == 0 &&
		c.Background == nil &&
		len(c.Equipment) == 0 &&
		c.Credits == 0 &&
		c.Experience == 0 &&
		c.Notes == ""
}

func (c RawCharacter) Clone() RawCharacter {
	out := c
	if c.Species != nil {
		species := *c.Species
		out.Species = &species
	}
	if c.Classes != nil {
		out.Classes = make([]CharacterClass, len(c.Classes))
		for i, class := range c.Classes {
			if class.HitPoints != nil {
				class.HitPoints = append([]int(nil), class.HitPoints...)
			}
			if class.Archetype != nil {
				archetype := *class.Archetype
				class.Archetype = &archetype
			}
			out.Classes[i] = class
		}
	}
	if c.BaseAbilityScores != nil {
		out.BaseAbilityScores = maps.Clone(c.BaseAbilityScores)
	}
	if c.Background != nil {
		background := *c.Background
		if background.Feat != nil {
			feat := *background.Feat
			background.Feat = &feat
		}
		out.Background = &background
	}
	if c.Equipment != nil {
		out.Equipment = append([]EquipmentItem(nil), c.Equipment...)
	}
	return out
}

// CharacterResult is the remote store envelope.
type CharacterResult struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	JSONData string `json:"jsonData"`
}

type ValidationResult struct {
	Code    int    `json:"code"` // 0 = valid
	Message string `json:"message"`
	IsValid bool   `json:"isValid"`
}

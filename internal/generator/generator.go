package generator

import (
	"fmt"

	"character-builder/internal/domain"
	"character-builder/internal/engine"

	"github.com/rs/zerolog"
)

// ComputeFunc derives a sheet from a draft. Tables are passed positionally.
type ComputeFunc func(
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
) (*domain.DerivedCharacter, error)

type Generator struct {
	compute ComputeFunc
	logger  zerolog.Logger
}

func New(compute ComputeFunc, logger zerolog.Logger) *Generator {
	if compute == nil {
		compute = engine.ComputeDerivedSheet
	}
	return &Generator{compute: compute, logger: logger}
}

func NewGenerator(logger zerolog.Logger) *Generator {
	return New(engine.ComputeDerivedSheet, logger)
}

// Generate does not validate; callers must check the draft first. Any
// failure inside the computation is logged and reported as nil.
func (g *Generator) Generate(draft *domain.RawCharacter, tables domain.ReferenceTables) (sheet *domain.DerivedCharacter) {
	if draft == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			g.logFailure(draft, fmt.Errorf("panic: %v", r))
			sheet = nil
		}
	}()

	sheet, err := g.compute(
		draft.Clone(),
		tables.Classes,
		tables.Archetypes,
		tables.Species,
		tables.Equipment,
		tables.EnhancedItems,
		tables.Powers,
		tables.Feats,
		tables.Backgrounds,
		tables.CharacterAdvancements,
		tables.Skills,
		tables.Conditions,
	)
	if err != nil {
		g.logFailure(draft, err)
		return nil
	}
	return sheet
}

func (g *Generator) logFailure(draft *domain.RawCharacter, err error) {
	g.logger.Error().
		Err(err).
		Str("builder_version", draft.BuilderVersion).
		Str("local_id", draft.LocalID).
		Msg("character generation failed")
}

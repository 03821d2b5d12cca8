package generator

import (
	"bytes"
	"errors"
	"testing"

	"character-builder/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubCompute(sheet *domain.DerivedCharacter, err error, calls *int) ComputeFunc {
	return func(raw domain.RawCharacter, classes []domain.ClassInfo, _ []domain.ArchetypeInfo, _ []domain.SpeciesInfo,
		_ []domain.EquipmentInfo, _ []domain.EnhancedItemInfo, _ []domain.PowerInfo, _ []domain.FeatInfo,
		_ []domain.BackgroundInfo, _ []domain.CharacterAdvancement, _ []domain.SkillInfo, conditions []domain.ConditionInfo,
	) (*domain.DerivedCharacter, error) {
		*calls++
		return sheet, err
	}
}

func TestGenerateReturnsSheet(t *testing.T) {
	calls := 0
	want := &domain.DerivedCharacter{Name: "Kira"}
	g := New(stubCompute(want, nil, &calls), zerolog.Nop())

	got := g.Generate(&domain.RawCharacter{Name: "Kira"}, domain.ReferenceTables{})
	assert.Same(t, want, got)
	assert.Equal(t, 1, calls)
}

func TestGeneratePassesTablesInOrder(t *testing.T) {
	tables := domain.ReferenceTables{
		Classes:    []domain.ClassInfo{{Name: "Operative"}},
		Conditions: []domain.ConditionInfo{{Name: "Stunned"}},
	}
	var gotClasses []domain.ClassInfo
	var gotConditions []domain.ConditionInfo
	compute := func(raw domain.RawCharacter, classes []domain.ClassInfo, _ []domain.ArchetypeInfo, _ []domain.SpeciesInfo,
		_ []domain.EquipmentInfo, _ []domain.EnhancedItemInfo, _ []domain.PowerInfo, _ []domain.FeatInfo,
		_ []domain.BackgroundInfo, _ []domain.CharacterAdvancement, _ []domain.SkillInfo, conditions []domain.ConditionInfo,
	) (*domain.DerivedCharacter, error) {
		gotClasses, gotConditions = classes, conditions
		return &domain.DerivedCharacter{}, nil
	}

	require.NotNil(t, New(compute, zerolog.Nop()).Generate(&domain.RawCharacter{}, tables))
	assert.Equal(t, tables.Classes, gotClasses)
	assert.Equal(t, tables.Conditions, gotConditions)
}

func TestGenerateLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	g := New(stubCompute(nil, errors.New("boom"), &calls), zerolog.New(&buf))

	got := g.Generate(&domain.RawCharacter{BuilderVersion: "1.4.2"}, domain.ReferenceTables{})
	assert.Nil(t, got)
	assert.Contains(t, buf.String(), `"builder_version":"1.4.2"`)
	assert.Contains(t, buf.String(), "boom")
}

func TestGenerateRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	compute := func(domain.RawCharacter, []domain.ClassInfo, []domain.ArchetypeInfo, []domain.SpeciesInfo,
		[]domain.EquipmentInfo, []domain.EnhancedItemInfo, []domain.PowerInfo, []domain.FeatInfo,
		[]domain.BackgroundInfo, []domain.CharacterAdvancement, []domain.SkillInfo, []domain.ConditionInfo,
	) (*domain.DerivedCharacter, error) {
		panic("index out of range")
	}
	g := New(compute, zerolog.New(&buf))

	assert.NotPanics(t, func() {
		assert.Nil(t, g.Generate(&domain.RawCharacter{BuilderVersion: "0.9.0"}, domain.ReferenceTables{}))
	})
	assert.Contains(t, buf.String(), "0.9.0")
}

func TestGenerateDoesNotMutateDraft(t *testing.T) {
	draft := &domain.RawCharacter{Name: "Kira", Classes: []domain.CharacterClass{{Name: "Scout", Levels: 1}}}
	compute := func(raw domain.RawCharacter, _ []domain.ClassInfo, _ []domain.ArchetypeInfo, _ []domain.SpeciesInfo,
		_ []domain.EquipmentInfo, _ []domain.EnhancedItemInfo, _ []domain.PowerInfo, _ []domain.FeatInfo,
		_ []domain.BackgroundInfo, _ []domain.CharacterAdvancement, _ []domain.SkillInfo, _ []domain.ConditionInfo,
	) (*domain.DerivedCharacter, error) {
		raw.Classes[0].Name = "changed"
		return &domain.DerivedCharacter{}, nil
	}

	New(compute, zerolog.Nop()).Generate(draft, domain.ReferenceTables{})
	assert.Equal(t, "Scout", draft.Classes[0].Name)
}

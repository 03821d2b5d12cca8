package service

import (
	"context"
	"errors"
	"fmt"

	"character-builder/internal/api"
	"character-builder/internal/constants"
	"character-builder/internal/domain"
	"character-builder/internal/reference"
	"character-builder/internal/store"
	"character-builder/internal/syncer"
	"character-builder/internal/validator"

	"github.com/rs/zerolog"
)

var ErrCharacterNotFound = errors.New("character not found")

type SheetGenerator interface {
	Generate(draft *domain.RawCharacter, tables domain.ReferenceTables) *domain.DerivedCharacter
}

type Session interface {
	SetToken(token string) error
	Clear()
	IsAuthenticated() bool
}

// CharacterService is the only surface the rest of the builder talks to.
// Mutations return the committed collection.
type CharacterService struct {
	store     *store.Store
	mediator  *syncer.Mediator
	generator SheetGenerator
	reference reference.Provider
	session   Session
	logger    zerolog.Logger
}

func NewCharacterService(
	st *store.Store,
	mediator *syncer.Mediator,
	generator SheetGenerator,
	ref reference.Provider,
	session Session,
	logger zerolog.Logger,
) *CharacterService {
	return &CharacterService{
		store:     st,
		mediator:  mediator,
		generator: generator,
		reference: ref,
		session:   session,
		logger:    logger,
	}
}

// NewFromTokenSource adapts the concrete token source for fx.
func NewFromTokenSource(
	st *store.Store,
	mediator *syncer.Mediator,
	generator SheetGenerator,
	ref reference.Provider,
	tokens *api.TokenSource,
	logger zerolog.Logger,
) *CharacterService {
	return NewCharacterService(st, mediator, generator, ref, tokens, logger)
}

func (s *CharacterService) SaveCharacter(draft domain.RawCharacter) (domain.RawCharacter, store.Collection, error) {
	saved, err := s.mediator.Save(draft)
	if err != nil {
		return domain.RawCharacter{}, nil, err
	}
	return saved, s.store.Snapshot(), nil
}

func (s *CharacterService) SaveCharacterLocally(draft domain.RawCharacter) (domain.RawCharacter, store.Collection, error) {
	saved, err := s.mediator.SaveLocally(draft)
	if err != nil {
		return domain.RawCharacter{}, nil, err
	}
	return saved, s.store.Snapshot(), nil
}

func (s *CharacterService) FetchCharacters(ctx context.Context) (store.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	return s.mediator.FetchAll(ctx)
}

func (s *CharacterService) DeleteCharacter(ctx context.Context, record domain.RawCharacter) (store.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if err := s.mediator.Delete(ctx, record); err != nil {
		return nil, err
	}
	return s.store.Snapshot(), nil
}

func (s *CharacterService) ClearLocalCharacters() store.Collection {
	s.logger.Info().Msg("clearing local characters")
	return s.mediator.ClearLocal()
}

func (s *CharacterService) Characters() store.Collection {
	return s.store.Snapshot()
}

// GetCharacterByID matches a server id before a local id.
func (s *CharacterService) GetCharacterByID(id string) (domain.RawCharacter, error) {
	character, ok := s.store.Find(id)
	if !ok {
		return domain.RawCharacter{}, fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	return character, nil
}

func (s *CharacterService) GetCharacterValidation(draft *domain.RawCharacter) domain.ValidationResult {
	return validator.Validate(draft)
}

// GenerateCompleteCharacter only runs the generator for a draft that passes
// validation. A nil sheet means the draft was incomplete or generation
// failed; the validation result tells the two apart.
func (s *CharacterService) GenerateCompleteCharacter(draft *domain.RawCharacter) (*domain.DerivedCharacter, domain.ValidationResult) {
	result := validator.Validate(draft)
	if result.Code != validator.CodeValid {
		s.logger.Debug().Int("code", result.Code).Str("message", result.Message).Msg("draft not ready for generation")
		return nil, result
	}
	return s.generator.Generate(draft, s.reference.Tables()), result
}

func (s *CharacterService) SignIn(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", api.ErrUnauthenticated)
	}
	if err := s.session.SetToken(token); err != nil {
		return err
	}
	s.logger.Info().Msg("signed in")
	return nil
}

// SignOut drops the token and the local collection so the next session
// starts clean.
func (s *CharacterService) SignOut() store.Collection {
	s.session.Clear()
	s.logger.Info().Msg("signed out")
	return s.mediator.ClearLocal()
}

func (s *CharacterService) IsSignedIn() bool {
	return s.session.IsAuthenticated()
}

// PendingSync lists local ids whose last remote write did not land.
func (s *CharacterService) PendingSync() []string {
	return s.mediator.Pending()
}

// Close sends any writes still waiting on their debounce window.
func (s *CharacterService) Close(ctx context.Context) error {
	if err := s.mediator.Flush(ctx); err != nil {
		s.logger.Warn().Err(err).Strs("pending", s.mediator.Pending()).Msg("characters left unsynced at shutdown")
		return err
	}
	return nil
}

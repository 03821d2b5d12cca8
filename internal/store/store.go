package store

import (
	"context"
	"fmt"
	"sync"

	"character-builder/internal/constants"
	"character-builder/internal/domain"

	"github.com/rs/zerolog"
)

// Persister keeps a durable snapshot of the collection between sessions.
type Persister interface {
	LoadAll(ctx context.Context) ([]domain.RawCharacter, error)
	SaveAll(ctx context.Context, characters []domain.RawCharacter) error
}

// Store is the only owner of the character collection. Every mutation is
// applied atomically and returns the committed collection.
type Store struct {
	mu         sync.RWMutex
	characters Collection
	persister  Persister
	logger     zerolog.Logger
}

// NewStore accepts a nil persister for a purely in-memory store.
func NewStore(persister Persister, logger zerolog.Logger) *Store {
	return &Store{
		characters: Collection{},
		persister:  persister,
		logger:     logger,
	}
}

// Hydrate replaces the collection with the persisted snapshot without
// writing it back.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	characters, err := s.persister.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load characters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters = Collection(characters).Clone()
	s.logger.Info().Int("count", len(s.characters)).Msg("character store hydrated")
	return nil
}

func (s *Store) Snapshot() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.characters.Clone()
}

func (s *Store) Find(id string) (domain.RawCharacter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := FindByEitherID(s.characters, id)
	if !ok {
		return domain.RawCharacter{}, false
	}
	return r.Clone(), true
}

// Lookup resolves a record by the same identity rules Upsert uses.
func (s *Store) Lookup(r domain.RawCharacter) (domain.RawCharacter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := IndexOf(s.characters, r)
	if i < 0 {
		return domain.RawCharacter{}, false
	}
	return s.characters[i].Clone(), true
}

func (s *Store) Upsert(r domain.RawCharacter) Collection {
	return s.Update(func(c Collection) Collection { return Upsert(c, r) })
}

func (s *Store) Reconcile(echo domain.RawCharacter) Collection {
	return s.Update(func(c Collection) Collection { return Reconcile(c, echo) })
}

func (s *Store) Remove(r domain.RawCharacter) Collection {
	return s.Update(func(c Collection) Collection { return Remove(c, r) })
}

func (s *Store) Replace(characters Collection) Collection {
	return s.Update(func(Collection) Collection { return characters.Clone() })
}

func (s *Store) Clear() Collection {
	return s.Update(func(Collection) Collection { return Collection{} })
}

// Update computes the next collection from the current one and commits it.
// fn must not retain or modify its argument.
func (s *Store) Update(fn func(Collection) Collection) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.characters)
	if next == nil {
		next = Collection{}
	}
	s.characters = next
	s.persist(next)
	return next.Clone()
}

// persist runs under the write lock so snapshots land in commit order.
func (s *Store) persist(c Collection) {
	if s.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := s.persister.SaveAll(ctx, c); err != nil {
		s.logger.Warn().Err(err).Int("count", len(c)).Msg("failed to persist characters")
	}
}

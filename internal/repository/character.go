package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"character-builder/internal/constants"
	"character-builder/internal/db"
	"character-builder/internal/domain"

	"github.com/rs/zerolog"
)

// CharacterRepository keeps the local snapshot of the character list so a
// session can start offline with the previous session's characters.
type CharacterRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewCharacterRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *CharacterRepository {
	return &CharacterRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *CharacterRepository) LoadAll(ctx context.Context) ([]domain.RawCharacter, error) {
	rows, err := r.queries.ListCharacters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	characters := make([]domain.RawCharacter, 0, len(rows))
	for _, row := range rows {
		var character domain.RawCharacter
		if err := json.Unmarshal([]byte(row.JsonData), &character); err != nil {
			r.logger.Warn().
				Err(err).
				Int64("position", row.Position).
				Str("local_id", row.LocalID).
				Msg("skipping unreadable character")
			continue
		}
		characters = append(characters, character)
	}

	r.logger.Debug().Int("count", len(characters)).Msg("characters loaded")
	return characters, nil
}

// SaveAll replaces the stored snapshot with characters, keeping their order.
func (r *CharacterRepository) SaveAll(ctx context.Context, characters []domain.RawCharacter) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.DeleteAllCharacters(ctx); err != nil {
		return fmt.Errorf("failed to clear characters: %w", err)
	}

	now := time.Now()
	for i := 0; i < len(characters); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(characters) {
			end = len(characters)
		}

		for j, character := range characters[i:end] {
			data, err := json.Marshal(character)
			if err != nil {
				return fmt.Errorf("failed to encode character %s: %w", character.LocalID, err)
			}
			err = qtx.InsertCharacter(ctx, db.InsertCharacterParams{
				Position:  int64(i + j),
				LocalID:   character.LocalID,
				ID:        character.ID,
				UserID:    character.UserID,
				JsonData:  string(data),
				ChangedAt: character.ChangedAt,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to insert character %s: %w", character.LocalID, err)
			}
		}
	}

	return tx.Commit()
}

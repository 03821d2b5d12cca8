// Package reference loads the read-only rule tables the generator resolves
// names against.
package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"character-builder/internal/config"
	"character-builder/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Provider interface {
	Tables() domain.ReferenceTables
}

// Static serves tables that never change after load.
type Static struct {
	tables domain.ReferenceTables
}

func NewStatic(tables domain.ReferenceTables) *Static {
	return &Static{tables: tables}
}

func (s *Static) Tables() domain.ReferenceTables {
	return s.tables
}

// NewProvider loads REFERENCE_PATH. An empty path serves empty tables.
func NewProvider(cfg *config.Config, logger zerolog.Logger) (Provider, error) {
	if cfg.ReferencePath == "" {
		logger.Warn().Msg("REFERENCE_PATH not set, generating against empty reference tables")
		return NewStatic(domain.ReferenceTables{}), nil
	}

	tables, err := Load(cfg.ReferencePath)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("path", cfg.ReferencePath).
		Int("classes", len(tables.Classes)).
		Int("species", len(tables.Species)).
		Int("backgrounds", len(tables.Backgrounds)).
		Int("equipment", len(tables.Equipment)).
		Msg("reference tables loaded")
	return NewStatic(tables), nil
}

// Load reads either one JSON document holding every table, or a directory
// with one file per table named after its JSON key (classes.json, ...).
// Missing table files in a directory leave that table empty.
func Load(path string) (domain.ReferenceTables, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.ReferenceTables{}, fmt.Errorf("failed to stat reference path: %w", err)
	}
	if !info.IsDir() {
		var tables domain.ReferenceTables
		if err := decodeFile(path, &tables); err != nil {
			return domain.ReferenceTables{}, err
		}
		return tables, nil
	}

	var tables domain.ReferenceTables
	files := map[string]any{
		"classes":               &tables.Classes,
		"archetypes":            &tables.Archetypes,
		"species":               &tables.Species,
		"equipment":             &tables.Equipment,
		"enhancedItems":         &tables.EnhancedItems,
		"powers":                &tables.Powers,
		"feats":                 &tables.Feats,
		"backgrounds":           &tables.Backgrounds,
		"characterAdvancements": &tables.CharacterAdvancements,
		"skills":                &tables.Skills,
		"conditions":            &tables.Conditions,
	}

	g := new(errgroup.Group)
	for name, dst := range files {
		name, dst := name, dst
		g.Go(func() error {
			err := decodeFile(filepath.Join(path, name+".json"), dst)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ReferenceTables{}, err
	}
	return tables, nil
}

func decodeFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

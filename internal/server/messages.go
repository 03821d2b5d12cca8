package server

import "character-builder/internal/domain"

type SaveCharacterRequest struct {
	Character domain.RawCharacter `json:"character"`
}

type SaveCharacterResponse struct {
	Character  domain.RawCharacter   `json:"character"`
	Characters []domain.RawCharacter `json:"characters"`
}

type DeleteCharacterRequest struct {
	Character domain.RawCharacter `json:"character"`
}

type GetCharacterRequest struct {
	ID string `json:"id"`
}

type CharacterResponse struct {
	Character domain.RawCharacter `json:"character"`
}

type DraftRequest struct {
	Character *domain.RawCharacter `json:"character"`
}

type ValidationResponse struct {
	Validation domain.ValidationResult `json:"validation"`
}

type GenerateCharacterResponse struct {
	Sheet      *domain.DerivedCharacter `json:"sheet"`
	Validation domain.ValidationResult  `json:"validation"`
}

type SignInRequest struct {
	Token string `json:"token"`
}

type Empty struct{}

type CharactersResponse struct {
	Characters []domain.RawCharacter `json:"characters"`
}

type SyncStatusResponse struct {
	SignedIn bool     `json:"signedIn"`
	Pending  []string `json:"pending"`
}

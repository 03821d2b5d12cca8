package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"character-builder/internal/api"
	"character-builder/internal/config"
	"character-builder/internal/domain"
	"character-builder/internal/generator"
	"character-builder/internal/reference"
	"character-builder/internal/service"
	"character-builder/internal/store"
	"character-builder/internal/syncer"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tables() domain.ReferenceTables {
	return domain.ReferenceTables{
		Classes:     []domain.ClassInfo{{Name: "Scout", HitDiceDieType: 8, SavingThrows: []string{"Strength", "Dexterity"}}},
		Species:     []domain.SpeciesInfo{{Name: "Human", Speed: 30}},
		Feats:       []domain.FeatInfo{{Name: "Alert"}},
		Backgrounds: []domain.BackgroundInfo{{Name: "Spacer"}},
	}
}

func draft() domain.RawCharacter {
	return domain.RawCharacter{
		Name:    "Kira Vael",
		Species: &domain.Reference{Name: "Human"},
		Classes: []domain.CharacterClass{{Name: "Scout", Levels: 1}},
		BaseAbilityScores: map[string]int{
			"Strength": 10, "Dexterity": 14, "Constitution": 12,
			"Intelligence": 10, "Wisdom": 10, "Charisma": 10,
		},
		Background: &domain.Background{Name: "Spacer", Feat: &domain.Reference{Name: "Alert"}},
	}
}

func newTestServer(t *testing.T) string {
	t.Helper()

	logger := zerolog.Nop()
	tokens := api.NewTokenSource(&config.Config{})
	st := store.NewStore(nil, logger)
	mediator := syncer.New(st, nil, tokens, syncer.Options{}, logger)
	svc := service.NewCharacterService(st, mediator, generator.NewGenerator(logger), reference.NewStatic(tables()), tokens, logger)

	mux := http.NewServeMux()
	mux.Handle(NewCharacterServiceHandler(NewCharacterServer(svc)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func call[Req, Res any](t *testing.T, baseURL, procedure string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](http.DefaultClient, baseURL+procedure, WithJSON())
	res, err := client.CallUnary(context.Background(), connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func TestSaveListAndGet(t *testing.T) {
	url := newTestServer(t)

	saved, err := call[SaveCharacterRequest, SaveCharacterResponse](t, url, SaveCharacterProcedure, &SaveCharacterRequest{Character: draft()})
	require.NoError(t, err)
	require.NotEmpty(t, saved.Character.LocalID)
	assert.Len(t, saved.Characters, 1)

	listed, err := call[Empty, CharactersResponse](t, url, ListCharactersProcedure, &Empty{})
	require.NoError(t, err)
	assert.Len(t, listed.Characters, 1)

	got, err := call[GetCharacterRequest, CharacterResponse](t, url, GetCharacterProcedure, &GetCharacterRequest{ID: saved.Character.LocalID})
	require.NoError(t, err)
	assert.Equal(t, "Kira Vael", got.Character.Name)

	fetched, err := call[Empty, CharactersResponse](t, url, FetchCharactersProcedure, &Empty{})
	require.NoError(t, err)
	assert.Len(t, fetched.Characters, 1)
}

func TestGetMissingCharacterIsNotFound(t *testing.T) {
	url := newTestServer(t)

	_, err := call[GetCharacterRequest, CharacterResponse](t, url, GetCharacterProcedure, &GetCharacterRequest{ID: "nope"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = call[GetCharacterRequest, CharacterResponse](t, url, GetCharacterProcedure, &GetCharacterRequest{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestValidateAndGenerate(t *testing.T) {
	url := newTestServer(t)

	incomplete := draft()
	incomplete.Species = nil
	validation, err := call[DraftRequest, ValidationResponse](t, url, ValidateCharacterProcedure, &DraftRequest{Character: &incomplete})
	require.NoError(t, err)
	assert.Equal(t, 3, validation.Validation.Code)

	gated, err := call[DraftRequest, GenerateCharacterResponse](t, url, GenerateCharacterProcedure, &DraftRequest{Character: &incomplete})
	require.NoError(t, err)
	assert.Nil(t, gated.Sheet)
	assert.False(t, gated.Validation.IsValid)

	complete := draft()
	generated, err := call[DraftRequest, GenerateCharacterResponse](t, url, GenerateCharacterProcedure, &DraftRequest{Character: &complete})
	require.NoError(t, err)
	require.NotNil(t, generated.Sheet)
	assert.Equal(t, "Kira Vael", generated.Sheet.Name)
	assert.Equal(t, 1, generated.Sheet.Level)
}

func TestDeleteAndClear(t *testing.T) {
	url := newTestServer(t)

	saved, err := call[SaveCharacterRequest, SaveCharacterResponse](t, url, SaveCharacterLocallyProcedure, &SaveCharacterRequest{Character: draft()})
	require.NoError(t, err)
	_, err = call[SaveCharacterRequest, SaveCharacterResponse](t, url, SaveCharacterLocallyProcedure, &SaveCharacterRequest{Character: draft()})
	require.NoError(t, err)

	_, err = call[DeleteCharacterRequest, CharactersResponse](t, url, DeleteCharacterProcedure, &DeleteCharacterRequest{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	remaining, err := call[DeleteCharacterRequest, CharactersResponse](t, url, DeleteCharacterProcedure, &DeleteCharacterRequest{Character: saved.Character})
	require.NoError(t, err)
	assert.Len(t, remaining.Characters, 1)

	cleared, err := call[Empty, CharactersResponse](t, url, ClearLocalCharactersProcedure, &Empty{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Characters)
}

func TestSignInWithoutRemote(t *testing.T) {
	url := newTestServer(t)

	_, err := call[SignInRequest, SyncStatusResponse](t, url, SignInProcedure, &SignInRequest{Token: "tok"})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	status, err := call[Empty, SyncStatusResponse](t, url, SyncStatusProcedure, &Empty{})
	require.NoError(t, err)
	assert.False(t, status.SignedIn)
	assert.Empty(t, status.Pending)
}

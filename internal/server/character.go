package server

import (
	"context"
	"errors"
	"net/http"

	"character-builder/internal/api"
	"character-builder/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const CharacterServicePath = "/character.v1.CharacterService/"

const (
	SaveCharacterProcedure        = CharacterServicePath + "SaveCharacter"
	SaveCharacterLocallyProcedure = CharacterServicePath + "SaveCharacterLocally"
	FetchCharactersProcedure      = CharacterServicePath + "FetchCharacters"
	DeleteCharacterProcedure      = CharacterServicePath + "DeleteCharacter"
	ClearLocalCharactersProcedure = CharacterServicePath + "ClearLocalCharacters"
	GetCharacterProcedure         = CharacterServicePath + "GetCharacter"
	ValidateCharacterProcedure    = CharacterServicePath + "ValidateCharacter"
	GenerateCharacterProcedure    = CharacterServicePath + "GenerateCharacter"
	ListCharactersProcedure       = CharacterServicePath + "ListCharacters"
	SignInProcedure               = CharacterServicePath + "SignIn"
	SignOutProcedure              = CharacterServicePath + "SignOut"
	SyncStatusProcedure           = CharacterServicePath + "SyncStatus"
)

type CharacterServer struct {
	characterSvc *service.CharacterService
}

func NewCharacterServer(characterSvc *service.CharacterService) *CharacterServer {
	return &CharacterServer{characterSvc: characterSvc}
}

// NewCharacterServiceHandler mounts every procedure under CharacterServicePath.
func NewCharacterServiceHandler(s *CharacterServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SaveCharacterProcedure, connect.NewUnaryHandler(SaveCharacterProcedure, s.SaveCharacter, opts...))
	mux.Handle(SaveCharacterLocallyProcedure, connect.NewUnaryHandler(SaveCharacterLocallyProcedure, s.SaveCharacterLocally, opts...))
	mux.Handle(FetchCharactersProcedure, connect.NewUnaryHandler(FetchCharactersProcedure, s.FetchCharacters, opts...))
	mux.Handle(DeleteCharacterProcedure, connect.NewUnaryHandler(DeleteCharacterProcedure, s.DeleteCharacter, opts...))
	mux.Handle(ClearLocalCharactersProcedure, connect.NewUnaryHandler(ClearLocalCharactersProcedure, s.ClearLocalCharacters, opts...))
	mux.Handle(GetCharacterProcedure, connect.NewUnaryHandler(GetCharacterProcedure, s.GetCharacter, opts...))
	mux.Handle(ValidateCharacterProcedure, connect.NewUnaryHandler(ValidateCharacterProcedure, s.ValidateCharacter, opts...))
	mux.Handle(GenerateCharacterProcedure, connect.NewUnaryHandler(GenerateCharacterProcedure, s.GenerateCharacter, opts...))
	mux.Handle(ListCharactersProcedure, connect.NewUnaryHandler(ListCharactersProcedure, s.ListCharacters, opts...))
	mux.Handle(SignInProcedure, connect.NewUnaryHandler(SignInProcedure, s.SignIn, opts...))
	mux.Handle(SignOutProcedure, connect.NewUnaryHandler(SignOutProcedure, s.SignOut, opts...))
	mux.Handle(SyncStatusProcedure, connect.NewUnaryHandler(SyncStatusProcedure, s.SyncStatus, opts...))
	return CharacterServicePath, mux
}

func (s *CharacterServer) SaveCharacter(ctx context.Context, req *connect.Request[SaveCharacterRequest]) (*connect.Response[SaveCharacterResponse], error) {
	saved, characters, err := s.characterSvc.SaveCharacter(req.Msg.Character)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&SaveCharacterResponse{Character: saved, Characters: characters}), nil
}

func (s *CharacterServer) SaveCharacterLocally(ctx context.Context, req *connect.Request[SaveCharacterRequest]) (*connect.Response[SaveCharacterResponse], error) {
	saved, characters, err := s.characterSvc.SaveCharacterLocally(req.Msg.Character)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&SaveCharacterResponse{Character: saved, Characters: characters}), nil
}

func (s *CharacterServer) FetchCharacters(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[CharactersResponse], error) {
	characters, err := s.characterSvc.FetchCharacters(ctx)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&CharactersResponse{Characters: characters}), nil
}

func (s *CharacterServer) DeleteCharacter(ctx context.Context, req *connect.Request[DeleteCharacterRequest]) (*connect.Response[CharactersResponse], error) {
	record := req.Msg.Character
	if record.ID == "" && record.LocalID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("character needs an id or localId"))
	}

	characters, err := s.characterSvc.DeleteCharacter(ctx, record)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&CharactersResponse{Characters: characters}), nil
}

func (s *CharacterServer) ClearLocalCharacters(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[CharactersResponse], error) {
	return connect.NewResponse(&CharactersResponse{Characters: s.characterSvc.ClearLocalCharacters()}), nil
}

func (s *CharacterServer) GetCharacter(ctx context.Context, req *connect.Request[GetCharacterRequest]) (*connect.Response[CharacterResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}

	character, err := s.characterSvc.GetCharacterByID(req.Msg.ID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&CharacterResponse{Character: character}), nil
}

func (s *CharacterServer) ValidateCharacter(_ context.Context, req *connect.Request[DraftRequest]) (*connect.Response[ValidationResponse], error) {
	return connect.NewResponse(&ValidationResponse{Validation: s.characterSvc.GetCharacterValidation(req.Msg.Character)}), nil
}

func (s *CharacterServer) GenerateCharacter(_ context.Context, req *connect.Request[DraftRequest]) (*connect.Response[GenerateCharacterResponse], error) {
	sheet, validation := s.characterSvc.GenerateCompleteCharacter(req.Msg.Character)
	return connect.NewResponse(&GenerateCharacterResponse{Sheet: sheet, Validation: validation}), nil
}

func (s *CharacterServer) ListCharacters(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[CharactersResponse], error) {
	return connect.NewResponse(&CharactersResponse{Characters: s.characterSvc.Characters()}), nil
}

func (s *CharacterServer) SignIn(ctx context.Context, req *connect.Request[SignInRequest]) (*connect.Response[SyncStatusResponse], error) {
	if err := s.characterSvc.SignIn(req.Msg.Token); err != nil {
		return nil, toConnectError(ctx, err)
	}
	return s.SyncStatus(ctx, nil)
}

func (s *CharacterServer) SignOut(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[CharactersResponse], error) {
	return connect.NewResponse(&CharactersResponse{Characters: s.characterSvc.SignOut()}), nil
}

func (s *CharacterServer) SyncStatus(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[SyncStatusResponse], error) {
	return connect.NewResponse(&SyncStatusResponse{
		SignedIn: s.characterSvc.IsSignedIn(),
		Pending:  s.characterSvc.PendingSync(),
	}), nil
}

func toConnectError(ctx context.Context, err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, service.ErrCharacterNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, api.ErrUnauthenticated):
		code = connect.CodeUnauthenticated
	case errors.Is(err, api.ErrRemoteDisabled):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}

	if code == connect.CodeInternal {
		zerolog.Ctx(ctx).Error().Err(err).Msg("request failed")
	}
	return connect.NewError(code, err)
}

package fx

import (
	"database/sql"

	"character-builder/internal/api"
	"character-builder/internal/config"
	"character-builder/internal/database"
	"character-builder/internal/db"
	"character-builder/internal/generator"
	"character-builder/internal/logger"
	"character-builder/internal/reference"
	"character-builder/internal/repository"
	"character-builder/internal/server"
	"character-builder/internal/service"
	"character-builder/internal/store"
	"character-builder/internal/syncer"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(fx.Annotate(repository.NewCharacterRepository, fx.As(new(store.Persister)))),
	fx.Provide(store.NewStore),
	// api client
	fx.Provide(api.NewTokenSource),
	fx.Provide(api.NewCharacterClient),
	fx.Provide(syncer.NewMediator),
	// rules
	fx.Provide(reference.NewProvider),
	fx.Provide(fx.Annotate(generator.NewGenerator, fx.As(new(service.SheetGenerator)))),
	// svc
	fx.Provide(service.NewFromTokenSource),
	// server
	fx.Provide(server.NewCharacterServer),
)

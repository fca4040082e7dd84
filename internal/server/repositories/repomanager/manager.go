package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foodfinder/internal/dbx"
	"github.com/dmitrijs2005/foodfinder/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/foodfinder/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

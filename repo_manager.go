package recetario

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Seasons() Seasons
	Recipes() Recipes
}

type mngr struct {
	db      *bun.DB
	users   Users
	seasons Seasons
	recipes Recipes
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:      db,
		users:   NewUsersRepository(db),
		seasons: NewSeasonsRepository(db),
		recipes: NewRecipesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.seasons == nil {
		return errors.New("repository seasons should be initialized")
	}

	if m.recipes == nil {
		return errors.New("repository recipes should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Seasons() Seasons {
	return m.seasons
}

func (m mngr) Recipes() Recipes {
	return m.recipes
}

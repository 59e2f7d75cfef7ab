package recetario

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Seasons is the catalog store for temporadas.
type Seasons interface {
	Create(ctx context.Context, record *Season) (*Season, error)
	List(ctx context.Context) ([]*Season, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Season, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Season, error)
	Update(ctx context.Context, id uuid.UUID, changes *Season) (*Season, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type seasons struct {
	db *bun.DB
}

var _ Seasons = (*seasons)(nil)

func NewSeasonsRepository(db *bun.DB) Seasons {
	return &seasons{db: db}
}

func (r *seasons) Create(ctx context.Context, record *Season) (*Season, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().
		Model(record).
		Returning("*").
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *seasons) List(ctx context.Context) ([]*Season, error) {
	records := []*Season{}
	err := r.db.NewSelect().
		Model(&records).
		Order("fecha_creacion ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *seasons) GetByID(ctx context.Context, id uuid.UUID) (*Season, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

func (r *seasons) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Season, error) {
	record := &Season{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (r *seasons) Update(ctx context.Context, id uuid.UUID, changes *Season) (*Season, error) {
	changes.ID = id
	err := r.db.NewUpdate().
		Model(changes).
		OmitZero().
		WherePK().
		Returning("*").
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return changes, nil
}

func (r *seasons) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*Season)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

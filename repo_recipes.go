package recetario

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// RecipeFilters narrow a recipe listing. Absent filters impose no
// constraint; present filters combine with logical AND.
type RecipeFilters struct {
	CreadoPorID *uuid.UUID
	Rol         string
	Ingrediente string
	TemporadaID *uuid.UUID
}

// Recipes is the catalog store for recetas.
type Recipes interface {
	Create(ctx context.Context, record *Recipe) (*Recipe, error)
	List(ctx context.Context, filters RecipeFilters) ([]*Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	Update(ctx context.Context, id uuid.UUID, changes *Recipe) (*Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) (*Recipe, error)
	DeleteBySeasonTx(ctx context.Context, tx bun.IDB, seasonID uuid.UUID) (int64, error)
}

type recipes struct {
	db *bun.DB
}

var _ Recipes = (*recipes)(nil)

func NewRecipesRepository(db *bun.DB) Recipes {
	return &recipes{db: db}
}

func (r *recipes) Create(ctx context.Context, record *Recipe) (*Recipe, error) {
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

func (r *recipes) List(ctx context.Context, filters RecipeFilters) ([]*Recipe, error) {
	records := []*Recipe{}

	q := r.db.NewSelect().
		Model(&records).
		Relation("Temporada").
		Relation("CreadoPor")

	if filters.CreadoPorID != nil {
		q = q.Where("?TableAlias.creado_por_id = ?", *filters.CreadoPorID)
	}

	if filters.TemporadaID != nil {
		q = q.Where("?TableAlias.temporada_id = ?", *filters.TemporadaID)
	}

	if filters.Ingrediente != "" {
		q = q.Where(ingredientFilterSQL(r.db.Dialect().Name()), filters.Ingrediente)
	}

	if filters.Rol != "" {
		q = q.
			Join("JOIN usuarios AS creador ON creador.id = ?TableAlias.creado_por_id").
			Where("creador.rol = ?", filters.Rol)
	}

	if err := q.OrderExpr("?TableAlias.fecha_creacion ASC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

// ingredientFilterSQL builds the case-insensitive substring predicate over
// each ingredient entry. The ingredientes column is JSONB on postgres and
// a JSON text column on sqlite, so each dialect unnests it differently.
func ingredientFilterSQL(name dialect.Name) string {
	if name == dialect.PG {
		return "EXISTS (SELECT 1 FROM jsonb_array_elements_text(?TableAlias.ingredientes) AS ing WHERE lower(ing) LIKE '%' || lower(?) || '%')"
	}
	return "EXISTS (SELECT 1 FROM json_each(?TableAlias.ingredientes) WHERE lower(json_each.value) LIKE '%' || lower(?) || '%')"
}

func (r *recipes) GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	record := &Recipe{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Temporada").
		Relation("CreadoPor").
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

func (r *recipes) Update(ctx context.Context, id uuid.UUID, changes *Recipe) (*Recipe, error) {
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

func (r *recipes) Delete(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.NewDelete().
		Model((*Recipe)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *recipes) DeleteBySeasonTx(ctx context.Context, tx bun.IDB, seasonID uuid.UUID) (int64, error) {
	res, err := tx.NewDelete().
		Model((*Recipe)(nil)).
		Where("temporada_id = ?", seasonID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

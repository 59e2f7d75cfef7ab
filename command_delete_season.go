package recetario

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeleteSeasonMessage struct {
	ID         uuid.UUID `json:"id"`
	OnResponse func(resp *DeleteSeasonResponse)
}

func (e DeleteSeasonMessage) Type() string { return "season.delete" }

type DeleteSeasonResponse struct {
	Mensaje           string  `json:"mensaje"`
	Temporada         *Season `json:"temporada"`
	RecetasEliminadas int64   `json:"recetasEliminadas"`
}

// DeleteSeasonHandler removes a season and every recipe referencing it.
// Both deletions run in the same transaction, so a season can never end up
// deleted while its recipes silently survive.
type DeleteSeasonHandler struct {
	repo RepositoryManager
}

func NewDeleteSeasonHandler(repo RepositoryManager) *DeleteSeasonHandler {
	return &DeleteSeasonHandler{repo: repo}
}

func (h *DeleteSeasonHandler) Execute(ctx context.Context, event DeleteSeasonMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during season deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteSeasonHandler) execute(ctx context.Context, event DeleteSeasonMessage) error {
	resp := &DeleteSeasonResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		season, err := h.repo.Seasons().GetByIDTx(ctx, tx, event.ID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("temporada no encontrada", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound).
					WithMetadata(map[string]any{"id": event.ID.String()})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve season")
		}

		if err := h.repo.Seasons().DeleteTx(ctx, tx, event.ID); err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("temporada no encontrada", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete season")
		}

		deleted, err := h.repo.Recipes().DeleteBySeasonTx(ctx, tx, event.ID)
		if err != nil {
			// cascade failure aborts the whole transaction; it is never
			// swallowed
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to cascade delete recipes")
		}

		resp.Mensaje = "Temporada eliminada exitosamente y relacionados"
		resp.Temporada = season
		resp.RecetasEliminadas = deleted
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "season deletion transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

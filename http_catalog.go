package recetario

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// CatalogController exposes the temporada and receta catalogs over REST.
type CatalogController struct {
	logger       Logger
	repo         RepositoryManager
	deleteSeason *DeleteSeasonHandler
}

type CatalogControllerOption func(*CatalogController) *CatalogController

func WithCatalogLogger(logger Logger) CatalogControllerOption {
	return func(c *CatalogController) *CatalogController {
		if logger != nil {
			c.logger = logger
		}
		return c
	}
}

func NewCatalogController(repo RepositoryManager, deleteSeason *DeleteSeasonHandler, opts ...CatalogControllerOption) *CatalogController {
	c := &CatalogController{
		logger:       defLogger{},
		repo:         repo,
		deleteSeason: deleteSeason,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.repo == nil {
		panic("Missing RepositoryManager in catalog controller...")
	}

	return c
}

// RegisterCatalogRoutes mounts the temporada and receta endpoints.
func RegisterCatalogRoutes(app fiber.Router, c *CatalogController) {
	tmp := app.Group("/temporada")
	tmp.Post("/", c.CreateTemporada)
	tmp.Get("/", c.ListTemporadas)
	tmp.Get("/:id", c.GetTemporada)
	tmp.Patch("/:id", c.UpdateTemporada)
	tmp.Delete("/:id", c.DeleteTemporada)

	rec := app.Group("/recetas")
	rec.Post("/", c.CreateReceta)
	rec.Get("/", c.ListRecetas)
	rec.Get("/:id", c.GetReceta)
	rec.Patch("/:id", c.UpdateReceta)
	rec.Delete("/:id", c.DeleteReceta)
}

// SeasonPayload creates or updates a temporada
type SeasonPayload struct {
	Nombre string `json:"nombre"`
	Numero int    `json:"temporada"`
}

// Validate will run validation rules
func (r SeasonPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nombre, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Numero, validation.Required, validation.Min(1)),
	)
}

func (s SeasonPayload) validatePartial() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Nombre, validation.Length(1, 200)),
		validation.Field(&s.Numero, validation.Min(0)),
	)
}

func (c *CatalogController) CreateTemporada(ctx *fiber.Ctx) error {
	payload := new(SeasonPayload)

	if err := ctx.BodyParser(payload); err != nil {
		c.logger.Error("create temporada parse payload", "error", err)
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return validationError(ctx, err)
	}

	record, err := c.repo.Seasons().Create(ctx.Context(), &Season{
		Nombre: payload.Nombre,
		Numero: payload.Numero,
	})
	if err != nil {
		c.logger.Error("create temporada error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(record)
}

func (c *CatalogController) ListTemporadas(ctx *fiber.Ctx) error {
	records, err := c.repo.Seasons().List(ctx.Context())
	if err != nil {
		c.logger.Error("list temporadas error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(records)
}

func (c *CatalogController) GetTemporada(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	record, err := c.repo.Seasons().GetByID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx, "Temporada no encontrada")
		}
		c.logger.Error("get temporada error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(record)
}

func (c *CatalogController) UpdateTemporada(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	payload := new(SeasonPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.validatePartial(); err != nil {
		return validationError(ctx, err)
	}

	record, err := c.repo.Seasons().Update(ctx.Context(), id, &Season{
		Nombre: payload.Nombre,
		Numero: payload.Numero,
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx, "Temporada no encontrada")
		}
		c.logger.Error("update temporada error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(record)
}

func (c *CatalogController) DeleteTemporada(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	var resp *DeleteSeasonResponse

	req := DeleteSeasonMessage{
		ID: id,
		OnResponse: func(r *DeleteSeasonResponse) {
			resp = r
		},
	}

	if err := c.deleteSeason.Execute(ctx.Context(), req); err != nil {
		c.logger.Error("delete temporada error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(resp)
}

// RecipePayload creates or updates a receta
type RecipePayload struct {
	Nombre            string   `json:"nombre"`
	Descripcion       string   `json:"descripcion"`
	Ingredientes      []string `json:"ingredientes"`
	Pasos             []string `json:"pasos"`
	TiempoPreparacion int      `json:"tiempoPreparacion"`
	TemporadaID       string   `json:"temporadaId"`
	CreadoPorID       string   `json:"creadoPorId"`
}

// Validate will run validation rules
func (r RecipePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nombre, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Descripcion, validation.Required),
		validation.Field(&r.Ingredientes, validation.NotNil),
		validation.Field(&r.Pasos, validation.NotNil),
		validation.Field(&r.TiempoPreparacion, validation.Min(0)),
		validation.Field(&r.TemporadaID, validation.Required, is.UUID),
		validation.Field(&r.CreadoPorID, is.UUID),
	)
}

func (r RecipePayload) validatePartial() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nombre, validation.Length(1, 200)),
		validation.Field(&r.TiempoPreparacion, validation.Min(0)),
		validation.Field(&r.TemporadaID, is.UUID),
		validation.Field(&r.CreadoPorID, is.UUID),
	)
}

func (c *CatalogController) CreateReceta(ctx *fiber.Ctx) error {
	payload := new(RecipePayload)

	if err := ctx.BodyParser(payload); err != nil {
		c.logger.Error("create receta parse payload", "error", err)
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return validationError(ctx, err)
	}

	temporadaID, err := uuid.Parse(payload.TemporadaID)
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	// a recipe pointing at a missing season is a caller mistake, not a
	// lookup miss, hence 400 rather than 404
	if _, err := c.repo.Seasons().GetByID(ctx.Context(), temporadaID); err != nil {
		if repository.IsRecordNotFound(err) {
			return badRequest(ctx, "La temporada especificada no existe")
		}
		c.logger.Error("create receta season lookup error", "error", err)
		return respondError(ctx, err)
	}

	record := &Recipe{
		Nombre:            payload.Nombre,
		Descripcion:       payload.Descripcion,
		Ingredientes:      payload.Ingredientes,
		Pasos:             payload.Pasos,
		TiempoPreparacion: payload.TiempoPreparacion,
		TemporadaID:       temporadaID,
	}

	if payload.CreadoPorID != "" {
		creadoPorID, err := uuid.Parse(payload.CreadoPorID)
		if err != nil {
			return badRequest(ctx, "ID inválido")
		}
		record.CreadoPorID = &creadoPorID
	}

	created, err := c.repo.Recipes().Create(ctx.Context(), record)
	if err != nil {
		c.logger.Error("create receta error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *CatalogController) ListRecetas(ctx *fiber.Ctx) error {
	filters := RecipeFilters{
		Rol:         ctx.Query("rol"),
		Ingrediente: ctx.Query("ingrediente"),
	}

	if raw := ctx.Query("creadoPorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(ctx, "ID inválido")
		}
		filters.CreadoPorID = &id
	}

	if raw := ctx.Query("temporadaId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(ctx, "ID inválido")
		}
		filters.TemporadaID = &id
	}

	records, err := c.repo.Recipes().List(ctx.Context(), filters)
	if err != nil {
		c.logger.Error("list recetas error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(records)
}

func (c *CatalogController) GetReceta(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	record, err := c.repo.Recipes().GetByID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx, "Receta no encontrada")
		}
		c.logger.Error("get receta error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(record)
}

func (c *CatalogController) UpdateReceta(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	payload := new(RecipePayload)
	if err := ctx.BodyParser(payload); err != nil {
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.validatePartial(); err != nil {
		return validationError(ctx, err)
	}

	changes := &Recipe{
		Nombre:            payload.Nombre,
		Descripcion:       payload.Descripcion,
		Ingredientes:      payload.Ingredientes,
		Pasos:             payload.Pasos,
		TiempoPreparacion: payload.TiempoPreparacion,
	}

	if payload.TemporadaID != "" {
		temporadaID, err := uuid.Parse(payload.TemporadaID)
		if err != nil {
			return badRequest(ctx, "ID inválido")
		}

		if _, err := c.repo.Seasons().GetByID(ctx.Context(), temporadaID); err != nil {
			if repository.IsRecordNotFound(err) {
				return badRequest(ctx, "La temporada especificada no existe")
			}
			c.logger.Error("update receta season lookup error", "error", err)
			return respondError(ctx, err)
		}

		changes.TemporadaID = temporadaID
	}

	if payload.CreadoPorID != "" {
		creadoPorID, err := uuid.Parse(payload.CreadoPorID)
		if err != nil {
			return badRequest(ctx, "ID inválido")
		}
		changes.CreadoPorID = &creadoPorID
	}

	record, err := c.repo.Recipes().Update(ctx.Context(), id, changes)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx, "Receta no encontrada")
		}
		c.logger.Error("update receta error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(record)
}

func (c *CatalogController) DeleteReceta(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	record, err := c.repo.Recipes().Delete(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx, "Receta no encontrada")
		}
		c.logger.Error("delete receta error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"mensaje": "Receta eliminada exitosamente",
		"receta":  record,
	})
}

func notFound(ctx *fiber.Ctx, mensaje string) error {
	return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"statusCode": fiber.StatusNotFound,
		"mensaje":    mensaje,
	})
}

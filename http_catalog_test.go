package recetario_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/cocinarte/recetario"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalogTestApp(seasons *MockSeasons, recipes *MockRecipes) *fiber.App {
	repo := &stubRepoManager{seasons: seasons, recipes: recipes}

	controller := recetario.NewCatalogController(
		repo,
		recetario.NewDeleteSeasonHandler(repo),
		recetario.WithCatalogLogger(testLogger{}),
	)

	app := fiber.New()
	recetario.RegisterCatalogRoutes(app, controller)
	return app
}

func TestCreateTemporadaEndpoint(t *testing.T) {
	seasons := &MockSeasons{}

	seasons.On("Create", mock.Anything, mock.MatchedBy(func(s *recetario.Season) bool {
		return s.Nombre == "MasterChef 2025" && s.Numero == 5
	})).Return(&recetario.Season{ID: uuid.New(), Nombre: "MasterChef 2025", Numero: 5}, nil).Once()

	app := catalogTestApp(seasons, &MockRecipes{})

	body, _ := json.Marshal(map[string]any{"nombre": "MasterChef 2025", "temporada": 5})
	req := httptest.NewRequest("POST", "/temporada/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	seasons.AssertExpectations(t)
}

func TestGetTemporadaEndpointMalformedID(t *testing.T) {
	app := catalogTestApp(&MockSeasons{}, &MockRecipes{})

	res, err := app.Test(httptest.NewRequest("GET", "/temporada/not-a-uuid", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestGetTemporadaEndpointNotFound(t *testing.T) {
	seasons := &MockSeasons{}
	id := uuid.New()

	seasons.On("GetByID", mock.Anything, id).
		Return(nil, repository.NewRecordNotFound()).Once()

	app := catalogTestApp(seasons, &MockRecipes{})

	res, err := app.Test(httptest.NewRequest("GET", "/temporada/"+id.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestDeleteTemporadaEndpointReportsCascade(t *testing.T) {
	seasons := &MockSeasons{}
	recipes := &MockRecipes{}
	id := uuid.New()

	seasons.On("GetByIDTx", mock.Anything, id).
		Return(&recetario.Season{ID: id, Nombre: "Temporada 3", Numero: 3}, nil).Once()
	seasons.On("DeleteTx", mock.Anything, id).Return(nil).Once()
	recipes.On("DeleteBySeasonTx", mock.Anything, id).Return(int64(4), nil).Once()

	app := catalogTestApp(seasons, recipes)

	res, err := app.Test(httptest.NewRequest("DELETE", "/temporada/"+id.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	raw, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(4), out["recetasEliminadas"])
}

func TestCreateRecetaEndpointValidatesSeason(t *testing.T) {
	seasons := &MockSeasons{}
	recipes := &MockRecipes{}
	seasonID := uuid.New()

	// missing season is a bad request, not a not found
	seasons.On("GetByID", mock.Anything, seasonID).
		Return(nil, repository.NewRecordNotFound()).Once()

	app := catalogTestApp(seasons, recipes)

	body, _ := json.Marshal(map[string]any{
		"nombre":            "Paella",
		"descripcion":       "Arroz con azafrán",
		"ingredientes":      []string{"arroz", "azafrán"},
		"pasos":             []string{"sofreír", "cocer"},
		"tiempoPreparacion": 60,
		"temporadaId":       seasonID.String(),
	})
	req := httptest.NewRequest("POST", "/recetas/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateRecetaEndpoint(t *testing.T) {
	seasons := &MockSeasons{}
	recipes := &MockRecipes{}
	seasonID := uuid.New()

	seasons.On("GetByID", mock.Anything, seasonID).
		Return(&recetario.Season{ID: seasonID}, nil).Once()
	recipes.On("Create", mock.Anything, mock.MatchedBy(func(r *recetario.Recipe) bool {
		return r.Nombre == "Paella" && r.TemporadaID == seasonID && len(r.Ingredientes) == 2
	})).Return(&recetario.Recipe{ID: uuid.New(), Nombre: "Paella"}, nil).Once()

	app := catalogTestApp(seasons, recipes)

	body, _ := json.Marshal(map[string]any{
		"nombre":            "Paella",
		"descripcion":       "Arroz con azafrán",
		"ingredientes":      []string{"arroz", "azafrán"},
		"pasos":             []string{"sofreír", "cocer"},
		"tiempoPreparacion": 60,
		"temporadaId":       seasonID.String(),
	})
	req := httptest.NewRequest("POST", "/recetas/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	seasons.AssertExpectations(t)
	recipes.AssertExpectations(t)
}

func TestCreateRecetaEndpointAcceptsOptionalPrepTime(t *testing.T) {
	seasons := &MockSeasons{}
	recipes := &MockRecipes{}
	seasonID := uuid.New()

	seasons.On("GetByID", mock.Anything, seasonID).
		Return(&recetario.Season{ID: seasonID}, nil).Once()
	recipes.On("Create", mock.Anything, mock.MatchedBy(func(r *recetario.Recipe) bool {
		return r.Nombre == "Gazpacho" && r.TiempoPreparacion == 0
	})).Return(&recetario.Recipe{ID: uuid.New(), Nombre: "Gazpacho"}, nil).Once()

	app := catalogTestApp(seasons, recipes)

	// no tiempoPreparacion and empty pasos, both allowed
	body, _ := json.Marshal(map[string]any{
		"nombre":       "Gazpacho",
		"descripcion":  "Sopa fría de tomate",
		"ingredientes": []string{"tomate", "pepino"},
		"pasos":        []string{},
		"temporadaId":  seasonID.String(),
	})
	req := httptest.NewRequest("POST", "/recetas/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	seasons.AssertExpectations(t)
	recipes.AssertExpectations(t)
}

func TestUpdateRecetaEndpointAppliesCreator(t *testing.T) {
	seasons := &MockSeasons{}
	recipes := &MockRecipes{}
	recipeID := uuid.New()
	creatorID := uuid.New()

	recipes.On("Update", mock.Anything, recipeID, mock.MatchedBy(func(r *recetario.Recipe) bool {
		return r.CreadoPorID != nil && *r.CreadoPorID == creatorID
	})).Return(&recetario.Recipe{ID: recipeID}, nil).Once()

	app := catalogTestApp(seasons, recipes)

	body, _ := json.Marshal(map[string]any{
		"creadoPorId": creatorID.String(),
	})
	req := httptest.NewRequest("PATCH", "/recetas/"+recipeID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	recipes.AssertExpectations(t)
}

func TestListRecetasEndpointForwardsFilters(t *testing.T) {
	recipes := &MockRecipes{}
	creatorID := uuid.New()

	recipes.On("List", mock.Anything, mock.MatchedBy(func(f recetario.RecipeFilters) bool {
		return f.Ingrediente == "pollo" &&
			f.Rol == recetario.RoleChef &&
			f.CreadoPorID != nil && *f.CreadoPorID == creatorID
	})).Return([]*recetario.Recipe{}, nil).Once()

	app := catalogTestApp(&MockSeasons{}, recipes)

	target := "/recetas/?ingrediente=pollo&rol=chef&creadoPorId=" + creatorID.String()
	res, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	recipes.AssertExpectations(t)
}

func TestListRecetasEndpointRejectsMalformedCreator(t *testing.T) {
	app := catalogTestApp(&MockSeasons{}, &MockRecipes{})

	res, err := app.Test(httptest.NewRequest("GET", "/recetas/?creadoPorId=oops", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestDeleteRecetaEndpoint(t *testing.T) {
	recipes := &MockRecipes{}
	id := uuid.New()

	recipes.On("Delete", mock.Anything, id).
		Return(&recetario.Recipe{ID: id, Nombre: "Paella"}, nil).Once()

	app := catalogTestApp(&MockSeasons{}, recipes)

	res, err := app.Test(httptest.NewRequest("DELETE", "/recetas/"+id.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	raw, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Receta eliminada exitosamente", out["mensaje"])
}

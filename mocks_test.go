package recetario_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/cocinarte/recetario"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// stubRepoManager hands out the configured stores and runs transaction
// bodies directly against a zero Tx; the mocks behind it ignore the handle.
type stubRepoManager struct {
	users   recetario.Users
	seasons recetario.Seasons
	recipes recetario.Recipes
}

func (s *stubRepoManager) Validate() error { return nil }
func (s *stubRepoManager) MustValidate()   {}

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (s *stubRepoManager) Users() recetario.Users     { return s.users }
func (s *stubRepoManager) Seasons() recetario.Seasons { return s.seasons }
func (s *stubRepoManager) Recipes() recetario.Recipes { return s.recipes }

// MockUsers mocks the credential store. Only the methods the handlers reach
// are implemented; anything else panics through the embedded interface.
type MockUsers struct {
	mock.Mock
	recetario.Users
}

func userReturn(args mock.Arguments) (*recetario.User, error) {
	var u *recetario.User
	if v := args.Get(0); v != nil {
		u = v.(*recetario.User)
	}
	return u, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*recetario.User, error) {
	return userReturn(m.Called(ctx, email))
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*recetario.User, error) {
	return userReturn(m.Called(ctx, email))
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *recetario.User, criteria ...repository.InsertCriteria) (*recetario.User, error) {
	return userReturn(m.Called(ctx, record))
}

func (m *MockUsers) SetVerificationToken(ctx context.Context, id uuid.UUID, token recetario.Token) (*recetario.User, error) {
	return userReturn(m.Called(ctx, id, token))
}

func (m *MockUsers) ConsumeVerificationToken(ctx context.Context, token string) (*recetario.User, error) {
	return userReturn(m.Called(ctx, token))
}

func (m *MockUsers) SetResetToken(ctx context.Context, id uuid.UUID, token recetario.Token) (*recetario.User, error) {
	return userReturn(m.Called(ctx, id, token))
}

func (m *MockUsers) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*recetario.User, error) {
	return userReturn(m.Called(ctx, token, passwordHash))
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *recetario.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *recetario.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockSeasons mocks the temporada store.
type MockSeasons struct {
	mock.Mock
	recetario.Seasons
}

func seasonReturn(args mock.Arguments) (*recetario.Season, error) {
	var s *recetario.Season
	if v := args.Get(0); v != nil {
		s = v.(*recetario.Season)
	}
	return s, args.Error(1)
}

func (m *MockSeasons) Create(ctx context.Context, record *recetario.Season) (*recetario.Season, error) {
	return seasonReturn(m.Called(ctx, record))
}

func (m *MockSeasons) List(ctx context.Context) ([]*recetario.Season, error) {
	args := m.Called(ctx)
	var out []*recetario.Season
	if v := args.Get(0); v != nil {
		out = v.([]*recetario.Season)
	}
	return out, args.Error(1)
}

func (m *MockSeasons) GetByID(ctx context.Context, id uuid.UUID) (*recetario.Season, error) {
	return seasonReturn(m.Called(ctx, id))
}

func (m *MockSeasons) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*recetario.Season, error) {
	return seasonReturn(m.Called(ctx, id))
}

func (m *MockSeasons) Update(ctx context.Context, id uuid.UUID, changes *recetario.Season) (*recetario.Season, error) {
	return seasonReturn(m.Called(ctx, id, changes))
}

func (m *MockSeasons) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockRecipes mocks the receta store.
type MockRecipes struct {
	mock.Mock
	recetario.Recipes
}

func recipeReturn(args mock.Arguments) (*recetario.Recipe, error) {
	var r *recetario.Recipe
	if v := args.Get(0); v != nil {
		r = v.(*recetario.Recipe)
	}
	return r, args.Error(1)
}

func (m *MockRecipes) Create(ctx context.Context, record *recetario.Recipe) (*recetario.Recipe, error) {
	return recipeReturn(m.Called(ctx, record))
}

func (m *MockRecipes) List(ctx context.Context, filters recetario.RecipeFilters) ([]*recetario.Recipe, error) {
	args := m.Called(ctx, filters)
	var out []*recetario.Recipe
	if v := args.Get(0); v != nil {
		out = v.([]*recetario.Recipe)
	}
	return out, args.Error(1)
}

func (m *MockRecipes) GetByID(ctx context.Context, id uuid.UUID) (*recetario.Recipe, error) {
	return recipeReturn(m.Called(ctx, id))
}

func (m *MockRecipes) Update(ctx context.Context, id uuid.UUID, changes *recetario.Recipe) (*recetario.Recipe, error) {
	return recipeReturn(m.Called(ctx, id, changes))
}

func (m *MockRecipes) Delete(ctx context.Context, id uuid.UUID) (*recetario.Recipe, error) {
	return recipeReturn(m.Called(ctx, id))
}

func (m *MockRecipes) DeleteBySeasonTx(ctx context.Context, tx bun.IDB, seasonID uuid.UUID) (int64, error) {
	args := m.Called(ctx, seasonID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMailer records outgoing mail; Sent closes after the first delivery so
// tests can wait out the fire and forget goroutines.
type MockMailer struct {
	mock.Mock
	Sent chan struct{}
}

func NewMockMailer() *MockMailer {
	return &MockMailer{Sent: make(chan struct{}, 8)}
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	select {
	case m.Sent <- struct{}{}:
	default:
	}
	return args.Error(0)
}

func waitForMail(m *MockMailer) bool {
	select {
	case <-m.Sent:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

// stubTokenIssuer hands out a fixed token so assertions can match on it.
type stubTokenIssuer struct {
	token recetario.Token
	err   error
}

func (s stubTokenIssuer) Issue(ttl time.Duration) (recetario.Token, error) {
	if s.err != nil {
		return recetario.Token{}, s.err
	}
	t := s.token
	if t.ExpiresAt.IsZero() {
		t.ExpiresAt = time.Now().Add(ttl)
	}
	return t, nil
}

package recetario_test

import (
	"context"
	"testing"

	"github.com/cocinarte/recetario"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserCreatesAccountAndSendsVerification(t *testing.T) {
	users := &MockUsers{}
	seasons := &MockSeasons{}
	mailer := NewMockMailer()
	repo := &stubRepoManager{users: users, seasons: seasons}

	seasonID := uuid.New()
	issued := recetario.Token{Value: "fixed-verification-token"}

	users.On("GetByEmailTx", mock.Anything, "ana@ejemplo.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	seasons.On("GetByIDTx", mock.Anything, seasonID).
		Return(&recetario.Season{ID: seasonID}, nil).Once()

	users.On("CreateTx", mock.Anything, mock.MatchedBy(func(u *recetario.User) bool {
		return u.Email == "ana@ejemplo.com" &&
			u.VerificationToken == issued.Value &&
			!u.EmailVerified &&
			u.PasswordHash != "" &&
			u.PasswordHash != "secreta123"
	})).Return(&recetario.User{
		ID:          uuid.New(),
		Email:       "ana@ejemplo.com",
		Nombre:      "Ana",
		Role:        recetario.RoleParticipante,
		TemporadaID: seasonID,
	}, nil).Once()

	mailer.On("Send", "ana@ejemplo.com", recetario.VerificationEmailSubject, mock.Anything).
		Return(nil).Once()

	handler := recetario.NewRegisterUserHandler(repo, stubTokenIssuer{token: issued}, mailer, "http://localhost:3000").
		WithLogger(testLogger{})

	var created *recetario.User
	err := handler.Execute(context.Background(), recetario.RegisterUserMessage{
		Email:       "ana@ejemplo.com",
		Password:    "secreta123",
		Nombre:      "Ana",
		Rol:         recetario.RoleParticipante,
		TemporadaID: seasonID,
		OnResponse:  func(u *recetario.User) { created = u },
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, "ana@ejemplo.com", created.Email)

	require.True(t, waitForMail(mailer), "expected verification email dispatch")

	users.AssertExpectations(t)
	seasons.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRegisterUserRejectsDuplicateEmail(t *testing.T) {
	users := &MockUsers{}
	seasons := &MockSeasons{}
	mailer := NewMockMailer()
	repo := &stubRepoManager{users: users, seasons: seasons}

	users.On("GetByEmailTx", mock.Anything, "ana@ejemplo.com").
		Return(&recetario.User{Email: "ana@ejemplo.com"}, nil).Once()

	handler := recetario.NewRegisterUserHandler(repo, stubTokenIssuer{}, mailer, "http://localhost:3000").
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), recetario.RegisterUserMessage{
		Email:       "ana@ejemplo.com",
		Password:    "secreta123",
		Nombre:      "Ana",
		TemporadaID: uuid.New(),
	})

	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	require.Equal(t, goerrors.CategoryConflict, richErr.Category)
	require.Equal(t, "EMAIL_TAKEN", richErr.TextCode)

	users.AssertExpectations(t)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterUserRejectsUnknownSeason(t *testing.T) {
	users := &MockUsers{}
	seasons := &MockSeasons{}
	repo := &stubRepoManager{users: users, seasons: seasons}

	seasonID := uuid.New()

	users.On("GetByEmailTx", mock.Anything, "ana@ejemplo.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	seasons.On("GetByIDTx", mock.Anything, seasonID).
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := recetario.NewRegisterUserHandler(repo, stubTokenIssuer{}, NewMockMailer(), "http://localhost:3000").
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), recetario.RegisterUserMessage{
		Email:       "ana@ejemplo.com",
		Password:    "secreta123",
		Nombre:      "Ana",
		TemporadaID: seasonID,
	})

	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	require.Equal(t, goerrors.CategoryBadInput, richErr.Category)
}

func TestRegisterUserSurvivesMailFailure(t *testing.T) {
	users := &MockUsers{}
	seasons := &MockSeasons{}
	mailer := NewMockMailer()
	repo := &stubRepoManager{users: users, seasons: seasons}

	seasonID := uuid.New()

	users.On("GetByEmailTx", mock.Anything, mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()
	seasons.On("GetByIDTx", mock.Anything, seasonID).
		Return(&recetario.Season{ID: seasonID}, nil).Once()
	users.On("CreateTx", mock.Anything, mock.Anything).
		Return(&recetario.User{Email: "ana@ejemplo.com"}, nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(goerrors.New("smtp down", goerrors.CategoryOperation)).Once()

	handler := recetario.NewRegisterUserHandler(repo, stubTokenIssuer{}, mailer, "http://localhost:3000").
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), recetario.RegisterUserMessage{
		Email:       "ana@ejemplo.com",
		Password:    "secreta123",
		Nombre:      "Ana",
		TemporadaID: seasonID,
	})

	// the send happens out of band; its failure never bubbles up
	require.NoError(t, err)
	require.True(t, waitForMail(mailer))
}

package recetario

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	Nombre      string    `json:"nombre"`
	Rol         string    `json:"rol"`
	TemporadaID uuid.UUID `json:"temporadaId"`
	UseHashid   bool
	OnResponse  func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo    RepositoryManager
	tokens  TokenIssuer
	mailer  Mailer
	baseURL string
	logger  Logger
}

func NewRegisterUserHandler(repo RepositoryManager, tokens TokenIssuer, mailer Mailer, baseURL string) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		baseURL: baseURL,
		logger:  defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	verification, err := h.tokens.Issue(VerificationTokenTTL)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
		}

		if existing != nil {
			return goerrors.New("el email ya está registrado", goerrors.CategoryConflict).
				WithTextCode("EMAIL_TAKEN")
		}

		if _, err := h.repo.Seasons().GetByIDTx(ctx, tx, event.TemporadaID); err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("temporada no encontrada", goerrors.CategoryBadInput).
					WithMetadata(map[string]any{"temporadaId": event.TemporadaID.String()})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify season reference")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
		}

		expires := verification.ExpiresAt
		user.PasswordHash = hash
		user.Email = event.Email
		user.Nombre = event.Nombre
		user.Role = event.Rol
		user.TemporadaID = event.TemporadaID
		user.EmailVerified = false
		user.VerificationToken = verification.Value
		user.VerificationTokenExpires = &expires
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	// fire and forget: a failed send never rolls back the registration
	go func(email, nombre, token string) {
		link := fmt.Sprintf("%s/auth/verify-email?token=%s", h.baseURL, token)
		if err := h.mailer.Send(email, VerificationEmailSubject, VerificationEmailBody(nombre, link)); err != nil {
			h.logger.Error("failed to send verification email", "email", email, "error", err)
		}
	}(user.Email, user.Nombre, verification.Value)

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}

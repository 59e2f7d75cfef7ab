package recetario

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// GenericResetMessage is the uniform response for password reset requests,
// returned whether or not the email exists. It prevents account enumeration.
const GenericResetMessage = "Si el email está registrado, recibirás un enlace de recuperación"

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Mensaje string `json:"mensaje"`
}

type InitializePasswordResetHandler struct {
	repo    RepositoryManager
	tokens  TokenIssuer
	mailer  Mailer
	baseURL string
	logger  Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, tokens TokenIssuer, mailer Mailer, baseURL string) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		baseURL: baseURL,
		logger:  defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// every branch below reports the same generic success; an attacker
	// cannot tell a known address from an unknown one
	respond := func() {
		if event.OnResponse != nil {
			event.OnResponse(&InitializePasswordResetResponse{Mensaje: GenericResetMessage})
		}
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			h.logger.Error("failed to retrieve user for password reset", "error", err)
		}
		respond()
		return nil
	}

	reset, err := h.tokens.Issue(ResetTokenTTL)
	if err != nil {
		h.logger.Error("failed to issue reset token", "error", err)
		respond()
		return nil
	}

	if _, err := h.repo.Users().SetResetToken(ctx, user.ID, reset); err != nil {
		h.logger.Error("failed to store reset token", "error", err)
		respond()
		return nil
	}

	go func(email, nombre, token string) {
		link := fmt.Sprintf("%s/auth/reset-password?token=%s", h.baseURL, token)
		if err := h.mailer.Send(email, ResetEmailSubject, ResetEmailBody(nombre, link)); err != nil {
			h.logger.Error("failed to send reset email", "email", email, "error", err)
		}
	}(user.Email, user.Nombre, reset.Value)

	respond()
	return nil
}

package recetario

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "user.resend_verification" }

type ResendVerificationResponse struct {
	Mensaje string `json:"mensaje"`
}

type ResendVerificationHandler struct {
	repo    RepositoryManager
	tokens  TokenIssuer
	mailer  Mailer
	baseURL string
	logger  Logger
}

func NewResendVerificationHandler(repo RepositoryManager, tokens TokenIssuer, mailer Mailer, baseURL string) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		baseURL: baseURL,
		logger:  defLogger{},
	}
}

func (h *ResendVerificationHandler) WithLogger(logger Logger) *ResendVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return goerrors.New("no se pudo reenviar el email de verificación", goerrors.CategoryBadInput).
				WithTextCode("RESEND_FAILED")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for resend")
	}

	if user.EmailVerified {
		return goerrors.New("el email ya está verificado", goerrors.CategoryBadInput).
			WithTextCode("ALREADY_VERIFIED")
	}

	verification, err := h.tokens.Issue(VerificationTokenTTL)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	if _, err := h.repo.Users().SetVerificationToken(ctx, user.ID, verification); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification token")
	}

	// unlike register and forgot-password, a failed dispatch here is
	// surfaced to the caller
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", h.baseURL, verification.Value)
	if err := h.mailer.Send(user.Email, VerificationEmailSubject, VerificationEmailBody(user.Nombre, link)); err != nil {
		h.logger.Error("failed to resend verification email", "email", user.Email, "error", err)
		return goerrors.New("no se pudo reenviar el email de verificación", goerrors.CategoryBadInput).
			WithTextCode("RESEND_FAILED")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ResendVerificationResponse{
			Mensaje: "Email de verificación reenviado",
		})
	}

	return nil
}

package recetario

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type VerifyEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "user.verify_email" }

type VerifyEmailResponse struct {
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Verified bool   `json:"emailVerified"`
}

type VerifyEmailHandler struct {
	repo RepositoryManager
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{repo: repo}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Token == "" {
		return goerrors.New("token de verificación inválido o expirado", goerrors.CategoryBadInput).
			WithTextCode("TOKEN_INVALID")
	}

	// single conditional update: match on token and expiry, then clear.
	// A concurrent replay finds the token already gone and fails here.
	user, err := h.repo.Users().ConsumeVerificationToken(ctx, event.Token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return goerrors.New("token de verificación inválido o expirado", goerrors.CategoryBadInput).
				WithTextCode("TOKEN_INVALID")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{
			Email:    user.Email,
			Nombre:   user.Nombre,
			Verified: user.EmailVerified,
		})
	}

	return nil
}

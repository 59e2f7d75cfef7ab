package recetario

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthController exposes the account lifecycle over REST.
type AuthController struct {
	logger   Logger
	provider *UserProvider
	tokens   TokenService

	register      *RegisterUserHandler
	verifyEmail   *VerifyEmailHandler
	resetInit     *InitializePasswordResetHandler
	resetFinalize *FinalizePasswordResetHandler
	resend        *ResendVerificationHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.logger = logger
		}
		return c
	}
}

// NewAuthController wires the lifecycle handlers behind the /auth routes.
func NewAuthController(
	provider *UserProvider,
	tokens TokenService,
	register *RegisterUserHandler,
	verifyEmail *VerifyEmailHandler,
	resetInit *InitializePasswordResetHandler,
	resetFinalize *FinalizePasswordResetHandler,
	resend *ResendVerificationHandler,
	opts ...AuthControllerOption,
) *AuthController {
	c := &AuthController{
		logger:        defLogger{},
		provider:      provider,
		tokens:        tokens,
		register:      register,
		verifyEmail:   verifyEmail,
		resetInit:     resetInit,
		resetFinalize: resetFinalize,
		resend:        resend,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.provider == nil {
		panic("Missing UserProvider in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the account lifecycle endpoints.
func RegisterAuthRoutes(app fiber.Router, c *AuthController) {
	grp := app.Group("/auth")

	grp.Post("/register", c.Register)
	grp.Post("/login", c.Login)
	grp.Get("/verify-email", c.VerifyEmail)
	grp.Post("/forgot-password", c.ForgotPassword)
	grp.Post("/reset-password", c.ResetPassword)
	grp.Post("/resend-verification", c.ResendVerification)
}

// RegisterPayload is the registration request body
type RegisterPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Nombre      string `json:"nombre"`
	Rol         string `json:"rol"`
	TemporadaID string `json:"temporada"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.Nombre, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Rol, validation.Required, validation.In(KnownRoles...)),
		validation.Field(&r.TemporadaID, validation.Required, is.UUID),
	)
}

func (a *AuthController) Register(ctx *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.logger.Error("register user parse payload", "error", err)
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		a.logger.Error("register user validate payload", "error", err)
		return validationError(ctx, err)
	}

	temporadaID, err := uuid.Parse(payload.TemporadaID)
	if err != nil {
		return badRequest(ctx, "ID inválido")
	}

	var created *User

	req := RegisterUserMessage{
		Email:       payload.Email,
		Password:    payload.Password,
		Nombre:      payload.Nombre,
		Rol:         payload.Rol,
		TemporadaID: temporadaID,
		OnResponse: func(user *User) {
			created = user
		},
	}

	if err := a.register.Execute(ctx.Context(), req); err != nil {
		a.logger.Error("register user error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"mensaje": "Usuario registrado exitosamente",
		"user":    created,
	})
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(ctx *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.logger.Error("login parse payload", "error", err)
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return validationError(ctx, err)
	}

	user, err := a.provider.VerifyIdentity(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.logger.Error("login verify identity error", "error", err)
		return respondError(ctx, err)
	}

	token, err := a.tokens.Generate(user)
	if err != nil {
		a.logger.Error("login token generation error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"mensaje": "Login exitoso",
		"user":    user,
		"token":   token,
	})
}

func (a *AuthController) VerifyEmail(ctx *fiber.Ctx) error {
	var resp *VerifyEmailResponse

	req := VerifyEmailMessage{
		Token: ctx.Query("token"),
		OnResponse: func(r *VerifyEmailResponse) {
			resp = r
		},
	}

	if err := a.verifyEmail.Execute(ctx.Context(), req); err != nil {
		a.logger.Error("verify email error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(resp)
}

// EmailPayload carries a lone email address
type EmailPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPassword(ctx *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return validationError(ctx, err)
	}

	var resp *InitializePasswordResetResponse

	req := InitializePasswordResetMessage{
		Email: payload.Email,
		OnResponse: func(r *InitializePasswordResetResponse) {
			resp = r
		},
	}

	if err := a.resetInit.Execute(ctx.Context(), req); err != nil {
		a.logger.Error("forgot password error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(resp)
}

// ResetPasswordPayload finalizes a password reset
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) ResetPassword(ctx *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return validationError(ctx, err)
	}

	req := FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	}

	if err := a.resetFinalize.Execute(ctx.Context(), req); err != nil {
		a.logger.Error("reset password error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"mensaje": "Contraseña actualizada exitosamente",
	})
}

func (a *AuthController) ResendVerification(ctx *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return badRequest(ctx, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return validationError(ctx, err)
	}

	var resp *ResendVerificationResponse

	req := ResendVerificationMessage{
		Email: payload.Email,
		OnResponse: func(r *ResendVerificationResponse) {
			resp = r
		},
	}

	if err := a.resend.Execute(ctx.Context(), req); err != nil {
		a.logger.Error("resend verification error", "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(resp)
}

func respondError(ctx *fiber.Ctx, err error) error {
	status := StatusFromError(err)
	return ctx.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"mensaje":    PublicMessage(err),
	})
}

func badRequest(ctx *fiber.Ctx, mensaje string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"statusCode": fiber.StatusBadRequest,
		"mensaje":    mensaje,
	})
}

func validationError(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"statusCode": fiber.StatusBadRequest,
		"mensaje":    "Datos de entrada inválidos",
		"validation": FormatValidationErrorToMap(err),
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field/message map consumable by API clients.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			if fieldErr != nil {
				out[field] = fieldErr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

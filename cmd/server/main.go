package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/cocinarte/recetario"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("recetario"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := Load(ctx)
	if err != nil {
		lgr.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, lgr); err != nil {
		lgr.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, lgr *glog.BaseLogger) error {
	db, err := sql.Open(sqliteshim.ShimName, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	persistence.RegisterModel((*recetario.User)(nil))
	persistence.RegisterModel((*recetario.Season)(nil))
	persistence.RegisterModel((*recetario.Recipe)(nil))

	client, err := persistence.New(persistenceConfig{
		driver: cfg.DBDriver,
		server: cfg.DBDSN,
		debug:  cfg.DBDebug,
	}, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(lgr.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(recetario.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	repo := recetario.NewRepositoryManager(client.DB())

	mailer := recetario.NewSMTPMailer(recetario.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	issuer := recetario.NewTokenIssuer()

	tokens := recetario.NewTokenService(
		[]byte(cfg.JWTSigningKey),
		cfg.JWTTTL,
		cfg.JWTIssuer,
		lgr.GetLogger("tokens"),
	)

	provider := recetario.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("auth:prv"))

	authController := recetario.NewAuthController(
		provider,
		tokens,
		recetario.NewRegisterUserHandler(repo, issuer, mailer, cfg.BaseURL).
			WithLogger(lgr.GetLogger("cmd:register")),
		recetario.NewVerifyEmailHandler(repo),
		recetario.NewInitializePasswordResetHandler(repo, issuer, mailer, cfg.BaseURL).
			WithLogger(lgr.GetLogger("cmd:reset")),
		recetario.NewFinalizePasswordResetHandler(repo),
		recetario.NewResendVerificationHandler(repo, issuer, mailer, cfg.BaseURL).
			WithLogger(lgr.GetLogger("cmd:resend")),
		recetario.WithAuthLogger(lgr.GetLogger("http:auth")),
	)

	catalogController := recetario.NewCatalogController(
		repo,
		recetario.NewDeleteSeasonHandler(repo),
		recetario.WithCatalogLogger(lgr.GetLogger("http:catalog")),
	)

	app := fiber.New(fiber.Config{
		AppName:      "recetario",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	recetario.RegisterAuthRoutes(app, authController)
	recetario.RegisterCatalogRoutes(app, catalogController)

	errCh := make(chan error, 1)
	go func() {
		lgr.Info("starting server", "addr", cfg.Addr)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutting down server")
	return app.ShutdownWithTimeout(10 * time.Second)
}

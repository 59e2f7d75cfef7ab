package recetario

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ConsumeVerificationTokenSQL = `UPDATE "usuarios" AS "usr"
SET
	"is_email_verified" = TRUE,
	"verification_token" = NULL,
	"verification_token_expires" = NULL
WHERE
	"usr"."verification_token" = ?
AND (
	"usr"."verification_token_expires" > ?
) RETURNING *;`

var ConsumeResetTokenSQL = `UPDATE "usuarios" AS "usr"
SET
	"password_hash" = ?,
	"reset_password_token" = NULL,
	"reset_password_expires" = NULL
WHERE
	"usr"."reset_password_token" = ?
AND (
	"usr"."reset_password_expires" > ?
) RETURNING *;`

// Users is the credential store. Token consumption runs as a single
// conditional update so a concurrent replay sees the token already cleared.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	SetVerificationToken(ctx context.Context, id uuid.UUID, token Token) (*User, error)
	SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token Token) (*User, error)
	ConsumeVerificationToken(ctx context.Context, token string) (*User, error)
	ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)

	SetResetToken(ctx context.Context, id uuid.UUID, token Token) (*User, error)
	SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token Token) (*User, error)
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (*User, error)
	ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, passwordHash string) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// WithTemporada loads the season reference alongside the user record.
func WithTemporada() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Temporada")
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email, criteria...)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) SetVerificationToken(ctx context.Context, id uuid.UUID, token Token) (*User, error) {
	return a.SetVerificationTokenTx(ctx, a.db, id, token)
}

func (a *users) SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token Token) (*User, error) {
	record := &User{}
	err := tx.NewUpdate().
		Model(record).
		Set("verification_token = ?", token.Value).
		Set("verification_token_expires = ?", token.ExpiresAt).
		Where("?TableAlias.id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, token Token) (*User, error) {
	return a.SetResetTokenTx(ctx, a.db, id, token)
}

func (a *users) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token Token) (*User, error) {
	record := &User{}
	err := tx.NewUpdate().
		Model(record).
		Set("reset_password_token = ?", token.Value).
		Set("reset_password_expires = ?", token.ExpiresAt).
		Where("?TableAlias.id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ConsumeVerificationToken(ctx context.Context, token string) (*User, error) {
	return a.ConsumeVerificationTokenTx(ctx, a.db, token)
}

func (a *users) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeVerificationTokenSQL, token, time.Now())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"token": token,
			})
	}

	return res[0], nil
}

func (a *users) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*User, error) {
	return a.ConsumeResetTokenTx(ctx, a.db, token, passwordHash)
}

func (a *users) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, passwordHash string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeResetTokenSQL, passwordHash, token, time.Now())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"token": token,
			})
	}

	return res[0], nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	// NOTE: Updating using the ORM fails to reset the zero valued
	// login_attempt_at, login_attempts fields, so we go raw.
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "usuarios" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?);
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(user.ID.String()),
	}

	record := &User{}
	record.ID = user.ID
	record.LoginAttempts = user.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, tx, record, criteria...)

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleParticipante
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

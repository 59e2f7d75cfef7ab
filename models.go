package recetario

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role within a competition season
type UserRole = string

const (
	// RoleParticipante is a competition contestant
	RoleParticipante UserRole = "participante"
	// RoleChef is a judging chef
	RoleChef UserRole = "chef"
	// RoleAdmin is a platform administrator
	RoleAdmin UserRole = "admin"
)

// KnownRoles lists every role accepted at registration time.
var KnownRoles = []any{RoleParticipante, RoleChef, RoleAdmin}

// User is the account model. Password hash and token state never serialize.
type User struct {
	bun.BaseModel `bun:"table:usuarios,alias:usr"`

	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Nombre        string    `bun:"nombre,notnull" json:"nombre,omitempty"`
	Role          UserRole  `bun:"rol,notnull" json:"rol,omitempty"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	TemporadaID   uuid.UUID `bun:"temporada_id,notnull,type:uuid" json:"temporadaId,omitempty"`
	Temporada     *Season   `bun:"rel:belongs-to,join:temporada_id=id" json:"temporada,omitempty"`
	EmailVerified bool      `bun:"is_email_verified" json:"emailVerified"`

	VerificationToken        string     `bun:"verification_token,nullzero" json:"-"`
	VerificationTokenExpires *time.Time `bun:"verification_token_expires,nullzero" json:"-"`
	ResetPasswordToken       string     `bun:"reset_password_token,nullzero" json:"-"`
	ResetPasswordExpires     *time.Time `bun:"reset_password_expires,nullzero" json:"-"`

	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// Season groups recipes under one competition run.
type Season struct {
	bun.BaseModel `bun:"table:temporadas,alias:tmp"`

	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Nombre        string     `bun:"nombre,notnull" json:"nombre"`
	Numero        int        `bun:"numero,notnull" json:"temporada"`
	FechaCreacion *time.Time `bun:"fecha_creacion,nullzero,default:current_timestamp" json:"fechaCreacion,omitempty"`
}

// Recipe belongs to exactly one season; the creator reference is optional.
type Recipe struct {
	bun.BaseModel `bun:"table:recetas,alias:rec"`

	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Nombre            string     `bun:"nombre,notnull" json:"nombre"`
	Descripcion       string     `bun:"descripcion,notnull" json:"descripcion"`
	Ingredientes      []string   `bun:"ingredientes,type:jsonb" json:"ingredientes"`
	Pasos             []string   `bun:"pasos,type:jsonb" json:"pasos"`
	TiempoPreparacion int        `bun:"tiempo_preparacion" json:"tiempoPreparacion,omitempty"`
	TemporadaID       uuid.UUID  `bun:"temporada_id,notnull,type:uuid" json:"temporadaId,omitempty"`
	Temporada         *Season    `bun:"rel:belongs-to,join:temporada_id=id" json:"temporada,omitempty"`
	CreadoPorID       *uuid.UUID `bun:"creado_por_id,nullzero,type:uuid" json:"creadoPorId,omitempty"`
	CreadoPor         *User      `bun:"rel:belongs-to,join:creado_por_id=id" json:"creadoPor,omitempty"`
	FechaCreacion     *time.Time `bun:"fecha_creacion,nullzero,default:current_timestamp" json:"fechaCreacion,omitempty"`
}

package main

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the API server.
type Config struct {
	Addr          string        `env:"ADDR,default=:3000"`
	BaseURL       string        `env:"BASE_URL,default=http://localhost:3000"`
	DBDriver      string        `env:"DB_DRIVER,default=sqlite"`
	DBDSN         string        `env:"DB_DSN,default=file:recetario.db?cache=shared"`
	DBDebug       bool          `env:"DB_DEBUG,default=false"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
	JWTIssuer     string        `env:"JWT_ISSUER,default=recetario"`
	JWTTTL        time.Duration `env:"JWT_TTL,default=24h"`
	SMTPHost      string        `env:"SMTP_HOST"`
	SMTPPort      int           `env:"SMTP_PORT,default=587"`
	SMTPUser      string        `env:"SMTP_USER"`
	SMTPPassword  string        `env:"SMTP_PASS"`
	SMTPFrom      string        `env:"SMTP_FROM"`
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// persistenceConfig adapts Config to the persistence client's expectations.
type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (p persistenceConfig) GetDriver() string         { return p.driver }
func (p persistenceConfig) GetServer() string         { return p.server }
func (p persistenceConfig) GetDatabase() string       { return "" }
func (p persistenceConfig) GetDebug() bool            { return p.debug }
func (p persistenceConfig) GetOtelIdentifier() string { return "" }

func (p persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	// Issuer is the iss claim stamped into every token.
	Issuer string `env:"IDENTITY_ISSUER" envDefault:"identity"`

	// Algorithm selects the token signing algorithm: EdDSA or ES256.
	Algorithm string `env:"IDENTITY_ALGORITHM" envDefault:"EdDSA"`

	// SigningKeyFile points at a PKCS8 PEM private key. Empty means an
	// ephemeral key is generated at startup, invalidating all tokens on
	// restart.
	SigningKeyFile string `env:"IDENTITY_SIGNING_KEY_FILE"`

	// DatabaseFile is the sqlite database path.
	DatabaseFile string `env:"IDENTITY_DATABASE_FILE" envDefault:"identity.db"`

	// AdminPassword seeds the bootstrap admin account. Empty means a
	// password is generated and logged once.
	AdminPassword string `env:"IDENTITY_ADMIN_PASSWORD"`

	AccessTokenTTL  time.Duration `env:"IDENTITY_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"IDENTITY_REFRESH_TOKEN_TTL" envDefault:"168h"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

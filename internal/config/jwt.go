package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTExpiration is the token lifetime when none is configured.
const DefaultJWTExpiration = 24 * time.Hour

// JWTIssuer is the iss claim of every issued token.
const JWTIssuer = "jobfit-analyzer"

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// NewJWTConfig reads jwt_secret (required) and jwt_expiration from v.
// Both may be set through JOBFIT_JWT_SECRET / JWT_SECRET and
// JOBFIT_JWT_EXPIRATION / JWT_EXPIRATION.
func NewJWTConfig(v *viper.Viper) (*JWTConfig, error) {
	if v == nil {
		v = NewViper()
	}
	_ = v.BindEnv("jwt_secret", EnvPrefix+"_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("jwt_expiration", EnvPrefix+"_JWT_EXPIRATION", "JWT_EXPIRATION")

	cfg := &JWTConfig{
		Secret:     v.GetString("jwt_secret"),
		Expiration: DefaultJWTExpiration,
		Issuer:     JWTIssuer,
	}
	if v.IsSet("jwt_expiration") {
		raw := v.GetString("jwt_expiration")
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid jwt_expiration %q: %w", raw, err)
		}
		cfg.Expiration = d
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("jwt_secret is required but not set")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 characters")
	}
	if c.Expiration < time.Minute {
		return fmt.Errorf("jwt_expiration must be at least one minute, got: %s", c.Expiration)
	}
	return nil
}

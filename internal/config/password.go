package config

import (
	"fmt"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when bcrypt_cost is not configured.
const DefaultBcryptCost = 12

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewPasswordConfig reads bcrypt_cost and password_pepper from v
// (JOBFIT_BCRYPT_COST / BCRYPT_COST, JOBFIT_PASSWORD_PEPPER / PASSWORD_PEPPER).
func NewPasswordConfig(v *viper.Viper) (*PasswordConfig, error) {
	if v == nil {
		v = NewViper()
	}
	_ = v.BindEnv("bcrypt_cost", EnvPrefix+"_BCRYPT_COST", "BCRYPT_COST")
	_ = v.BindEnv("password_pepper", EnvPrefix+"_PASSWORD_PEPPER", "PASSWORD_PEPPER")
	v.SetDefault("bcrypt_cost", DefaultBcryptCost)

	cfg := &PasswordConfig{
		BcryptCost: v.GetInt("bcrypt_cost"),
		Pepper:     v.GetString("password_pepper"),
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-14)", c.BcryptCost, bcrypt.MinCost)
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func clearPasswordEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BCRYPT_COST", "PASSWORD_PEPPER", "JOBFIT_BCRYPT_COST", "JOBFIT_PASSWORD_PEPPER"} {
		t.Setenv(key, "")
	}
}

func TestNewPasswordConfig_Default(t *testing.T) {
	clearPasswordEnv(t)

	cfg, err := NewPasswordConfig(NewViper())
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)
	assert.Empty(t, cfg.Pepper)
}

func TestNewPasswordConfig_Env(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("JOBFIT_PASSWORD_PEPPER", "pepper")

	cfg, err := NewPasswordConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "pepper", cfg.Pepper)
}

func TestNewPasswordConfig_OutOfRange(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("BCRYPT_COST", "20")

	_, err := NewPasswordConfig(NewViper())
	assert.ErrorContains(t, err, "bcrypt cost out of range")
}

func TestHashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong", hash))

	noPepper := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	assert.False(t, noPepper.VerifyPassword("correct horse", hash), "pepper is part of the hash input")
}

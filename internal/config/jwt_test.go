package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearJWTEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"JWT_SECRET", "JWT_EXPIRATION", "JOBFIT_JWT_SECRET", "JOBFIT_JWT_EXPIRATION"} {
		t.Setenv(key, "")
	}
}

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	clearJWTEnv(t)
	t.Setenv("JWT_SECRET", "test-secret-key-0123")

	cfg, err := NewJWTConfig(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "test-secret-key-0123", cfg.Secret)
	assert.Equal(t, DefaultJWTExpiration, cfg.Expiration)
	assert.Equal(t, JWTIssuer, cfg.Issuer)
}

func TestNewJWTConfig_PrefixedEnvAndExpiration(t *testing.T) {
	clearJWTEnv(t)
	t.Setenv("JOBFIT_JWT_SECRET", "prefixed-secret-0123")
	t.Setenv("JOBFIT_JWT_EXPIRATION", "2h")

	cfg, err := NewJWTConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "prefixed-secret-0123", cfg.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Expiration)
}

func TestNewJWTConfig_FromViperValues(t *testing.T) {
	clearJWTEnv(t)
	v := NewViper()
	v.Set("jwt_secret", "set-directly-0123456")
	v.Set("jwt_expiration", "30m")

	cfg, err := NewJWTConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Expiration)
}

func TestNewJWTConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		wantErr    string
	}{
		{name: "missing secret", wantErr: "jwt_secret is required"},
		{name: "short secret", secret: "short", wantErr: "at least 16 characters"},
		{name: "bad expiration", secret: "test-secret-key-0123", expiration: "soon", wantErr: "invalid jwt_expiration"},
		{name: "tiny expiration", secret: "test-secret-key-0123", expiration: "1s", wantErr: "at least one minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearJWTEnv(t)
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION", tt.expiration)

			_, err := NewJWTConfig(NewViper())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

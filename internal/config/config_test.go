package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/recipe-box/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_DIR", "DATABASE_URL", "LOG_LEVEL", "CORS_ORIGINS", "MAX_BODY_BYTES"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
	assert.False(t, cfg.UsePostgres())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/var/lib/recipebox")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/recipebox")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAX_BODY_BYTES", "2048")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/var/lib/recipebox", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.True(t, cfg.UsePostgres())
}

func TestLoad_BadMaxBodyBytes(t *testing.T) {
	cases := []string{"not-a-number", "0", "-1"}
	for _, v := range cases {
		t.Run(v, func(t *testing.T) {
			t.Setenv("MAX_BODY_BYTES", v)

			_, err := config.Load()

			assert.Error(t, err)
		})
	}
}

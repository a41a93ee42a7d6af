package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig()
	assert.EqualError(t, err, "set DATABASE_URL")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lifelink")

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint(8080), c.ServerPort)
	assert.Equal(t, "lifelink", c.DatabaseSchema)
	assert.Equal(t, 50.0, c.DefaultRadiusKm)
	assert.Equal(t, 20038.0, c.MaxRadiusKm)
	assert.False(t, c.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lifelink")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DEFAULT_RADIUS_KM", "25")

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint(9090), c.ServerPort)
	assert.Equal(t, 25.0, c.DefaultRadiusKm)
	assert.True(t, c.IsProduction())
}

func TestLoadConfigRejectsInvertedRadii(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lifelink")
	t.Setenv("DEFAULT_RADIUS_KM", "100")
	t.Setenv("MAX_RADIUS_KM", "10")

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	_, err = newLogger("chatty")
	assert.Error(t, err)
}

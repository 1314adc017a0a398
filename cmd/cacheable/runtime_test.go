package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-cacheable/internal/config"
	"github.com/goliatone/go-cacheable/internal/users"
)

func TestNewLoggerLevel(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestOpenDBUnsupportedDriver(t *testing.T) {
	_, err := openDB(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestOpenDBSQLiteAndMigrate(t *testing.T) {
	db, err := openDB(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "cli.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, users.Migrate(ctx, db))
	require.NoError(t, users.Migrate(ctx, db))
}

func TestLoadConfigLogLevelFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	root := newRootCommand()
	require.NoError(t, root.ParseFlags([]string{"--config", path}))

	cfg, err := loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.NoError(t, root.Flags().Set("log-level", "error"))
	cfg, err = loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)

	require.NoError(t, root.Flags().Set("log-level", "shout"))
	_, err = loadConfig(root)
	assert.Error(t, err)
}

package db

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-backend/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, &config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "sqlite", s.Dialect())
	assert.NoError(t, s.Ping(ctx))
}

func TestOpen_Rejects(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, &config.Config{DBDriver: "mysql"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = Open(ctx, &config.Config{DBDriver: config.DriverPostgres}, zerolog.Nop())
	assert.ErrorContains(t, err, "DATABASE_URL")
}

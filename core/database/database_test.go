package database

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "inventory",
			Driver:         DriverMySQL,
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(Config{
		Host:     "db.internal",
		User:     "app",
		Password: "p@ss:word",
		Name:     "inventory",
	})

	assert.True(t, strings.HasPrefix(dsn, "app:p%40ss%3Aword@tcp(db.internal:3306)/inventory?"), dsn)
	assert.Contains(t, dsn, "timeout=30s")
	assert.Contains(t, dsn, "parseTime=True")
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(Config{
		Host:           "pg.internal",
		User:           "app",
		Password:       "secret",
		Name:           "inventory",
		Driver:         DriverPostgres,
		SSLMode:        "require",
		TimeoutSeconds: 5,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "pg.internal:5432", u.Host)
	assert.Equal(t, "/inventory", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
	assert.Equal(t, "5", u.Query().Get("connect_timeout"))

	password, _ := u.User.Password()
	assert.Equal(t, "secret", password)
}

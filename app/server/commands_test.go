package main

import (
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stix-ui/app/server/inits"
	"stix-ui/app/server/jwt"
	"stix-ui/app/server/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, inits.Prepare(db))
	return db
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Role{Name: "mirror", Description: "Export API"}).Error)

	user, err := createUser(db, "sync", "sync@example.com", "", "s3cret", false, "mirror")
	require.NoError(t, err)
	assert.Equal(t, "sync", user.Name)
	require.NotNil(t, user.RoleID)

	match, err := argon2id.ComparePasswordAndHash("s3cret", user.Password)
	require.NoError(t, err)
	assert.True(t, match)

	_, err = createUser(db, "sync", "other@example.com", "Sync", "x", false, "")
	assert.ErrorContains(t, err, "already in use")

	_, err = createUser(db, "lost", "lost@example.com", "Lost", "x", false, "nope")
	assert.ErrorContains(t, err, `no role named "nope"`)
}

func TestMintToken(t *testing.T) {
	db := newTestDB(t)
	j, err := jwt.New("mint-test-key")
	require.NoError(t, err)

	now := time.Now()
	token, err := mintToken(db, j, "admin", time.Hour, now)
	require.NoError(t, err)

	parsed, err := j.ParseUser(token)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), parsed.Expires)

	var admin models.User
	require.NoError(t, db.First(&admin, "username = ?", "admin").Error)
	assert.Equal(t, admin.ID, parsed.ID)

	_, err = mintToken(db, j, "ghost", time.Hour, now)
	assert.ErrorContains(t, err, `no user named "ghost"`)

	_, err = mintToken(db, j, "admin", 0, now)
	assert.Error(t, err)
}

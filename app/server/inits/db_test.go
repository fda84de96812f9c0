package inits

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stix-ui/app/server/models"
)

func TestPrepareSeedsOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Prepare(db))

	var admin models.User
	require.NoError(t, db.First(&admin, "username = ?", "admin").Error)
	assert.True(t, admin.IsAdmin)
	match, err := argon2id.ComparePasswordAndHash("password", admin.Password)
	require.NoError(t, err)
	assert.True(t, match)

	var count int64
	require.NoError(t, db.Model(&models.ThreatActorType{}).Count(&count).Error)
	assert.Equal(t, int64(len(threatActorTypes)), count)
	require.NoError(t, db.Model(&models.IdentityClass{}).Count(&count).Error)
	assert.Equal(t, int64(len(identityClasses)), count)

	// Running again adds nothing, even after the vocabulary was trimmed
	require.NoError(t, db.Unscoped().Where("name = ?", "spy").Delete(&models.ThreatActorType{}).Error)
	require.NoError(t, Prepare(db))

	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.ThreatActorType{}).Count(&count).Error)
	assert.Equal(t, int64(len(threatActorTypes)-1), count)
}

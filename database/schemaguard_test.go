package database

import (
	"classboard/models"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSchemaTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.Submission{},
		&models.ActivityLog{},
	))
	return db
}

func TestEnsureSchemaIdempotentOnCorrectSchema(t *testing.T) {
	db := openSchemaTestDB(t)

	require.NoError(t, EnsureSchema(db))
	first := Capabilities

	assert.True(t, first.ClassroomEnrollmentCode)
	assert.True(t, first.LessonContent)
	assert.True(t, first.LessonFilePath)
	assert.True(t, first.SubmissionFilePath)
	assert.True(t, first.ActivityLog)

	// Running again against the already-correct schema changes nothing.
	require.NoError(t, EnsureSchema(db))
	assert.Equal(t, first, Capabilities)
}

func TestEnsureSchemaRestoresMissingColumn(t *testing.T) {
	db := openSchemaTestDB(t)

	require.NoError(t, db.Migrator().DropColumn(&models.Classroom{}, "EnrollmentCode"))
	require.False(t, db.Migrator().HasColumn(&models.Classroom{}, "EnrollmentCode"))

	require.NoError(t, EnsureSchema(db))

	assert.True(t, db.Migrator().HasColumn(&models.Classroom{}, "EnrollmentCode"))
	assert.True(t, Capabilities.ClassroomEnrollmentCode)
}

func TestEnsureSchemaRecreatesLessonsTable(t *testing.T) {
	db := openSchemaTestDB(t)

	require.NoError(t, db.Migrator().DropTable(&models.Submission{}))
	require.NoError(t, db.Migrator().DropTable(&models.Lesson{}))
	require.False(t, db.Migrator().HasTable(&models.Lesson{}))

	require.NoError(t, EnsureSchema(db))

	assert.True(t, db.Migrator().HasTable(&models.Lesson{}))
}

func TestEnsureSchemaRecreatesAuditTable(t *testing.T) {
	db := openSchemaTestDB(t)

	require.NoError(t, db.Migrator().DropTable(&models.ActivityLog{}))

	// EnsureSchema recreates the table; the capability comes back with it.
	require.NoError(t, EnsureSchema(db))
	assert.True(t, Capabilities.ActivityLog)
	assert.True(t, db.Migrator().HasTable(&models.ActivityLog{}))
}

func TestEnsureSchemaDisablesAuditWhenTableCannotBeCreated(t *testing.T) {
	db := openSchemaTestDB(t)

	// A view squatting on the name makes the table probe miss and the create
	// fail for good: the re-probe still sees no table. Audit degrades to a
	// disabled capability while startup succeeds.
	require.NoError(t, db.Migrator().DropTable(&models.ActivityLog{}))
	require.NoError(t, db.Exec("CREATE VIEW activity_logs AS SELECT 1 AS id").Error)

	require.NoError(t, EnsureSchema(db))
	assert.False(t, Capabilities.ActivityLog)
	assert.True(t, Capabilities.ClassroomEnrollmentCode)
}

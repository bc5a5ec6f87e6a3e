package services

import (
	"classboard/database"
	"classboard/models"
	"classboard/policy"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory sqlite database, migrates it and
// resolves the schema capabilities, the same way startup does.
func setupTestDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, database.EnsureSchema(db))

	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createClassroom(t *testing.T, db *gorm.DB, teacherID uint) *models.Classroom {
	t.Helper()
	classroom := models.Classroom{
		Name:      "Mathematics",
		TeacherID: teacherID,
	}
	require.NoError(t, db.Create(&classroom).Error)
	return &classroom
}

func createLesson(t *testing.T, db *gorm.DB, classroomID uint, filePath string) *models.Lesson {
	t.Helper()
	lesson := models.Lesson{
		ClassroomID: classroomID,
		Title:       "Algebra I",
		Content:     "Solve the exercises on page 42",
		FilePath:    filePath,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return &lesson
}

func createSubmission(t *testing.T, db *gorm.DB, lessonID, studentID uint, filePath string) *models.Submission {
	t.Helper()
	submission := models.Submission{
		LessonID:    lessonID,
		StudentID:   studentID,
		Content:     "my answer",
		FilePath:    filePath,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)
	return &submission
}

func actorFor(user *models.User) policy.Actor {
	return policy.Actor{ID: user.ID, Role: user.Role}
}

// fakeStore records removals instead of touching a filesystem.
type fakeStore struct {
	removed []string
}

func (f *fakeStore) Save(file *multipart.FileHeader) (string, error) {
	return "", nil
}

func (f *fakeStore) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

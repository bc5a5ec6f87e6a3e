package services

import (
	"classboard/database"
	"classboard/models"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var codeFormat = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestEnsureEnrollmentCodeProvisionsLazily(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)

	require.Nil(t, classroom.EnrollmentCode)

	require.NoError(t, EnsureEnrollmentCode(db, classroom))
	require.NotNil(t, classroom.EnrollmentCode)
	assert.Regexp(t, codeFormat, *classroom.EnrollmentCode)

	// Idempotent: a second observation keeps the code.
	first := *classroom.EnrollmentCode
	require.NoError(t, EnsureEnrollmentCode(db, classroom))
	assert.Equal(t, first, *classroom.EnrollmentCode)
}

func TestRegenerateEnrollmentCodeInvalidatesOldCode(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	student := createUser(t, db, "student1", "student")
	classroom := createClassroom(t, db, teacher.ID)

	require.NoError(t, EnsureEnrollmentCode(db, classroom))
	k1 := *classroom.EnrollmentCode

	require.NoError(t, RegenerateEnrollmentCode(db, classroom))
	k2 := *classroom.EnrollmentCode
	assert.Regexp(t, codeFormat, k2)
	assert.NotEqual(t, k1, k2, "regeneration must produce a fresh code")

	// The old code is dead.
	_, err := Enroll(db, student.ID, classroom.ID, k1)
	assert.ErrorIs(t, err, ErrInvalidEnrollmentCode)

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.EqualValues(t, 0, count)

	// The new one works.
	enrollment, err := Enroll(db, student.ID, classroom.ID, k2)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	assert.Equal(t, classroom.ID, enrollment.ClassroomID)
	assert.Equal(t, student.ID, enrollment.StudentID)
}

func TestRegenerateEnrollmentCodeSurfacesWriteFailure(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	require.NoError(t, EnsureEnrollmentCode(db, classroom))

	// A dead connection is not a code collision: it must come back as-is,
	// not as an exhausted retry loop.
	injected := errors.New("connection lost")
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("fail_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "classrooms" {
			tx.AddError(injected)
		}
	}))
	defer func() {
		require.NoError(t, db.Callback().Update().Remove("fail_update"))
	}()

	err := RegenerateEnrollmentCode(db, classroom)
	assert.ErrorIs(t, err, injected)
	assert.NotErrorIs(t, err, ErrCodeGenerationExhausted)
}

func TestEnrollIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	student := createUser(t, db, "student1", "student")
	classroom := createClassroom(t, db, teacher.ID)
	require.NoError(t, EnsureEnrollmentCode(db, classroom))
	code := *classroom.EnrollmentCode

	first, err := Enroll(db, student.ID, classroom.ID, code)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := Enroll(db, student.ID, classroom.ID, code)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Enrollment{}).
		Where("classroom_id = ? AND student_id = ?", classroom.ID, student.ID).
		Count(&count)
	assert.EqualValues(t, 1, count, "exactly one enrollment row")
}

func TestEnrollWrongCodeNeverInserts(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	require.NoError(t, EnsureEnrollmentCode(db, classroom))

	// Prior enrollments in the classroom change nothing for a bad code.
	other := createUser(t, db, "student0", "student")
	_, err := Enroll(db, other.ID, classroom.ID, *classroom.EnrollmentCode)
	require.NoError(t, err)

	student := createUser(t, db, "student1", "student")
	_, err = Enroll(db, student.ID, classroom.ID, "WRONGCOD")
	assert.ErrorIs(t, err, ErrInvalidEnrollmentCode)

	var count int64
	db.Model(&models.Enrollment{}).Where("student_id = ?", student.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestEnrollUnknownClassroom(t *testing.T) {
	db := setupTestDB(t)
	student := createUser(t, db, "student1", "student")

	_, err := Enroll(db, student.ID, 12345, "ABCD1234")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollWritesAuditEntry(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	student := createUser(t, db, "student1", "student")
	classroom := createClassroom(t, db, teacher.ID)
	require.NoError(t, EnsureEnrollmentCode(db, classroom))

	_, err := Enroll(db, student.ID, classroom.ID, *classroom.EnrollmentCode)
	require.NoError(t, err)

	var entries []models.ActivityLog
	require.NoError(t, db.Where("classroom_id = ? AND activity_type = ?", classroom.ID, ActivityEnrollment).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, student.ID, entries[0].UserID)
}

func TestEnrollProceedsWithoutAuditSink(t *testing.T) {
	db := setupTestDB(t)

	// A view squatting on the audit table's name makes the probe miss and
	// the create fail, the shape of a store where audit cannot be
	// provisioned.
	require.NoError(t, db.Migrator().DropTable(&models.ActivityLog{}))
	require.NoError(t, db.Exec("CREATE VIEW activity_logs AS SELECT 1 AS id").Error)
	require.NoError(t, database.EnsureSchema(db))
	require.False(t, database.Capabilities.ActivityLog)

	teacher := createUser(t, db, "teacher1", "teacher")
	student := createUser(t, db, "student1", "student")
	classroom := createClassroom(t, db, teacher.ID)
	require.NoError(t, EnsureEnrollmentCode(db, classroom))

	// Audit is best-effort: enrollment goes through without it.
	enrollment, err := Enroll(db, student.ID, classroom.ID, *classroom.EnrollmentCode)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
}

func TestEnrollSkipsVerificationWithoutCode(t *testing.T) {
	db := setupTestDB(t)
	teacher := createUser(t, db, "teacher1", "teacher")
	student := createUser(t, db, "student1", "student")
	// No code ever provisioned on this classroom: any submitted code passes.
	classroom := createClassroom(t, db, teacher.ID)

	enrollment, err := Enroll(db, student.ID, classroom.ID, "")
	require.NoError(t, err)
	require.NotNil(t, enrollment)
}

package services

import (
	"classboard/models"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeleteLessonCascades(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	lesson := createLesson(t, db, classroom.ID, "")

	s1 := createUser(t, db, "student1", "student")
	s2 := createUser(t, db, "student2", "student")
	s3 := createUser(t, db, "student3", "student")
	createSubmission(t, db, lesson.ID, s1.ID, "/files/a.txt")
	createSubmission(t, db, lesson.ID, s2.ID, "")
	createSubmission(t, db, lesson.ID, s3.ID, "")

	require.NoError(t, DeleteLesson(db, store, actorFor(teacher), lesson.ID))

	var submissionCount int64
	db.Model(&models.Submission{}).Where("lesson_id = ?", lesson.ID).Count(&submissionCount)
	assert.EqualValues(t, 0, submissionCount, "all submissions removed")

	err := db.First(&models.Lesson{}, lesson.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "lesson removed")

	assert.Equal(t, []string{"/files/a.txt"}, store.removed, "exactly the attached file scheduled")

	var entries []models.ActivityLog
	require.NoError(t, db.Where("classroom_id = ? AND activity_type = ?", classroom.ID, ActivityLessonDeleted).Find(&entries).Error)
	assert.Len(t, entries, 1)
}

func TestDeleteLessonWithOwnFile(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	lesson := createLesson(t, db, classroom.ID, "/files/lesson.pdf")
	student := createUser(t, db, "student1", "student")
	createSubmission(t, db, lesson.ID, student.ID, "/files/answer.txt")

	require.NoError(t, DeleteLesson(db, store, actorFor(teacher), lesson.ID))

	// Submission files first, the lesson's own file last.
	assert.Equal(t, []string{"/files/answer.txt", "/files/lesson.pdf"}, store.removed)
}

func TestDeleteLessonForbiddenForNonOwner(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	owner := createUser(t, db, "teacher1", "teacher")
	intruder := createUser(t, db, "teacher2", "teacher")
	classroom := createClassroom(t, db, owner.ID)
	lesson := createLesson(t, db, classroom.ID, "")
	student := createUser(t, db, "student1", "student")
	createSubmission(t, db, lesson.ID, student.ID, "/files/a.txt")

	err := DeleteLesson(db, store, actorFor(intruder), lesson.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var submissionCount int64
	db.Model(&models.Submission{}).Where("lesson_id = ?", lesson.ID).Count(&submissionCount)
	assert.EqualValues(t, 1, submissionCount, "nothing deleted")
	assert.Empty(t, store.removed, "no file removal on denial")
}

func TestDeleteLessonAdminBypass(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	owner := createUser(t, db, "teacher1", "teacher")
	admin := createUser(t, db, "admin1", "admin")
	classroom := createClassroom(t, db, owner.ID)
	lesson := createLesson(t, db, classroom.ID, "")

	require.NoError(t, DeleteLesson(db, store, actorFor(admin), lesson.ID))
	err := db.First(&models.Lesson{}, lesson.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteLessonRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	lesson := createLesson(t, db, classroom.ID, "/files/lesson.pdf")
	s1 := createUser(t, db, "student1", "student")
	s2 := createUser(t, db, "student2", "student")
	s3 := createUser(t, db, "student3", "student")
	createSubmission(t, db, lesson.ID, s1.ID, "/files/a.txt")
	createSubmission(t, db, lesson.ID, s2.ID, "")
	createSubmission(t, db, lesson.ID, s3.ID, "")

	// Inject a failure at the lesson delete, after the submissions were
	// already deleted inside the transaction.
	injected := errors.New("injected failure")
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("inject_failure", func(tx *gorm.DB) {
		if tx.Statement.Table == "lessons" {
			tx.AddError(injected)
		}
	}))
	defer func() {
		require.NoError(t, db.Callback().Delete().Remove("inject_failure"))
	}()

	err := DeleteLesson(db, store, actorFor(teacher), lesson.ID)

	var deletionErr *DeletionError
	require.ErrorAs(t, err, &deletionErr)
	assert.ErrorIs(t, deletionErr.Cause, injected)

	// Zero rows changed: the rollback restored the submissions.
	var submissionCount int64
	db.Model(&models.Submission{}).Where("lesson_id = ?", lesson.ID).Count(&submissionCount)
	assert.EqualValues(t, 3, submissionCount)

	require.NoError(t, db.First(&models.Lesson{}, lesson.ID).Error)
	assert.Empty(t, store.removed, "no file removal before a successful commit")
}

func TestDeleteLessonDetectsConcurrentRemoval(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	lesson := createLesson(t, db, classroom.ID, "/files/lesson.pdf")

	// The row vanishes between the existence check and the delete statement,
	// as if a concurrent deletion committed first. The delete then affects
	// zero rows and the guard must report not-found.
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("steal_row", func(tx *gorm.DB) {
		if tx.Statement.Table == "lessons" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM lessons WHERE id = ?", lesson.ID)
		}
	}))
	defer func() {
		require.NoError(t, db.Callback().Delete().Remove("steal_row"))
	}()

	err := DeleteLesson(db, store, actorFor(teacher), lesson.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.removed, "no file removal without a committed delete")
}

func TestDeleteLessonTwiceSecondSeesNotFound(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	lesson := createLesson(t, db, classroom.ID, "")

	require.NoError(t, DeleteLesson(db, store, actorFor(teacher), lesson.ID))

	err := DeleteLesson(db, store, actorFor(teacher), lesson.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClassroomCascades(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	classroom := createClassroom(t, db, teacher.ID)
	require.NoError(t, EnsureEnrollmentCode(db, classroom))

	l1 := createLesson(t, db, classroom.ID, "/files/l1.pdf")
	l2 := createLesson(t, db, classroom.ID, "")

	student := createUser(t, db, "student1", "student")
	_, err := Enroll(db, student.ID, classroom.ID, *classroom.EnrollmentCode)
	require.NoError(t, err)
	createSubmission(t, db, l1.ID, student.ID, "/files/s1.txt")
	createSubmission(t, db, l2.ID, student.ID, "")

	require.NoError(t, DeleteClassroom(db, store, actorFor(teacher), classroom.ID))

	var lessons, submissions, enrollments, activities int64
	db.Model(&models.Lesson{}).Where("classroom_id = ?", classroom.ID).Count(&lessons)
	db.Model(&models.Submission{}).Where("lesson_id IN ?", []uint{l1.ID, l2.ID}).Count(&submissions)
	db.Model(&models.Enrollment{}).Where("classroom_id = ?", classroom.ID).Count(&enrollments)
	db.Model(&models.ActivityLog{}).Where("classroom_id = ?", classroom.ID).Count(&activities)

	assert.EqualValues(t, 0, lessons)
	assert.EqualValues(t, 0, submissions)
	assert.EqualValues(t, 0, enrollments)
	assert.EqualValues(t, 0, activities, "audit trail goes with the classroom")

	assert.ErrorIs(t, db.First(&models.Classroom{}, classroom.ID).Error, gorm.ErrRecordNotFound)

	assert.ElementsMatch(t, []string{"/files/l1.pdf", "/files/s1.txt"}, store.removed)
}

func TestDeleteClassroomForbiddenForStudent(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}

	teacher := createUser(t, db, "teacher1", "teacher")
	student := createUser(t, db, "student1", "student")
	classroom := createClassroom(t, db, teacher.ID)

	err := DeleteClassroom(db, store, actorFor(student), classroom.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, db.First(&models.Classroom{}, classroom.ID).Error)
}

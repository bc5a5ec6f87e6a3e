package database

import (
	"classboard/models"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SchemaProvisionError wraps a structural check or create that failed for
// good (the re-probe still saw the structure missing).
type SchemaProvisionError struct {
	Cause error
}

func (e *SchemaProvisionError) Error() string {
	return fmt.Sprintf("schema provision failed: %v", e.Cause)
}

func (e *SchemaProvisionError) Unwrap() error {
	return e.Cause
}

// SchemaCapabilities records which optional structures the store actually
// has. It is resolved once at startup and reused by every protocol, so
// per-request code never re-derives column presence.
type SchemaCapabilities struct {
	ClassroomEnrollmentCode bool
	LessonContent           bool
	LessonFilePath          bool
	SubmissionFilePath      bool
	ActivityLog             bool
}

// Capabilities is the descriptor resolved by EnsureSchema.
var Capabilities SchemaCapabilities

// EnsureSchema verifies the structures the protocols depend on exist and
// creates missing ones. It is idempotent: on an already-correct schema it is
// a pure no-op, and a create that fails because a concurrent request already
// created the structure counts as success after a re-probe. Optional
// structures (the enrollment_code column, the activity_logs table) degrade
// to a disabled capability instead of failing startup; the lessons table is
// mandatory and its failure is surfaced.
func EnsureSchema(db *gorm.DB) error {
	// Lessons are load-bearing for both protocols; without the table nothing
	// else can run.
	if err := ensureTable(db, &models.Lesson{}); err != nil {
		return &SchemaProvisionError{Cause: err}
	}

	caps := SchemaCapabilities{
		ClassroomEnrollmentCode: ensureColumn(db, &models.Classroom{}, "EnrollmentCode"),
		LessonContent:           ensureColumn(db, &models.Lesson{}, "Content"),
		LessonFilePath:          ensureColumn(db, &models.Lesson{}, "FilePath"),
		SubmissionFilePath:      ensureColumn(db, &models.Submission{}, "FilePath"),
	}

	if err := ensureTable(db, &models.ActivityLog{}); err != nil {
		// Audit is best-effort everywhere; run without it.
		log.Printf("activity_logs unavailable, audit disabled: %v", err)
	} else {
		caps.ActivityLog = true
	}

	Capabilities = caps
	return nil
}

// ensureTable creates the model's table if missing. A create error is
// swallowed when a re-probe shows the table present, which is how a lost
// check-then-act race against another request resolves.
func ensureTable(db *gorm.DB, model interface{}) error {
	m := db.Migrator()
	if m.HasTable(model) {
		return nil
	}
	if err := m.CreateTable(model); err != nil {
		if m.HasTable(model) {
			return nil
		}
		return err
	}
	return nil
}

// ensureColumn adds the named field's column if missing and reports whether
// the column is usable afterwards. Add failures are tolerated the same way
// as ensureTable; a column that stays missing only disables its capability.
func ensureColumn(db *gorm.DB, model interface{}, field string) bool {
	m := db.Migrator()
	if m.HasColumn(model, field) {
		return true
	}
	if err := m.AddColumn(model, field); err != nil {
		if m.HasColumn(model, field) {
			return true
		}
		log.Printf("could not provision column %s: %v", field, err)
		return false
	}
	return true
}

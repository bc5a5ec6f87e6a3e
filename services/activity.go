package services

import (
	"classboard/database"
	"classboard/models"
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity types written to the audit trail.
const (
	ActivityEnrollment       = "enrollment"
	ActivityLessonCreated    = "lesson_created"
	ActivityLessonDeleted    = "lesson_deleted"
	ActivitySubmissionGraded = "submission_graded"
)

// LogActivity appends an audit entry. It is strictly best-effort: when the
// audit table was never provisioned it does nothing, and a failed insert is
// logged and swallowed so it can never fail the primary operation. When
// called with a transaction handle the insert runs in a savepoint, keeping
// an aborted insert from poisoning the surrounding transaction.
func LogActivity(db *gorm.DB, classroomID, userID uint, activityType, description string, metadata map[string]interface{}) {
	if !database.Capabilities.ActivityLog {
		return
	}

	entry := models.ActivityLog{
		ClassroomID:  classroomID,
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
	}
	if metadata != nil {
		if payload, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(payload)
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entry).Error
	})
	if err != nil {
		log.Printf("activity log write failed (%s): %v", activityType, err)
	}
}

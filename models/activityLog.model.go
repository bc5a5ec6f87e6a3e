package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog is the append-only audit trail. Rows are never updated and only
// disappear when their classroom is torn down.
type ActivityLog struct {
	gorm.Model
	ClassroomID  uint           `json:"classroom_id" gorm:"index;not null"`
	UserID       uint           `json:"user_id" gorm:"index"`
	ActivityType string         `json:"activity_type" gorm:"index;not null"`
	Description  string         `json:"description"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
}

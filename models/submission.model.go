package models

import (
	"time"

	"gorm.io/gorm"
)

type Submission struct {
	gorm.Model
	LessonID    uint      `json:"lesson_id" gorm:"index;not null"`
	StudentID   uint      `json:"student_id" gorm:"index;not null"`
	Content     string    `json:"content"`
	FilePath    string    `json:"file_path" gorm:"default:''"`
	Grade       *float64  `json:"grade,omitempty"`
	Feedback    *string   `json:"feedback,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Lesson      Lesson    `json:"-" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	Student     User      `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

package models

import (
	"gorm.io/gorm"
)

type Lesson struct {
	gorm.Model
	ClassroomID uint      `json:"classroom_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	FilePath    string    `json:"file_path" gorm:"default:''"`
	Classroom   Classroom `json:"-" gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE"`
}

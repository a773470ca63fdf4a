package models

import "time"

type Comment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	TaskID       uint64    `gorm:"not null;index" json:"task_id"`
	TechnicianID uint64    `gorm:"not null;index" json:"technician_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Task       Task       `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Technician Technician `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
}

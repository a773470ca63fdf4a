package models

import (
	"time"

	"gorm.io/gorm"
)

const RoleAdmin = "admin"

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(20);not null;default:'admin'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Technicians []Technician `gorm:"foreignKey:UserID" json:"technicians,omitempty"`
	Tasks       []Task       `gorm:"foreignKey:UserID" json:"tasks,omitempty"`
}

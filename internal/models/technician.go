package models

import (
	"time"

	"gorm.io/gorm"
)

const RoleTechnician = "technician"

type TechnicianStatus string

const (
	TechnicianStatusActive   TechnicianStatus = "active"
	TechnicianStatusInactive TechnicianStatus = "inactive"
)

type Technician struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	Name         string           `gorm:"type:varchar(100);not null" json:"name"`
	Email        *string          `gorm:"type:varchar(255)" json:"email"`
	PasswordHash string           `gorm:"type:varchar(255);not null" json:"-"`
	Phone        *string          `gorm:"type:varchar(30)" json:"phone"`
	Address      *string          `gorm:"type:text" json:"address"`
	Status       TechnicianStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Role         string           `gorm:"type:varchar(20);not null;default:'technician'" json:"role"`
	UserID       uint64           `gorm:"not null;index" json:"user_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	User  User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tasks []Task `gorm:"many2many:task_technicians;joinForeignKey:TechnicianID;joinReferences:TaskID" json:"tasks,omitempty"`
}

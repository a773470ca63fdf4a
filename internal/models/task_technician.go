package models

// TaskTechnician is the join row behind the task/technician many-to-many.
// Replacing a task's assignment set rewrites these rows wholesale.
type TaskTechnician struct {
	TaskID       uint64 `gorm:"primarykey" json:"task_id"`
	TechnicianID uint64 `gorm:"primarykey" json:"technician_id"`
}

func (TaskTechnician) TableName() string {
	return "task_technicians"
}

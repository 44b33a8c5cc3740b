package models

import "time"

// TaskCompletionRecord is an append-only fact that a user finished a task.
// It outlives the task itself.
type TaskCompletionRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	TaskID      uint      `gorm:"not null;index:idx_completion_task_user" bson:"task_id" json:"task_id"`
	UserID      uint      `gorm:"not null;index:idx_completion_task_user" bson:"user_id" json:"user_id"`
	Date        string    `gorm:"type:varchar(10);not null" bson:"date" json:"date"`
	CompletedAt time.Time `gorm:"not null;index" bson:"completed_at" json:"completed_at"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

func (TaskCompletionRecord) TableName() string {
	return "task_completion_records"
}

package models

import (
	"fmt"
	"slices"
	"time"
)

// WorkEntry is one user's pending/finished tasks and attendance for one calendar day.
type WorkEntry struct {
	ID     string `gorm:"primaryKey;type:varchar(64)" bson:"_id" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_work_entries_user_date" bson:"user_id" json:"user_id"`
	Date   string `gorm:"type:varchar(10);not null;uniqueIndex:idx_work_entries_user_date;index" bson:"date" json:"date"` // YYYY-MM-DD

	// Completed ids may stay in AssignedTaskIDs as a record of the day's plan.
	AssignedTaskIDs  []uint `gorm:"serializer:json;not null" bson:"assigned_task_ids" json:"assigned_task_ids"`
	CompletedTaskIDs []uint `gorm:"serializer:json;not null" bson:"completed_task_ids" json:"completed_task_ids"`

	CheckInTime  *string `gorm:"type:varchar(5)" bson:"check_in_time,omitempty" json:"check_in_time"`   // HH:mm
	CheckOutTime *string `gorm:"type:varchar(5)" bson:"check_out_time,omitempty" json:"check_out_time"` // HH:mm
	IsAbsent     bool    `gorm:"not null;default:false" bson:"is_absent" json:"is_absent"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (WorkEntry) TableName() string {
	return "work_entries"
}

// WorkEntryID derives the stable entry id from its key.
func WorkEntryID(userID uint, date string) string {
	return fmt.Sprintf("%d_%s", userID, date)
}

// NewWorkEntry returns an empty entry for the given key.
func NewWorkEntry(userID uint, date string) *WorkEntry {
	return &WorkEntry{
		ID:               WorkEntryID(userID, date),
		UserID:           userID,
		Date:             date,
		AssignedTaskIDs:  []uint{},
		CompletedTaskIDs: []uint{},
	}
}

// Normalize drops times on absent entries and fills nil task lists before a save.
func (e *WorkEntry) Normalize() {
	if e.ID == "" {
		e.ID = WorkEntryID(e.UserID, e.Date)
	}
	if e.AssignedTaskIDs == nil {
		e.AssignedTaskIDs = []uint{}
	}
	if e.CompletedTaskIDs == nil {
		e.CompletedTaskIDs = []uint{}
	}
	if e.IsAbsent {
		e.CheckInTime = nil
		e.CheckOutTime = nil
	}
}

func (e *WorkEntry) IsAssigned(taskID uint) bool {
	return slices.Contains(e.AssignedTaskIDs, taskID)
}

func (e *WorkEntry) IsCompleted(taskID uint) bool {
	return slices.Contains(e.CompletedTaskIDs, taskID)
}

// Assign adds taskID to the assigned list. Reports whether the list changed.
func (e *WorkEntry) Assign(taskID uint) bool {
	if e.IsAssigned(taskID) {
		return false
	}
	e.AssignedTaskIDs = append(e.AssignedTaskIDs, taskID)
	return true
}

// Unassign removes taskID from the assigned list. Reports whether the list changed.
func (e *WorkEntry) Unassign(taskID uint) bool {
	before := len(e.AssignedTaskIDs)
	e.AssignedTaskIDs = slices.DeleteFunc(e.AssignedTaskIDs, func(id uint) bool { return id == taskID })
	return len(e.AssignedTaskIDs) != before
}

// Complete adds taskID to the completed list. Reports whether the list changed.
func (e *WorkEntry) Complete(taskID uint) bool {
	if e.IsCompleted(taskID) {
		return false
	}
	e.CompletedTaskIDs = append(e.CompletedTaskIDs, taskID)
	return true
}

// Uncomplete removes taskID from the completed list. Reports whether the list changed.
func (e *WorkEntry) Uncomplete(taskID uint) bool {
	before := len(e.CompletedTaskIDs)
	e.CompletedTaskIDs = slices.DeleteFunc(e.CompletedTaskIDs, func(id uint) bool { return id == taskID })
	return len(e.CompletedTaskIDs) != before
}

// Planned counts the day's distinct task ids, open or completed.
func (e *WorkEntry) Planned() int {
	n := len(e.CompletedTaskIDs)
	for _, id := range e.AssignedTaskIDs {
		if !e.IsCompleted(id) {
			n++
		}
	}
	return n
}

// Unfinished returns assigned ids that are not completed, in assignment order.
func (e *WorkEntry) Unfinished() []uint {
	var ids []uint
	for _, id := range e.AssignedTaskIDs {
		if !e.IsCompleted(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasUnfinished reports whether any assigned task is still open.
func (e *WorkEntry) HasUnfinished() bool {
	for _, id := range e.AssignedTaskIDs {
		if !e.IsCompleted(id) {
			return true
		}
	}
	return false
}

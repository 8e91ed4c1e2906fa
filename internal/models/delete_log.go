package models

import "time"

// DeleteLog records every destructive action: property deletions from the
// admin panel and file deletions performed by the orphan sweep.
type DeleteLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID int64     `gorm:"index" json:"property_id,omitempty"`
	Name       string    `gorm:"type:text" json:"name,omitempty"`
	FileName   string    `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonManual      = "manual_deletion"
	DeleteReasonOrphanSweep = "orphan_sweep"
)

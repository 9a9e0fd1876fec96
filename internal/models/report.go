package models

import "time"

// Report represents report file metadata owned by a patient. The row is the
// source of truth for whether the backing file should exist on disk.
type Report struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string    `gorm:"size:200;not null" json:"filename"`
	PatientID  uint      `gorm:"not null;index" json:"patient_id"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	Meta       JSON      `gorm:"type:json" json:"meta"`
}

// TableName overrides the table name for Report
func (Report) TableName() string {
	return "reports"
}

package models

import "time"

// Patient represents a clinic patient record. PatientID is the externally
// visible identifier and is only assigned at creation, never on edit.
type Patient struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID string `gorm:"uniqueIndex;size:64;not null" json:"patient_id"`
	Name      string `gorm:"size:120;not null;index:idx_patients_name" json:"name"`
	Age       *int   `json:"age"`
	Gender    string `gorm:"size:20" json:"gender"`
	Ailment   string `gorm:"size:300" json:"ailment"`
	Contact   string `gorm:"size:120" json:"contact"`
	Address   string `gorm:"size:300" json:"address"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Reports   []Report `gorm:"foreignKey:PatientID;references:ID" json:"-"`
}

// TableName overrides the table name for Patient
func (Patient) TableName() string {
	return "patients"
}

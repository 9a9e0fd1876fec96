package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/epms/epms/internal/models"
	"github.com/epms/epms/internal/storage"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// PatientInput carries the editable patient fields. PatientID is honored at
// creation only; edits never change it.
type PatientInput struct {
	PatientID string
	Name      string
	Age       *int
	Gender    string
	Ailment   string
	Contact   string
	Address   string
}

// GenderCount is one row of the gender breakdown on the dashboard.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int64  `json:"count"`
}

// DashboardStats backs the summary view.
type DashboardStats struct {
	Total    int64            `json:"total"`
	ByGender []GenderCount    `json:"by_gender"`
	Latest   []models.Patient `json:"latest"`
}

// CreatePatient creates a patient record. An omitted PatientID defaults to a
// timestamp-derived value; a colliding one fails without a partial write.
func CreatePatient(db *gorm.DB, in PatientInput) (*models.Patient, error) {
	if in.Age != nil && *in.Age < 0 {
		return nil, fmt.Errorf("%w: age must be non-negative", ErrValidation)
	}

	pid := strings.TrimSpace(in.PatientID)
	if pid == "" {
		pid = fmt.Sprintf("PAT%d", time.Now().UTC().Unix())
	}

	patient := models.Patient{
		PatientID: pid,
		Name:      in.Name,
		Age:       in.Age,
		Gender:    in.Gender,
		Ailment:   in.Ailment,
		Contact:   in.Contact,
		Address:   in.Address,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Patient{}).Where("patient_id = ?", pid).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicatePatientID
		}
		return tx.Create(&patient).Error
	})
	if err != nil {
		return nil, err
	}

	return &patient, nil
}

// GetPatient fetches a patient by surrogate id.
func GetPatient(db *gorm.DB, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := db.First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// UpdatePatient replaces the editable fields of a patient. PatientID is not
// re-validated or changed on edit.
func UpdatePatient(db *gorm.DB, id uint, in PatientInput) (*models.Patient, error) {
	if in.Age != nil && *in.Age < 0 {
		return nil, fmt.Errorf("%w: age must be non-negative", ErrValidation)
	}

	var patient models.Patient
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&patient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&patient).Updates(map[string]interface{}{
			"name":    in.Name,
			"age":     in.Age,
			"gender":  in.Gender,
			"ailment": in.Ailment,
			"contact": in.Contact,
			"address": in.Address,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &patient, nil
}

// ListPatients returns the roster sorted by name ascending. A non-empty
// filter matches patient_id, name or ailment by case-insensitive substring.
func ListPatients(db *gorm.DB, filter string) ([]models.Patient, error) {
	// Tag the roster query so it is identifiable in database logs.
	query := db.Model(&models.Patient{}).Clauses(hints.CommentBefore("select", "roster"))

	if f := strings.TrimSpace(filter); f != "" {
		like := "%" + strings.ToLower(f) + "%"
		query = query.Where(
			"LOWER(patient_id) LIKE ? OR LOWER(name) LIKE ? OR LOWER(ailment) LIKE ?",
			like, like, like,
		)
	}

	var patients []models.Patient
	if err := query.Order("name asc").Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// DeletePatient removes a patient and cascades to its reports. Report rows
// and the patient row go in one transaction; backing files are removed after
// commit, tolerating files already missing from disk.
func DeletePatient(db *gorm.DB, store *storage.FileStore, id uint) error {
	var filenames []string

	err := db.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		if err := tx.First(&patient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var reports []models.Report
		if err := tx.Where("patient_id = ?", patient.ID).Find(&reports).Error; err != nil {
			return err
		}
		for _, r := range reports {
			filenames = append(filenames, r.Filename)
		}

		if len(reports) > 0 {
			if err := tx.Where("patient_id = ?", patient.ID).Delete(&models.Report{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&patient).Error
	})
	if err != nil {
		return err
	}

	for _, name := range filenames {
		if err := store.Remove(name); err != nil {
			log.Printf("Failed to remove report file %s: %v", name, err)
		}
	}

	return nil
}

// GetDashboardStats computes the summary counts for the dashboard: total
// patients, the gender breakdown, and the five most recently created records.
func GetDashboardStats(db *gorm.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := db.Model(&models.Patient{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Patient{}).
		Select("gender, count(id) as count").
		Group("gender").
		Scan(&stats.ByGender).Error; err != nil {
		return nil, err
	}

	if err := db.Order("id desc").Limit(5).Find(&stats.Latest).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

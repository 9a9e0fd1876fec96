package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/epms/epms/internal/models"
	"github.com/epms/epms/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// allowedExtensions is the upload allow-list. Only the extension is checked;
// file content is never sniffed.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// AllowedFile reports whether the filename carries an allowed extension.
func AllowedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := allowedExtensions[ext]
	return ok
}

// UploadReport validates and stores an uploaded report file for a patient,
// then records the metadata row. The file is written first; a failed insert
// removes the just-written file so neither side leaks.
func UploadReport(db *gorm.DB, store *storage.FileStore, patientID uint, fh *multipart.FileHeader) (*models.Report, error) {
	if fh == nil || fh.Filename == "" {
		return nil, ErrNoFile
	}
	if !AllowedFile(fh.Filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(fh.Filename))
	}

	if _, err := GetPatient(db, patientID); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	stored := storage.StoredName(patientID, fh.Filename)
	if err := store.Save(stored, src); err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"original_name": fh.Filename,
		"size":          fh.Size,
		"content_type":  fh.Header.Get("Content-Type"),
	})

	report := models.Report{
		Filename:  stored,
		PatientID: patientID,
		Meta:      models.JSON{JSON: datatypes.JSON(meta)},
	}

	if err := db.Create(&report).Error; err != nil {
		if rmErr := store.Remove(stored); rmErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", stored, rmErr)
		}
		return nil, err
	}

	return &report, nil
}

// GetReport fetches report metadata by id.
func GetReport(db *gorm.DB, id uint) (*models.Report, error) {
	var report models.Report
	if err := db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// DeleteReport removes the metadata row and the backing file. A file already
// missing from disk is tolerated; the row is deleted regardless.
func DeleteReport(db *gorm.DB, store *storage.FileStore, id uint) error {
	report, err := GetReport(db, id)
	if err != nil {
		return err
	}

	if err := db.Delete(report).Error; err != nil {
		return err
	}

	if err := store.Remove(report.Filename); err != nil {
		log.Printf("Failed to remove report file %s: %v", report.Filename, err)
	}

	return nil
}

// ListReports returns all reports owned by a patient, newest first.
func ListReports(db *gorm.DB, patientID uint) ([]models.Report, error) {
	var reports []models.Report
	if err := db.Where("patient_id = ?", patientID).Order("id desc").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

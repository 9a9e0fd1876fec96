package services

import (
	"bytes"

	"github.com/epms/epms/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// rosterColumns is the fixed export header, in column order.
var rosterColumns = []string{"Patient ID", "Name", "Age", "Gender", "Ailment", "Contact", "Address"}

// ExportRoster serializes all patients into an xlsx workbook with one header
// row and one row per patient, ordered by name so repeated exports over the
// same data produce the same document structure.
func ExportRoster(db *gorm.DB) (*bytes.Buffer, error) {
	var patients []models.Patient
	if err := db.Order("name asc").Find(&patients).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Patients"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(rosterColumns))
	for i, col := range rosterColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, p := range patients {
		row := []interface{}{p.PatientID, p.Name, nil, p.Gender, p.Ailment, p.Contact, p.Address}
		if p.Age != nil {
			row[2] = *p.Age
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}

package services

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// PublicPatientURL builds the absolute URL of a patient's public page.
func PublicPatientURL(baseURL string, patientID uint) string {
	return fmt.Sprintf("%s/public/patient/%d", strings.TrimSuffix(baseURL, "/"), patientID)
}

// GenerateAccessCode encodes the patient's public page URL into a scannable
// PNG image.
func GenerateAccessCode(baseURL string, patientID uint) ([]byte, error) {
	return qrcode.Encode(PublicPatientURL(baseURL, patientID), qrcode.Medium, 256)
}

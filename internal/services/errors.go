package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to HTTP
// statuses; everything else surfaces as a generic 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrDuplicatePatientID = errors.New("patient id already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoFile             = errors.New("no file selected")
	ErrUnsupportedType    = errors.New("unsupported file type")
)

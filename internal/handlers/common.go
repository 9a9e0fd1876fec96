package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/epms/epms/internal/services"
	"github.com/epms/epms/internal/types"
	"github.com/epms/epms/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global Fiber error handler. Handlers return errors,
// typically *types.AppError built by serviceError, and this translates them
// into the JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	// Check for application errors carrying their own status and type
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		errorType = appErr.Type
	}

	return utils.ErrorResponse(c, message, code, errorType)
}

// parseID extracts a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, services.ErrNotFound
	}
	return uint(id), nil
}

// parsePatientInput reads patient fields from either a JSON body or a form
// post. In JSON bodies the age may arrive as a number or a numeric string.
func parsePatientInput(c *fiber.Ctx) (services.PatientInput, error) {
	if c.Is("json") {
		var body struct {
			PatientID string         `json:"patient_id"`
			Name      string         `json:"name"`
			Age       *types.FlexInt `json:"age"`
			Gender    string         `json:"gender"`
			Ailment   string         `json:"ailment"`
			Contact   string         `json:"contact"`
			Address   string         `json:"address"`
		}
		if err := c.BodyParser(&body); err != nil {
			return services.PatientInput{}, fmt.Errorf("%w: age must be a number", services.ErrValidation)
		}
		in := services.PatientInput{
			PatientID: body.PatientID,
			Name:      body.Name,
			Gender:    body.Gender,
			Ailment:   body.Ailment,
			Contact:   body.Contact,
			Address:   body.Address,
		}
		if body.Age != nil {
			age := body.Age.Int()
			in.Age = &age
		}
		return in, nil
	}

	in := services.PatientInput{
		PatientID: c.FormValue("patient_id"),
		Name:      c.FormValue("name"),
		Gender:    c.FormValue("gender"),
		Ailment:   c.FormValue("ailment"),
		Contact:   c.FormValue("contact"),
		Address:   c.FormValue("address"),
	}
	if ageStr := strings.TrimSpace(c.FormValue("age")); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return in, fmt.Errorf("%w: age must be a number", services.ErrValidation)
		}
		in.Age = &age
	}
	return in, nil
}

// serviceError maps service layer errors onto application errors carrying
// their HTTP status and type; ErrorHandler renders them.
func serviceError(err error, op string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return &types.AppError{Code: fiber.StatusNotFound, Message: "Resource not found", Type: "not_found"}
	case errors.Is(err, services.ErrDuplicateUser),
		errors.Is(err, services.ErrDuplicatePatientID):
		return &types.AppError{Code: fiber.StatusConflict, Message: err.Error(), Type: "duplicate"}
	case errors.Is(err, services.ErrValidation):
		return &types.AppError{Code: fiber.StatusBadRequest, Message: err.Error(), Type: "validation"}
	case errors.Is(err, services.ErrNoFile),
		errors.Is(err, services.ErrUnsupportedType):
		return &types.AppError{Code: fiber.StatusBadRequest, Message: err.Error(), Type: "upload"}
	case errors.Is(err, services.ErrInvalidCredentials):
		return &types.AppError{Code: fiber.StatusUnauthorized, Message: "Invalid credentials", Type: "auth"}
	default:
		return &types.AppError{Code: fiber.StatusInternalServerError, Message: err.Error(), Type: op}
	}
}

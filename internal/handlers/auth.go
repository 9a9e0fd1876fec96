package handlers

import (
	"github.com/epms/epms/internal/middleware"
	"github.com/epms/epms/internal/services"
	"github.com/epms/epms/internal/types"
	"github.com/epms/epms/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"
)

// AuthHandler handles account registration and the login/logout flow
type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Store
}

type credentials struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterForm handles GET /register
// @Summary Registration entry point
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /register [get]
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.Map{
		"ok":     true,
		"fields": []string{"username", "email", "password"},
	}, fiber.StatusOK)
}

// Register handles POST /register
// @Summary Create a staff account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentials true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body credentials
	if err := c.BodyParser(&body); err != nil {
		return &types.AppError{Code: fiber.StatusBadRequest, Message: "Invalid input", Type: "validation"}
	}

	user, err := services.RegisterUser(h.DB, body.Username, body.Email, body.Password)
	if err != nil {
		return serviceError(err, "register")
	}

	return utils.SuccessResponse(c, fiber.Map{
		"ok":       true,
		"message":  "Account created, please login",
		"username": user.Username,
	}, fiber.StatusCreated)
}

// LoginForm handles GET /login
// @Summary Login entry point
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /login [get]
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.Map{
		"ok":     true,
		"fields": []string{"username", "password"},
	}, fiber.StatusOK)
}

// Login handles POST /login
// @Summary Authenticate and start a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentials true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentials
	if err := c.BodyParser(&body); err != nil {
		return &types.AppError{Code: fiber.StatusBadRequest, Message: "Invalid input", Type: "validation"}
	}

	user, err := services.Authenticate(h.DB, body.Username, body.Password)
	if err != nil {
		return serviceError(err, "login")
	}

	if err := middleware.Login(h.Sessions, c, user.ID); err != nil {
		return &types.AppError{Code: fiber.StatusInternalServerError, Message: err.Error(), Type: "login"}
	}

	return utils.SuccessResponse(c, fiber.Map{
		"ok":       true,
		"message":  "Logged in successfully",
		"username": user.Username,
	}, fiber.StatusOK)
}

// Logout handles GET /logout
// @Summary End the session
// @Tags Auth
// @Success 302
// @Router /logout [get]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := middleware.Logout(h.Sessions, c); err != nil {
		return &types.AppError{Code: fiber.StatusInternalServerError, Message: err.Error(), Type: "logout"}
	}
	return c.Redirect("/login", fiber.StatusFound)
}

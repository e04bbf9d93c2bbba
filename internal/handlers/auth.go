package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/dto"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/middleware"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a user and signs them in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `form:"username" json:"username" binding:"required"`
		Email    string `form:"email" json:"email" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
		FullName string `form:"full_name" json:"full_name"`
	}

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Username, email and password are required")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// LoginPage describes how to sign in. There is no server-rendered page.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login required",
		"login":    "POST /login with username (or email) and password",
		"register": "POST /register with username, email and password",
	})
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Username and password are required")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Identifier: req.Username,
		Password:   req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile changes the full name, email or password of the current user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		FullName        *string `form:"full_name" json:"full_name"`
		Email           *string `form:"email" json:"email"`
		CurrentPassword string  `form:"current_password" json:"current_password"`
		NewPassword     string  `form:"new_password" json:"new_password"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(userID, services.UpdateProfileInput{
		FullName:        req.FullName,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CheckUniqueness reports whether a username or email is already registered.
func (h *AuthHandler) CheckUniqueness(c *gin.Context) {
	type CheckUniquenessRequest struct {
		Field string `form:"field" json:"field" binding:"required"`
		Value string `form:"value" json:"value"`
	}

	var req CheckUniquenessRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "field is required")
		return
	}

	exists, err := h.authService.CheckUniqueness(req.Field, req.Value)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		log.Printf("Failed to save session for user %d: %v", user.ID, err)
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.ValidationFailed(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength), "password")
	case errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrUsernameTooLong):
		apierrors.ValidationFailed(c, err.Error(), "username")
	case errors.Is(err, services.ErrEmailRequired):
		apierrors.ValidationFailed(c, err.Error(), "email")
	case errors.Is(err, services.ErrFullNameTooLong):
		apierrors.ValidationFailed(c, err.Error(), "full_name")
	case errors.Is(err, services.ErrUnknownField):
		apierrors.ValidationFailed(c, err.Error(), "field")
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrFailedToCreateUser):
		apierrors.InternalError(c, err.Error())
	default:
		log.Printf("Auth request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/middleware"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/response"
	"github.com/stemsi/exam-engine/internal/service"
	"github.com/stemsi/exam-engine/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	cfg         *config.Config
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	cfg *config.Config,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cfg:         cfg,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

func userBody(u *model.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account. Email is unique, case-insensitively.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": userBody(user)})
}

// Login godoc
// POST /api/v1/auth/login
// Checks credentials, returns a JWT and sets it as an httpOnly cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	token, expiresAt, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	h.setAuthCookie(c, token, int(h.cfg.JWTExpiry.Seconds()))
	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC(),
		"user":       userBody(user),
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": userBody(user)})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the current token and clears the auth cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), claims); err != nil {
		failWithError(c, h.log, err)
		return
	}

	h.setAuthCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, value, maxAge, "/", "", h.cfg.CookieSecure, true)
}

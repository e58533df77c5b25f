package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes any of the caller's own profile fields.
type UpdateProfileRequest struct {
	Name     domain.Optional[string] `json:"name"`
	Email    domain.Optional[string] `json:"email"`
	Password domain.Optional[string] `json:"password"`
}

// AccountResponse excludes sensitive info like password hash
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body RegisterRequest true "Registration details"
// @Success 201 {object} Envelope{data=AccountResponse} "Account created"
// @Failure 400 {object} Envelope "Invalid input or email already registered"
// @Failure 500 {object} Envelope "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	account, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created", MapAccountToResponse(account))
}

// Login godoc
// @Summary Log in
// @Description Authenticates an account and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} Envelope{data=LoginResponse} "Login successful"
// @Failure 400 {object} Envelope "Invalid input"
// @Failure 401 {object} Envelope "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	token, account, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", LoginResponse{Token: token, Account: MapAccountToResponse(account)})
}

// GetMe godoc
// @Summary Get the authenticated account
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=AccountResponse}
// @Failure 401 {object} Envelope "Unauthorized"
// @Failure 404 {object} Envelope "Account was deleted"
// @Router /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	account, err := h.authService.GetAccount(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", MapAccountToResponse(account))
}

// UpdateMe godoc
// @Summary Update the authenticated account
// @Description Only the supplied fields change. A new password replaces the old one.
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} Envelope{data=AccountResponse}
// @Failure 400 {object} Envelope "Invalid input or email already registered"
// @Failure 401 {object} Envelope "Unauthorized"
// @Router /me [patch]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	account, err := h.authService.UpdateProfile(c.Request.Context(), actorID(c), service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", MapAccountToResponse(account))
}

// DeleteMe godoc
// @Summary Delete the authenticated account
// @Description Removes the account together with its gym logs and workout plans.
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 401 {object} Envelope "Unauthorized"
// @Router /me [delete]
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	if err := h.authService.DeleteAccount(c.Request.Context(), actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Account deleted", nil)
}

// MapAccountToResponse converts a domain Account to an AccountResponse DTO.
func MapAccountToResponse(account *domain.Account) AccountResponse {
	if account == nil {
		return AccountResponse{}
	}
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}
